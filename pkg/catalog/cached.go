package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/ioschema/pkg/cache"
	"github.com/matzehuels/ioschema/pkg/observability"
)

// Cached fronts a Gateway with a byte cache. Module specs and glyphs are
// cached; All always reads through so listings reflect catalog uploads.
type Cached struct {
	inner    Gateway
	cache    cache.Cache
	keyer    cache.Keyer
	scope    string
	specTTL  time.Duration
	glyphTTL time.Duration
}

// CachedOption configures a Cached gateway.
type CachedOption func(*Cached)

// WithTTL overrides the Spec and glyph time-to-live.
func WithTTL(spec, glyph time.Duration) CachedOption {
	return func(c *Cached) {
		c.specTTL = spec
		c.glyphTTL = glyph
	}
}

// WithKeyer overrides the default keyer.
func WithKeyer(k cache.Keyer) CachedOption {
	return func(c *Cached) {
		if k != nil {
			c.keyer = k
		}
	}
}

// Versioned is implemented by gateways whose content can change underneath
// a long-lived cache. Version must change whenever the content does.
type Versioned interface {
	Version() (string, error)
}

// NewCached wraps inner. scope namespaces the keys of this catalog. When inner
// is [Versioned], its current version is folded into every key, so two catalog
// files sharing one cache never see each other's entries and an edited file
// never serves stale specs.
func NewCached(inner Gateway, c cache.Cache, scope string, opts ...CachedOption) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	g := &Cached{
		inner:    inner,
		cache:    c,
		keyer:    cache.NewDefaultKeyer(),
		scope:    scope,
		specTTL:  cache.TTLModule,
		glyphTTL: cache.TTLGlyph,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// cachedSpec distinguishes a cached "not in catalog" answer from a spec.
type cachedSpec struct {
	Found bool       `json:"found"`
	Spec  ModuleSpec `json:"spec"`
}

// currentScope returns the key scope for the catalog as it is now. ok is
// false when the version cannot be read; callers then bypass the cache.
func (g *Cached) currentScope() (scope string, ok bool) {
	v, versioned := g.inner.(Versioned)
	if !versioned {
		return g.scope, true
	}
	version, err := v.Version()
	if err != nil {
		return "", false
	}
	return g.scope + "@" + version, true
}

// Lookup returns the card Spec for id, consulting the cache first.
func (g *Cached) Lookup(ctx context.Context, id string) (ModuleSpec, bool, error) {
	scope, ok := g.currentScope()
	if !ok {
		return g.inner.Lookup(ctx, id)
	}
	key := g.keyer.ModuleKey(scope, id)
	if data, hit, err := g.cache.Get(ctx, key); err == nil && hit {
		var entry cachedSpec
		if json.Unmarshal(data, &entry) == nil {
			observability.Cache().OnCacheHit(ctx, "module")
			return entry.Spec, entry.Found, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "module")

	spec, ok, err := g.inner.Lookup(ctx, id)
	if err != nil {
		return ModuleSpec{}, false, err
	}
	if data, err := json.Marshal(cachedSpec{Found: ok, Spec: spec}); err == nil {
		if g.cache.Set(ctx, key, data, g.specTTL) == nil {
			observability.Cache().OnCacheSet(ctx, "module", len(data))
		}
	}
	return spec, ok, nil
}

// Glyph returns the module's overview image, consulting the cache first.
func (g *Cached) Glyph(ctx context.Context, id string) ([]byte, error) {
	scope, ok := g.currentScope()
	if !ok {
		return g.inner.Glyph(ctx, id)
	}
	key := g.keyer.GlyphKey(scope, id)
	if data, hit, err := g.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "glyph")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "glyph")

	data, err := g.inner.Glyph(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.cache.Set(ctx, key, data, g.glyphTTL) == nil {
		observability.Cache().OnCacheSet(ctx, "glyph", len(data))
	}
	return data, nil
}

// All reads through to the underlying catalog.
func (g *Cached) All(ctx context.Context) ([]ModuleSpec, error) {
	return g.inner.All(ctx)
}

// Invalidate drops the cached entries for the given identifiers under the
// catalog's current version.
func (g *Cached) Invalidate(ctx context.Context, ids ...string) error {
	scope, ok := g.currentScope()
	if !ok {
		return nil
	}
	for _, id := range ids {
		if err := g.cache.Delete(ctx, g.keyer.ModuleKey(scope, id)); err != nil {
			return err
		}
		if err := g.cache.Delete(ctx, g.keyer.GlyphKey(scope, id)); err != nil {
			return err
		}
	}
	return nil
}

var _ Gateway = (*Cached)(nil)
