package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful when one Redis instance fronts several catalog databases.
//
// Example usage:
//
//	siteKeyer := NewScopedKeyer(NewDefaultKeyer(), "site:lyon:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ModuleKey generates a prefixed key for a module spec.
func (k *ScopedKeyer) ModuleKey(catalog, id string) string {
	return k.prefix + k.inner.ModuleKey(catalog, id)
}

// GlyphKey generates a prefixed key for an overview glyph.
func (k *ScopedKeyer) GlyphKey(catalog, id string) string {
	return k.prefix + k.inner.GlyphKey(catalog, id)
}
