// Package cache provides byte caches for catalog lookups.
//
// Catalog reads are pure, so module specs and overview glyphs can be kept
// between requests. Three backends implement [Cache]:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: JSON entry files, for the CLI (~/.cache/ioschema)
//   - [RedisCache]: shared cache for server deployments
//
// Keys are produced by a [Keyer] so deployments serving several catalogs can
// isolate them with [NewScopedKeyer]. Generated documents are never cached.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLModule = 10 * time.Minute
	TTLGlyph  = time.Hour
)

// Cache stores opaque byte values with an optional time-to-live.
// Get reports hit=false with a nil error on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
