package cache

// Keyer derives cache keys for catalog entries.
type Keyer interface {
	// ModuleKey is the key of a module spec.
	ModuleKey(catalog, id string) string
	// GlyphKey is the key of a module's overview image.
	GlyphKey(catalog, id string) string
}

// DefaultKeyer hashes the catalog identity and module identifier.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ModuleKey generates a key for a module spec.
func (DefaultKeyer) ModuleKey(catalog, id string) string {
	return hashKey("module", catalog, id)
}

// GlyphKey generates a key for an overview glyph.
func (DefaultKeyer) GlyphKey(catalog, id string) string {
	return hashKey("glyph", catalog, id)
}
