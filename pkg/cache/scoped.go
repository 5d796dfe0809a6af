package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants (or
// test runs) can share one backend without seeing each other's entries.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "team-ui:")
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

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(spritesHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(spritesHash, opts)
}

// AtlasKey generates a prefixed key for stored atlases.
func (k *ScopedKeyer) AtlasKey(id, kind string) string {
	return k.prefix + k.inner.AtlasKey(id, kind)
}
