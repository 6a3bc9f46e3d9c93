package cache

import "time"

// ScopedKeyer wraps a Keyer with a prefix. The Redis backend uses it to
// keep jscadpack keys apart from anything else stored in the same
// database.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "jscadpack:")
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

// DepsKey generates a prefixed key for a package's dependency list.
func (k *ScopedKeyer) DepsKey(path string, modTime time.Time) string {
	return k.prefix + k.inner.DepsKey(path, modTime)
}

// OrderKey generates a prefixed key for a resolved ordering.
func (k *ScopedKeyer) OrderKey(dir string, manifest []byte, opts OrderKeyOpts) string {
	return k.prefix + k.inner.OrderKey(dir, manifest, opts)
}
