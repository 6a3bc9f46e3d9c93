// Package cache provides byte-level caching for resolved dependency data.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a directory, for CLI use
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, used with --no-cache
//
// Keys are produced by a [Keyer] so that every backend sees the same key
// layout. [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key and whether it was found. An expired or
	// unreadable entry counts as a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// DepsKey is the key for the parsed dependency list of a package
	// manifest, identified by its path and modification time.
	DepsKey(path string, modTime time.Time) string
	// OrderKey is the key for a resolved ordering of a project manifest.
	OrderKey(dir string, manifest []byte, opts OrderKeyOpts) string
}

// OrderKeyOpts holds the resolution options that change an ordering.
type OrderKeyOpts struct {
	MaxPasses int `json:"max_passes"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DepsKey returns "deps:<hash>".
func (DefaultKeyer) DepsKey(path string, modTime time.Time) string {
	return hashKey("deps", path, modTime.UTC().UnixNano())
}

// OrderKey returns "order:<hash>".
func (DefaultKeyer) OrderKey(dir string, manifest []byte, opts OrderKeyOpts) string {
	return hashKey("order", dir, Hash(manifest), opts)
}

// GetJSON reads key and decodes it into a T. An entry that does not decode
// is treated as a miss.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var v T
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, nil
	}
	return v, true, nil
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
