package javascript

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/jscadpack/pkg/cache"
	"github.com/matzehuels/jscadpack/pkg/deps"
	errs "github.com/matzehuels/jscadpack/pkg/errors"
	"github.com/matzehuels/jscadpack/pkg/observability"
)

// DefaultDepsTTL is how long a parsed dependency list stays cached. Keys
// include the manifest's modification time, so edits invalidate earlier.
const DefaultDepsTTL = 24 * time.Hour

// cacheKind labels dependency list entries in cache hooks.
const cacheKind = "deps"

// Modules looks packages up in <dir>/node_modules.
type Modules struct {
	dir   string
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewModules returns a lookup rooted at the project directory dir. A nil
// cache disables caching.
func NewModules(dir string, c cache.Cache) *Modules {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Modules{dir: dir, cache: c, keyer: cache.NewDefaultKeyer(), ttl: DefaultDepsTTL}
}

// WithKeyer sets the keyer used for dependency list cache keys and returns m.
// A nil keyer is ignored.
func (m *Modules) WithKeyer(k cache.Keyer) *Modules {
	if k != nil {
		m.keyer = k
	}
	return m
}

// Dir returns the project directory.
func (m *Modules) Dir() string { return m.dir }

// PackageDir returns the install directory of name. Scoped names such as
// @scope/pkg map to nested directories.
func (m *Modules) PackageDir(name string) (string, error) {
	if err := errs.ValidatePackageName(name); err != nil {
		return "", err
	}
	return filepath.Join(m.dir, "node_modules", filepath.FromSlash(name)), nil
}

// Dependencies returns the "dependencies" keys of name's package.json in
// document order. It satisfies [deps.LookupFunc].
func (m *Modules) Dependencies(ctx context.Context, name string) ([]string, error) {
	path, modTime, err := m.stat(name)
	if err != nil {
		return nil, err
	}

	key := m.keyer.DepsKey(path, modTime)
	if names, ok, err := cache.GetJSON[[]string](ctx, m.cache, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, cacheKind)
		return names, nil
	}
	observability.Cache().OnCacheMiss(ctx, cacheKind)

	manifest, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(manifest.Dependencies)
	if err == nil && m.cache.Set(ctx, key, data, m.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, cacheKind, len(data))
	}
	return manifest.Dependencies, nil
}

// ModTime returns the modification time of name's package.json. A missing
// manifest is a [*deps.NotFoundError].
func (m *Modules) ModTime(name string) (time.Time, error) {
	_, modTime, err := m.stat(name)
	return modTime, err
}

func (m *Modules) stat(name string) (string, time.Time, error) {
	dir, err := m.PackageDir(name)
	if err != nil {
		return "", time.Time{}, err
	}
	path := filepath.Join(dir, ManifestFile)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", time.Time{}, &deps.NotFoundError{Name: name, Cause: err}
	}
	if err != nil {
		return "", time.Time{}, err
	}
	return path, info.ModTime(), nil
}

var _ deps.LookupFunc = (*Modules)(nil).Dependencies
