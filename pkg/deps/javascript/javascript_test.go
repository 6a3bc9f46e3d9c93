package javascript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/jscadpack/pkg/cache"
	"github.com/matzehuels/jscadpack/pkg/deps"
	errs "github.com/matzehuels/jscadpack/pkg/errors"
	"github.com/matzehuels/jscadpack/pkg/observability"
)

// writeTree creates files under root from a path -> contents map.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"node_modules/jscad-utils/package.json":     `{"dependencies": {}}`,
		"node_modules/jscad-utils/jscad.json":       `{"files": ["dist/utils.jscad"]}`,
		"node_modules/jscad-utils/dist/utils.jscad": "// mock jscad utils",

		"node_modules/dep-on-jscad-utils/package.json":    `{"dependencies": {"jscad-utils": "*"}}`,
		"node_modules/dep-on-jscad-utils/jscad.json":      `{"files": "dist/test.jscad"}`,
		"node_modules/dep-on-jscad-utils/dist/test.jscad": "// test.jscad",

		"node_modules/lots-of-deps/package.json": `{"dependencies": {"jscad-utils": "^1.0.0", "dep-on-jscad-utils": "*", "@jscad/csg": "0.7"}}`,
		"node_modules/@jscad/csg/package.json":   `{"name": "@jscad/csg"}`,
	})
	return dir
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"document order", `{"dependencies": {"zeta": "*", "alpha": "^1", "mid": "~2"}}`, []string{"zeta", "alpha", "mid"}, false},
		{"no dependencies", `{"name": "x"}`, []string{}, false},
		{"null dependencies", `{"dependencies": null}`, []string{}, false},
		{"dev dependencies ignored", `{"dependencies": {"a": "*"}, "devDependencies": {"b": "*"}}`, []string{"a"}, false},
		{"duplicate key", `{"dependencies": {"a": "1", "b": "1", "a": "2"}}`, []string{"a", "b"}, false},
		{"nested values", `{"dependencies": {"a": {"version": "1"}, "b": ["x"]}}`, []string{"a", "b"}, false},
		{"empty dependencies array", `{"dependencies": []}`, []string{}, false},
		{"dependencies array", `{"dependencies": ["a"]}`, nil, true},
		{"invalid json", `{"dependencies": `, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseManifest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errs.Is(err, errs.ErrCodeInvalidManifest) {
					t.Errorf("error code = %q, want %q", errs.GetCode(err), errs.ErrCodeInvalidManifest)
				}
				return
			}
			if !slices.Equal(m.Dependencies, tt.want) {
				t.Errorf("Dependencies = %v, want %v", m.Dependencies, tt.want)
			}
		})
	}
}

func TestParseManifestNameVersion(t *testing.T) {
	m, err := ParseManifest(strings.NewReader(`{"name": "my-model", "version": "1.2.0", "dependencies": {"jscad-utils": "*"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "my-model" || m.Version != "1.2.0" {
		t.Errorf("Name = %q, Version = %q", m.Name, m.Version)
	}
}

func TestModulesDependencies(t *testing.T) {
	m := NewModules(fixture(t), nil)
	ctx := context.Background()

	got, err := m.Dependencies(ctx, "lots-of-deps")
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if want := []string{"jscad-utils", "dep-on-jscad-utils", "@jscad/csg"}; !slices.Equal(got, want) {
		t.Errorf("Dependencies = %v, want %v", got, want)
	}

	got, err = m.Dependencies(ctx, "@jscad/csg")
	if err != nil {
		t.Fatalf("scoped package: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("scoped Dependencies = %v, want none", got)
	}
}

func TestModulesNotFound(t *testing.T) {
	m := NewModules(fixture(t), nil)

	_, err := m.Dependencies(context.Background(), "ghost")
	var nf *deps.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *deps.NotFoundError", err)
	}
	if nf.Name != "ghost" {
		t.Errorf("Name = %q, want ghost", nf.Name)
	}
}

func TestModulesInvalidName(t *testing.T) {
	m := NewModules(fixture(t), nil)
	_, err := m.Dependencies(context.Background(), "../escape")
	if !errs.Is(err, errs.ErrCodeInvalidPackage) {
		t.Errorf("error = %v, want %s", err, errs.ErrCodeInvalidPackage)
	}
}

func TestModulesLegacyName(t *testing.T) {
	m := NewModules(fixture(t), nil)
	_, err := m.Dependencies(context.Background(), "JSONStream")
	if !deps.IsNotFound(err) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}

func TestModulesCache(t *testing.T) {
	dir := fixture(t)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := NewModules(dir, c)
	ctx := context.Background()

	first, err := m.Dependencies(ctx, "dep-on-jscad-utils")
	if err != nil {
		t.Fatal(err)
	}

	// A cached list is served while the manifest's mtime is unchanged.
	path := filepath.Join(dir, "node_modules", "dep-on-jscad-utils", "package.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"dependencies": {"other": "*"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, info.ModTime(), info.ModTime()); err != nil {
		t.Fatal(err)
	}

	second, err := m.Dependencies(ctx, "dep-on-jscad-utils")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(first, second) {
		t.Errorf("cached = %v, want %v", second, first)
	}
}

// keyRecorder is a Cache that remembers which keys were written.
type keyRecorder struct {
	cache.NullCache
	keys []string
}

func (k *keyRecorder) Set(_ context.Context, key string, _ []byte, _ time.Duration) error {
	k.keys = append(k.keys, key)
	return nil
}

func TestModulesWithKeyer(t *testing.T) {
	rec := &keyRecorder{}
	m := NewModules(fixture(t), rec).WithKeyer(cache.NewScopedKeyer(nil, "test:"))

	if _, err := m.Dependencies(context.Background(), "jscad-utils"); err != nil {
		t.Fatal(err)
	}
	if len(rec.keys) != 1 || !strings.HasPrefix(rec.keys[0], "test:") {
		t.Errorf("keys = %v, want one key prefixed with test:", rec.keys)
	}

	// A nil keyer keeps the current one.
	if m.WithKeyer(nil) != m {
		t.Error("WithKeyer should return the receiver")
	}
}

func TestModulesCacheHooks(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stats := observability.NewCounters()
	observability.SetCacheHooks(stats)
	t.Cleanup(observability.Reset)

	m := NewModules(fixture(t), c)
	ctx := context.Background()
	for range 2 {
		if _, err := m.Dependencies(ctx, "jscad-utils"); err != nil {
			t.Fatal(err)
		}
	}

	s := stats.Snapshot()
	if s.CacheMisses != 1 || s.CacheSets != 1 || s.CacheHits != 1 {
		t.Errorf("misses/sets/hits = %d/%d/%d, want 1/1/1", s.CacheMisses, s.CacheSets, s.CacheHits)
	}
}

func TestModTime(t *testing.T) {
	dir := fixture(t)
	m := NewModules(dir, nil)

	info, err := os.Stat(filepath.Join(dir, "node_modules", "jscad-utils", ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.ModTime("jscad-utils")
	if err != nil || !got.Equal(info.ModTime()) {
		t.Errorf("ModTime() = %v, %v, want %v", got, err, info.ModTime())
	}
	if _, err := m.ModTime("missing"); !deps.IsNotFound(err) {
		t.Errorf("ModTime(missing) error = %v, want NotFoundError", err)
	}
}

func TestResolveFromModules(t *testing.T) {
	m := NewModules(fixture(t), nil)

	res, err := deps.Resolve(context.Background(), []string{"lots-of-deps"}, m.Dependencies, deps.Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := deps.Ordering{"@jscad/csg", "jscad-utils", "dep-on-jscad-utils", "lots-of-deps"}
	if !slices.Equal(res.Order, want) {
		t.Errorf("Order = %v, want %v", res.Order, want)
	}
}

func TestLibraryFiles(t *testing.T) {
	m := NewModules(fixture(t), nil)

	files, err := m.LibraryFiles("dep-on-jscad-utils")
	if err != nil {
		t.Fatalf("LibraryFiles: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if string(files[0].Contents) != "// test.jscad" {
		t.Errorf("Contents = %q", files[0].Contents)
	}
	if filepath.Base(files[0].Path) != "test.jscad" || files[0].Name != "dist/test.jscad" || files[0].Package != "dep-on-jscad-utils" {
		t.Errorf("File = %+v", files[0])
	}

	ok, err := m.IsLibrary("lots-of-deps")
	if err != nil || ok {
		t.Errorf("IsLibrary(lots-of-deps) = %v, %v; want false", ok, err)
	}
	ok, err = m.IsLibrary("jscad-utils")
	if err != nil || !ok {
		t.Errorf("IsLibrary(jscad-utils) = %v, %v; want true", ok, err)
	}
}

func TestLibraryFilesMissing(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"node_modules/broken/package.json": `{}`,
		"node_modules/broken/jscad.json":   `{"files": ["dist/missing.jscad"]}`,
	})

	_, err := NewModules(dir, nil).LibraryFiles("broken")
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want %s", err, errs.ErrCodeFileNotFound)
	}
}

func TestParseLibrary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"list", `{"files": ["a.jscad", "lib/b.jscad"]}`, []string{"a.jscad", "lib/b.jscad"}, false},
		{"single string", `{"files": "dist/utils.jscad"}`, []string{"dist/utils.jscad"}, false},
		{"missing files", `{}`, nil, true},
		{"wrong type", `{"files": 3}`, nil, true},
		{"empty path", `{"files": [""]}`, nil, true},
		{"escaping path", `{"files": ["../other/x.jscad"]}`, nil, true},
		{"absolute path", `{"files": "/etc/passwd"}`, nil, true},
		{"not json", `files`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLibrary([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLibrary() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseLibrary() = %v, want %v", got, tt.want)
			}
		})
	}
}
