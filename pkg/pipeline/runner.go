package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jscadpack/pkg/cache"
	"github.com/matzehuels/jscadpack/pkg/deps"
	"github.com/matzehuels/jscadpack/pkg/deps/javascript"
	"github.com/matzehuels/jscadpack/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so the caching logic lives in one place.
//
// The Runner holds no per-run state, so multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Order parses manifest and resolves the dependency-first ordering of its
// dependencies inside opts.Dir. Orderings are cached by manifest content; a
// cached ordering is only used while every package it covers still has an
// unchanged package.json.
func (r *Runner) Order(ctx context.Context, manifest []byte, opts Options) (*Result, error) {
	opts = opts.WithDefaults()

	m, err := javascript.ParseManifest(bytes.NewReader(manifest))
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("project dir: %w", err)
	}
	modules := javascript.NewModules(dir, r.Cache).WithKeyer(r.Keyer)

	result := &Result{Manifest: m}
	start := time.Now()

	key := r.Keyer.OrderKey(dir, manifest, cache.OrderKeyOpts{MaxPasses: opts.MaxPasses})
	if !opts.Refresh {
		cached, hit, err := cache.GetJSON[cachedResolution](ctx, r.Cache, key)
		if err == nil && hit && !cached.fresh(modules) {
			r.Logger.Debug("cached ordering is stale", "dir", dir)
			hit = false
		}
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "order")
			result.Resolution = cached.result()
			result.CacheHit = true
		} else {
			observability.Cache().OnCacheMiss(ctx, "order")
		}
	}

	if result.Resolution == nil {
		res, err := r.resolve(ctx, dir, m.Dependencies, modules, opts)
		if err != nil {
			return nil, err
		}
		result.Resolution = res

		r.store(ctx, key, res, modules, opts.CacheTTL)
	}

	libs, err := libraries(modules, result.Resolution.Order)
	if err != nil {
		return nil, err
	}
	result.Libraries = libs
	result.Stats.ResolveTime = time.Since(start)

	r.Logger.Info("resolved dependencies",
		"packages", len(result.Resolution.Order),
		"libraries", len(libs),
		"passes", result.Resolution.Passes,
		"cached", result.CacheHit,
		"duration", result.Stats.ResolveTime)

	return result, nil
}

// Bundle resolves manifest like [Runner.Order] and emits the files of every
// JSCAD library to sink, dependencies first and each library's files in
// declared order. All files are read before the first is emitted.
func (r *Runner) Bundle(ctx context.Context, manifest []byte, sink Sink, opts Options) (*Result, error) {
	opts = opts.WithDefaults()

	result, err := r.Order(ctx, manifest, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	files, err := r.gather(ctx, opts.Dir, result.Libraries)
	if err == nil {
		err = emit(sink, files, result)
	}
	result.Stats.EmitTime = time.Since(start)
	observability.Pipeline().OnEmitComplete(ctx, result.Files, result.Bytes, result.Stats.EmitTime, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("emitted library files",
		"files", result.Files,
		"bytes", result.Bytes,
		"duration", result.Stats.EmitTime)

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store caches res under key along with the current manifest mtimes.
func (r *Runner) store(ctx context.Context, key string, res *deps.Result, modules *javascript.Modules, ttl time.Duration) {
	entry, err := toCached(res, modules)
	if err != nil {
		r.Logger.Debug("ordering not cached", "error", err)
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "order", len(data))
	}
}

func (r *Runner) resolve(ctx context.Context, dir string, roots []string, modules *javascript.Modules, opts Options) (*deps.Result, error) {
	observability.Pipeline().OnResolveStart(ctx, dir, len(roots))
	start := time.Now()

	res, err := deps.Resolve(ctx, roots, modules.Dependencies, deps.Options{
		MaxPasses: opts.MaxPasses,
		Logger:    r.Logger.Debugf,
	})

	nodes, passes := 0, 0
	if res != nil {
		nodes, passes = res.Graph.Len(), res.Passes
	}
	observability.Pipeline().OnResolveComplete(ctx, dir, nodes, passes, time.Since(start), err)
	return res, err
}

func (r *Runner) gather(ctx context.Context, dir string, libs []string) ([]javascript.File, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("project dir: %w", err)
	}
	modules := javascript.NewModules(abs, nil)

	var files []javascript.File
	for _, name := range libs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fs, err := modules.LibraryFiles(name)
		if err != nil {
			return nil, err
		}
		r.Logger.Debug("library", "package", name, "files", len(fs))
		files = append(files, fs...)
	}
	return files, nil
}

func emit(sink Sink, files []javascript.File, result *Result) error {
	for _, f := range files {
		if err := sink.Emit(f); err != nil {
			return fmt.Errorf("emit %s/%s: %w", f.Package, f.Name, err)
		}
		result.Files++
		result.Bytes += len(f.Contents)
	}
	return nil
}

// libraries filters order down to the packages that ship a jscad.json.
func libraries(modules *javascript.Modules, order deps.Ordering) ([]string, error) {
	libs := make([]string, 0, len(order))
	for _, name := range order {
		ok, err := modules.IsLibrary(name)
		if err != nil {
			return nil, err
		}
		if ok {
			libs = append(libs, name)
		}
	}
	return libs, nil
}
