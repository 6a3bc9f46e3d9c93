// Package pipeline turns a project's package.json into an ordered set of
// JSCAD library files.
//
// # Architecture
//
// A run has two stages:
//
//  1. Resolve: read the manifest, walk node_modules through
//     [javascript.Modules] and order the packages with [deps.Resolve].
//     Orderings are cached by manifest content and revalidated against the
//     package.json modification times of every package they cover.
//  2. Emit: read the jscad.json files of every ordered package that is a
//     JSCAD library and hand them to a [Sink], dependencies first.
//
// Every file is read before the first one is emitted, so a failing run
// never produces partial output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Bundle(ctx, manifest, pipeline.NewWriterSink(os.Stdout, false), pipeline.Options{Dir: "."})
//
// [javascript.Modules]: github.com/matzehuels/jscadpack/pkg/deps/javascript.Modules
// [deps.Resolve]: github.com/matzehuels/jscadpack/pkg/deps.Resolve
package pipeline

import (
	"time"

	"github.com/matzehuels/jscadpack/pkg/deps"
	"github.com/matzehuels/jscadpack/pkg/deps/javascript"
)

// DefaultOrderTTL is how long a resolved ordering stays cached.
const DefaultOrderTTL = 10 * time.Minute

// Options configures a pipeline run.
type Options struct {
	Dir       string        // Project directory containing node_modules (default: ".")
	MaxPasses int           // Sorting pass limit (default: deps.DefaultMaxPasses)
	CacheTTL  time.Duration // Ordering cache duration (default: 10m)
	Refresh   bool          // Ignore cached orderings
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.MaxPasses == 0 {
		opts.MaxPasses = deps.DefaultMaxPasses
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultOrderTTL
	}
	return opts
}

// Result holds the outcome of a run.
type Result struct {
	Manifest   *javascript.Manifest
	Resolution *deps.Result
	Libraries  []string // Ordered packages that ship a jscad.json
	Files      int      // Files emitted (Bundle only)
	Bytes      int      // Bytes emitted (Bundle only)
	CacheHit   bool     // Ordering came from the cache
	Stats      Stats
}

// Stats records stage timings.
type Stats struct {
	ResolveTime time.Duration
	EmitTime    time.Duration
}

// cachedResolution is the cache representation of a deps.Result.
type cachedResolution struct {
	Roots  []string            `json:"roots"`
	Nodes  []string            `json:"nodes"`
	Deps   map[string][]string `json:"deps"`
	Order  []string            `json:"order"`
	Passes int                 `json:"passes"`
	// Stamps maps every node to its package.json mtime in Unix nanoseconds.
	Stamps map[string]int64 `json:"stamps"`
}

// toCached records r together with the current manifest mtimes of its nodes.
func toCached(r *deps.Result, modules *javascript.Modules) (cachedResolution, error) {
	stamps := make(map[string]int64, r.Graph.Len())
	for _, n := range r.Graph.Nodes {
		t, err := modules.ModTime(n)
		if err != nil {
			return cachedResolution{}, err
		}
		stamps[n] = t.UnixNano()
	}
	return cachedResolution{
		Roots:  r.Roots,
		Nodes:  r.Graph.Nodes,
		Deps:   r.Graph.Deps,
		Order:  r.Order,
		Passes: r.Passes,
		Stamps: stamps,
	}, nil
}

// fresh reports whether no package of c was removed or had its
// package.json modified since c was stored.
func (c cachedResolution) fresh(modules *javascript.Modules) bool {
	if len(c.Stamps) != len(c.Nodes) {
		return false
	}
	for _, n := range c.Nodes {
		stamp, ok := c.Stamps[n]
		if !ok {
			return false
		}
		t, err := modules.ModTime(n)
		if err != nil || t.UnixNano() != stamp {
			return false
		}
	}
	return true
}

func (c cachedResolution) result() *deps.Result {
	g := deps.NewGraph()
	g.Nodes = c.Nodes
	for k, v := range c.Deps {
		g.Deps[k] = v
	}
	return &deps.Result{Roots: c.Roots, Graph: g, Order: c.Order, Passes: c.Passes}
}
