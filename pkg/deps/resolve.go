package deps

import "context"

// Result is the outcome of a successful [Resolve].
type Result struct {
	Roots  []string // Requested root packages, in request order
	Graph  *Graph   // Merged graph of all roots
	Order  Ordering // Dependency-first ordering of Graph
	Passes int      // Sorting passes used
}

// Resolve collects the dependency graph of each root, merges the graphs
// and sorts the result once. Roots are collected one at a time in the given
// order and share one memoized lookup, so a package reachable from several
// roots is looked up once. The first lookup or sorting error aborts
// resolution; no partial result is returned. Zero roots produce an empty
// result.
func Resolve(ctx context.Context, roots []string, lookup LookupFunc, opts Options) (*Result, error) {
	opts = opts.WithDefaults()
	lookup = Memoize(lookup)

	graphs := make([]*Graph, 0, len(roots))
	for _, root := range roots {
		g, err := Collect(ctx, root, lookup)
		if err != nil {
			return nil, err
		}
		opts.Logger("collected %s: %d packages", root, g.Len())
		graphs = append(graphs, g)
	}

	merged := Merge(graphs...)
	order, passes, err := sortGraph(merged, opts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Roots:  append([]string(nil), roots...),
		Graph:  merged,
		Order:  order,
		Passes: passes,
	}, nil
}

// Memoize wraps lookup so each name is looked up at most once for the
// lifetime of the returned function. Errors are not cached. The returned
// function is not safe for concurrent use.
func Memoize(lookup LookupFunc) LookupFunc {
	seen := make(map[string][]string)
	return func(ctx context.Context, name string) ([]string, error) {
		if d, ok := seen[name]; ok {
			return d, nil
		}
		d, err := lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		seen[name] = d
		return d, nil
	}
}
