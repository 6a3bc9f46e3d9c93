package deps

import "slices"

// Sort orders the graph's nodes so that every package follows all of its
// direct and transitive dependencies.
//
// Sorting runs in passes over the not-yet-placed packages, in graph order.
// A package without dependencies goes to the front of the ordering; a
// package whose dependencies are all placed goes to the end; anything else
// waits for the next pass. A pass that places nothing means the remaining
// packages sit on or behind a cycle, and Sort returns a
// [*CircularDependencyError]. Running out of passes (see
// [Options.MaxPasses]) is reported the same way. Sort never returns a
// partial ordering.
//
// The graph must satisfy the closure property checked by [Graph.Validate];
// a dependency that is not a node fails with [*MissingNodeError] before any
// pass runs.
//
// An empty graph yields an empty ordering.
func Sort(g *Graph, opts Options) (Ordering, error) {
	order, _, err := sortGraph(g, opts.WithDefaults())
	return order, err
}

type sorter struct {
	g      *Graph
	front  []string // zero-dependency packages, most recent last
	back   []string // packages placed after their dependencies
	placed map[string]bool
}

func sortGraph(g *Graph, opts Options) (Ordering, int, error) {
	if g == nil || (g.Len() == 0 && len(g.Deps) == 0) {
		return Ordering{}, 0, nil
	}
	if err := g.Validate(); err != nil {
		return nil, 0, err
	}

	s := &sorter{g: g, placed: make(map[string]bool, g.Len())}
	remaining := slices.Clone(g.Nodes)
	passes := 0

	for len(remaining) > 0 {
		if opts.MaxPasses > 0 && passes >= opts.MaxPasses {
			return nil, passes, s.fail(remaining, passes, true)
		}
		passes++

		for _, name := range remaining {
			s.place(name)
		}

		next := s.unplaced()
		opts.Logger("sort pass %d: %d placed, %d remaining", passes, len(s.placed), len(next))
		if len(next) == len(remaining) {
			return nil, passes, s.fail(next, passes, false)
		}
		remaining = next
	}

	return s.ordering(), passes, nil
}

func (s *sorter) place(name string) {
	deps := s.g.Deps[name]
	if len(deps) == 0 {
		s.front = append(s.front, name)
		s.placed[name] = true
		return
	}
	for _, d := range deps {
		if !s.placed[d] {
			return
		}
	}
	s.back = append(s.back, name)
	s.placed[name] = true
}

func (s *sorter) unplaced() []string {
	var out []string
	for _, n := range s.g.Nodes {
		if !s.placed[n] {
			out = append(out, n)
		}
	}
	return out
}

// ordering returns the front section newest-first followed by the back
// section in placement order.
func (s *sorter) ordering() Ordering {
	order := make(Ordering, 0, len(s.front)+len(s.back))
	for i := len(s.front) - 1; i >= 0; i-- {
		order = append(order, s.front[i])
	}
	return append(order, s.back...)
}

func (s *sorter) fail(unresolved []string, passes int, exhausted bool) error {
	return &CircularDependencyError{
		Unresolved: unresolved,
		Cycle:      FindCycle(s.g, unresolved),
		Passes:     passes,
		Exhausted:  exhausted,
	}
}
