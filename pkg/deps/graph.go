package deps

import "slices"

// Ordering is a linearization of a graph's nodes in which every package
// appears after all of its dependencies.
type Ordering []string

// Graph is the set of packages reachable from one or more roots together
// with each package's direct dependencies.
//
// Nodes holds every package exactly once in the order it was first
// discovered. Deps has exactly one entry per node; every name that appears
// in a dependency list is itself a node.
type Graph struct {
	Nodes []string
	Deps  map[string][]string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Deps: make(map[string][]string)}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.Nodes) }

// Has reports whether name is a node of the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.Deps[name]
	return ok
}

// DependenciesOf returns the direct dependencies of name, or nil if name is
// not a node.
func (g *Graph) DependenciesOf(name string) []string { return g.Deps[name] }

// EdgeCount returns the total number of direct dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, d := range g.Deps {
		n += len(d)
	}
	return n
}

// add records name with its dependency list. It is a no-op if name is
// already present, so the first list wins.
func (g *Graph) add(name string, deps []string) {
	if g.Has(name) {
		return
	}
	g.Nodes = append(g.Nodes, name)
	g.Deps[name] = slices.Clone(deps)
}

// Validate checks the closure property: the node list and the key set of
// Deps match, there are no duplicate nodes, and every dependency is a node.
func (g *Graph) Validate() error {
	if len(g.Nodes) != len(g.Deps) {
		return ErrInconsistentGraph
	}
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n] {
			return ErrInconsistentGraph
		}
		seen[n] = true
		if _, ok := g.Deps[n]; !ok {
			return ErrInconsistentGraph
		}
	}
	for _, n := range g.Nodes {
		for _, d := range g.Deps[n] {
			if !seen[d] {
				return &MissingNodeError{From: n, Name: d}
			}
		}
	}
	return nil
}

// Merge unions several graphs into one. Nodes keep their first-seen order
// across the inputs; when two graphs disagree on a node's dependency list
// the list from the earliest graph is kept. Nil graphs are skipped.
func Merge(graphs ...*Graph) *Graph {
	merged := NewGraph()
	for _, g := range graphs {
		if g == nil {
			continue
		}
		for _, n := range g.Nodes {
			merged.add(n, g.Deps[n])
		}
	}
	return merged
}
