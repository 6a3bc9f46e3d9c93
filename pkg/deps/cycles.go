package deps

// FindCycle returns one dependency cycle among the given nodes, as a path
// that starts and ends with the same package (e.g. [a b a]). Only edges
// between members of within are followed; a nil within means all nodes.
// Returns nil when the subgraph is acyclic.
//
// The search is a depth-first walk with white/gray/black coloring. Nodes
// and edges are visited in graph order, so the result is deterministic.
func FindCycle(g *Graph, within []string) []string {
	const (
		white = iota
		gray
		black
	)

	if g == nil {
		return nil
	}
	if within == nil {
		within = g.Nodes
	}
	member := make(map[string]bool, len(within))
	for _, n := range within {
		member[n] = true
	}

	color := make(map[string]int, len(within))
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range g.Deps[id] {
			if !member[child] {
				continue
			}
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				cycle = closeCycle(stack, child)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, n := range within {
		if color[n] == white && dfs(n) {
			return cycle
		}
	}
	return nil
}

// closeCycle cuts the DFS stack at the first occurrence of start and
// appends start again to close the loop.
func closeCycle(stack []string, start string) []string {
	for i, id := range stack {
		if id == start {
			out := make([]string, 0, len(stack)-i+1)
			out = append(out, stack[i:]...)
			return append(out, start)
		}
	}
	return nil
}
