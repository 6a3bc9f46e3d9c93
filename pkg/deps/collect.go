package deps

import "context"

// LookupFunc returns the direct dependency names declared by a package.
// It returns an empty slice for a package without dependencies and a
// [*NotFoundError] when the package has no resolvable metadata.
type LookupFunc func(ctx context.Context, name string) ([]string, error)

// Collect discovers every package reachable from root through declared
// dependencies. Each package is looked up once, depth-first, so diamonds
// and cycles in the raw graph cost one lookup per distinct package. Cycles
// are not an error here; [Sort] rejects them.
//
// Any lookup error aborts the collection and is returned unchanged; no
// partial graph is returned.
func Collect(ctx context.Context, root string, lookup LookupFunc) (*Graph, error) {
	c := &collector{ctx: ctx, lookup: lookup, g: NewGraph()}
	if err := c.visit(root); err != nil {
		return nil, err
	}
	return c.g, nil
}

type collector struct {
	ctx    context.Context
	lookup LookupFunc
	g      *Graph
}

func (c *collector) visit(name string) error {
	if c.g.Has(name) {
		return nil
	}
	if err := c.ctx.Err(); err != nil {
		return err
	}

	// Reserve the node before recursing so a cycle back to it stops here.
	c.g.add(name, nil)

	deps, err := c.lookup(c.ctx, name)
	if err != nil {
		return err
	}
	c.g.Deps[name] = append([]string(nil), deps...)

	for _, d := range deps {
		if err := c.visit(d); err != nil {
			return err
		}
	}
	return nil
}
