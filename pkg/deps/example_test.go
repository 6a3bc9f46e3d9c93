package deps_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/jscadpack/pkg/deps"
)

// lookupFrom serves dependency lists from a map.
func lookupFrom(pkgs map[string][]string) deps.LookupFunc {
	return func(_ context.Context, name string) ([]string, error) {
		d, ok := pkgs[name]
		if !ok {
			return nil, &deps.NotFoundError{Name: name}
		}
		return d, nil
	}
}

func ExampleResolve() {
	// app → lib → utils, and app → utils directly
	lookup := lookupFrom(map[string][]string{
		"app":   {"lib", "utils"},
		"lib":   {"utils"},
		"utils": {},
	})

	res, _ := deps.Resolve(context.Background(), []string{"app"}, lookup, deps.Options{})
	fmt.Println("Order:", res.Order)
	fmt.Println("Passes:", res.Passes)
	// Output:
	// Order: [utils lib app]
	// Passes: 3
}

func ExampleCollect() {
	lookup := lookupFrom(map[string][]string{
		"app":   {"lib", "utils"},
		"lib":   {"utils"},
		"utils": {},
	})

	g, _ := deps.Collect(context.Background(), "app", lookup)
	fmt.Println("Nodes:", g.Nodes)
	fmt.Println("Edges:", g.EdgeCount())
	// Output:
	// Nodes: [app lib utils]
	// Edges: 3
}

func ExampleSort_circular() {
	g := &deps.Graph{
		Nodes: []string{"a", "b"},
		Deps:  map[string][]string{"a": {"b"}, "b": {"a"}},
	}

	_, err := deps.Sort(g, deps.Options{})
	fmt.Println(err)
	fmt.Println("Circular:", deps.IsCircular(err))
	// Output:
	// possible circular dependencies: a, b (cycle: a -> b -> a)
	// Circular: true
}

func ExampleMerge() {
	first := &deps.Graph{
		Nodes: []string{"app", "utils"},
		Deps:  map[string][]string{"app": {"utils"}, "utils": {}},
	}
	second := &deps.Graph{
		Nodes: []string{"cli", "utils"},
		Deps:  map[string][]string{"cli": {"utils"}, "utils": {}},
	}

	merged := deps.Merge(first, second)
	fmt.Println("Nodes:", merged.Nodes)
	// Output:
	// Nodes: [app utils cli]
}
