// Package deps resolves package dependency graphs and orders them so that
// every dependency comes before its dependents.
//
// # Overview
//
// Resolution happens in two steps:
//
//  1. [Collect] walks the declared dependencies of a root package depth-first,
//     asking a caller-supplied [LookupFunc] for the direct dependencies of
//     each package exactly once. The result is a [Graph]: the set of reachable
//     packages plus each package's direct dependency list.
//  2. [Sort] linearizes a [Graph] into an [Ordering]. It fails with a
//     [*CircularDependencyError] when the graph has a cycle.
//
// [Resolve] ties both together for several roots: each root is collected,
// the graphs are merged with [Merge], and the merged graph is sorted once.
//
// # Lookups
//
// A [LookupFunc] only knows about direct dependencies and never matches
// versions. When a package cannot be found it must return a
// [*NotFoundError] (or wrap one); the error aborts the whole resolution.
//
//	g, err := deps.Collect(ctx, "my-lib", lookup)
//	order, err := deps.Sort(g, deps.Options{})
//
// # Determinism
//
// [Sort] scans packages in the graph's discovery order, so the same graph
// always produces the same ordering.
package deps
