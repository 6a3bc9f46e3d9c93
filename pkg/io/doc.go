// Package io provides JSON import and export for resolved dependency graphs.
//
// # Overview
//
// A saved graph can be re-sorted without a node_modules tree, shared with
// other tools, or inspected by hand. The format is designed for:
//
//   - Reproducing an ordering problem outside the project that produced it
//   - Integration with external tools that produce or consume graph data
//   - Round-trip preservation: export and re-import give the same graph
//
// # JSON Format
//
// The format has two required top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "app"},
//	    {"id": "lib-a", "library": true},
//	    {"id": "lib-b", "position": 1}
//	  ],
//	  "edges": [
//	    {"from": "app", "to": "lib-a"},
//	    {"from": "lib-a", "to": "lib-b"}
//	  ]
//	}
//
// Node order is the graph's discovery order. Edge order matters: the edges
// leaving a node, in file order, are that node's dependencies in declared
// order.
//
// # Node Fields
//
// Required:
//   - id: Package name
//
// Optional:
//   - library: The package ships a jscad.json
//   - position: 1-based place in a resolved ordering
//
// # Import
//
// Use [ImportJSON] to read a graph from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	doc, err := io.ImportJSON("deps.json")
//	order, err := deps.Sort(doc.Graph, deps.Options{})
//
// Import checks that node ids are unique and that every edge refers to a
// known node. Cycles are accepted; sorting reports them.
//
// # Export
//
// Use [ExportJSON] to write a graph to a file, or [WriteJSON] to write to any
// io.Writer. Passing an ordering and library list records positions and
// library flags.
package io
