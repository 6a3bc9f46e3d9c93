// Package nodelink renders resolved dependency graphs as node-link diagrams.
//
// # Overview
//
// Each package is a box and each dependency an arrow from the dependent to
// the package it needs. Packages that ship a jscad.json are filled so the
// libraries that end up in a bundle stand out.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(res.Graph, nodelink.Options{Order: res.Order})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Order: when set, nodes are emitted in this order and labelled with
//     their bundle position
//   - Libraries: packages drawn as JSCAD libraries
//   - Detailed: adds the direct dependency count to each label
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be rendered
// with [RenderSVG] or saved and processed with external Graphviz tools.
// The layout runs bottom-to-top (rankdir=BT) so dependencies sit below the
// packages that use them.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
