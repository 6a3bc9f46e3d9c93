package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/jscadpack/pkg/deps"
)

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID       string `json:"id"`
	Library  bool   `json:"library,omitempty"`
	Position int    `json:"position,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Document is a decoded graph file.
type Document struct {
	Graph     *deps.Graph
	Order     deps.Ordering // Nodes with a position, by position; empty if none
	Libraries []string      // Nodes flagged as libraries, in node order
}

// WriteJSON encodes g as JSON and writes it to w. Order and libraries are
// optional and recorded as node positions and library flags.
// This format can be re-imported with [ReadJSON].
func WriteJSON(w io.Writer, g *deps.Graph, order deps.Ordering, libraries []string) error {
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i + 1
	}
	libs := make(map[string]bool, len(libraries))
	for _, l := range libraries {
		libs[l] = true
	}

	out := graph{Nodes: []node{}, Edges: []edge{}}
	if g != nil {
		for _, n := range g.Nodes {
			out.Nodes = append(out.Nodes, node{ID: n, Library: libs[n], Position: pos[n]})
			for _, d := range g.DependenciesOf(n) {
				out.Edges = append(out.Edges, edge{From: n, To: d})
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(path string, g *deps.Graph, order deps.Ordering, libraries []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, g, order, libraries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
