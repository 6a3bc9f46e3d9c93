package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/jscadpack/pkg/deps"
	errs "github.com/matzehuels/jscadpack/pkg/errors"
)

// ReadJSON decodes a JSON graph from r.
//
// ReadJSON returns an INVALID_FORMAT error if:
//   - The JSON is malformed
//   - A node has an empty or duplicate id
//   - An edge references an unknown node id
//   - Positions are not a permutation of 1..n over the positioned nodes
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode graph")
	}

	g := deps.NewGraph()
	doc := &Document{Graph: g}
	type positioned struct {
		id  string
		pos int
	}
	var placed []positioned

	for _, n := range data.Nodes {
		if n.ID == "" {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "node without id")
		}
		if g.Has(n.ID) {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "duplicate node %s", n.ID)
		}
		g.Nodes = append(g.Nodes, n.ID)
		g.Deps[n.ID] = []string{}
		if n.Library {
			doc.Libraries = append(doc.Libraries, n.ID)
		}
		if n.Position > 0 {
			placed = append(placed, positioned{n.ID, n.Position})
		}
	}
	for _, e := range data.Edges {
		if !g.Has(e.From) || !g.Has(e.To) {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "edge %s->%s: unknown node", e.From, e.To)
		}
		g.Deps[e.From] = append(g.Deps[e.From], e.To)
	}

	slices.SortFunc(placed, func(a, b positioned) int { return a.pos - b.pos })
	for i, p := range placed {
		if p.pos != i+1 {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "node %s: position %d out of sequence", p.id, p.pos)
		}
		doc.Order = append(doc.Order, p.id)
	}

	return doc, nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
// It returns the same validation errors as [ReadJSON].
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
