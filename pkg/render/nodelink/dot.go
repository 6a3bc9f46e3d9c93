package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/jscadpack/pkg/deps"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Order, when non-empty, fixes node order and adds "#n" positions to
	// labels. Packages missing from Order follow in graph order.
	Order deps.Ordering
	// Libraries lists packages to draw as JSCAD libraries.
	Libraries []string
	// Detailed includes the number of direct dependencies in node labels.
	Detailed bool
}

// ToDOT converts a dependency graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(g *deps.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if g == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	libs := make(map[string]bool, len(opts.Libraries))
	for _, l := range opts.Libraries {
		libs[l] = true
	}
	pos := make(map[string]int, len(opts.Order))
	for i, n := range opts.Order {
		pos[n] = i + 1
	}

	nodes := nodeOrder(g, opts.Order)
	for _, n := range nodes {
		label := fmtLabel(g, n, pos[n], opts.Detailed)
		attrs := fmtAttrs(label, libs[n])
		fmt.Fprintf(&buf, "  %q [%s];\n", n, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, d := range g.DependenciesOf(n) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n, d)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeOrder(g *deps.Graph, order deps.Ordering) []string {
	if len(order) == 0 {
		return g.Nodes
	}
	nodes := make([]string, 0, g.Len())
	seen := make(map[string]bool, g.Len())
	for _, n := range order {
		if g.Has(n) && !seen[n] {
			seen[n] = true
			nodes = append(nodes, n)
		}
	}
	for _, n := range g.Nodes {
		if !seen[n] {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func fmtLabel(g *deps.Graph, name string, pos int, detailed bool) string {
	label := name
	if pos > 0 {
		label = fmt.Sprintf("#%d %s", pos, name)
	}
	if detailed {
		label += fmt.Sprintf("\ndeps: %d", len(g.DependenciesOf(name)))
	}
	return label
}

func fmtAttrs(label string, library bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if library {
		attrs = append(attrs, "fillcolor=\"#d7ecff\"", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from a zero
// origin at its natural size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}
