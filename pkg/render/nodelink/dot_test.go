package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/jscadpack/pkg/deps"
)

func sampleGraph() *deps.Graph {
	g := deps.NewGraph()
	g.Nodes = []string{"app", "lib", "base"}
	g.Deps["app"] = []string{"lib", "base"}
	g.Deps["lib"] = []string{"base"}
	g.Deps["base"] = []string{}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=BT;",
		`"app" [label="app"];`,
		`"app" -> "lib";`,
		`"app" -> "base";`,
		`"lib" -> "base";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if got := strings.Count(dot, "->"); got != 3 {
		t.Errorf("edge count = %d, want 3", got)
	}
}

func TestToDOTOrderAndLibraries(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{
		Order:     deps.Ordering{"base", "lib", "app"},
		Libraries: []string{"lib"},
		Detailed:  true,
	})

	base := strings.Index(dot, `"base" [`)
	app := strings.Index(dot, `"app" [`)
	if base < 0 || app < 0 || base > app {
		t.Errorf("nodes should follow Order:\n%s", dot)
	}
	if !strings.Contains(dot, `label="#1 base\ndeps: 0"`) {
		t.Errorf("missing positioned label:\n%s", dot)
	}
	if !strings.Contains(dot, `"lib" [label="#2 lib\ndeps: 1", fillcolor="#d7ecff", penwidth=2];`) {
		t.Errorf("library not highlighted:\n%s", dot)
	}
}

func TestToDOTNil(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("ToDOT(nil) = %q", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("SVG without viewBox should be unchanged")
	}
}
