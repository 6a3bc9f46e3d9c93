package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/jscadpack/pkg/deps"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// project creates a project directory with an installed node_modules tree.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"package.json": `{"name": "app", "dependencies": {"dep-on-jscad-utils": "*"}}`,

		"node_modules/jscad-utils/package.json":     `{"dependencies": {}}`,
		"node_modules/jscad-utils/jscad.json":       `{"files": ["dist/utils.jscad"]}`,
		"node_modules/jscad-utils/dist/utils.jscad": "// utils\n",

		"node_modules/dep-on-jscad-utils/package.json":    `{"dependencies": {"jscad-utils": "*"}}`,
		"node_modules/dep-on-jscad-utils/jscad.json":      `{"files": "dist/test.jscad"}`,
		"node_modules/dep-on-jscad-utils/dist/test.jscad": "// test\n",

		"node_modules/circular1/package.json": `{"dependencies": {"circular2": "*"}}`,
		"node_modules/circular2/package.json": `{"dependencies": {"circular1": "*"}}`,
	})
	return dir
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	old := uiOut
	uiOut = io.Discard
	t.Cleanup(func() { uiOut = old })

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.Out = &out

	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBundleCommand(t *testing.T) {
	dir := project(t)

	out, err := execute(t, "bundle", "--dir", dir, "--header")
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	want := "// jscad-utils/dist/utils.jscad\n// utils\n// dep-on-jscad-utils/dist/test.jscad\n// test\n"
	if out != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}
}

func TestBundleCommandOutputFile(t *testing.T) {
	dir := project(t)
	target := filepath.Join(t.TempDir(), "out", "bundle.jscad")

	out, err := execute(t, "bundle", filepath.Join(dir, "package.json"), "--dir", dir, "-o", target)
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty with -o, got %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "// utils\n// test\n" {
		t.Errorf("bundle file = %q", data)
	}
}

func TestBundleCommandOutDir(t *testing.T) {
	dir := project(t)
	outDir := t.TempDir()

	if _, err := execute(t, "bundle", "--dir", dir, "--out-dir", outDir); err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "jscad-utils", "dist", "utils.jscad")); err != nil {
		t.Errorf("missing library file: %v", err)
	}
}

func TestBundleCommandConflictingOutputs(t *testing.T) {
	dir := project(t)
	if _, err := execute(t, "bundle", "--dir", dir, "-o", "a", "--out-dir", "b"); err == nil {
		t.Error("expected error for -o with --out-dir")
	}
}

func TestOrderCommand(t *testing.T) {
	dir := project(t)

	out, err := execute(t, "order", "--dir", dir)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if out != "jscad-utils\ndep-on-jscad-utils\n" {
		t.Errorf("output = %q", out)
	}
}

func TestOrderCommandTable(t *testing.T) {
	dir := project(t)

	out, err := execute(t, "order", "--dir", dir, "--table", "--no-cache")
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	for _, want := range []string{"PACKAGE", "JSCAD", "jscad-utils", "dep-on-jscad-utils", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestOrderCommandCircular(t *testing.T) {
	dir := project(t)
	manifest := filepath.Join(t.TempDir(), "package.json")
	writeTree(t, filepath.Dir(manifest), map[string]string{"package.json": `{"dependencies": {"circular1": "*"}}`})

	_, err := execute(t, "order", manifest, "--dir", dir)
	var ce *deps.CircularDependencyError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want CircularDependencyError", err)
	}
}

func TestOrderCommandMaxPasses(t *testing.T) {
	dir := project(t)

	_, err := execute(t, "order", "--dir", dir, "--max-passes", "1")
	var ce *deps.CircularDependencyError
	if !errors.As(err, &ce) || !ce.Exhausted {
		t.Fatalf("error = %v, want exhausted pass limit", err)
	}
}

func TestOrderCommandConfig(t *testing.T) {
	dir := project(t)
	cfg := filepath.Join(t.TempDir(), "config.toml")
	writeTree(t, filepath.Dir(cfg), map[string]string{
		"config.toml": "dir = " + strconv.Quote(dir) + "\n[cache]\nbackend = \"none\"\n",
	})

	out, err := execute(t, "order", "--config", cfg)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if !strings.HasPrefix(out, "jscad-utils\n") {
		t.Errorf("output = %q", out)
	}
}

func TestGraphCommand(t *testing.T) {
	dir := project(t)

	out, err := execute(t, "graph", "--dir", dir)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.HasPrefix(out, "digraph G {") || !strings.Contains(out, `"dep-on-jscad-utils" -> "jscad-utils";`) {
		t.Errorf("output =\n%s", out)
	}

	if _, err := execute(t, "graph", "--dir", dir, "--format", "png"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestCachePathCommand(t *testing.T) {
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q", out)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := project(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cacheHome := t.TempDir()

	// Populate the cache, then clear it, sharing one XDG_CACHE_HOME.
	run := func(args ...string) {
		t.Helper()
		old := uiOut
		uiOut = io.Discard
		defer func() { uiOut = old }()
		t.Setenv("XDG_CACHE_HOME", cacheHome)
		c := New(io.Discard, LogInfo)
		c.Out = io.Discard
		root := c.RootCommand()
		root.SetArgs(args)
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	run("order", "--dir", dir)
	entries, _ := filepath.Glob(filepath.Join(cacheHome, appName, "*", "*.json"))
	if len(entries) == 0 {
		t.Fatal("order should populate the file cache")
	}

	run("cache", "clear")
	entries, _ = filepath.Glob(filepath.Join(cacheHome, appName, "*", "*.json"))
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the command name")
	}
}

func TestGraphJSONRoundTrip(t *testing.T) {
	dir := project(t)
	saved := filepath.Join(t.TempDir(), "graph.json")

	if _, err := execute(t, "graph", "--dir", dir, "--format", "json", "-o", saved); err != nil {
		t.Fatalf("graph: %v", err)
	}
	out, err := execute(t, "order", "--graph", saved)
	if err != nil {
		t.Fatalf("order --graph: %v", err)
	}
	if out != "jscad-utils\ndep-on-jscad-utils\n" {
		t.Errorf("output = %q", out)
	}
}
