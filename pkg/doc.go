// Package pkg provides the libraries behind jscadpack, a bundler for JSCAD
// libraries distributed as npm packages.
//
// # Overview
//
// A JSCAD project lists its dependencies in package.json. Some of those
// packages (and their own dependencies) are JSCAD libraries: they ship a
// jscad.json naming the .jscad files that make up the library. jscadpack
// orders every installed package so that each one follows its
// dependencies, and concatenates the files of the libraries in that order.
//
// # Architecture
//
// The data flow through jscadpack:
//
//	package.json
//	     ↓
//	[deps/javascript] read manifests from node_modules
//	     ↓
//	[deps] collect the dependency graph and sort it
//	     ↓
//	[pipeline] filter libraries, read their files
//	     ↓
//	Sink (stdout, file or directory)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/jscadpack/pkg/pipeline"
//	)
//
//	manifest, _ := os.ReadFile("package.json")
//	r := pipeline.NewRunner(nil, nil, nil)
//	res, _ := r.Bundle(context.Background(), manifest,
//	    pipeline.NewWriterSink(os.Stdout, true), pipeline.Options{Dir: "."})
//
// # Main Packages
//
// [deps] - Dependency graph, memoized collection and the pass-based sort.
//
// [deps/javascript] - package.json and jscad.json parsing over a local
// node_modules tree.
//
// [pipeline] - The Runner that ties resolution, caching and emission together.
// Used by both the CLI and the HTTP server.
//
// [cache] - File, Redis and no-op caches with a shared key scheme.
//
// [config] - TOML configuration with command-line overrides.
//
// [io] - JSON node-link export and import of resolved graphs.
//
// [render/nodelink] - Graphviz DOT and SVG output of resolved graphs.
//
// [observability] - Hooks for resolution, emission and cache events.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// # Testing
//
//	go test ./...
//	go test -run Example ./pkg/deps
//
// [deps]: https://pkg.go.dev/github.com/matzehuels/jscadpack/pkg/deps
// [deps/javascript]: https://pkg.go.dev/github.com/matzehuels/jscadpack/pkg/deps/javascript
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/jscadpack/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/jscadpack/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/jscadpack/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/jscadpack/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/jscadpack/pkg/render/nodelink
// [observability]: https://pkg.go.dev/github.com/matzehuels/jscadpack/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/jscadpack/pkg/errors
package pkg
