// Package javascript reads npm package metadata from a local node_modules
// tree and locates the JSCAD library files of installed packages.
//
// # Manifests
//
// [ParseManifest] reads a package.json and returns the names of its
// "dependencies" in document order. Version ranges are ignored, as are
// devDependencies and peerDependencies.
//
// # Lookups
//
// [Modules] resolves a package name to node_modules/<name>/package.json.
// Its [Modules.Dependencies] method has the shape of [deps.LookupFunc]:
//
//	m := javascript.NewModules(".", nil)
//	res, err := deps.Resolve(ctx, manifest.Dependencies, m.Dependencies, deps.Options{})
//
// A package without a package.json yields a [*deps.NotFoundError].
//
// # JSCAD libraries
//
// A package is a JSCAD library when it ships a jscad.json next to its
// package.json. The "files" entry is a path or a list of paths relative to
// the package directory; [Modules.LibraryFiles] returns them with their
// contents in declared order.
//
// [deps.LookupFunc]: github.com/matzehuels/jscadpack/pkg/deps.LookupFunc
// [*deps.NotFoundError]: github.com/matzehuels/jscadpack/pkg/deps.NotFoundError
package javascript
