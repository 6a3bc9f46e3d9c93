package javascript

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	errs "github.com/matzehuels/jscadpack/pkg/errors"
)

// LibraryFile marks a package as a JSCAD library and lists its files.
const LibraryFile = "jscad.json"

//go:embed jscad.schema.json
var librarySchema []byte

var librarySchemaLoader = gojsonschema.NewBytesLoader(librarySchema)

// File is one source file of a JSCAD library.
type File struct {
	Package  string // Owning package
	Name     string // Path as declared in jscad.json
	Path     string // Path on disk
	Contents []byte
}

// IsLibrary reports whether name ships a jscad.json.
func (m *Modules) IsLibrary(name string) (bool, error) {
	dir, err := m.PackageDir(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(filepath.Join(dir, LibraryFile))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// LibraryFiles reads name's jscad.json and returns its files with their
// contents, in declared order.
func (m *Modules) LibraryFiles(name string) ([]File, error) {
	dir, err := m.PackageDir(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, LibraryFile))
	if err != nil {
		return nil, err
	}
	paths, err := ParseLibrary(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidLibrary, err, "%s/%s", name, LibraryFile)
	}

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		full := filepath.Join(dir, filepath.FromSlash(p))
		contents, err := os.ReadFile(full)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "%s: missing library file %s", name, p)
		}
		if err != nil {
			return nil, err
		}
		files = append(files, File{Package: name, Name: p, Path: full, Contents: contents})
	}
	return files, nil
}

// ParseLibrary validates a jscad.json document and returns its file list.
// A single "files" string is treated as a one-element list. Every path must
// stay inside the package directory.
func ParseLibrary(data []byte) ([]string, error) {
	res, err := gojsonschema.Validate(librarySchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, err
	}
	if !res.Valid() {
		var msgs []string
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, errors.New("schema validation failed: " + strings.Join(msgs, "; "))
	}

	var doc struct {
		Files json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var paths []string
	var single string
	if err := json.Unmarshal(doc.Files, &single); err == nil {
		paths = []string{single}
	} else if err := json.Unmarshal(doc.Files, &paths); err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := errs.ValidatePath(p); err != nil {
			return nil, err
		}
	}
	return paths, nil
}
