package javascript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/jscadpack/pkg/errors"
)

// ManifestFile is the npm package manifest name.
const ManifestFile = "package.json"

// Manifest is the part of a package.json the resolver cares about.
type Manifest struct {
	Name         string
	Version      string
	Dependencies []string // Keys of "dependencies", in document order
}

type packageFile struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Dependencies json.RawMessage `json:"dependencies"`
}

// ParseManifest reads a package.json document. A document without a
// "dependencies" object yields a manifest with no dependencies.
func ParseManifest(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseManifest(data)
}

// ReadManifest reads and parses the package.json at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := parseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func parseManifest(data []byte) (*Manifest, error) {
	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "invalid package.json")
	}
	names, err := objectKeys(pkg.Dependencies)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "invalid dependencies")
	}
	return &Manifest{Name: pkg.Name, Version: pkg.Version, Dependencies: names}, nil
}

// objectKeys returns the keys of a JSON object in document order. A
// repeated key keeps its first position. Null, absent or an empty array
// yields an empty list.
func objectKeys(raw json.RawMessage) ([]string, error) {
	keys := []string{}
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return keys, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); ok && d == '[' && !dec.More() {
		return keys, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected an object, got %v", tok)
	}

	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}
