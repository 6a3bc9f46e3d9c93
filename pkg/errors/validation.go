package errors

import (
	"path"
	"strings"
	"unicode"
)

const (
	maxPackageNameLength = 256
	maxPathLength        = 500
)

// ValidatePackageName checks that name maps onto a directory under
// node_modules: either a bare name or @scope/name. Path separators outside
// the scope form, "." and ".." segments, backslashes and control characters
// are rejected.
//
// npm naming rules such as lowercase are not enforced.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}
	if len(name) > maxPackageNameLength {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageNameLength)
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return New(ErrCodeInvalidPackage, "package name contains control characters")
	}
	if strings.Contains(name, `\`) {
		return New(ErrCodeInvalidPackage, "package name contains a backslash: %q", name)
	}

	segments := strings.Split(name, "/")
	switch {
	case len(segments) == 1:
	case len(segments) == 2 && len(segments[0]) > 1 && segments[0][0] == '@':
	default:
		return New(ErrCodeInvalidPackage, "package name %q is neither name nor @scope/name", name)
	}
	for _, s := range segments {
		if s == "" || s == "." || s == ".." {
			return New(ErrCodeInvalidPackage, "package name %q has an invalid segment %q", name, s)
		}
	}
	return nil
}

// ValidatePath checks an entry of a jscad.json "files" list. Entries are
// slash-separated paths relative to the package directory and may not
// leave it.
func ValidatePath(p string) error {
	if p == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(p) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	if strings.ContainsFunc(p, unicode.IsControl) {
		return New(ErrCodeInvalidPath, "path contains control characters")
	}
	if strings.Contains(p, `\`) {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes: %q", p)
	}
	if path.IsAbs(p) {
		return New(ErrCodeInvalidPath, "path must be relative: %q", p)
	}
	for _, s := range strings.Split(p, "/") {
		if s == ".." {
			return New(ErrCodeInvalidPath, "path leaves the package directory: %q", p)
		}
	}
	return nil
}
