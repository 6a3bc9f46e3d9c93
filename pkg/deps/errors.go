package deps

import (
	"errors"
	"fmt"
	"strings"

	errs "github.com/matzehuels/jscadpack/pkg/errors"
)

// ErrInconsistentGraph is returned by [Graph.Validate] when the node list
// and the dependency map do not describe the same node set.
var ErrInconsistentGraph error = errs.New(errs.ErrCodeInvalidInput, "graph nodes and dependency map disagree")

// NotFoundError reports a package whose metadata could not be located.
// Lookups return it; [Collect] and [Resolve] pass it through unchanged.
type NotFoundError struct {
	Name  string // Package that could not be resolved
	Cause error  // Underlying error, e.g. a missing file (optional)
}

func (e *NotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("package not found: %s: %v", e.Name, e.Cause)
	}
	return "package not found: " + e.Name
}

func (e *NotFoundError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *NotFoundError) Code() errs.Code { return errs.ErrCodePackageNotFound }

// CircularDependencyError is returned by [Sort] when the graph cannot be
// fully ordered.
type CircularDependencyError struct {
	// Unresolved lists the packages still unplaced when sorting stopped, in
	// graph order. It contains every package on a cycle and every package
	// that depends on one.
	Unresolved []string
	// Cycle is one dependency cycle among the unresolved packages, starting
	// and ending with the same name. Empty when the pass limit ran out and
	// the unresolved packages contain no cycle.
	Cycle []string
	// Passes is the number of passes that ran.
	Passes int
	// Exhausted is set when the pass limit was hit while passes were still
	// making progress.
	Exhausted bool
}

func (e *CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("possible circular dependencies: ")
	b.WriteString(strings.Join(e.Unresolved, ", "))
	if len(e.Cycle) > 0 {
		b.WriteString(" (cycle: ")
		b.WriteString(strings.Join(e.Cycle, " -> "))
		b.WriteString(")")
	}
	if e.Exhausted {
		fmt.Fprintf(&b, " (gave up after %d passes)", e.Passes)
	}
	return b.String()
}

// Code returns the error code for this error type.
func (e *CircularDependencyError) Code() errs.Code { return errs.ErrCodeCircularDependency }

// MissingNodeError is returned by [Graph.Validate] when a dependency list
// names a package that is not a node of the graph.
type MissingNodeError struct {
	From string
	Name string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("%s depends on %s which is not in the graph", e.From, e.Name)
}

// Code returns the error code for this error type.
func (e *MissingNodeError) Code() errs.Code { return errs.ErrCodeInvalidInput }

// IsNotFound reports whether err is or wraps a [*NotFoundError].
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsCircular reports whether err is or wraps a [*CircularDependencyError].
func IsCircular(err error) bool {
	var ce *CircularDependencyError
	return errors.As(err, &ce)
}
