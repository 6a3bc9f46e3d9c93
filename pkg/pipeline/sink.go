package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/jscadpack/pkg/deps/javascript"
)

// Sink receives library files in dependency order.
type Sink interface {
	Emit(f javascript.File) error
}

// WriterSink concatenates files into one stream. Each file ends with a
// newline; with header set, a "// <package>/<file>" comment precedes it.
type WriterSink struct {
	w      io.Writer
	header bool
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer, header bool) *WriterSink {
	return &WriterSink{w: w, header: header}
}

// Emit writes f to the stream.
func (s *WriterSink) Emit(f javascript.File) error {
	if s.header {
		if _, err := fmt.Fprintf(s.w, "// %s/%s\n", f.Package, f.Name); err != nil {
			return err
		}
	}
	if _, err := s.w.Write(f.Contents); err != nil {
		return err
	}
	if len(f.Contents) > 0 && !bytes.HasSuffix(f.Contents, []byte("\n")) {
		_, err := io.WriteString(s.w, "\n")
		return err
	}
	return nil
}

// DirSink writes every file to <dir>/<package>/<file>, keeping the
// package's declared layout.
type DirSink struct {
	dir     string
	Written []string // Paths written, in emit order
}

// NewDirSink returns a sink writing under dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

// Emit writes f below the sink directory.
func (s *DirSink) Emit(f javascript.File) error {
	p := filepath.Join(s.dir, filepath.FromSlash(f.Package), filepath.FromSlash(f.Name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(p, f.Contents, 0o644); err != nil {
		return err
	}
	s.Written = append(s.Written, p)
	return nil
}
