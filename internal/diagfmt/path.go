package diagfmt

import (
	"fmt"
	"path/filepath"
	"strings"

	"cscpp/internal/source"
)

// fileFor returns the file a span points into, or nil for unlocated
// diagnostics and spans outside fs.
func fileFor(fs *source.FileSet, sp source.Span) *source.File {
	if fs == nil || sp == (source.Span{}) || int(sp.File) >= fs.Len() {
		return nil
	}
	return fs.Get(sp.File)
}

func displayPath(f *source.File, mode PathMode, base string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(filepath.FromSlash(f.Path)); err == nil && f.Flags&source.FileVirtual == 0 {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeBasename:
		return filepath.Base(filepath.FromSlash(f.Path))
	case PathModeRelative, PathModeAuto:
		if base == "" {
			return f.Path
		}
		rel, err := source.RelativePath(f.Path, base)
		if err != nil {
			return f.Path
		}
		if mode == PathModeAuto && strings.HasPrefix(rel, "/") {
			return f.Path
		}
		return filepath.ToSlash(rel)
	}
	return f.Path
}

// location renders "path:line:col", or "" when sp has no file.
func location(fs *source.FileSet, sp source.Span, mode PathMode, base string) string {
	f := fileFor(fs, sp)
	if f == nil {
		return ""
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", displayPath(f, mode, base), start.Line, start.Col)
}
