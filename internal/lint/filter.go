package lint

import (
	"strings"

	"github.com/alessio/shellescape"
	"github.com/go-enry/go-enry/v2"
)

// SourceExtensions lists the extensions cpplint accepts, without the leading dot
var SourceExtensions = []string{"c", "c++", "cc", "cu", "cuh", "icc", "h++", "hpp", "hxx", "hh", "cxx", "cpp"}

// IsSourceFile reports whether path ends with "." followed by one of SourceExtensions.
// Matching is case-sensitive.
func IsSourceFile(path string) bool {
	for _, ext := range SourceExtensions {
		if strings.HasSuffix(path, "."+ext) {
			return true
		}
	}
	return false
}

// FilterSourceFiles keeps the source files in paths, in order, and shell-escapes each one
func FilterSourceFiles(paths []string) []string {
	return Filter{}.Apply(paths)
}

// Filter selects the files handed to the linter
type Filter struct {
	// SkipVendored drops paths that look like vendored third-party code
	SkipVendored bool
}

// Apply returns the shell-escaped source files in paths, preserving order and duplicates
func (f Filter) Apply(paths []string) []string {
	files := make([]string, 0, len(paths))
	for _, path := range paths {
		if !IsSourceFile(path) {
			continue
		}
		if f.SkipVendored && enry.IsVendor(path) {
			continue
		}
		files = append(files, shellescape.Quote(path))
	}
	return files
}
