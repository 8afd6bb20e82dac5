package git

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// stdin is swapped in tests
var stdin io.Reader = os.Stdin

// getUnifiedPatches reads a unified diff from path ("-" for stdin). Patch paths are
// resolved against the opened repository, or the working tree enclosing the cwd.
func (s *Service) getUnifiedPatches(path string) ([]*Patch, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading diff: %w", err)
	}

	root := s.root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		if root, err = s.WorkTreeRoot(cwd); err != nil {
			return nil, err
		}
	}

	return ParseUnifiedDiff(root, data)
}

// ParseUnifiedDiff converts a multi-file unified diff to patches rooted at root
func ParseUnifiedDiff(root string, data []byte) ([]*Patch, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*Patch{}, nil
	}

	fileDiffs, err := diff.ParseMultiFileDiff(data)
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	patches := make([]*Patch, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		oldPath := stripPrefix(fd.OrigName)
		newPath := stripPrefix(fd.NewName)

		var changeType ChangeType
		switch {
		case oldPath == "" && newPath != "":
			changeType = ChangeTypeAdded
		case newPath == "":
			changeType = ChangeTypeDeleted
		case oldPath != newPath:
			changeType = ChangeTypeRenamed
		default:
			changeType = ChangeTypeModified
		}

		patch := NewPatch(root, newPath, oldPath, changeType)
		for _, hunk := range fd.Hunks {
			addHunkLines(patch, int(hunk.NewStartLine), hunk.Body)
		}
		patches = append(patches, patch)
	}

	return patches, nil
}

// addHunkLines walks a hunk body and records its '+' lines
func addHunkLines(patch *Patch, newStart int, body []byte) {
	newLine := newStart
	for _, line := range splitLines(string(body)) {
		switch {
		case strings.HasPrefix(line, "+"):
			patch.AddLine(newLine, line[1:])
			newLine++
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, `\`):
		default:
			// Context line; some tools drop the leading space on blank lines
			newLine++
		}
	}
}

// stripPrefix removes the a/ or b/ prefix git puts on diff paths
func stripPrefix(name string) string {
	if name == "" || name == devNull {
		return ""
	}
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}
