// Package git provides Git integration for nestlint: working tree discovery and
// change sets expressed as patches with added lines
package git

import (
	"path/filepath"

	"github.com/tildaslashalef/nestlint/internal/lint"
)

// DiffType represents the source of a diff
type DiffType string

const (
	// DiffTypeStaged represents staged changes in a Git repository
	DiffTypeStaged DiffType = "staged"
	// DiffTypeCommit represents changes in a specific commit
	DiffTypeCommit DiffType = "commit"
	// DiffTypeBranch represents changes between two branches
	DiffTypeBranch DiffType = "branch"
	// DiffTypeUnified represents a unified diff read from a file or stdin
	DiffTypeUnified DiffType = "unified"
)

// ChangeType represents the type of change to a file
type ChangeType string

const (
	// ChangeTypeAdded represents a file that was added
	ChangeTypeAdded ChangeType = "added"
	// ChangeTypeModified represents a file that was modified
	ChangeTypeModified ChangeType = "modified"
	// ChangeTypeDeleted represents a file that was deleted
	ChangeTypeDeleted ChangeType = "deleted"
	// ChangeTypeRenamed represents a file that was renamed
	ChangeTypeRenamed ChangeType = "renamed"
)

// DiffRequest represents a request to get a diff
type DiffRequest struct {
	DiffType  DiffType `json:"diff_type"`
	CommitID  string   `json:"commit_id,omitempty"`
	BranchOne string   `json:"branch_one,omitempty"` // Base branch
	BranchTwo string   `json:"branch_two,omitempty"` // Branch under review
	DiffFile  string   `json:"diff_file,omitempty"`  // Path to a unified diff, "-" for stdin
}

// Patch is one changed file with its added lines
type Patch struct {
	root       string
	newPath    string
	oldPath    string
	changeType ChangeType
	added      []*AddedLine
}

// NewPatch creates a patch rooted at the given working tree. Paths are repository-relative.
func NewPatch(root, newPath, oldPath string, changeType ChangeType) *Patch {
	return &Patch{
		root:       root,
		newPath:    newPath,
		oldPath:    oldPath,
		changeType: changeType,
	}
}

// AddLine records an added line; lines must be added in new-file order
func (p *Patch) AddLine(lineNo int, content string) *AddedLine {
	line := &AddedLine{lineNo: lineNo, content: content, patch: p}
	p.added = append(p.added, line)
	return line
}

// FullPath returns the absolute path of the new file
func (p *Patch) FullPath() string {
	if p.newPath == "" {
		return ""
	}
	return filepath.Join(p.root, filepath.FromSlash(p.newPath))
}

// NewPath returns the repository-relative path of the new file
func (p *Patch) NewPath() string { return p.newPath }

// OldPath returns the repository-relative path before the change
func (p *Patch) OldPath() string { return p.oldPath }

// ChangeType returns how the file changed
func (p *Patch) ChangeType() ChangeType { return p.changeType }

// Additions returns the number of added lines
func (p *Patch) Additions() int { return len(p.added) }

// AddedLines returns the added lines in new-file order
func (p *Patch) AddedLines() []lint.AddedLine {
	lines := make([]lint.AddedLine, len(p.added))
	for i, line := range p.added {
		lines[i] = line
	}
	return lines
}

// AddedLine is one inserted line of a Patch
type AddedLine struct {
	lineNo  int
	content string
	patch   *Patch
}

// NewLineNo returns the 1-based line number in the new file
func (l *AddedLine) NewLineNo() int { return l.lineNo }

// Content returns the text of the line
func (l *AddedLine) Content() string { return l.content }

// Patch returns the owning patch
func (l *AddedLine) Patch() lint.Patch { return l.patch }

// AsLintPatches converts patches for the lint runner
func AsLintPatches(patches []*Patch) []lint.Patch {
	if patches == nil {
		return nil
	}
	out := make([]lint.Patch, len(patches))
	for i, p := range patches {
		out[i] = p
	}
	return out
}
