// Package lint runs cpplint over the files touched by a change set and keeps only the
// complaints that land on added lines
package lint

// Level represents the severity of a review message
type Level string

const (
	// LevelInfo is reserved for reporters
	LevelInfo Level = "info"
	// LevelWarning is the default severity of a cpplint complaint
	LevelWarning Level = "warning"
	// LevelError marks a complaint the severity heuristic considers serious
	LevelError Level = "error"
)

// RunnerName tags messages produced by this package
const RunnerName = "cpplint"

// Patch is one changed file within a reviewed change set
type Patch interface {
	// FullPath is the absolute path of the new file; it is what the linter is given
	FullPath() string
	// NewPath is the repository-relative path of the new file
	NewPath() string
	// OldPath is the repository-relative path before the change, empty for added files
	OldPath() string
	// Additions is the number of added lines
	Additions() int
	// AddedLines returns the added lines in new-file order
	AddedLines() []AddedLine
}

// AddedLine is one inserted line within a Patch
type AddedLine interface {
	// NewLineNo is the 1-based line number in the new file
	NewLineNo() int
	// Content is the text of the line without the leading '+'
	Content() string
	// Patch returns the owning patch
	Patch() Patch
}

// Diagnostic is one complaint parsed from the linter output
type Diagnostic struct {
	Path    string `json:"file_path"`
	Line    int    `json:"line_number"`
	Column  int    `json:"column_number"`
	Message string `json:"message"`
	Level   Level  `json:"level"`
}

// ReviewMessage is a diagnostic anchored to an added line of the diff
type ReviewMessage struct {
	Path    string
	Line    AddedLine
	Level   Level
	Message string
	Runner  string
}

// LineNo returns the new-file line number the message is anchored to
func (m ReviewMessage) LineNo() int {
	if m.Line == nil {
		return 0
	}
	return m.Line.NewLineNo()
}
