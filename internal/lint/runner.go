package lint

import (
	"context"
	"fmt"
	"os"

	"github.com/tildaslashalef/nestlint/internal/loggy"
)

// WorkTreeLocator finds the root of the working tree enclosing a directory
type WorkTreeLocator interface {
	WorkTreeRoot(dir string) (string, error)
}

// Linter is the process side of a run
type Linter interface {
	Run(ctx context.Context, workDir string, files []string) (string, error)
}

// Runner lints the files of a change set and returns messages for added lines only
type Runner struct {
	linter  Linter
	locator WorkTreeLocator
	filter  Filter
	dir     string
	logger  *loggy.Logger
}

// RunnerOption customizes a Runner
type RunnerOption func(*Runner)

// WithFilter replaces the default file filter
func WithFilter(f Filter) RunnerOption {
	return func(r *Runner) {
		r.filter = f
	}
}

// WithDir sets the directory the working tree is discovered from; defaults to the process cwd
func WithDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.dir = dir
	}
}

// NewRunner creates a new Runner
func NewRunner(linter Linter, locator WorkTreeLocator, logger *loggy.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		linter:  linter,
		locator: locator,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Files returns the full paths of patches that add at least one line
func Files(patches []Patch) []string {
	files := make([]string, 0, len(patches))
	for _, patch := range patches {
		if patch == nil || patch.Additions() <= 0 {
			continue
		}
		if path := patch.FullPath(); path != "" {
			files = append(files, path)
		}
	}
	return files
}

// Run lints the patches and correlates the findings with their added lines
func (r *Runner) Run(ctx context.Context, patches []Patch) ([]ReviewMessage, error) {
	logger := r.logger
	if runID := loggy.GetRequestID(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}

	if len(patches) == 0 {
		logger.Debug("No patches to lint")
		return []ReviewMessage{}, nil
	}

	files := r.filter.Apply(Files(patches))
	if len(files) == 0 {
		logger.Debug("No C/C++ files in change set", "patches", len(patches))
		return []ReviewMessage{}, nil
	}

	workDir, err := r.workTreeRoot()
	if err != nil {
		return nil, err
	}

	output, err := r.linter.Run(ctx, workDir, files)
	if err != nil {
		return nil, fmt.Errorf("linting files: %w", err)
	}

	diags := ParseOutput(output)
	messages := Correlate(diags, patches)

	logger.Info("Lint run completed",
		"files", len(files),
		"diagnostics", len(diags),
		"messages", len(messages))

	return messages, nil
}

func (r *Runner) workTreeRoot() (string, error) {
	dir := r.dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = cwd
	}

	root, err := r.locator.WorkTreeRoot(dir)
	if err != nil {
		return "", fmt.Errorf("locating working tree: %w", err)
	}
	return root, nil
}
