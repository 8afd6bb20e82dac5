// Package report renders review messages for people and for machines
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/tildaslashalef/nestlint/internal/config"
	"github.com/tildaslashalef/nestlint/internal/lint"
)

// Result is the outcome of one lint run
type Result struct {
	RunID    string
	Messages []lint.ReviewMessage
}

// Counts returns the number of error-level and warning-level messages
func (r Result) Counts() (errors, warnings int) {
	for _, msg := range r.Messages {
		switch msg.Level {
		case lint.LevelError:
			errors++
		case lint.LevelWarning:
			warnings++
		}
	}
	return errors, warnings
}

// HasErrors reports whether any message has error severity
func (r Result) HasErrors() bool {
	errors, _ := r.Counts()
	return errors > 0
}

// Reporter publishes a Result
type Reporter interface {
	Report(ctx context.Context, result Result) error
}

// Commenter posts review messages to a code review host
type Commenter interface {
	CommentMessages(ctx context.Context, messages []lint.ReviewMessage) (int, error)
}

// Options configures New
type Options struct {
	Format    string
	Color     bool
	Writer    io.Writer
	Commenter Commenter
}

// New returns the reporter for opts.Format
func New(opts Options) (Reporter, error) {
	switch opts.Format {
	case config.FormatText, "":
		return NewTextReporter(opts.Writer, opts.Color), nil
	case config.FormatTable:
		return NewTableReporter(opts.Writer, opts.Color), nil
	case config.FormatJSON:
		return NewJSONReporter(opts.Writer), nil
	case config.FormatGitHub:
		if opts.Commenter == nil {
			return nil, fmt.Errorf("github output requires a commenter")
		}
		return NewGitHubReporter(opts.Commenter, NewTextReporter(opts.Writer, opts.Color)), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
