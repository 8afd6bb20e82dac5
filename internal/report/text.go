package report

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/tildaslashalef/nestlint/internal/lint"
)

// TextReporter prints one line per message followed by a summary
type TextReporter struct {
	w       io.Writer
	path    *color.Color
	errorC  *color.Color
	warning *color.Color
	info    *color.Color
	summary *color.Color
}

// NewTextReporter creates a TextReporter writing to w
func NewTextReporter(w io.Writer, colored bool) *TextReporter {
	r := &TextReporter{
		w:       w,
		path:    color.New(color.Bold),
		errorC:  color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow),
		info:    color.New(color.FgBlue),
		summary: color.New(color.FgCyan),
	}

	for _, c := range []*color.Color{r.path, r.errorC, r.warning, r.info, r.summary} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Report implements Reporter
func (r *TextReporter) Report(_ context.Context, result Result) error {
	for _, msg := range result.Messages {
		location := r.path.Sprintf("%s:%d", msg.Path, msg.LineNo())
		if _, err := fmt.Fprintf(r.w, "%s: %s %s\n", location, r.level(msg.Level), msg.Message); err != nil {
			return err
		}
	}

	errors, warnings := result.Counts()
	_, err := fmt.Fprintln(r.w, r.summary.Sprintf("%s (%s, %s)",
		plural(len(result.Messages), "message"),
		plural(errors, "error"),
		plural(warnings, "warning")))
	return err
}

func (r *TextReporter) level(level lint.Level) string {
	switch level {
	case lint.LevelError:
		return r.errorC.Sprint(level)
	case lint.LevelWarning:
		return r.warning.Sprint(level)
	default:
		return r.info.Sprint(level)
	}
}
