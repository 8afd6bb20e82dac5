package report

import (
	"context"
	"encoding/json"
	"io"
)

// jsonMessage is the serialized form of a review message
type jsonMessage struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Runner  string `json:"runner"`
}

type jsonResult struct {
	RunID    string        `json:"run_id"`
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Messages []jsonMessage `json:"messages"`
}

// JSONReporter writes the result as a single JSON document
type JSONReporter struct {
	w io.Writer
}

// NewJSONReporter creates a JSONReporter writing to w
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

// Report implements Reporter
func (r *JSONReporter) Report(_ context.Context, result Result) error {
	errors, warnings := result.Counts()
	out := jsonResult{
		RunID:    result.RunID,
		Errors:   errors,
		Warnings: warnings,
		Messages: make([]jsonMessage, 0, len(result.Messages)),
	}
	for _, msg := range result.Messages {
		out.Messages = append(out.Messages, jsonMessage{
			Path:    msg.Path,
			Line:    msg.LineNo(),
			Level:   string(msg.Level),
			Message: msg.Message,
			Runner:  msg.Runner,
		})
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
