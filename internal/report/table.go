package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/tildaslashalef/nestlint/internal/utils"
)

// TableReporter renders messages as a go-pretty table
type TableReporter struct {
	w       io.Writer
	colored bool
}

// NewTableReporter creates a TableReporter writing to w
func NewTableReporter(w io.Writer, colored bool) *TableReporter {
	return &TableReporter{w: w, colored: colored}
}

// Report implements Reporter
func (r *TableReporter) Report(_ context.Context, result Result) error {
	utils.SetColorEnabled(r.colored)

	if len(result.Messages) == 0 {
		utils.PrintSuccess(r.w, "No cpplint messages on added lines")
		return nil
	}

	rows := make([][]string, 0, len(result.Messages))
	for _, msg := range result.Messages {
		rows = append(rows, []string{
			msg.Path,
			strconv.Itoa(msg.LineNo()),
			string(msg.Level),
			msg.Message,
		})
	}

	errors, warnings := result.Counts()
	utils.PrintTable(r.w, []string{"File", "Line", "Level", "Message"}, rows, utils.TableOptions{
		Title: fmt.Sprintf("cpplint: %s, %s", plural(errors, "error"), plural(warnings, "warning")),
		Style: utils.DefaultTableOptions().Style,
	})
	return nil
}
