// Package report renders import errors, results and summaries for the console.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/designcoil/catalog-import/internal/pipeline"
)

// Reporter writes human-readable import output to a sink. Info and error
// lines are colored only when the sink is a terminal.
type Reporter struct {
	out       io.Writer
	infoText  lipgloss.Style
	errorText lipgloss.Style
}

// New returns a Reporter writing to out.
func New(out io.Writer) *Reporter {
	r := lipgloss.NewRenderer(out)
	return &Reporter{
		out:       out,
		infoText:  r.NewStyle().Foreground(lipgloss.Color("2")),
		errorText: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

// Writer returns the underlying sink.
func (r *Reporter) Writer() io.Writer {
	return r.out
}

// Info writes msg as a success/progress line.
func (r *Reporter) Info(msg string) {
	fmt.Fprintln(r.out, r.infoText.Render(msg))
}

// Error writes msg as an error line.
func (r *Reporter) Error(msg string) {
	fmt.Fprintln(r.out, r.errorText.Render(msg))
}

// Line writes msg unstyled.
func (r *Reporter) Line(msg string) {
	fmt.Fprintln(r.out, msg)
}

// Blank writes an empty line.
func (r *Reporter) Blank() {
	fmt.Fprintln(r.out)
}

// Errors renders grouped errors in the order the aggregator provides them.
// Nothing is written when there are no groups.
func (r *Reporter) Errors(agg pipeline.ErrorAggregator) {
	groups := agg.RowsGroupedByMessage()
	if len(groups) == 0 {
		return
	}

	r.Blank()
	r.Error("Errors:")
	for _, g := range groups {
		r.Line(FormatErrorLine(g))
	}
}

// Summary renders the fixed summary block. It is always written, even when
// there are no errors.
func (r *Reporter) Summary(processedRows, processedEntities int, agg pipeline.ErrorAggregator) {
	r.Blank()
	r.Info("Summary:")
	r.Line(fmt.Sprintf("  Rows processed:       %d", processedRows))
	r.Line(fmt.Sprintf("  Entities processed:   %d", processedEntities))
	r.Line(fmt.Sprintf("  Invalid rows:         %d", agg.InvalidRowsCount()))
	r.Line(fmt.Sprintf("  Total errors:         %d", agg.ErrorsCount(pipeline.LevelCritical, pipeline.LevelNotCritical)))
	r.Line(fmt.Sprintf("  Error limit exceeded: %s", yesNo(agg.IsErrorLimitExceeded())))
}

// Results renders the created/updated/deleted counters of a finished import.
func (r *Reporter) Results(c pipeline.Counters) {
	r.Blank()
	r.Line(fmt.Sprintf("  Created: %d", c.Created))
	r.Line(fmt.Sprintf("  Updated: %d", c.Updated))
	r.Line(fmt.Sprintf("  Deleted: %d", c.Deleted))
}

// FormatErrorLine formats one error group as "<message> in row(s): 2, 5".
func FormatErrorLine(g pipeline.ErrorGroup) string {
	rows := make([]string, len(g.Rows))
	for i, row := range g.Rows {
		rows[i] = strconv.Itoa(row)
	}
	return fmt.Sprintf("%s in row(s): %s", g.Message, strings.Join(rows, ", "))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
