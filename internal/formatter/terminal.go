package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/SalesForecaster/internal/api"
	"github.com/yildizm/SalesForecaster/internal/emoji"
	"github.com/yildizm/go-termfmt"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) FormatReport(report *api.Report, source string) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}

	var b strings.Builder
	f.writeHeader(&b, "Sales Analysis Report")
	f.writeSummary(&b, report, source)
	f.writeChartNote(&b, report)

	return []byte(b.String()), nil
}

func (f *terminalFormatter) FormatHistory(records []api.HistoryRecord) ([]byte, error) {
	var b strings.Builder
	f.writeHistory(&b, records)
	return []byte(b.String()), nil
}

// writeSummary writes the report figures as a tree
func (f *terminalFormatter) writeSummary(b *strings.Builder, report *api.Report, source string) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Summary\n")

	items := []termfmt.TreeItem{}
	if source != "" {
		items = append(items, termfmt.TreeItem{Label: "File", Value: source})
	}
	items = append(items,
		termfmt.TreeItem{Label: "Total", Value: formatAmount(report.Total)},
		termfmt.TreeItem{Label: "Average", Value: formatAmount(report.Average)},
		termfmt.TreeItem{Label: "Value Column", Value: orDash(report.UsedColumn)},
		termfmt.TreeItem{Label: "Date Column", Value: orDash(report.DateColumn), Last: true},
	)

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeChartNote notes whether the service returned a chart
func (f *terminalFormatter) writeChartNote(b *strings.Builder, report *api.Report) {
	if report.HasChart() {
		fmt.Fprintf(b, "%s Chart: PNG, %d bytes (use --chart-out to save)\n", emoji.GetEmoji("chart"), chartSize(report.Chart))
		return
	}
	fmt.Fprintf(b, "%s Chart: none\n", emoji.GetEmoji("chart"))
}

// writeHistory writes the history sequence in the order given
func (f *terminalFormatter) writeHistory(b *strings.Builder, records []api.HistoryRecord) {
	symbol := termfmt.GetEmoji("recommendations", f.opts)
	fmt.Fprintf(b, "%s History (%d)\n", symbol, len(records))

	if len(records) == 0 {
		b.WriteString("└─ No analyses yet\n")
		return
	}

	items := make([]termfmt.TreeItem, 0, len(records))
	for i, record := range records {
		children := []termfmt.TreeItem{
			{Label: "ID", Value: record.ID},
			{Label: "Uploaded", Value: orDash(record.UploadDate)},
		}
		if record.UsedColumn != "" {
			children = append(children, termfmt.TreeItem{Label: "Column", Value: record.UsedColumn})
		}
		children[len(children)-1].Last = true

		items = append(items, termfmt.TreeItem{
			Label:    orDash(record.Filename),
			Value:    formatOptional(record.TotalSales),
			Children: children,
			Last:     i == len(records)-1,
		})
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n")
}

// writeHeader writes a boxed title
func (f *terminalFormatter) writeHeader(b *strings.Builder, header string) {
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}
