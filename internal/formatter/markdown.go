package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/SalesForecaster/internal/api"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	now func() time.Time
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{now: time.Now}
}

func (f *markdownFormatter) FormatReport(report *api.Report, source string) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}

	var b strings.Builder
	b.WriteString("# Sales Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", f.now().Format("2006-01-02 15:04:05"))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	if source != "" {
		fmt.Fprintf(&b, "| File | %s |\n", escapeMarkdownCell(source))
	}
	fmt.Fprintf(&b, "| Total | %s |\n", formatAmount(report.Total))
	fmt.Fprintf(&b, "| Average | %s |\n", formatAmount(report.Average))
	fmt.Fprintf(&b, "| Value Column | %s |\n", escapeMarkdownCell(orDash(report.UsedColumn)))
	fmt.Fprintf(&b, "| Date Column | %s |\n", escapeMarkdownCell(orDash(report.DateColumn)))

	b.WriteString("\n## Chart\n\n")
	if report.HasChart() {
		b.WriteString("![Sales chart](data:image/png;base64," + report.Chart + ")\n")
	} else {
		b.WriteString("_No chart returned._\n")
	}

	return []byte(b.String()), nil
}

func (f *markdownFormatter) FormatHistory(records []api.HistoryRecord) ([]byte, error) {
	var b strings.Builder
	b.WriteString("# Analysis History\n\n")

	if len(records) == 0 {
		b.WriteString("_No analyses yet._\n")
		return []byte(b.String()), nil
	}

	b.WriteString("| ID | File | Uploaded | Total Sales |\n")
	b.WriteString("|----|------|----------|-------------|\n")
	for _, record := range records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			escapeMarkdownCell(record.ID),
			escapeMarkdownCell(orDash(record.Filename)),
			escapeMarkdownCell(orDash(record.UploadDate)),
			formatOptional(record.TotalSales))
	}

	return []byte(b.String()), nil
}

// escapeMarkdownCell keeps a value inside one table cell
func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
