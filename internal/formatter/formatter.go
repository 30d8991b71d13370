package formatter

import (
	"fmt"

	"github.com/yildizm/SalesForecaster/internal/api"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	FormatReport(report *api.Report, source string) ([]byte, error)
	FormatHistory(records []api.HistoryRecord) ([]byte, error)
}

// Formats lists the names accepted by New
var Formats = []string{"text", "json", "markdown", "csv"}

// New returns the formatter registered under format
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (must be one of: text, json, markdown, csv)", format)
	}
}
