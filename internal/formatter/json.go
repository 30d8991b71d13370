package formatter

import (
	"encoding/json"

	"github.com/yildizm/SalesForecaster/internal/api"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// ReportOutput is the JSON shape of one analysis. The chart itself is left
// out; ChartBytes tells whether one was returned.
type ReportOutput struct {
	File       string  `json:"file,omitempty"`
	Total      float64 `json:"total"`
	Average    float64 `json:"average"`
	UsedColumn string  `json:"used_column,omitempty"`
	DateColumn string  `json:"date_column,omitempty"`
	Message    string  `json:"message,omitempty"`
	HasChart   bool    `json:"has_chart"`
	ChartBytes int     `json:"chart_bytes,omitempty"`
}

// HistoryOutput wraps the history sequence
type HistoryOutput struct {
	Count   int                 `json:"count"`
	Records []api.HistoryRecord `json:"records"`
}

func (f *jsonFormatter) FormatReport(report *api.Report, source string) ([]byte, error) {
	output := &ReportOutput{File: source}
	if report != nil {
		output.Total = report.Total
		output.Average = report.Average
		output.UsedColumn = report.UsedColumn
		output.DateColumn = report.DateColumn
		output.Message = report.Message
		output.HasChart = report.HasChart()
		output.ChartBytes = chartSize(report.Chart)
	}
	return json.MarshalIndent(output, "", "  ")
}

func (f *jsonFormatter) FormatHistory(records []api.HistoryRecord) ([]byte, error) {
	if records == nil {
		records = []api.HistoryRecord{}
	}
	return json.MarshalIndent(&HistoryOutput{Count: len(records), Records: records}, "", "  ")
}
