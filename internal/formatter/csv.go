package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/yildizm/SalesForecaster/internal/api"
)

// csvFormatter formats reports and history as CSV
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) FormatReport(report *api.Report, source string) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}

	rows := [][]string{
		{"File", "Total", "Average", "Used Column", "Date Column", "Has Chart"},
		{
			source,
			formatCSVNumber(report.Total),
			formatCSVNumber(report.Average),
			report.UsedColumn,
			report.DateColumn,
			strconv.FormatBool(report.HasChart()),
		},
	}
	return writeCSV(rows)
}

func (f *csvFormatter) FormatHistory(records []api.HistoryRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"ID", "Filename", "Upload Date", "Total Sales", "Average Sales", "Used Column"})

	for _, record := range records {
		rows = append(rows, []string{
			record.ID,
			record.Filename,
			record.UploadDate,
			formatCSVOptional(record.TotalSales),
			formatCSVOptional(record.AverageSales),
			record.UsedColumn,
		})
	}
	return writeCSV(rows)
}

func writeCSV(rows [][]string) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

// formatCSVNumber keeps full precision without separators
func formatCSVNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCSVOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatCSVNumber(*v)
}
