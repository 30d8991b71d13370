package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/SalesForecaster/internal/api"
)

// sparkChars run from lowest to highest
var sparkChars = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// SparklineChart represents a compact sparkline chart
type SparklineChart struct {
	Values []float64
	Width  int
	Min    float64
	Max    float64
}

// NewSparklineChart creates a new sparkline chart
func NewSparklineChart(values []float64, width int) *SparklineChart {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)

	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	return &SparklineChart{
		Values: values,
		Width:  width,
		Min:    minVal,
		Max:    maxVal,
	}
}

// NewHistorySparkline charts history totals oldest to newest. History
// arrives newest first; records without a total are skipped.
func NewHistorySparkline(records []api.HistoryRecord, width int) *SparklineChart {
	values := make([]float64, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].TotalSales != nil {
			values = append(values, *records[i].TotalSales)
		}
	}
	return NewSparklineChart(values, width)
}

// Render renders the sparkline chart
func (s *SparklineChart) Render() string {
	if len(s.Values) == 0 || s.Width <= 0 {
		return ""
	}

	var result strings.Builder

	step := len(s.Values) / s.Width
	if step == 0 {
		step = 1
	}

	for i := 0; i < s.Width && i*step < len(s.Values); i++ {
		value := s.Values[i*step]

		normalized := 0.0
		if s.Max > s.Min {
			normalized = (value - s.Min) / (s.Max - s.Min)
		}

		charIndex := int(normalized * float64(len(sparkChars)-1))
		if charIndex >= len(sparkChars) {
			charIndex = len(sparkChars) - 1
		}

		result.WriteString(sparkChars[charIndex])
	}

	return lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"}).Render(result.String())
}
