package formatter

import (
	"fmt"
	"math"
	"strings"
)

// formatAmount renders a figure with thousands separators and two decimals
func formatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%v", v)
	}

	s := fmt.Sprintf("%.2f", math.Abs(v))
	intPart, frac, _ := strings.Cut(s, ".")

	sign := ""
	if v < 0 && s != "0.00" {
		sign = "-"
	}
	return sign + addCommas(intPart) + "." + frac
}

// formatOptional renders an optional figure, "n/a" when absent
func formatOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return formatAmount(*v)
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// orDash returns s or "-" when empty
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// chartSize returns the decoded chart size in bytes, 0 when absent or malformed
func chartSize(chart string) int {
	if chart == "" {
		return 0
	}
	// base64 without decoding: 3 bytes per 4 chars, minus padding
	n := len(chart) / 4 * 3
	n -= strings.Count(chart[max(0, len(chart)-2):], "=")
	if n < 0 {
		return 0
	}
	return n
}
