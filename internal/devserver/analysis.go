package devserver

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"golang.org/x/text/encoding/charmap"
)

// Analysis failures reported to the client verbatim
var (
	ErrEmptyCSV        = errors.New("CSV is empty")
	ErrNoNumericColumn = errors.New("No numeric column found")
)

// currencyStripper removes currency symbols and thousands separators
var currencyStripper = strings.NewReplacer("₹", "", "$", "", "€", "", ",", "")

// dateLayouts are tried before dateparse. Dotted dates are day first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"02.01.2006",
	"Jan 02 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2006-01",
}

// Point is one charted value. When the sheet has a date column Time is set
// for rows whose date parsed.
type Point struct {
	Time  time.Time
	Value float64
}

// Result is the outcome of analyzing one CSV
type Result struct {
	Total    float64
	Average  float64
	ValueCol string
	DateCol  string
	Rows     int
	Points   []Point
}

// Analyze reads a CSV, picks the value column and computes its total and
// mean. The value column is the one with the most numeric cells, provided
// more than half the rows are numeric.
func Analyze(r io.Reader) (*Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	header, rows, err := readCSV(decodeText(raw))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyCSV
	}

	valueIdx := pickValueColumn(header, rows)
	if valueIdx < 0 {
		return nil, ErrNoNumericColumn
	}

	result := &Result{
		ValueCol: header[valueIdx],
		Rows:     len(rows),
	}

	dateIdx := findDateColumn(header)
	type row struct {
		value   float64
		ok      bool
		when    time.Time
		hasDate bool
	}
	parsed := make([]row, len(rows))
	for i, cells := range rows {
		v, ok := parseNumber(cell(cells, valueIdx))
		parsed[i] = row{value: v, ok: ok}
		if dateIdx >= 0 {
			parsed[i].when, parsed[i].hasDate = parseDate(cell(cells, dateIdx))
		}
	}

	if dateIdx >= 0 {
		result.DateCol = header[dateIdx]
		// Unparseable dates go last, otherwise input order is kept
		sort.SliceStable(parsed, func(i, j int) bool {
			a, b := parsed[i], parsed[j]
			if a.hasDate != b.hasDate {
				return a.hasDate
			}
			return a.hasDate && a.when.Before(b.when)
		})
	}

	var sum float64
	var count int
	for _, p := range parsed {
		if !p.ok {
			continue
		}
		sum += p.value
		count++
		result.Points = append(result.Points, Point{Time: p.when, Value: p.value})
	}

	result.Total = sum
	if count > 0 {
		result.Average = sum / float64(count)
	}
	if math.IsNaN(result.Total) {
		result.Total = 0
	}
	if math.IsNaN(result.Average) {
		result.Average = 0
	}

	return result, nil
}

// decodeText returns raw as UTF-8, reading it as Latin-1 when it is not valid UTF-8
func decodeText(raw []byte) []byte {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return raw
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// readCSV returns trimmed headers and the non-blank data rows
func readCSV(data []byte) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyCSV
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlankRow(record) {
			continue
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}

func isBlankRow(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// pickValueColumn returns the index of the column with the most numeric
// cells among those numeric in more than half the rows, or -1
func pickValueColumn(header []string, rows [][]string) int {
	best, bestCount := -1, 0
	for col := range header {
		count := 0
		for _, row := range rows {
			if _, ok := parseNumber(cell(row, col)); ok {
				count++
			}
		}
		if float64(count) > float64(len(rows))*0.5 && count > bestCount {
			best, bestCount = col, count
		}
	}
	return best
}

// findDateColumn returns the first header mentioning a date or time, or -1
func findDateColumn(header []string) int {
	for i, h := range header {
		lower := strings.ToLower(h)
		if strings.Contains(lower, "date") || strings.Contains(lower, "time") {
			return i
		}
	}
	return -1
}

// parseNumber parses a cell after stripping currency symbols and separators
func parseNumber(s string) (float64, bool) {
	cleaned := strings.TrimSpace(currencyStripper.Replace(s))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseDate reads a date cell. Zoneless values are taken as UTC and
// slashed numeric dates as month first.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}
