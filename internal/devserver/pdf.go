package devserver

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Layout in points on an A4 page
const (
	pageMargin   = 50.0
	contentWidth = 595.28 - 2*pageMargin
	lineHeight   = 18.0
	chartImage   = "chart"
)

// ReportPDF renders a stored analysis as a one page PDF: a title, the
// summary lines and, when present, the chart image.
func ReportPDF(a *Analysis) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(false)
	pdf.SetTitle("Sales Analysis Report", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AddPage()

	// Core fonts are cp1252; runes outside it are replaced
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(pageMargin, 60, "Sales Analysis Report")

	lines := []string{
		"File: " + a.Filename,
		"Date: " + a.UploadedAt.Format("2006-01-02 15:04"),
		fmt.Sprintf("Total: $%.2f", a.Total),
		fmt.Sprintf("Average: $%.2f", a.Average),
	}
	if a.UsedColumn != "" {
		lines = append(lines, "Column: "+a.UsedColumn)
	}

	pdf.SetFont("Helvetica", "", 12)
	y := 92.0
	for _, line := range lines {
		pdf.Text(pageMargin, y, tr(line))
		y += lineHeight
	}

	if len(a.Chart) > 0 {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(chartImage, opts, bytes.NewReader(a.Chart))
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("failed to embed chart: %w", err)
		}
		// Zero height keeps the aspect ratio
		pdf.ImageOptions(chartImage, pageMargin, y, contentWidth, 0, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
