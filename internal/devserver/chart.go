package devserver

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Chart size in pixels
const (
	chartWidth  = 800
	chartHeight = 400
)

var chartLine = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// RenderChart plots the values as a line with point markers over a grid
// and returns the PNG encoding. Values are plotted in order, evenly spaced.
func RenderChart(points []Point) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Sales Trend"
	p.X.Label.Text = "Entry"
	p.Y.Label.Text = "Sales"
	p.Add(plotter.NewGrid())

	if len(points) == 0 {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
	} else {
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i].X = float64(i)
			xys[i].Y = pt.Value
		}

		line, markers, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to plot values: %w", err)
		}
		line.Color = chartLine
		line.Width = vg.Points(2)
		markers.Shape = draw.CircleGlyph{}
		markers.Color = chartLine
		markers.Radius = vg.Points(3)
		p.Add(line, markers)
	}

	canvas := vgimg.NewWith(vgimg.UseImage(image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))))
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
