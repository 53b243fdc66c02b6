// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package breakdown

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ChartFormats lists the file extensions Chart can write.
var ChartFormats = []string{"png", "svg", "pdf"}

const (
	chartWidth  = 24 * vg.Centimeter
	chartRowH   = 0.8 * vg.Centimeter
	chartMargin = 3 * vg.Centimeter
)

// Chart draws t as a horizontal bar chart of milliseconds per row and
// saves it to path. The image format is chosen by path's extension,
// which must be one of ChartFormats.
func Chart(t *Table, path string) error {
	if len(t.Rows) == 0 {
		return fmt.Errorf("chart %s: table %q has no rows", path, t.Config.ID)
	}
	p := plot.New()
	p.Title.Text = t.Config.Title
	if p.Title.Text == "" {
		p.Title.Text = t.Config.ID
	}
	p.X.Label.Text = "ms"

	// Bars are drawn bottom to top. Reverse the rows so the chart
	// reads in table order.
	n := len(t.Rows)
	values := make(plotter.Values, n)
	labels := make([]string, n)
	for i, row := range t.Rows {
		values[n-1-i] = row.Millis
		labels[n-1-i] = fmt.Sprintf("%s (%s)", row.Label, percent(row.Fraction))
	}

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return fmt.Errorf("chart %s: %v", path, err)
	}
	bars.Horizontal = true
	bars.Color = color.RGBA{R: 0x42, G: 0x85, B: 0xf4, A: 0xff}
	bars.LineStyle.Width = 0

	p.Add(plotter.NewGrid(), bars)
	p.NominalY(labels...)

	height := chartMargin + vg.Length(n)*chartRowH
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
	}
	if err := p.Save(chartWidth, height, path); err != nil {
		return fmt.Errorf("chart %s: %v", path, err)
	}
	return nil
}
