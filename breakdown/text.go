// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package breakdown

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/samber/lo"
)

// FormatText writes a fixed-width text rendering of r to w.
//
// Each table is printed as its title, an optional column header,
// then one line per row: the label padded to the longest label of
// the table, the time in milliseconds right-aligned in 8 columns,
// and the fraction as a percentage right-aligned in 8 columns.
// Tables are separated by blank lines.
func FormatText(w io.Writer, r *Report) error {
	var buf bytes.Buffer
	for i, t := range r.Tables {
		if i > 0 {
			buf.WriteByte('\n')
		}
		formatTextTable(&buf, t)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

const labelHeading = "function"

func formatTextTable(buf *bytes.Buffer, t *Table) {
	tc := t.Config
	width := labelWidth(t)
	if tc.Title != "" {
		fmt.Fprintf(buf, "%s\n", tc.Title)
	}
	if tc.Header {
		fmt.Fprintf(buf, "%-*s%8s  %8s\n", width, labelHeading, "ms", percentHeading(tc))
	}
	for _, row := range t.Rows {
		fmt.Fprintf(buf, "%-*s%8.0f  %8s\n", width, row.Label, row.Millis, percent(row.Fraction))
	}
	switch tc.Footer {
	case CoverageFooter:
		fmt.Fprintf(buf, "\nTotal time accounted for: %.0fms/%.0fms = %s\n", t.Sum, t.Total, percent(t.Coverage))
	case SumFooter:
		fmt.Fprintf(buf, "Sum of percentages: %s\n", percent(t.FractionSum))
	}
}

// labelWidth returns the width of t's label column.
func labelWidth(t *Table) int {
	widths := lo.Map(t.Config.Labels, func(l string, _ int) int { return utf8.RuneCountInString(l) })
	if t.Config.Header {
		widths = append(widths, len(labelHeading))
	}
	return lo.Max(widths)
}

func percentHeading(tc *TableConfig) string {
	if tc.DenominatorKey != "" {
		return "%"
	}
	return "% sum"
}

// percent formats a fraction as a percentage with two decimals.
func percent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 2, 64) + "%"
}
