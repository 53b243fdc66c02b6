// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package breakdown

import (
	"encoding/csv"
	"io"
	"strconv"
)

// FormatCSV writes r to w in CSV form, one record per table row.
// Values are printed at full precision so the output can be consumed
// by other tools; footers are omitted since they can be recomputed
// from the rows.
func FormatCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"benchmark", "table", "label", "ns", "ms", "fraction"})
	for _, t := range r.Tables {
		for _, row := range t.Rows {
			cw.Write([]string{
				r.Benchmark,
				t.Config.ID,
				row.Label,
				formatFloat(row.Nanos),
				formatFloat(row.Millis),
				formatFloat(row.Fraction),
			})
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
