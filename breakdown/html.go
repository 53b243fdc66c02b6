// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package breakdown

import (
	"io"
	"strconv"

	"github.com/google/safehtml/template"
)

var htmlTemplate = template.Must(template.New("").Funcs(htmlFuncs).Parse(`
<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Benchmark}}</title>
<style>
.breakdown { border-collapse: collapse; margin-bottom: 1.5em; }
.breakdown caption { text-align: left; font-weight: bold; }
.breakdown th { text-align: left; border-bottom: 1px solid #666; }
.breakdown td:nth-child(1n+2) { text-align: right; padding: 0em 1em; }
.breakdown tfoot td { border-top: 1px solid #ccc; }
</style>
</head>
<body>
<h1>{{.Benchmark}}</h1>
{{with .Context}}{{if .HostName}}<p class='context'>Recorded on {{.HostName}}{{with .Date}} at {{.}}{{end}}{{with .LibraryBuildType}} ({{.}} build){{end}}.</p>{{end}}{{end}}
{{range .Tables -}}
<table class='breakdown'>
{{with .Config.Title}}<caption>{{.}}</caption>{{end}}
<thead><tr><th>function<th>ms<th>{{heading .Config}}</tr></thead>
<tbody>
{{range .Rows -}}
<tr><td>{{.Label}}<td>{{ms .Millis}}<td>{{pct .Fraction}}</tr>
{{end -}}
</tbody>
{{if eq .Config.Footer "coverage" -}}
<tfoot><tr><td>total accounted for<td>{{ms .Sum}} / {{ms .Total}}<td>{{pct .Coverage}}</tr></tfoot>
{{- else if eq .Config.Footer "sum" -}}
<tfoot><tr><td>sum of percentages<td><td>{{pct .FractionSum}}</tr></tfoot>
{{- end}}
</table>
{{end -}}
</body>
</html>
`))

var htmlFuncs = template.FuncMap{
	"ms":      func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) },
	"pct":     percent,
	"heading": percentHeading,
}

// FormatHTML writes r to w as an HTML document with one table per
// report table.
func FormatHTML(w io.Writer, r *Report) error {
	return htmlTemplate.Execute(w, r)
}
