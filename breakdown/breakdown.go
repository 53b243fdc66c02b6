// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package breakdown computes and formats tables that break a
// benchmark's time down into the functions and phases it spends that
// time in.
//
// A report is driven by a Config: an ordered list of tables, each a
// list of timing counters of one benchmark record and a denominator
// that the counters are expressed as a fraction of. Compute evaluates
// every table of a report before any of it is formatted, so a report
// either succeeds as a whole or fails without output.
package breakdown

import (
	"fmt"

	"github.com/aclements/go-moremath/stats"
	"github.com/samber/lo"

	"github.com/TestPerson88/aztec-packages/benchunit"
	"github.com/TestPerson88/aztec-packages/gbench"
)

// MaxFractionSum is the largest plausible sum of fractions for a
// SumFooter table. Sub-phase timers nest inside their parent's timer,
// so their sum should not exceed 100% by more than timer noise.
const MaxFractionSum = 1.05

// A Report is the computed form of a Config for one benchmark record.
type Report struct {
	// Benchmark is the name of the benchmark record.
	Benchmark string

	// Context describes the machine and build the benchmark ran
	// on. Compute leaves it zero; it is filled in from the
	// gbench.Suite the record came from and shown by FormatHTML.
	Context gbench.Context

	Tables []*Table
}

// A Table is one computed table of a Report.
type Table struct {
	Config *TableConfig

	Rows []Row

	// Sum is the sum of the rows' times, in milliseconds.
	Sum float64

	// Denominator is the time each row is a fraction of, in
	// milliseconds.
	Denominator float64

	// Total and Coverage are set for CoverageFooter tables. Total
	// is the benchmark's real time in milliseconds and Coverage is
	// Sum/Total.
	Total, Coverage float64

	// FractionSum is the sum of the rows' fractions. It is set for
	// SumFooter tables.
	FractionSum float64
}

// A Row is one counter of a Table.
type Row struct {
	Label    string
	Nanos    float64
	Millis   float64
	Fraction float64 // Millis / Table.Denominator
}

// A ZeroDenominatorError reports a table whose denominator is zero,
// so its fractions are undefined.
type ZeroDenominatorError struct {
	Table string
	What  string // What the denominator is
}

func (e *ZeroDenominatorError) Error() string {
	return fmt.Sprintf("table %q: %s is zero", e.Table, e.What)
}

// Compute evaluates every table of cfg against rec.
//
// It returns an error if cfg is invalid, or if any counter a table
// needs is missing from rec or is not a number. In that case no
// partial report is returned.
func Compute(rec *gbench.Record, cfg *Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rep := &Report{Benchmark: rec.Name}
	sums := make(map[string]float64)
	for i := range cfg.Tables {
		t, err := computeTable(rec, &cfg.Tables[i], sums)
		if err != nil {
			return nil, err
		}
		sums[t.Config.ID] = t.Sum
		rep.Tables = append(rep.Tables, t)
	}
	return rep, nil
}

func computeTable(rec *gbench.Record, tc *TableConfig, sums map[string]float64) (*Table, error) {
	t := &Table{Config: tc, Rows: make([]Row, 0, len(tc.Labels))}
	for _, label := range tc.Labels {
		ns, err := rec.Nanoseconds(label)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, Row{Label: label, Nanos: ns, Millis: benchunit.Millis(ns)})
	}
	t.Sum = stats.Sample{Xs: lo.Map(t.Rows, func(r Row, _ int) float64 { return r.Millis })}.Sum()

	var what string
	switch {
	case tc.DenominatorKey != "":
		ns, err := rec.Nanoseconds(tc.DenominatorKey)
		if err != nil {
			return nil, err
		}
		t.Denominator = benchunit.Millis(ns)
		what = fmt.Sprintf("denominator %q", tc.DenominatorKey)
	case tc.DenominatorTable != "":
		t.Denominator = sums[tc.DenominatorTable]
		what = fmt.Sprintf("sum of table %q", tc.DenominatorTable)
	default:
		t.Denominator = t.Sum
		what = "sum of rows"
	}
	if t.Denominator == 0 {
		return nil, &ZeroDenominatorError{tc.ID, what}
	}
	for i := range t.Rows {
		t.Rows[i].Fraction = t.Rows[i].Millis / t.Denominator
	}

	switch tc.Footer {
	case CoverageFooter:
		rt, err := rec.RealTime()
		if err != nil {
			return nil, err
		}
		t.Total = benchunit.Millis(rt)
		if t.Total == 0 {
			return nil, &ZeroDenominatorError{tc.ID, "real_time"}
		}
		t.Coverage = t.Sum / t.Total
	case SumFooter:
		t.FractionSum = stats.Sample{Xs: lo.Map(t.Rows, func(r Row, _ int) float64 { return r.Fraction })}.Sum()
	}
	return t, nil
}

// Table returns the table with the given ID, or nil.
func (r *Report) Table(id string) *Table {
	t, _ := lo.Find(r.Tables, func(t *Table) bool { return t.Config.ID == id })
	return t
}

// Warnings returns sanity check failures for r. These do not make a
// report wrong, but suggest that a table's labels no longer match
// what the benchmark measures.
func (r *Report) Warnings() []string {
	var warns []string
	for _, t := range r.Tables {
		switch t.Config.Footer {
		case CoverageFooter:
			if t.Coverage <= 0 || t.Coverage > 1 {
				warns = append(warns, fmt.Sprintf("table %q accounts for %.2f%% of real_time; labels may overlap or be stale", t.Config.ID, t.Coverage*100))
			}
		case SumFooter:
			if t.FractionSum < 0 || t.FractionSum > MaxFractionSum {
				warns = append(warns, fmt.Sprintf("table %q sums to %.2f%% of its denominator; sub-phases may overlap", t.Config.ID, t.FractionSum*100))
			}
		}
	}
	return warns
}
