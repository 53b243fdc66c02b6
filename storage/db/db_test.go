// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/TestPerson88/aztec-packages/breakdown"
	"github.com/TestPerson88/aztec-packages/gbench"
	. "github.com/TestPerson88/aztec-packages/storage/db"
	"github.com/TestPerson88/aztec-packages/storage/db/dbtest"
)

func report(t *testing.T, name string, realTime float64) *breakdown.Report {
	t.Helper()
	rec, err := gbench.NewRecord(name, map[string]any{
		"real_time": realTime,
		"a(t)":      300_000_000,
		"b(t)":      100_000_000,
		"p(t)":      400_000_000,
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg := &breakdown.Config{
		Benchmark: name,
		Tables: []breakdown.TableConfig{
			{ID: "kept", Labels: []string{"p(t)"}, Footer: breakdown.CoverageFooter},
			{ID: "p", Labels: []string{"a(t)", "b(t)"}, DenominatorKey: "p(t)", Footer: breakdown.SumFooter},
		},
	}
	rep, err := breakdown.Compute(rec, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return rep
}

func TestInsertReport(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)
	defer SetNow(time.Time{})

	var ids []int64
	for i, rt := range []float64{800_000_000, 500_000_000, 1_000_000_000} {
		SetNow(time.Unix(int64(86400*i), 0))
		id, err := db.InsertReport(ctx, "bench.json", report(t, "B/6", rt))
		if err != nil {
			t.Fatalf("InsertReport: %v", err)
		}
		ids = append(ids, id)
	}
	if _, err := db.InsertReport(ctx, "other.json", report(t, "B/2", 1e9)); err != nil {
		t.Fatalf("InsertReport: %v", err)
	}

	n, err := db.CountReports(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("CountReports = %d, want 4", n)
	}

	// All rows of a report are stored with it.
	var rows int
	if err := DBSQL(db).QueryRow("SELECT COUNT(*) FROM ReportRows WHERE ReportID = ?", ids[0]).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 3 {
		t.Errorf("got %d rows for report %d, want 3", rows, ids[0])
	}

	got, err := db.History(ctx, "B/6", 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []Summary{
		{ID: ids[2], File: "bench.json", Created: time.Unix(2*86400, 0).UTC(), KeptMillis: 400, RealMillis: 1000},
		{ID: ids[1], File: "bench.json", Created: time.Unix(86400, 0).UTC(), KeptMillis: 400, RealMillis: 500},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("History mismatch (-want +got):\n%s", diff)
	}
	if c := got[0].Coverage(); c != 0.4 {
		t.Errorf("Coverage = %v, want 0.4", c)
	}

	if got, err := db.History(ctx, "B/7", 10); err != nil || len(got) != 0 {
		t.Errorf("History(B/7) = %v, %v; want empty", got, err)
	}
}

func TestInsertReportWithoutCoverage(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)

	rep := report(t, "B/6", 1e9)
	rep.Tables = rep.Tables[1:]
	if _, err := db.InsertReport(ctx, "bench.json", rep); err != nil {
		t.Fatal(err)
	}
	got, err := db.History(ctx, "B/6", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].KeptMillis != 0 || got[0].RealMillis != 0 || got[0].Coverage() != 0 {
		t.Errorf("got %+v, want zero coverage", got)
	}
}
