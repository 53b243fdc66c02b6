// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ivcstat breaks a benchmark's time down into the functions and
// phases it spends that time in.
//
// Usage:
//
//	ivcstat [flags] [results.json]
//
// The input is the JSON output of a Google Benchmark binary built with
// op-count-time instrumentation, which records the wall time of each
// instrumented function as a benchmark counter in nanoseconds. By
// default ivcstat reads build-op-count-time/client_ivc_bench.json,
// selects the ClientIVCBench/Full/6 benchmark, and prints five tables:
//
//   - a curated set of independent functions that should account for
//     most of the benchmark, each as a percentage of the set's sum,
//     followed by the fraction of the benchmark's real time the set
//     accounts for;
//   - the major contributors within that set;
//   - breakdowns of ProtogalaxyProver::fold_instances, of
//     ProverInstance(Circuit&), and of ExecutionTrace_::populate into
//     their sub-phases, each as a percentage of the parent phase.
//
// If several benchmarks in the input share the selected name, the
// last one wins.
//
// The -config flag reads a YAML file that overrides the input path,
// the benchmark name, and the tables. For example:
//
//	benchmark: ClientIVCBench/Full/2
//	tables:
//	  - id: kept
//	    header: true
//	    labels: ["construct_circuits(t)", "Goblin::merge(t)"]
//	    footer: coverage
//	  - id: merge
//	    title: "Breakdown of Goblin::merge:"
//	    labels: ["Goblin::merge(t)"]
//	    denominator_key: "construct_circuits(t)"
//	    footer: sum
//
// Each table lists counter labels. A table's percentages are relative
// to the counter named by denominator_key, to the label sum of the
// earlier table named by denominator_table, or else to its own label
// sum. The footer is "coverage", "sum", or empty.
//
// The -format flag selects text (the default), csv, or html output.
// The -chart flag writes a bar chart of every table into a
// directory.
//
// The -db flag records each report in a history database (sqlite3 by
// default; see -db-driver), and -history n prints the last n recorded
// reports of the benchmark after the report.
//
// If any counter a table needs is missing, ivcstat prints nothing and
// exits with status 1.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/samber/lo"

	"github.com/TestPerson88/aztec-packages/breakdown"
	"github.com/TestPerson88/aztec-packages/gbench"
	"github.com/TestPerson88/aztec-packages/internal/texttab"
	"github.com/TestPerson88/aztec-packages/storage/db"
	_ "github.com/TestPerson88/aztec-packages/storage/db/sqlite3"
)

var exit = os.Exit // replaced during testing

// errUsage reports a command line error. The flag package has already
// printed the details.
var errUsage = errors.New("usage error")

func main() {
	log.SetPrefix("ivcstat: ")
	log.SetFlags(0)

	if err := ivcstat(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			exit(0)
		case errors.Is(err, errUsage):
			exit(2)
		}
		log.Print(err)
		exit(1)
	}
}

var formats = []string{"text", "csv", "html"}

func ivcstat(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("ivcstat", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: ivcstat [flags] [results.json]\n\nFlags:\n")
		flags.PrintDefaults()
	}
	flagConfig := flags.String("config", "", "read the report configuration from YAML `file`")
	flagBench := flags.String("bench", "", "report on the benchmark `name` (default "+breakdown.DefaultBenchmark+")")
	flagFormat := flags.String("format", "text", "print the report in `format`: "+strings.Join(formats, ", "))
	flagChart := flags.String("chart", "", "write a bar chart of each table into `dir`")
	flagChartFormat := flags.String("chart-format", "svg", "chart image `format`: "+strings.Join(breakdown.ChartFormats, ", "))
	flagDB := flags.String("db", "", "record the report in the history database `dsn`")
	flagDriver := flags.String("db-driver", "sqlite3", "history database `driver`: sqlite3 or mysql")
	flagHistory := flags.Int("history", 0, "print the last `n` recorded reports of the benchmark (requires -db)")
	flagList := flags.Bool("list", false, "list the benchmark names in the input and exit")
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return errUsage
	}

	usageErr := func(format string, args ...interface{}) error {
		fmt.Fprintf(wErr, format+"\n", args...)
		flags.Usage()
		return errUsage
	}
	switch {
	case flags.NArg() > 1:
		return usageErr("at most one input file may be given")
	case !lo.Contains(formats, *flagFormat):
		return usageErr("unknown -format %q", *flagFormat)
	case !lo.Contains(breakdown.ChartFormats, *flagChartFormat):
		return usageErr("unknown -chart-format %q", *flagChartFormat)
	case *flagHistory < 0:
		return usageErr("-history must not be negative")
	case *flagHistory > 0 && *flagDB == "":
		return usageErr("-history requires -db")
	case *flagHistory > 0 && *flagFormat != "text":
		return usageErr("-history requires -format text")
	}

	cfg := breakdown.DefaultConfig()
	if *flagConfig != "" {
		var err error
		if cfg, err = breakdown.LoadConfig(*flagConfig); err != nil {
			return err
		}
	}
	if *flagBench != "" {
		cfg.Benchmark = *flagBench
	}
	if flags.NArg() == 1 {
		cfg.Input = flags.Arg(0)
	}

	suite, err := gbench.Load(cfg.Input)
	if err != nil {
		return err
	}
	if *flagList {
		for _, name := range suite.Names() {
			fmt.Fprintln(w, name)
		}
		return nil
	}
	rec, err := suite.Lookup(cfg.Benchmark)
	if err != nil {
		return err
	}
	rep, err := breakdown.Compute(rec, cfg)
	if err != nil {
		return err
	}
	rep.Context = suite.Context

	// Produce all output before printing any of it, so a failure
	// leaves stdout empty.
	var buf bytes.Buffer
	switch *flagFormat {
	case "text":
		err = breakdown.FormatText(&buf, rep)
	case "csv":
		err = breakdown.FormatCSV(&buf, rep)
	case "html":
		err = breakdown.FormatHTML(&buf, rep)
	}
	if err != nil {
		return err
	}

	if *flagChart != "" {
		for _, t := range rep.Tables {
			if err := breakdown.Chart(t, filepath.Join(*flagChart, t.Config.ID+"."+*flagChartFormat)); err != nil {
				return err
			}
		}
	}

	if *flagDB != "" {
		if err := record(&buf, cfg.Input, rep, *flagDriver, *flagDB, *flagHistory); err != nil {
			return err
		}
	}

	for _, warn := range rep.Warnings() {
		fmt.Fprintf(wErr, "warning: %s\n", warn)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// record stores rep in the history database and, if history > 0,
// appends the benchmark's recent history to buf.
func record(buf *bytes.Buffer, input string, rep *breakdown.Report, driver, dsn string, history int) error {
	ctx := context.Background()
	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		return fmt.Errorf("open database: %v", err)
	}
	defer d.Close()

	if _, err := d.InsertReport(ctx, input, rep); err != nil {
		return fmt.Errorf("record report: %v", err)
	}
	if history == 0 {
		return nil
	}
	sums, err := d.History(ctx, rep.Benchmark, history)
	if err != nil {
		return fmt.Errorf("read history: %v", err)
	}

	fmt.Fprintf(buf, "\nHistory of %s:\n", rep.Benchmark)
	var tab texttab.Table
	tab.Row().Cell("report").Cell("recorded").Cell("file").Cell("kept ms", texttab.Right).Cell("real ms", texttab.Right).Cell("coverage", texttab.Right)
	for _, s := range sums {
		tab.Row().
			Cell(strconv.FormatInt(s.ID, 10)).
			Cell(s.Created.Format("2006-01-02 15:04:05")).
			Cell(s.File).
			Cell(strconv.FormatFloat(s.KeptMillis, 'f', 0, 64), texttab.Right).
			Cell(strconv.FormatFloat(s.RealMillis, 'f', 0, 64), texttab.Right).
			Cell(strconv.FormatFloat(s.Coverage()*100, 'f', 2, 64)+"%", texttab.Right)
	}
	return tab.Format(buf)
}
