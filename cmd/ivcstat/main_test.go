// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TestPerson88/aztec-packages/gbench"
)

func TestDefault(t *testing.T) {
	// With no arguments, ivcstat reads
	// build-op-count-time/client_ivc_bench.json. The file holds a
	// stale ClientIVCBench/Full/6 ahead of the real one.
	golden(t, "default")
	golden(t, "default", "build-op-count-time/client_ivc_bench.json")
}

func TestConfig(t *testing.T) {
	golden(t, "merge", "-config", "merge.yaml")
	golden(t, "merge-csv", "-config", "merge.yaml", "-format", "csv")
}

func TestWarnings(t *testing.T) {
	// The labels overlap, so coverage exceeds 100% and the group
	// breakdown sums to more than its parent.
	golden(t, "overlap", "-config", "overlap.yaml")
}

func TestList(t *testing.T) {
	golden(t, "list", "-list")
}

func TestHTML(t *testing.T) {
	got, _ := run(t, "-format", "html")
	for _, want := range []string{
		"<caption>Breakdown of ProtogalaxyProver::fold_instances:</caption>",
		"<tr><td>construct_circuits(t)<td>2399<td>19.54%</tr>",
		"<td>total accounted for<td>12275 / 13188<td>93.08%</tr>",
		"ProverInstance(Circuit&amp;)(t)",
		"<th>function<th>ms<th>% sum</tr>",
		"Recorded on bench-host at 2024-03-01T12:00:00",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML output missing %q", want)
		}
	}
}

func TestErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
		is   func(error) bool
		want string
	}{
		{
			name: "missing file",
			args: []string{"no-such-file.json"},
			is:   func(err error) bool { return errors.Is(err, fs.ErrNotExist) },
			want: "no-such-file.json",
		},
		{
			name: "bad JSON",
			args: []string{"bad.json"},
			is: func(err error) bool {
				var se *gbench.SyntaxError
				return errors.As(err, &se)
			},
			want: "bad.json",
		},
		{
			name: "benchmark not found",
			args: []string{"-bench", "ClientIVCBench/Full/12"},
			is: func(err error) bool {
				var nf *gbench.NotFoundError
				return errors.As(err, &nf)
			},
			want: `benchmark "ClientIVCBench/Full/12" not found among 3 benchmarks`,
		},
		{
			// Full/2 has construct_circuits(t) but none of the
			// prover counters.
			name: "missing key",
			args: []string{"-bench", "ClientIVCBench/Full/2"},
			is: func(err error) bool {
				var mk *gbench.MissingKeyError
				return errors.As(err, &mk)
			},
			want: `benchmark "ClientIVCBench/Full/2" has no field "ProverInstance(Circuit&)(t)"`,
		},
		{
			name: "missing key in config",
			args: []string{"-config", "missing.yaml"},
			is: func(err error) bool {
				var mk *gbench.MissingKeyError
				return errors.As(err, &mk)
			},
			want: `has no field "no_such_function(t)"`,
		},
		{
			name: "missing config",
			args: []string{"-config", "no-such-config.yaml"},
			is:   func(err error) bool { return errors.Is(err, fs.ErrNotExist) },
			want: "no-such-config.yaml",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := run(t, test.args...)
			if err == nil {
				t.Fatalf("want error, got output:\n%s", got)
			}
			if !test.is(err) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("got error %q, want it to contain %q", err, test.want)
			}
			if got != "" {
				t.Errorf("want no output on error, got:\n%s", got)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{
		{"a.json", "b.json"},
		{"-format", "xml"},
		{"-chart-format", "gif"},
		{"-history", "-1"},
		{"-history", "3"},
		{"-db", ":memory:", "-history", "3", "-format", "csv"},
		{"-no-such-flag"},
	} {
		var w, wErr bytes.Buffer
		err := ivcstat(&w, &wErr, args)
		if !errors.Is(err, errUsage) {
			t.Errorf("%v: got %v, want usage error", args, err)
		}
		if w.Len() != 0 {
			t.Errorf("%v: want no output, got:\n%s", args, w.String())
		}
		if !strings.Contains(wErr.String(), "Usage: ivcstat") {
			t.Errorf("%v: want usage message, got:\n%s", args, wErr.String())
		}
	}
}

func TestHistory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")

	first, err := run(t, "-db", dsn)
	if err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile(filepath.Join("testdata", "default.stdout"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(want), first); diff != "" {
		t.Errorf("recording changed the report (-want +got):\n%s", diff)
	}

	got, err := run(t, "-db", dsn, "-history", "5")
	if err != nil {
		t.Fatal(err)
	}
	report, hist, ok := strings.Cut(got, "\nHistory of ClientIVCBench/Full/6:\n")
	if !ok {
		t.Fatalf("no history in output:\n%s", got)
	}
	if report != string(want) {
		t.Errorf("report before history differs from default output")
	}
	lines := strings.Split(strings.TrimSuffix(hist, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header and 2 history rows, got:\n%s", hist)
	}
	if fields := strings.Fields(lines[0]); !cmp.Equal(fields, []string{"report", "recorded", "file", "kept", "ms", "real", "ms", "coverage"}) {
		t.Errorf("bad history header %q", lines[0])
	}
	// Newest first.
	for i, id := range []string{"2", "1"} {
		f := strings.Fields(lines[i+1])
		if len(f) != 7 {
			t.Fatalf("bad history row %q", lines[i+1])
		}
		if f[0] != id || f[3] != "build-op-count-time/client_ivc_bench.json" || f[4] != "12275" || f[5] != "13188" || f[6] != "93.08%" {
			t.Errorf("bad history row %q", lines[i+1])
		}
	}
}

func TestChart(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, "-chart", dir, "-chart-format", "png"); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"kept", "major", "fold_instances", "prover_instance", "populate"} {
		info, err := os.Stat(filepath.Join(dir, id+".png"))
		if err != nil {
			t.Error(err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s.png is empty", id)
		}
	}
}

// run invokes ivcstat from the testdata directory and returns its
// standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if err := os.Chdir("testdata"); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir("..")

	var w, wErr bytes.Buffer
	t.Logf("ivcstat %s", strings.Join(args, " "))
	err := ivcstat(&w, &wErr, args)
	return w.String(), err
}

func golden(t *testing.T, name string, args ...string) {
	t.Helper()
	if err := os.Chdir("testdata"); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir("..")

	var got, gotErr bytes.Buffer
	t.Logf("ivcstat %s", strings.Join(args, " "))
	if err := ivcstat(&got, &gotErr, args); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	compare(t, name, "stdout", got.Bytes())
	compare(t, name, "stderr", gotErr.Bytes())
}

func compare(t *testing.T, name, sub string, got []byte) {
	t.Helper()

	wantPath := name + "." + sub
	want, err := os.ReadFile(wantPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Treat a missing file as empty.
			want = nil
		} else {
			t.Fatal(err)
		}
	}

	diff := cmp.Diff(string(want), string(got))
	if diff == "" {
		return
	}
	t.Errorf("%s (-want +got):\n%s", wantPath, diff)

	// Write a "got" file for reference.
	gotPath := name + ".got-" + sub
	if err := os.WriteFile(gotPath, got, 0666); err != nil {
		t.Fatalf("error writing %s: %s", gotPath, err)
	}
}
