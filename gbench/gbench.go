// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gbench reads the JSON output of the Google Benchmark
// harness.
//
// A benchmark results file holds a "context" object describing the
// machine and build, followed by a "benchmarks" array. Each benchmark
// is an object with a "name", its timings ("real_time", "cpu_time",
// in "time_unit"), and any number of user counters. The op-count-time
// builds of the proving system record per-function wall time in
// nanoseconds as counters, keyed by function label, so a single
// benchmark record carries a full profile of where its time went.
//
// The package keeps counters as raw JSON until they are asked for.
// Harnesses variously emit counters as JSON numbers or as numeric
// strings; both are accepted.
package gbench

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/TestPerson88/aztec-packages/benchunit"
)

// A Suite is the parsed content of one benchmark results file.
type Suite struct {
	// FileName is the name the suite was read from. It is purely
	// diagnostic.
	FileName string

	Context Context

	// Benchmarks lists the benchmark records in file order.
	Benchmarks []*Record
}

// Context describes the environment a suite was recorded in. All
// fields are optional.
type Context struct {
	Date             string `json:"date"`
	HostName         string `json:"host_name"`
	Executable       string `json:"executable"`
	NumCPUs          int    `json:"num_cpus"`
	MHzPerCPU        int    `json:"mhz_per_cpu"`
	LibraryBuildType string `json:"library_build_type"`
}

// A Record is a single benchmark result and all of its counters.
type Record struct {
	// Name is the full benchmark name, including arguments, such
	// as "ClientIVCBench/Full/6".
	Name string

	// TimeUnit is the unit of real_time and cpu_time. Empty
	// means nanoseconds.
	TimeUnit string

	fields map[string]json.RawMessage
}

// NewRecord returns a Record with the given name and fields. Values
// are marshaled to JSON, so they may be numbers or numeric strings.
// It is intended for constructing records in memory.
func NewRecord(name string, fields map[string]any) (*Record, error) {
	r := &Record{Name: name, fields: make(map[string]json.RawMessage, len(fields)+1)}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		r.fields[k] = raw
	}
	r.fields["name"], _ = json.Marshal(name)
	r.TimeUnit = r.str("time_unit")
	return r, nil
}

// Value returns the numeric value of field key, without any unit
// conversion.
func (r *Record) Value(key string) (float64, error) {
	raw, ok := r.fields[key]
	if !ok {
		return 0, &MissingKeyError{Benchmark: r.Name, Key: key}
	}
	v, ok := parseNumber(raw)
	if !ok {
		return 0, &ValueError{Benchmark: r.Name, Key: key, Value: string(raw)}
	}
	return v, nil
}

// Nanoseconds returns the timing counter key in nanoseconds.
// Counters recorded by the op-count-time instrumentation are always
// in nanoseconds, regardless of the record's TimeUnit.
func (r *Record) Nanoseconds(key string) (float64, error) {
	return r.Value(key)
}

// RealTime returns the record's wall-clock time in nanoseconds,
// converted from TimeUnit.
func (r *Record) RealTime() (float64, error) {
	v, err := r.Value("real_time")
	if err != nil {
		return 0, err
	}
	return benchunit.Nanos(v, r.TimeUnit)
}

// str returns the string value of field key, or "" if the field is
// missing or not a string.
func (r *Record) str(key string) string {
	var s string
	if raw, ok := r.fields[key]; ok {
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
	}
	return s
}

// parseNumber parses a JSON number or a JSON string holding a finite
// number.
func parseNumber(raw json.RawMessage) (float64, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	var s string
	switch v := v.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Lookup returns the record named name. If several records share the
// name, the last one in file order wins, matching how a forward scan
// that overwrites on every match behaves.
func (s *Suite) Lookup(name string) (*Record, error) {
	for i := len(s.Benchmarks) - 1; i >= 0; i-- {
		if s.Benchmarks[i].Name == name {
			return s.Benchmarks[i], nil
		}
	}
	return nil, &NotFoundError{Name: name, FileName: s.FileName, Count: len(s.Benchmarks)}
}

// Names returns the benchmark names in file order. Duplicate names
// are listed each time they appear.
func (s *Suite) Names() []string {
	names := make([]string, len(s.Benchmarks))
	for i, b := range s.Benchmarks {
		names[i] = b.Name
	}
	return names
}
