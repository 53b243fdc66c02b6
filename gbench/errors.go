// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gbench

import "fmt"

// A SyntaxError reports a benchmark results file that is not valid
// JSON, or whose structure does not match the harness format.
type SyntaxError struct {
	FileName string
	Offset   int64 // Byte offset of the error, if known
	Err      error
}

func (e *SyntaxError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("%s: offset %d: %v", e.FileName, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.FileName, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// A NotFoundError reports that no benchmark in a suite has the
// requested name.
type NotFoundError struct {
	Name     string
	FileName string
	Count    int // Number of benchmarks in the suite
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: benchmark %q not found among %d benchmarks", e.FileName, e.Name, e.Count)
}

// A MissingKeyError reports a field that is absent from a benchmark
// record.
type MissingKeyError struct {
	Benchmark string
	Key       string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("benchmark %q has no field %q", e.Benchmark, e.Key)
}

// A ValueError reports a field whose value is not a number or a
// numeric string.
type ValueError struct {
	Benchmark string
	Key       string
	Value     string // Raw JSON value
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("benchmark %q: field %q: not a number: %s", e.Benchmark, e.Key, e.Value)
}
