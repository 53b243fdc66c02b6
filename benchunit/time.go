// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit converts benchmark time measurements between the
// units used by benchmark harnesses and the units used for display.
//
// Harness output records times as a number plus a unit name, such as
// the "time_unit" field of Google Benchmark JSON. Internally, all
// times are normalized to nanoseconds, and reports display
// milliseconds.
package benchunit

import "fmt"

// nanosPer maps a time unit name to the number of nanoseconds in one
// unit.
var nanosPer = map[string]float64{
	"ns":  1,
	"us":  1e3,
	"µs":  1e3,
	"ms":  1e6,
	"s":   1e9,
	"sec": 1e9,
}

// An UnknownUnitError reports a time unit benchunit cannot convert.
type UnknownUnitError struct {
	Unit string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown time unit %q", e.Unit)
}

// Nanos converts value, expressed in unit, to nanoseconds. An empty
// unit is treated as "ns", which is the harness default.
func Nanos(value float64, unit string) (float64, error) {
	if unit == "" {
		return value, nil
	}
	f, ok := nanosPer[unit]
	if !ok {
		return 0, &UnknownUnitError{unit}
	}
	return value * f, nil
}

// Millis converts a value in nanoseconds to milliseconds.
func Millis(ns float64) float64 {
	return ns / 1e6
}
