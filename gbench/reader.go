// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gbench

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

// Load reads the benchmark results file at path.
//
// If the file cannot be opened or read, Load returns the underlying
// *fs.PathError. If the content is not valid JSON, it returns a
// *SyntaxError.
func Load(path string) (*Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode reads a benchmark results document from r. fileName is used
// in error messages; it is purely diagnostic.
func Decode(r io.Reader, fileName string) (*Suite, error) {
	var doc struct {
		Context    Context                      `json:"context"`
		Benchmarks []map[string]json.RawMessage `json:"benchmarks"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, decodeError(fileName, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &SyntaxError{FileName: fileName, Offset: dec.InputOffset(), Err: errors.New("unexpected data after top-level value")}
	}

	s := &Suite{FileName: fileName, Context: doc.Context}
	for _, fields := range doc.Benchmarks {
		if fields == nil {
			// A JSON null in the array.
			continue
		}
		rec := &Record{fields: fields}
		rec.Name = rec.str("name")
		rec.TimeUnit = rec.str("time_unit")
		s.Benchmarks = append(s.Benchmarks, rec)
	}
	return s, nil
}

// decodeError converts an error from the JSON decoder into a
// *SyntaxError where it describes malformed input. Other errors,
// such as read errors, are returned unchanged.
func decodeError(fileName string, err error) error {
	var (
		serr *json.SyntaxError
		terr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &serr):
		return &SyntaxError{FileName: fileName, Offset: serr.Offset, Err: err}
	case errors.As(err, &terr):
		return &SyntaxError{FileName: fileName, Offset: terr.Offset, Err: err}
	case err == io.EOF:
		return &SyntaxError{FileName: fileName, Err: errors.New("empty document")}
	case err == io.ErrUnexpectedEOF:
		return &SyntaxError{FileName: fileName, Err: errors.New("unexpected end of JSON input")}
	}
	return err
}
