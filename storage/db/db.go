// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores the history of breakdown reports in a SQL
// database, so successive runs of a benchmark can be compared.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/TestPerson88/aztec-packages/breakdown"
)

// DB is a high-level interface to a report history database. It's
// safe for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertReport *sql.Stmt
	history      *sql.Stmt
	countReports *sql.Stmt
}

// now is replaced during testing.
var now = time.Now

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Reports (
	ReportID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Benchmark VARCHAR(255) NOT NULL,
	File VARCHAR(1024) NOT NULL,
	Created BIGINT NOT NULL,
	KeptMillis DOUBLE,
	RealMillis DOUBLE
{{- if not .sqlite3}},
	INDEX (Benchmark)
{{- end}}
);
CREATE TABLE IF NOT EXISTS ReportRows (
	ReportID BIGINT UNSIGNED,
	TableID VARCHAR(255),
	RowIndex INT,
	Label VARCHAR(1024),
	Nanos DOUBLE,
	Fraction DOUBLE,
	PRIMARY KEY (ReportID, TableID, RowIndex),
	FOREIGN KEY (ReportID) REFERENCES Reports(ReportID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS ReportsBenchmark ON Reports(Benchmark);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertReport, err = db.sql.Prepare("INSERT INTO Reports(Benchmark, File, Created, KeptMillis, RealMillis) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.history, err = db.sql.Prepare("SELECT ReportID, File, Created, KeptMillis, RealMillis FROM Reports WHERE Benchmark = ? ORDER BY ReportID DESC LIMIT ?")
	if err != nil {
		return err
	}
	db.countReports, err = db.sql.Prepare("SELECT COUNT(*) FROM Reports")
	if err != nil {
		return err
	}
	return nil
}

// A Summary describes one stored report.
type Summary struct {
	ID      int64
	File    string
	Created time.Time

	// KeptMillis and RealMillis are the label sum and the
	// benchmark's real time from the report's first coverage
	// table. They are zero if the report had no such table.
	KeptMillis, RealMillis float64
}

// Coverage returns KeptMillis/RealMillis, or 0 if RealMillis is zero.
func (s *Summary) Coverage() float64 {
	if s.RealMillis == 0 {
		return 0
	}
	return s.KeptMillis / s.RealMillis
}

// InsertReport stores rep, computed from the benchmark results file
// file, and returns its report ID. The report and all of its rows
// are stored in a single transaction.
func (db *DB) InsertReport(ctx context.Context, file string, rep *breakdown.Report) (id int64, err error) {
	var keptMs, realMs float64
	for _, t := range rep.Tables {
		if t.Config.Footer == breakdown.CoverageFooter {
			keptMs, realMs = t.Sum, t.Total
			break
		}
	}

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.StmtContext(ctx, db.insertReport).ExecContext(ctx, rep.Benchmark, file, now().Unix(), keptMs, realMs)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	var args []interface{}
	for _, t := range rep.Tables {
		for i, row := range t.Rows {
			args = append(args, id, t.Config.ID, i, row.Label, row.Nanos, row.Fraction)
		}
	}
	if len(args) > 0 {
		query := "INSERT INTO ReportRows VALUES " + strings.Repeat("(?, ?, ?, ?, ?, ?), ", len(args)/6)
		query = strings.TrimSuffix(query, ", ")
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// History returns up to limit stored reports for benchmark, most
// recent first.
func (db *DB) History(ctx context.Context, benchmark string, limit int) ([]Summary, error) {
	rows, err := db.history.QueryContext(ctx, benchmark, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sums []Summary
	for rows.Next() {
		var s Summary
		var created int64
		if err := rows.Scan(&s.ID, &s.File, &created, &s.KeptMillis, &s.RealMillis); err != nil {
			return nil, err
		}
		s.Created = time.Unix(created, 0).UTC()
		sums = append(sums, s)
	}
	return sums, rows.Err()
}

// CountReports returns the number of stored reports.
func (db *DB) CountReports(ctx context.Context) (int, error) {
	var n int
	err := db.countReports.QueryRowContext(ctx).Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertReport, db.history, db.countReports} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
