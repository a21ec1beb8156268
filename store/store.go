// Package store persists a history of evaluated expressions to a local
// SQLite database, so a REPL session (or the LSP server) can show what
// was run and what it produced.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ResultKind discriminates why an evaluation produced the result text
// it did, mirroring the three closed error kinds compile/runtime
// diagnostics can carry plus a success case.
type ResultKind string

const (
	KindOK           ResultKind = "ok"
	KindCompileError ResultKind = "compile_error"
	KindRuntimeError ResultKind = "runtime_error"
	KindOutOfMemory  ResultKind = "out_of_memory"
)

// Evaluation is one recorded run of the compiler+VM pipeline.
type Evaluation struct {
	ID         int64
	Source     string
	ResultKind ResultKind
	ResultText string
	Line       int
	CreatedAt  time.Time
}

// Store wraps a SQLite-backed evaluation log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and ensures
// its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: setting busy timeout: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		result_kind TEXT NOT NULL,
		result_text TEXT NOT NULL DEFAULT '',
		line INTEGER NOT NULL DEFAULT 0,
		created_unix INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one evaluation to the history. line is the source
// line the result or diagnostic is anchored to; 0 for a successful
// evaluation, since success has no single anchoring line.
func (s *Store) Record(source string, kind ResultKind, text string, line int) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO history (source, result_kind, result_text, line, created_unix) VALUES (?, ?, ?, ?, ?)",
		source, string(kind), text, line, time.Now().UTC().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("store: recording evaluation: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns the most recent evaluations, newest first, capped at
// limit rows.
func (s *Store) Recent(limit int) ([]Evaluation, error) {
	rows, err := s.db.Query(
		"SELECT id, source, result_kind, result_text, line, created_unix FROM history ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: querying evaluations: %w", err)
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		var e Evaluation
		var kind string
		var createdUnix int64
		if err := rows.Scan(&e.ID, &e.Source, &kind, &e.ResultText, &e.Line, &createdUnix); err != nil {
			return nil, fmt.Errorf("store: scanning evaluation: %w", err)
		}
		e.ResultKind = ResultKind(kind)
		e.CreatedAt = time.Unix(createdUnix, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
