// Package history records codec runs to a local sqlite database, giving the
// CLI's "stats" surface something to report on across invocations (spec
// §6's run-reporting note, expanded in SPEC_FULL.md §1.5). Unlike the
// in-process codec.Stats, a Run is durable: every encode/decode call appends
// one row.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"textsteg/internal/config"
)

// Run is one recorded encode or decode invocation.
type Run struct {
	ID               string
	Operation        string // "encode" or "decode"
	Algorithm        string
	Bits             int
	N                int
	CorpusPath       string
	PayloadBytes     int64
	TokensEmitted    int
	SkipWordsEmitted int
	CapacityFails    int
	Timestamp        time.Time
}

// DB wraps the run-history sqlite database.
type DB struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                  TEXT PRIMARY KEY,
	operation           TEXT NOT NULL,
	algorithm           TEXT NOT NULL,
	bits                INTEGER NOT NULL,
	n                   INTEGER NOT NULL,
	corpus_path         TEXT NOT NULL,
	payload_bytes       INTEGER NOT NULL,
	tokens_emitted      INTEGER NOT NULL,
	skip_words_emitted  INTEGER NOT NULL,
	capacity_fails      INTEGER NOT NULL,
	timestamp           TEXT NOT NULL
);
`

// Open opens (creating if necessary) the run-history database at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("history: creating data dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening %s: %w", path, err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: creating schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// OpenDefault opens the database at the XDG-compliant default path.
func OpenDefault() (*DB, error) {
	path, err := config.HistoryDBPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Close releases the underlying sqlite connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record inserts run as a new row, assigning it a uuid if ID is empty and
// Timestamp if zero.
func (db *DB) Record(run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	_, err := db.conn.Exec(
		`INSERT INTO runs (id, operation, algorithm, bits, n, corpus_path, payload_bytes, tokens_emitted, skip_words_emitted, capacity_fails, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Operation, run.Algorithm, run.Bits, run.N, run.CorpusPath,
		run.PayloadBytes, run.TokensEmitted, run.SkipWordsEmitted, run.CapacityFails,
		run.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return Run{}, fmt.Errorf("history: recording run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit most recent runs, newest first.
func (db *DB) Recent(limit int) ([]Run, error) {
	rows, err := db.conn.Query(
		`SELECT id, operation, algorithm, bits, n, corpus_path, payload_bytes, tokens_emitted, skip_words_emitted, capacity_fails, timestamp
		 FROM runs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var ts string
		if err := rows.Scan(&r.ID, &r.Operation, &r.Algorithm, &r.Bits, &r.N, &r.CorpusPath,
			&r.PayloadBytes, &r.TokensEmitted, &r.SkipWordsEmitted, &r.CapacityFails, &ts); err != nil {
			return nil, fmt.Errorf("history: scanning run: %w", err)
		}
		r.Timestamp, _ = time.Parse(time.RFC3339, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}
