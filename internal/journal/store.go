// Package journal persists forwarded remote calls to SQLite.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS calls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	method TEXT NOT NULL,
	args TEXT NOT NULL DEFAULT '',
	result TEXT NOT NULL DEFAULT '',
	connected INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calls_ts ON calls(ts);
CREATE INDEX IF NOT EXISTS idx_calls_method ON calls(method);
`

// Entry is one forwarded call.
type Entry struct {
	ID        int64         `yaml:"id"        json:"id"`
	Time      time.Time     `yaml:"time"      json:"time"`
	Method    string        `yaml:"method"    json:"method"`
	Args      string        `yaml:"args"      json:"args"`
	Result    string        `yaml:"result"    json:"result"`
	Connected bool          `yaml:"connected" json:"connected"`
	Duration  time.Duration `yaml:"duration"  json:"duration"`
}

// Store is a call journal. It is safe for concurrent use.
type Store struct {
	db         *sql.DB
	path       string
	stmtInsert *sql.Stmt
}

// Open opens or creates the journal at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO calls (ts, method, args, result, connected, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}

	return &Store{db: db, path: path, stmtInsert: stmt}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Record appends e. A zero Time is replaced with the current time.
func (s *Store) Record(e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	_, err := s.stmtInsert.Exec(e.Time.UnixMilli(), e.Method, e.Args, e.Result, e.Connected, e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Method, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-empty method
// restricts the result to that method.
func (s *Store) Recent(limit int, method string) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, ts, method, args, result, connected, duration_ms FROM calls`
	args := []interface{}{}
	if method != "" {
		query += ` WHERE method = ?`
		args = append(args, method)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			ts, durMs int64
			connected bool
		)
		if err := rows.Scan(&e.ID, &ts, &e.Method, &e.Args, &e.Result, &connected, &durMs); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.Time = time.UnixMilli(ts)
		e.Connected = connected
		e.Duration = time.Duration(durMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than before and reports how many were removed.
func (s *Store) Prune(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM calls WHERE ts < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database.
func (s *Store) Close() error {
	s.stmtInsert.Close()
	return s.db.Close()
}
