// Package store keeps the analysis history in a local SQLite file.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection to the result history.
type Store struct {
	db *sql.DB
}

// One connection only: pragmas are per connection and SQLite takes a
// single writer anyway.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
	"PRAGMA synchronous = NORMAL",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS results (
		id            TEXT PRIMARY KEY,
		sequence      INTEGER NOT NULL UNIQUE,
		student_id    TEXT NOT NULL,
		analyst_name  TEXT NOT NULL,
		policy        TEXT NOT NULL,
		value         REAL NOT NULL,
		average_score REAL NOT NULL,
		category      TEXT NOT NULL,
		reasons       TEXT NOT NULL,
		observations  TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS results_student_id ON results (student_id)`,
	countersSchema,
}

// Open connects to the database at dsn (a file path or a sqlite URI) and
// creates the tables it needs.
func Open(dsn string) (s *Store, err error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	if err := seedCounter(db, resultsCounter, "results"); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB exposes the connection for ad hoc queries.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ResultRepo() ResultRepo { return &resultRepo{db: s.db} }

// DefaultDBPath is $GRADETREND_DB when set, otherwise gradetrend.db under
// the XDG data directory. The parent directory is created.
func DefaultDBPath() (string, error) {
	path := os.Getenv("GRADETREND_DB")
	if path == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		path = filepath.Join(base, "gradetrend", "gradetrend.db")
	}
	return path, EnsureDir(path)
}

// EnsureDir creates the directory that will hold path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
