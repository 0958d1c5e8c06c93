// Package store provides the SQLite-backed persistence layer for promptdeck.
// All entity access goes through a single *Store; SQLite runs in WAL mode with
// one writer connection so row updates are serialized by the database itself.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Sentinel errors returned by store operations.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingCredential indicates no API key is stored for the
	// user/provider pair.
	ErrMissingCredential = errors.New("missing credential")
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dsn and applies migrations.
// Use ":memory:" for an ephemeral database in tests.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// WAL allows readers to proceed while the run executor writes progress.
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA foreign_keys=ON")

	// Serialize all Go-side access through a single connection so SQLite
	// never sees concurrent writers.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping() error {
	return s.db.Ping()
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT,
			email TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS user_keys (
			user_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			api_key TEXT NOT NULL,
			PRIMARY KEY (user_id, provider)
		);
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS prompts (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS prompt_versions (
			id TEXT PRIMARY KEY,
			prompt_id TEXT NOT NULL,
			version_number INTEGER NOT NULL,
			prompt_text TEXT NOT NULL,
			comments TEXT,
			created_at TEXT NOT NULL,
			UNIQUE (prompt_id, version_number)
		);
		CREATE TABLE IF NOT EXISTS testsets (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			tests TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			prompt_version_id TEXT NOT NULL,
			model TEXT NOT NULL,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL,
			current_test INTEGER NOT NULL DEFAULT 0,
			total_tests INTEGER NOT NULL DEFAULT 0,
			results TEXT NOT NULL DEFAULT '[]',
			error TEXT,
			started_at TEXT,
			finished_at TEXT,
			cost REAL,
			success INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_prompt_versions_prompt ON prompt_versions(prompt_id);
		CREATE INDEX IF NOT EXISTS idx_prompts_project ON prompts(project_id);
		CREATE INDEX IF NOT EXISTS idx_testsets_project ON testsets(project_id);
		CREATE INDEX IF NOT EXISTS idx_runs_user ON runs(user_id);
	`)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
