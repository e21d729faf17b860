// Package history logs completed sessions, per-item outcomes and key merge
// events to a relational store. The profile file stays the source of truth
// for scheduling; history exists for stats and audit.
package history

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Options selects the history backend. SQLite is the default; Postgres is
// used when Type is "postgres" and DSN is set.
type Options struct {
	Type string // "sqlite" or "postgres"
	Path string // SQLite file path
	DSN  string // Postgres connection string
}

// Connect opens the history database and ensures the schema exists.
func Connect(opts Options) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	if opts.Type == "postgres" {
		db, err = sqlx.Connect("postgres", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	} else {
		path := opts.Path
		if path == "" {
			path = filepath.Join("data", "history.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		db, err = sqlx.Connect("sqlite3", path)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		// SQLite doesn't support multiple writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func initializeSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			duration_minutes INTEGER DEFAULT 0,
			total_exercises INTEGER DEFAULT 0,
			correct_exercises INTEGER DEFAULT 0,
			accuracy_rate REAL DEFAULT 0,
			promotions INTEGER DEFAULT 0,
			new_items_introduced INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			is_correct BOOLEAN NOT NULL,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS merge_events (
			canonical_id TEXT NOT NULL,
			dropped_id TEXT NOT NULL,
			kept_repetitions INTEGER DEFAULT 0,
			dropped_repetitions INTEGER DEFAULT 0,
			kind TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_session ON outcomes(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, date)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize history schema: %w", err)
		}
	}
	return nil
}
