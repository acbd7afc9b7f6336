package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store wraps the shared SQLite database holding the event and alert
// tables. The ingester and the rule engine each open their own Store;
// they coordinate only through the database's own transaction engine.
type Store struct {
	db *sqlx.DB
}

// Open opens the database at path. The schema is assumed to exist; use
// Init to bootstrap it.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func dsn(path string) string {
	// Writers back off instead of failing immediately when the other
	// process holds the write lock.
	return path + "?_busy_timeout=5000"
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	host TEXT NOT NULL,
	user TEXT NOT NULL,
	action TEXT NOT NULL,
	status TEXT NOT NULL,
	ip TEXT NOT NULL,
	sidecar TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events (timestamp);
CREATE INDEX IF NOT EXISTS idx_events_action ON events (action);

CREATE TABLE IF NOT EXISTS alerts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time TEXT NOT NULL,
	rule TEXT NOT NULL,
	severity TEXT NOT NULL,
	ip TEXT,
	user TEXT,
	host TEXT,
	details TEXT
);
CREATE INDEX IF NOT EXISTS idx_alerts_time ON alerts (time);

CREATE TABLE IF NOT EXISTS rule_cursors (
	rule TEXT PRIMARY KEY,
	last_id INTEGER NOT NULL DEFAULT 0
);
`

// Init creates the tables and indexes if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
