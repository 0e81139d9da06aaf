package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the run history store. Each fetch attempt, successful or not,
// becomes one row in the runs table; the latest successful row carries the
// full scholar.json document so `show` and the preview server can read it
// back without touching the output directory.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the history database at dbPath and applies any
// pending migrations. The file runs in WAL mode.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path, usually <data_dir>/scholarfetch.db.
func (db *DB) Path() string {
	return db.path
}
