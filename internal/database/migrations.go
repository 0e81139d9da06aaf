package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "run history",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    profile_url TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('ok', 'failed')),
    http_status INTEGER DEFAULT 0,
    publication_count INTEGER DEFAULT 0,
    error TEXT,
    output_path TEXT,
    result_json TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index runs by status",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status, started_at)`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
