package database

import (
	"database/sql"
	"fmt"
	"log"
)

// getSchemaVersion reads PRAGMA user_version from the database.
func getSchemaVersion(conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// migrate brings the database schema up to the latest version.
// It uses PRAGMA user_version to track which migrations have been applied.
func migrate(conn *sql.DB) error {
	current, err := getSchemaVersion(conn)
	if err != nil {
		return err
	}

	if current >= latestVersion() {
		return nil
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		log.Printf("applying migration %d: %s", m.Version, m.Description)

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		// modernc/sqlite does not apply user_version inside a transaction.
		// The DDL is idempotent, so a crash here just re-runs the migration.
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			return fmt.Errorf("setting version %d: %w", m.Version, err)
		}
	}

	return nil
}
