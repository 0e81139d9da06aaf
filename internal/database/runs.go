package database

import (
	"database/sql"
)

const runColumns = `id, profile_url, started_at, finished_at, status, http_status,
	publication_count, error, output_path, result_json`

// InsertRun records a finished run.
func (db *DB) InsertRun(r Run) error {
	_, err := db.conn.Exec(
		`INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProfileURL, r.StartedAt, r.FinishedAt, r.Status, r.HTTPStatus,
		r.PublicationCount, r.Error, r.OutputPath, r.ResultJSON,
	)
	return err
}

// GetRun returns a single run by ID, or nil if it does not exist.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetRecentRuns returns up to limit runs, newest first.
func (db *DB) GetRecentRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

// GetLatestSuccessfulRun returns the newest run with status ok, or nil.
func (db *DB) GetLatestSuccessfulRun() (*Run, error) {
	row := db.conn.QueryRow(
		`SELECT `+runColumns+` FROM runs WHERE status = ?
		ORDER BY started_at DESC, rowid DESC LIMIT 1`, StatusOK,
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetStats returns aggregate run statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM runs", &s.TotalRuns},
		{"SELECT COUNT(*) FROM runs WHERE status = 'ok'", &s.SuccessfulRuns},
		{"SELECT COUNT(*) FROM runs WHERE status = 'failed'", &s.FailedRuns},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	var last sql.NullString
	if err := db.conn.QueryRow("SELECT MAX(started_at) FROM runs WHERE status = 'ok'").Scan(&last); err != nil {
		return nil, err
	}
	s.LastSuccessAt = last.String

	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	if err := row.Scan(&r.ID, &r.ProfileURL, &r.StartedAt, &r.FinishedAt, &r.Status,
		&r.HTTPStatus, &r.PublicationCount, &r.Error, &r.OutputPath, &r.ResultJSON); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}
