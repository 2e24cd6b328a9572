package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"launchpad/history"

	_ "modernc.org/sqlite"
)

// Fixed-width timestamps keep lexicographic and chronological order in
// agreement, which the started_at indexes rely on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements history.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and runs
// migrations. Use ":memory:" for an in-memory database (useful for
// testing).
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateRecord(ctx context.Context, rec *history.Record) error {
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = history.StatusRunning
	}

	args, err := json.Marshal(rec.Args)
	if err != nil {
		return fmt.Errorf("marshaling args: %w", err)
	}
	argv, err := json.Marshal(rec.Argv)
	if err != nil {
		return fmt.Errorf("marshaling argv: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, preset, program, args, argv, status, exit_code, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Preset, rec.Program, string(args), string(argv),
		rec.Status, rec.ExitCode, rec.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting run record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinishRecord(ctx context.Context, id string, status history.RunStatus, exitCode int) error {
	ended := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, exit_code = ?, ended_at = ? WHERE id = ?`,
		status, exitCode, ended, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", history.ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*history.Record, error) {
	// Try exact match first, then prefix match.
	rec, err := s.getRecordExact(ctx, id)
	if err == nil {
		return rec, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, preset, program, args, argv, status, exit_code, started_at, ended_at
		FROM runs WHERE id LIKE ? || '%'`, id)
	if err != nil {
		return nil, fmt.Errorf("querying run record: %w", err)
	}
	defer rows.Close()

	var matches []*history.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", history.ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches %d records", history.ErrAmbiguous, id, len(matches))
	}
}

func (s *SQLiteStore) getRecordExact(ctx context.Context, id string) (*history.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, preset, program, args, argv, status, exit_code, started_at, ended_at
		FROM runs WHERE id = ?`, id)
	return scanRecordFromScanner(row)
}

func (s *SQLiteStore) ListRecords(ctx context.Context, opts history.ListOptions) ([]history.Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, preset, program, args, argv, status, exit_code, started_at, ended_at FROM runs`
	var args []any

	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}

	query += ` ORDER BY started_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing run records: %w", err)
	}
	defer rows.Close()

	var records []history.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) DeleteRecord(ctx context.Context, id string) error {
	// Resolve prefix first.
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, rec.ID)
	return err
}

func (s *SQLiteStore) RecentPresets(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 || limit > 10 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT preset, MAX(started_at) AS last FROM runs
		WHERE preset != ''
		GROUP BY preset ORDER BY last DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent presets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, last string
		if err := rows.Scan(&name, &last); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Scanner interface to work with both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecordFromScanner(s scanner) (*history.Record, error) {
	var rec history.Record
	var args, argv, startedAt string
	var endedAt sql.NullString
	err := s.Scan(&rec.ID, &rec.Preset, &rec.Program, &args, &argv,
		&rec.Status, &rec.ExitCode, &startedAt, &endedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(args), &rec.Args); err != nil {
		return nil, fmt.Errorf("unmarshaling args: %w", err)
	}
	if err := json.Unmarshal([]byte(argv), &rec.Argv); err != nil {
		return nil, fmt.Errorf("unmarshaling argv: %w", err)
	}
	rec.StartedAt, _ = time.Parse(timeLayout, startedAt)
	if endedAt.Valid {
		rec.EndedAt, _ = time.Parse(timeLayout, endedAt.String)
	}
	return &rec, nil
}

func scanRecord(rows *sql.Rows) (*history.Record, error) {
	return scanRecordFromScanner(rows)
}
