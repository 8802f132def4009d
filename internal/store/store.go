// Package store keeps a history of finished runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/maxvaer/urlbypass/internal/probe"
)

// FileName is the database file created inside the history directory.
const FileName = "urlbypass.db"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	targets TEXT NOT NULL,
	started TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	total INTEGER NOT NULL,
	errors INTEGER NOT NULL,
	incomplete INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS results (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	url TEXT NOT NULL,
	status INTEGER,
	size INTEGER,
	message TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
`

// DB is the run history database.
type DB struct {
	db   *sql.DB
	path string
}

// Run is a stored run without its results.
type Run struct {
	ID         int64
	Targets    []string
	Started    time.Time
	Duration   time.Duration
	Total      int
	Errors     int
	Incomplete bool
}

// Open opens or creates the history database in dir.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	path := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initialising %s: %w", path, err)
		}
	}
	return &DB{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *DB) Path() string { return s.path }

func (s *DB) Close() error { return s.db.Close() }

// SaveRun stores a run and all its results in one transaction and returns
// the new run ID.
func (s *DB) SaveRun(ctx context.Context, run Run, results []probe.Result) (int64, error) {
	targets, err := json.Marshal(run.Targets)
	if err != nil {
		return 0, err
	}
	errCount := 0
	for _, r := range results {
		if !r.Success() {
			errCount++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (targets, started, duration_ms, total, errors, incomplete) VALUES (?, ?, ?, ?, ?, ?)`,
		string(targets), run.Started.UTC().Format(time.RFC3339Nano), run.Duration.Milliseconds(),
		len(results), errCount, run.Incomplete)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, seq, url, status, size, message, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range results {
		var status, size sql.NullInt64
		if code, ok := r.StatusCode(); ok {
			n, _ := r.ContentLength()
			status = sql.NullInt64{Int64: int64(code), Valid: true}
			size = sql.NullInt64{Int64: n, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, i, r.URL, status, size, r.Message, r.Duration.Milliseconds()); err != nil {
			return 0, fmt.Errorf("inserting result %s: %w", r.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means all.
func (s *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, targets, started, duration_ms, total, errors, incomplete FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns a run and its results in the order they were stored.
func (s *DB) GetRun(ctx context.Context, id int64) (Run, []probe.Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, targets, started, duration_ms, total, errors, incomplete FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT url, status, size, message, duration_ms FROM results WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return Run{}, nil, err
	}
	defer rows.Close()

	var results []probe.Result
	for rows.Next() {
		var (
			url, message string
			status, size sql.NullInt64
			durationMS   int64
		)
		if err := rows.Scan(&url, &status, &size, &message, &durationMS); err != nil {
			return Run{}, nil, err
		}
		var r probe.Result
		if status.Valid {
			r = probe.Succeeded(url, int(status.Int64), size.Int64)
		} else {
			r = probe.Failed(url, errors.New(message))
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, r)
	}
	return run, results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run        Run
		targets    string
		started    string
		durationMS int64
	)
	if err := sc.Scan(&run.ID, &targets, &started, &durationMS, &run.Total, &run.Errors, &run.Incomplete); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(targets), &run.Targets); err != nil {
		return Run{}, fmt.Errorf("decoding targets of run %d: %w", run.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return Run{}, fmt.Errorf("decoding start time of run %d: %w", run.ID, err)
	}
	run.Started = t
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}
