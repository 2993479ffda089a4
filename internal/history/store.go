// Package history keeps a SQLite journal of pipeline runs and their per-stage
// outcomes, so an operator can see what ran, when, and where it stopped.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    command     TEXT NOT NULL,
    outcome     TEXT NOT NULL DEFAULT 'running',
    started_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS stages (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      TEXT NOT NULL REFERENCES runs(id),
    stage       TEXT NOT NULL,
    outcome     TEXT NOT NULL,
    detail      TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0
);
`

// Run summarizes one recorded pipeline run.
type Run struct {
	ID         string
	Command    string
	Outcome    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall time of a finished run; zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Stage is one recorded stage outcome within a run.
type Stage struct {
	Stage    string
	Outcome  string
	Detail   string
	Duration time.Duration
}

// Store is the SQLite-backed run journal.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the journal database, enables WAL mode and a busy
// timeout, and creates the schema idempotently.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// One connection: SQLite has a single writer, and a lone connection
	// avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun inserts a new run in the running state and returns its ID.
func (s *Store) BeginRun(ctx context.Context, command string) (string, error) {
	id := uuid.NewString()
	const q = `INSERT INTO runs (id, command) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, q, id, command); err != nil {
		return "", fmt.Errorf("history: begin run: %w", err)
	}
	return id, nil
}

// RecordStage appends a stage outcome to a run.
func (s *Store) RecordStage(ctx context.Context, runID, stage, outcome, detail string, d time.Duration) error {
	const q = `INSERT INTO stages (run_id, stage, outcome, detail, duration_ms) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, runID, stage, outcome, detail, d.Milliseconds()); err != nil {
		return fmt.Errorf("history: record stage %q: %w", stage, err)
	}
	return nil
}

// FinishRun marks a run's final outcome.
func (s *Store) FinishRun(ctx context.Context, runID, outcome string) error {
	const q = `UPDATE runs SET outcome = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, q, outcome, runID); err != nil {
		return fmt.Errorf("history: finish run: %w", err)
	}
	return nil
}

// RecentRuns returns up to n runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, n int) ([]Run, error) {
	const q = `
		SELECT id, command, outcome, started_at, COALESCE(finished_at, '')
		FROM runs ORDER BY started_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Command, &r.Outcome, &started, &finished); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.StartedAt = parseDBTime(started)
		r.FinishedAt = parseDBTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// StagesFor returns the recorded stages of a run in insertion order.
func (s *Store) StagesFor(ctx context.Context, runID string) ([]Stage, error) {
	const q = `SELECT stage, outcome, detail, duration_ms FROM stages WHERE run_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("history: list stages: %w", err)
	}
	defer rows.Close()

	var out []Stage
	for rows.Next() {
		var st Stage
		var ms int64
		if err := rows.Scan(&st.Stage, &st.Outcome, &st.Detail, &ms); err != nil {
			return nil, fmt.Errorf("history: scan stage: %w", err)
		}
		st.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, st)
	}
	return out, rows.Err()
}

// LastRun returns the most recent run, or ErrNoRuns if the journal is empty.
func (s *Store) LastRun(ctx context.Context) (Run, error) {
	runs, err := s.RecentRuns(ctx, 1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrNoRuns
	}
	return runs[0], nil
}

// ErrNoRuns indicates an empty journal.
var ErrNoRuns = errors.New("no recorded runs")

// parseDBTime handles the timestamp formats SQLite emits for
// CURRENT_TIMESTAMP columns. modernc.org/sqlite typically returns RFC 3339
// or the classic "2006-01-02 15:04:05" form.
func parseDBTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
