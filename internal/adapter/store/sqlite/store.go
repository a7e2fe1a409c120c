// Package sqlite implements the run-history store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/difflens/difflens/internal/store"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path. Use ":memory:" for
// an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- One row per review run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		files_reviewed INTEGER NOT NULL DEFAULT 0,
		model_calls INTEGER NOT NULL DEFAULT 0,
		summary_posted INTEGER NOT NULL DEFAULT 0
	);

	-- Annotations posted during a run
	CREATE TABLE IF NOT EXISTS annotations (
		annotation_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		finding_type TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 0.0,
		text TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_annotations_run ON annotations(run_id);
	CREATE INDEX IF NOT EXISTS idx_annotations_fingerprint ON annotations(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_runs_target_started ON runs(target, started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a run and its annotations in one transaction.
func (s *Store) SaveRun(ctx context.Context, run store.Run, annotations []store.Annotation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, target, started_at, files_reviewed, model_calls, summary_posted)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Target,
		run.StartedAt.Unix(),
		run.FilesReviewed,
		run.ModelCalls,
		boolToInt(run.SummaryPosted),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, a := range annotations {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO annotations (run_id, file, line, finding_type, confidence, text, fingerprint)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, a.File, a.Line, a.Type, a.Confidence, a.Text, a.Fingerprint,
		)
		if err != nil {
			return fmt.Errorf("failed to insert annotation: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, target, started_at, files_reviewed, model_calls, summary_posted
		 FROM runs WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, target, started_at, files_reviewed, model_calls, summary_posted
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// AnnotationsByRun returns a run's annotations in posting order.
func (s *Store) AnnotationsByRun(ctx context.Context, runID string) ([]store.Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, file, line, finding_type, confidence, text, fingerprint
		 FROM annotations WHERE run_id = ? ORDER BY annotation_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotations: %w", err)
	}
	defer rows.Close()

	var out []store.Annotation
	for rows.Next() {
		var a store.Annotation
		if err := rows.Scan(&a.RunID, &a.File, &a.Line, &a.Type, &a.Confidence, &a.Text, &a.Fingerprint); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LatestSummaryAt returns the start time of the most recent run that posted
// a summary for the target.
func (s *Store) LatestSummaryAt(ctx context.Context, target string) (time.Time, bool, error) {
	var startedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT started_at FROM runs
		 WHERE target = ? AND summary_posted = 1
		 ORDER BY started_at DESC LIMIT 1`, target).Scan(&startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query latest summary: %w", err)
	}
	return time.Unix(startedAt, 0), true, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var run store.Run
	var startedAt int64
	var summaryPosted int
	if err := row.Scan(&run.RunID, &run.Target, &startedAt, &run.FilesReviewed, &run.ModelCalls, &summaryPosted); err != nil {
		return store.Run{}, err
	}
	run.StartedAt = time.Unix(startedAt, 0)
	run.SummaryPosted = summaryPosted != 0
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
