// Package store defines the persistence layer interface for review run
// history.
package store

import (
	"context"
	"time"
)

// Store persists review runs and the annotations they posted.
type Store interface {
	// SaveRun stores a run together with its annotations.
	SaveRun(ctx context.Context, run Run, annotations []Annotation) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, runID string) (Run, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// AnnotationsByRun returns a run's annotations in posting order.
	AnnotationsByRun(ctx context.Context, runID string) ([]Annotation, error)

	// LatestSummaryAt returns when a summary comment was last posted for
	// the target, reporting found=false when no run ever posted one.
	LatestSummaryAt(ctx context.Context, target string) (time.Time, bool, error)

	// Close releases the underlying database handle.
	Close() error
}

// Run is one recorded review run.
type Run struct {
	RunID         string
	Target        string
	StartedAt     time.Time
	FilesReviewed int
	ModelCalls    int
	SummaryPosted bool
}

// Annotation is one comment a run posted.
type Annotation struct {
	RunID       string
	File        string
	Line        int
	Type        string
	Confidence  float64
	Text        string
	Fingerprint string
}
