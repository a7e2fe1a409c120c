// Package store bridges the persistence layer to the review use case port.
package store

import (
	"context"
	"time"

	"github.com/difflens/difflens/internal/store"
	"github.com/difflens/difflens/internal/usecase/review"
)

// Bridge adapts store.Store to the review.RunStore port. The conversion
// lives here so neither package imports the other.
type Bridge struct {
	store store.Store
}

// NewBridge creates a new store adapter.
func NewBridge(s store.Store) *Bridge {
	return &Bridge{store: s}
}

var _ review.RunStore = (*Bridge)(nil)

// RecordRun converts and saves a run record with its annotations.
func (b *Bridge) RecordRun(ctx context.Context, rec review.RunRecord) error {
	run := store.Run{
		RunID:         rec.RunID,
		Target:        rec.Target,
		StartedAt:     rec.StartedAt,
		FilesReviewed: rec.FilesReviewed,
		ModelCalls:    rec.ModelCalls,
		SummaryPosted: rec.SummaryPosted,
	}

	annotations := make([]store.Annotation, len(rec.Annotations))
	for i, a := range rec.Annotations {
		annotations[i] = store.Annotation{
			RunID:       rec.RunID,
			File:        a.File,
			Line:        a.Line,
			Type:        string(a.Type),
			Confidence:  a.Confidence,
			Text:        a.Text,
			Fingerprint: string(a.Fingerprint()),
		}
	}

	return b.store.SaveRun(ctx, run, annotations)
}

// LatestSummaryAt reports when a summary was last posted for the target.
func (b *Bridge) LatestSummaryAt(ctx context.Context, target string) (time.Time, bool, error) {
	return b.store.LatestSummaryAt(ctx, target)
}
