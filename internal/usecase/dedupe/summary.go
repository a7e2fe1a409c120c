package dedupe

import (
	"strings"
	"time"

	"github.com/difflens/difflens/internal/domain"
)

// SummaryMarker is the heading every run summary comment starts with; its
// presence is how a summary-shaped comment is recognized later.
const SummaryMarker = "Code Review Summary"

// DefaultSummaryMaxAge is how recent an existing summary must be to
// suppress posting a new one.
const DefaultSummaryMaxAge = 24 * time.Hour

// SummaryPostedRecently reports whether the automated reviewer already
// posted a run summary within maxAge of now. A non-positive maxAge selects
// the default. Deleted comments do not count; resolved ones do, since a
// resolved summary was still posted.
func (g *Guard) SummaryPostedRecently(threads []domain.CommentThread, now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultSummaryMaxAge
	}

	for _, t := range threads {
		if t.IsDeleted {
			continue
		}
		if !g.authoredByReviewer(t) {
			continue
		}
		if !strings.Contains(t.Content, SummaryMarker) {
			continue
		}
		if now.Sub(t.PublishedAt) < maxAge {
			return true
		}
	}

	return false
}
