package azdo

import (
	"strings"
	"time"

	"github.com/difflens/difflens/internal/domain"
)

// MapThreads converts API threads into the domain snapshot. Threads with no
// comments carry no author or content and map to an empty-content thread,
// which the duplicate guard will never match.
func MapThreads(threads []Thread) []domain.CommentThread {
	out := make([]domain.CommentThread, 0, len(threads))
	for _, t := range threads {
		out = append(out, mapThread(t))
	}
	return out
}

func mapThread(t Thread) domain.CommentThread {
	d := domain.CommentThread{
		ID:          t.ID,
		Status:      t.Status,
		IsDeleted:   t.IsDeleted,
		PublishedAt: parseAPITime(t.PublishedDate),
	}

	if tc := t.ThreadContext; tc != nil {
		d.File = tc.FilePath
		d.RightFileStart = positionLine(tc.RightFileStart)
		d.RightFileEnd = positionLine(tc.RightFileEnd)
		d.LeftFileStart = positionLine(tc.LeftFileStart)
		d.LeftFileEnd = positionLine(tc.LeftFileEnd)
	}

	if len(t.Comments) > 0 {
		first := t.Comments[0]
		d.Content = first.Content
		d.AuthorUniqueName = first.Author.UniqueName
		d.AuthorDisplayName = first.Author.DisplayName
		if d.PublishedAt.IsZero() {
			d.PublishedAt = parseAPITime(first.PublishedDate)
		}
		if first.IsDeleted {
			d.IsDeleted = true
		}
	}

	return d
}

func positionLine(p *Position) int {
	if p == nil {
		return 0
	}
	return p.Line
}

// parseAPITime parses the API's timestamps, which come in RFC3339 with
// varying fractional precision. Unparseable values become the zero time,
// which the summary recency check treats as ancient.
func parseAPITime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
