package domain

import "time"

// Thread statuses as reported by the pull request API. Anything other than
// active or pending counts as resolved for deduplication purposes.
const (
	ThreadStatusActive   = "active"
	ThreadStatusPending  = "pending"
	ThreadStatusFixed    = "fixed"
	ThreadStatusWontFix  = "wontFix"
	ThreadStatusClosed   = "closed"
	ThreadStatusByDesign = "byDesign"
)

// CommentThread is a read-only snapshot of an existing review comment on the
// pull request. The snapshot is fetched once per run and never mutated.
//
// The four file positions are the endpoints of the thread's line range on
// the right (new) and left (old) side of the diff; a zero value means the
// endpoint is absent. A proposed annotation is considered co-located with
// the thread when its line equals any of the four.
type CommentThread struct {
	ID                int
	File              string
	RightFileStart    int
	RightFileEnd      int
	LeftFileStart     int
	LeftFileEnd       int
	AuthorUniqueName  string
	AuthorDisplayName string
	Content           string
	Status            string
	IsDeleted         bool
	PublishedAt       time.Time
}

// Open reports whether the thread is still awaiting action. Deleted threads
// and threads in any resolved-like status are not open.
func (t CommentThread) Open() bool {
	if t.IsDeleted {
		return false
	}
	switch t.Status {
	case "", ThreadStatusActive, ThreadStatusPending:
		return true
	default:
		return false
	}
}

// LineEndpoints returns the thread's non-zero line-range endpoints in a
// fixed order: right start, right end, left start, left end.
func (t CommentThread) LineEndpoints() []int {
	var out []int
	for _, n := range [4]int{t.RightFileStart, t.RightFileEnd, t.LeftFileStart, t.LeftFileEnd} {
		if n > 0 {
			out = append(out, n)
		}
	}
	return out
}
