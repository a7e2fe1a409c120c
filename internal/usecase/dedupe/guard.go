// Package dedupe suppresses annotations that would duplicate review
// comments already posted on the pull request. Suppression is deliberately
// conservative: every condition must hold, and any doubt means the new
// annotation is posted. Failing to fetch the existing-comment snapshot is
// handled upstream by passing an empty snapshot, which makes the guard
// assume no duplicates.
package dedupe

import (
	"strings"

	"github.com/difflens/difflens/internal/domain"
)

// DefaultServiceMarker is the substring looked for in a comment author's
// unique name to recognize the automated reviewer's own service identity.
const DefaultServiceMarker = "build"

// displayNameMarker recognizes the reviewer by display name when the unique
// name gives no signal.
const displayNameMarker = "Build Service"

// typeKeywords maps each finding type to the words whose presence in an
// existing comment marks it as topically the same. Matched
// case-insensitively against the full comment text.
var typeKeywords = map[domain.FindingType][]string{
	domain.FindingBug:         {"bug", "error", "defect", "issue", "problem"},
	domain.FindingImprovement: {"improvement", "improve", "refactor", "enhancement", "simplify"},
	domain.FindingSecurity:    {"security", "vulnerability", "vulnerable", "credential", "injection", "unsafe"},
	domain.FindingStyle:       {"style", "formatting", "naming", "convention", "readability"},
	domain.FindingTest:        {"test", "coverage", "assertion"},
}

// Guard decides whether a proposed annotation duplicates an existing
// comment thread.
type Guard struct {
	serviceMarker string
}

// NewGuard creates a Guard that recognizes the automated reviewer by the
// given unique-name marker. An empty marker falls back to the default.
func NewGuard(serviceMarker string) *Guard {
	if serviceMarker == "" {
		serviceMarker = DefaultServiceMarker
	}
	return &Guard{serviceMarker: strings.ToLower(serviceMarker)}
}

// ShouldSuppress reports whether the proposed annotation must not be posted
// because an existing open thread from the automated reviewer already
// covers the same line and topic. File-level annotations have no line to
// collide on and are never suppressed here; the summary recency check in
// this package handles the run summary separately.
func (g *Guard) ShouldSuppress(ann domain.Annotation, threads []domain.CommentThread) bool {
	if !ann.Inline() {
		return false
	}

	for _, t := range threads {
		if !t.Open() {
			continue
		}
		if !g.authoredByReviewer(t) {
			continue
		}
		if !sameLocation(ann, t) {
			continue
		}
		if !topicalMatch(ann.Type, t.Content) {
			continue
		}
		return true
	}

	return false
}

// authoredByReviewer recognizes the automated reviewer's service identity.
func (g *Guard) authoredByReviewer(t domain.CommentThread) bool {
	if strings.Contains(strings.ToLower(t.AuthorUniqueName), g.serviceMarker) {
		return true
	}
	return strings.Contains(t.AuthorDisplayName, displayNameMarker)
}

// sameLocation reports whether the annotation's file matches the thread's
// and its line equals any of the thread's four range endpoints.
func sameLocation(ann domain.Annotation, t domain.CommentThread) bool {
	if !strings.EqualFold(normalizePath(ann.File), normalizePath(t.File)) {
		return false
	}
	for _, endpoint := range t.LineEndpoints() {
		if ann.Line == endpoint {
			return true
		}
	}
	return false
}

// normalizePath strips the leading slash the pull request API prefixes onto
// repository paths.
func normalizePath(p string) string {
	return strings.TrimPrefix(strings.TrimSpace(p), "/")
}

// topicalMatch reports whether the existing comment mentions the finding
// type or one of its synonyms.
func topicalMatch(ft domain.FindingType, content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range typeKeywords[ft] {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
