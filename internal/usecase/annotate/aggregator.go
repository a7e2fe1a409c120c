// Package annotate turns reconciled findings into postable annotations.
// Findings that share a line collapse into one combined annotation;
// findings that could not be reconciled are demoted to file-level
// annotations rather than dropped.
package annotate

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/difflens/difflens/internal/diff"
	"github.com/difflens/difflens/internal/domain"
)

// ReconciledFinding pairs a finding with the line the reconciler chose for
// it. Line 0 means the finding could not be placed on a changed line.
type ReconciledFinding struct {
	Finding domain.Finding
	Line    int
}

// Aggregator formats findings into annotations. Callers are expected to
// have filtered findings to the configured confidence threshold already;
// the aggregator never drops a finding.
type Aggregator struct {
	titler cases.Caser
}

// NewAggregator creates an Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{titler: cases.Title(language.English)}
}

// Aggregate produces one annotation per distinct reconciled line, one
// file-level annotation per unreconciled finding, and positive-feedback
// annotations for findings marked as fixed.
//
// Group semantics: confidence is the maximum of the members', and
// IsNewIssue is true only when every member reports true, so a group is
// never presented as new on the strength of a single optimistic member.
func (a *Aggregator) Aggregate(file string, items []ReconciledFinding, analysis diff.Analysis) []domain.Annotation {
	added := analysis.AddedSet()

	groups := make(map[int][]domain.Finding)
	var fileLevel []domain.Finding
	var fixed []domain.Finding

	for _, item := range items {
		f := item.Finding
		switch {
		case f.IsFixed:
			fixed = append(fixed, f)
		case item.Line > 0:
			groups[item.Line] = append(groups[item.Line], f)
		default:
			fileLevel = append(fileLevel, f)
		}
	}

	lines := make([]int, 0, len(groups))
	for line := range groups {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	var out []domain.Annotation

	for _, line := range lines {
		members := groups[line]
		out = append(out, domain.Annotation{
			File:       file,
			Line:       line,
			Text:       a.formatGroup(line, members, analysis.ChangedContent[line]),
			Type:       members[0].Type,
			Confidence: maxConfidence(members),
			IsNewIssue: allNew(members),
		})
	}

	for _, f := range fileLevel {
		out = append(out, domain.Annotation{
			File:       file,
			Line:       0,
			Text:       a.formatFileLevel(f),
			Type:       f.Type,
			Confidence: f.Confidence,
			IsNewIssue: f.IsNewIssue,
		})
	}

	for _, f := range fixed {
		ann := domain.Annotation{
			File:       file,
			Text:       a.formatFixed(f),
			Type:       f.Type,
			Confidence: f.Confidence,
			IsNewIssue: false,
		}
		// A fixed finding earns an inline thumbs-up only when it points at a
		// line that is actually part of the change.
		if added[f.LineNumber] {
			ann.Line = f.LineNumber
		}
		out = append(out, ann)
	}

	return out
}

// formatGroup renders the combined annotation for one line: a numbered list
// of the findings followed by the actual source text of the line.
func (a *Aggregator) formatGroup(line int, members []domain.Finding, source string) string {
	var b strings.Builder

	for i, f := range members {
		fmt.Fprintf(&b, "%d. [%s / %s] %s\n", i+1, a.titler.String(string(f.Type)), f.Severity, f.Description)
		if f.Suggestion != "" {
			fmt.Fprintf(&b, "   Suggestion: %s\n", f.Suggestion)
		}
	}

	fmt.Fprintf(&b, "\nLine %d: `%s`", line, source)

	return b.String()
}

// formatFileLevel renders an annotation for a finding that could not be
// tied to a specific changed line.
func (a *Aggregator) formatFileLevel(f domain.Finding) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s / %s] %s", a.titler.String(string(f.Type)), f.Severity, f.Description)
	if f.Suggestion != "" {
		fmt.Fprintf(&b, "\nSuggestion: %s", f.Suggestion)
	}
	b.WriteString("\n\nNote: could not be matched to a specific changed line.")

	return b.String()
}

// formatFixed renders positive feedback for an issue the change resolves.
func (a *Aggregator) formatFixed(f domain.Finding) string {
	return fmt.Sprintf("Good catch: this change resolves a previously reported %s issue. %s",
		f.Type, f.Description)
}

func maxConfidence(members []domain.Finding) float64 {
	max := 0.0
	for _, f := range members {
		if f.Confidence > max {
			max = f.Confidence
		}
	}
	return max
}

func allNew(members []domain.Finding) bool {
	for _, f := range members {
		if !f.IsNewIssue {
			return false
		}
	}
	return true
}
