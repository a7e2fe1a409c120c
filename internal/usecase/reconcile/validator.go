// Package reconcile maps approximately-located model findings onto exact
// changed lines of a unified diff. A finding's reported line number may be
// wrong, missing, or hallucinated; the reconciler walks an ordered cascade
// of placement strategies and the validator applies one shared acceptance
// test to every candidate, so a weak heuristic can never bypass checks that
// a strong one must satisfy.
package reconcile

import (
	"strings"

	"github.com/difflens/difflens/internal/domain"
)

// Validator decides whether a candidate line number is a defensible
// placement for a finding. Thresholds are tunable rather than fixed: the
// overlap fraction and keyword length cutoff carry no deeper meaning than
// "worked well in practice".
type Validator struct {
	// SnippetOverlap is the fraction of snippet words that must match the
	// target line for snippet evidence to be accepted.
	SnippetOverlap float64

	// KeywordMinLen: description words must be strictly longer than this to
	// count as keywords.
	KeywordMinLen int
}

// NewValidator returns a Validator with the default thresholds.
func NewValidator() Validator {
	return Validator{
		SnippetOverlap: 0.5,
		KeywordMinLen:  3,
	}
}

// Accept reports whether line is an acceptable placement for the finding.
//
// The membership check is absolute: a line outside [1, len(fileLines)] or
// outside the changed set is rejected no matter how strong the textual
// evidence is, because only changed lines may ever be annotated. Beyond
// membership, the finding must present evidence: a code snippet is tested
// by word overlap, otherwise the description is tested by keyword
// containment, and a finding with neither is rejected outright.
func (v Validator) Accept(f domain.Finding, line int, fileLines []string, changed map[int]bool) bool {
	if line < 1 || line > len(fileLines) {
		return false
	}
	if !changed[line] {
		return false
	}

	target := fileLines[line-1]

	if snippet := strings.TrimSpace(f.CodeSnippet); snippet != "" {
		return v.snippetMatches(snippet, target)
	}
	if strings.TrimSpace(f.Description) != "" {
		return v.descriptionMatches(f.Description, target)
	}

	// No snippet, no description: nothing to corroborate the placement.
	return false
}

// snippetMatches tokenizes snippet and line into whitespace-delimited words
// and accepts when at least SnippetOverlap of the snippet's words are
// contained in a line word or contain one (substring either direction).
func (v Validator) snippetMatches(snippet, line string) bool {
	snippetWords := strings.Fields(snippet)
	lineWords := strings.Fields(line)
	if len(snippetWords) == 0 || len(lineWords) == 0 {
		return false
	}

	matched := 0
	for _, w := range snippetWords {
		if containsEitherWay(lineWords, w) {
			matched++
		}
	}

	return float64(matched) >= v.SnippetOverlap*float64(len(snippetWords))
}

// descriptionMatches accepts when any description keyword is bidirectionally
// contained in one of the line's words. Matching is case-insensitive.
func (v Validator) descriptionMatches(description, line string) bool {
	lineWords := strings.Fields(strings.ToLower(line))
	for _, kw := range v.Keywords(description) {
		if containsEitherWay(lineWords, kw) {
			return true
		}
	}
	return false
}

// Keywords extracts the lowercased description words longer than
// KeywordMinLen characters, in order of appearance.
func (v Validator) Keywords(description string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(description)) {
		w = strings.Trim(w, ".,:;!?\"'()[]{}")
		if len(w) > v.KeywordMinLen {
			out = append(out, w)
		}
	}
	return out
}

// containsEitherWay reports whether w is a substring of any word, or any
// word is a substring of w.
func containsEitherWay(words []string, w string) bool {
	for _, candidate := range words {
		if strings.Contains(candidate, w) || strings.Contains(w, candidate) {
			return true
		}
	}
	return false
}
