package reconcile

import (
	"strings"

	"github.com/difflens/difflens/internal/diff"
	"github.com/difflens/difflens/internal/domain"
)

// Reconciler locates the changed line a finding belongs to. Strategies are
// ordered from the most explicit evidence (the model's own line number, an
// exact snippet match among changed lines) down to pattern guesses; every
// candidate, regardless of strategy, must clear the same Validator bar.
type Reconciler struct {
	validator Validator
}

// NewReconciler creates a Reconciler with the default validator.
func NewReconciler() *Reconciler {
	return &Reconciler{validator: NewValidator()}
}

// WithValidator replaces the validator, keeping the cascade intact.
func (r *Reconciler) WithValidator(v Validator) *Reconciler {
	r.validator = v
	return r
}

// strategy attempts to place a finding, returning a line number > 0 on
// success or 0 when the strategy has nothing acceptable to offer.
type strategy func(f domain.Finding, analysis diff.Analysis, fileLines []string, changed map[int]bool) int

// Reconcile returns the changed line the finding should be annotated on, or
// 0 meaning the finding is not reconcilable and must not be annotated
// inline. The zero return is a sentinel, not an error: "no evidence" is an
// expected outcome, and the caller demotes such findings to file-level
// annotations instead of dropping them.
func (r *Reconciler) Reconcile(f domain.Finding, analysis diff.Analysis, fileLines []string) int {
	if analysis.Empty() || len(fileLines) == 0 {
		return 0
	}

	changed := analysis.AddedSet()

	strategies := []strategy{
		r.reportedLine,
		r.snippetInChanged,
		r.snippetInFile,
		r.keywordsInChanged,
		r.keywordsInFile,
		r.patternScan,
	}

	for _, s := range strategies {
		if line := s(f, analysis, fileLines, changed); line > 0 {
			return line
		}
	}

	return 0
}

// reportedLine trusts the finding's own line number, if it survives
// validation.
func (r *Reconciler) reportedLine(f domain.Finding, _ diff.Analysis, fileLines []string, changed map[int]bool) int {
	if f.LineNumber <= 0 {
		return 0
	}
	if r.validator.Accept(f, f.LineNumber, fileLines, changed) {
		return f.LineNumber
	}
	return 0
}

// snippetInChanged searches for the snippet as an exact substring of the
// changed lines, in diff order.
func (r *Reconciler) snippetInChanged(f domain.Finding, analysis diff.Analysis, fileLines []string, changed map[int]bool) int {
	snippet := strings.TrimSpace(f.CodeSnippet)
	if snippet == "" {
		return 0
	}
	for _, line := range analysis.AddedLines {
		if !strings.Contains(analysis.ChangedContent[line], snippet) {
			continue
		}
		if r.validator.Accept(f, line, fileLines, changed) {
			return line
		}
	}
	return 0
}

// snippetInFile searches the full file for the snippet. The validator still
// enforces changed-set membership, so this only succeeds when the same text
// recurs on a changed line.
func (r *Reconciler) snippetInFile(f domain.Finding, _ diff.Analysis, fileLines []string, changed map[int]bool) int {
	snippet := strings.TrimSpace(f.CodeSnippet)
	if snippet == "" {
		return 0
	}
	for i, text := range fileLines {
		if !strings.Contains(text, snippet) {
			continue
		}
		if line := i + 1; r.validator.Accept(f, line, fileLines, changed) {
			return line
		}
	}
	return 0
}

// keywordsInChanged looks for description keyword overlap among the changed
// lines, in diff order.
func (r *Reconciler) keywordsInChanged(f domain.Finding, analysis diff.Analysis, fileLines []string, changed map[int]bool) int {
	keywords := r.validator.Keywords(f.Description)
	if len(keywords) == 0 {
		return 0
	}
	for _, line := range analysis.AddedLines {
		if !containsAnyKeyword(analysis.ChangedContent[line], keywords) {
			continue
		}
		if r.validator.Accept(f, line, fileLines, changed) {
			return line
		}
	}
	return 0
}

// keywordsInFile applies the same keyword rule across the whole file.
func (r *Reconciler) keywordsInFile(f domain.Finding, _ diff.Analysis, fileLines []string, changed map[int]bool) int {
	keywords := r.validator.Keywords(f.Description)
	if len(keywords) == 0 {
		return 0
	}
	for i, text := range fileLines {
		if !containsAnyKeyword(text, keywords) {
			continue
		}
		if line := i + 1; r.validator.Accept(f, line, fileLines, changed) {
			return line
		}
	}
	return 0
}

// containsAnyKeyword reports whether the line contains at least one keyword,
// case-insensitively.
func containsAnyKeyword(line string, keywords []string) bool {
	lower := strings.ToLower(line)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
