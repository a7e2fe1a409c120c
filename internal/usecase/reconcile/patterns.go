package reconcile

import (
	"strings"

	"github.com/difflens/difflens/internal/diff"
	"github.com/difflens/difflens/internal/domain"
)

// Marker sets for the type-specific pattern scan, the weakest strategy in
// the cascade. These are superficial textual heuristics with no
// understanding of language syntax.
var (
	loggingMarkers = []string{"log.", "logger", "logging", "console.", "print"}

	endpointMarkers = []string{"http://", "https://", "url", "uri", "endpoint"}

	credentialMarkers = []string{"key", "token", "secret", "password", "credential"}

	declarationMarkers = []string{"func ", "function", "def ", "class ", "var ", "const ", "let "}
)

// structuralRunes are punctuation characters that suggest a line carries
// code structure rather than prose.
const structuralRunes = "{}();"

// patternScan places a finding by scanning the full file for type-specific
// markers. Only security findings with a recognizable topic and bug
// findings whose description mentions "syntax" participate; the first
// pattern-matched line the validator accepts wins.
func (r *Reconciler) patternScan(f domain.Finding, _ diff.Analysis, fileLines []string, changed map[int]bool) int {
	match := patternMatcher(f)
	if match == nil {
		return 0
	}

	for i, text := range fileLines {
		if !match(text) {
			continue
		}
		if line := i + 1; r.validator.Accept(f, line, fileLines, changed) {
			return line
		}
	}

	return 0
}

// patternMatcher returns the line predicate for the finding's type and
// description, or nil when the finding has no pattern to scan for.
func patternMatcher(f domain.Finding) func(string) bool {
	desc := strings.ToLower(f.Description)

	switch f.Type {
	case domain.FindingSecurity:
		var markers []string
		if mentionsAny(desc, "log") {
			markers = append(markers, loggingMarkers...)
		}
		if mentionsAny(desc, "endpoint", "url", "uri") {
			markers = append(markers, endpointMarkers...)
		}
		if mentionsAny(desc, "credential", "secret", "key", "token", "password") {
			markers = append(markers, credentialMarkers...)
		}
		if len(markers) == 0 {
			return nil
		}
		return func(line string) bool {
			return containsAnyKeyword(line, markers)
		}

	case domain.FindingBug:
		if !strings.Contains(desc, "syntax") {
			return nil
		}
		return looksStructural
	}

	return nil
}

// mentionsAny reports whether the lowercased description contains any of
// the given terms.
func mentionsAny(desc string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(desc, t) {
			return true
		}
	}
	return false
}

// looksStructural reports whether a line carries structural punctuation or
// starts a declaration.
func looksStructural(line string) bool {
	if strings.ContainsAny(line, structuralRunes) {
		return true
	}
	return containsAnyKeyword(line, declarationMarkers)
}
