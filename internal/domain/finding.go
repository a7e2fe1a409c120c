package domain

import "strings"

// FindingType classifies what kind of issue a finding reports.
type FindingType string

const (
	FindingBug         FindingType = "bug"
	FindingImprovement FindingType = "improvement"
	FindingSecurity    FindingType = "security"
	FindingStyle       FindingType = "style"
	FindingTest        FindingType = "test"
)

// Severity expresses how serious a finding is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Finding is a single issue reported by the language model for one reviewed
// file. LineNumber is the model's claim and may be wrong, missing (0), or
// refer to a line that is not part of the change; the reconciler decides
// which line, if any, actually gets annotated. CodeSnippet, when present,
// is the model's quote of the offending source and is the strongest
// evidence available for relocating the finding.
type Finding struct {
	Type        FindingType `json:"type"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	LineNumber  int         `json:"line_number"`
	CodeSnippet string      `json:"code_snippet,omitempty"`
	Suggestion  string      `json:"suggestion,omitempty"`
	Confidence  float64     `json:"confidence"`
	IsNewIssue  bool        `json:"is_new_issue"`
	IsFixed     bool        `json:"is_fixed"`
}

// NormalizeType maps a free-form type string from a model response onto one
// of the known finding types. Unrecognized values fall back to improvement,
// which is the least alarming classification.
func NormalizeType(s string) FindingType {
	switch FindingType(strings.ToLower(strings.TrimSpace(s))) {
	case FindingBug:
		return FindingBug
	case FindingSecurity:
		return FindingSecurity
	case FindingStyle:
		return FindingStyle
	case FindingTest:
		return FindingTest
	default:
		return FindingImprovement
	}
}

// NormalizeSeverity maps a free-form severity string onto a known severity.
// Unrecognized values fall back to medium.
func NormalizeSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityInfo:
		return SeverityInfo
	case SeverityLow:
		return SeverityLow
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
