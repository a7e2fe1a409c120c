package http

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/difflens/difflens/internal/domain"
)

// jsonBlockRegex matches a markdown code fence. The greedy body match runs
// to the LAST closing fence, so code examples nested inside JSON string
// values do not cut the block short.
var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*([\\s\\S]*)```")

// ExtractJSONFromMarkdown extracts JSON from a markdown code block. Both
// ```json and bare ``` fences are recognized. When no fence is found the
// trimmed original text is returned, since the model may have answered with
// raw JSON.
func ExtractJSONFromMarkdown(text string) string {
	matches := jsonBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// rawFinding is the tolerant intermediate shape for one model-reported
// finding. LineNumber is deferred because models emit it variously as a
// number, a numeric string, or null.
type rawFinding struct {
	Type        string          `json:"type"`
	Severity    string          `json:"severity"`
	Description string          `json:"description"`
	LineNumber  json.RawMessage `json:"line_number"`
	CodeSnippet string          `json:"code_snippet"`
	Suggestion  string          `json:"suggestion"`
	Confidence  *float64        `json:"confidence"`
	IsNewIssue  *bool           `json:"is_new_issue"`
	IsFixed     bool            `json:"is_fixed"`
}

// defaultConfidence is assigned when the model omits the field; middling so
// the configured threshold still has a say.
const defaultConfidence = 0.5

// ParseFindings recovers a findings list from model output. The text may be
// fenced in markdown, may be a bare JSON array, or may be an object with a
// "findings" key. Type and severity are normalized onto the known sets,
// confidence is clamped to [0,1], and findings with no description are
// dropped rather than failing the whole response.
func ParseFindings(text string) ([]domain.Finding, error) {
	jsonText := ExtractJSONFromMarkdown(text)

	var raws []rawFinding
	if err := json.Unmarshal([]byte(jsonText), &raws); err != nil {
		var wrapped struct {
			Findings []rawFinding `json:"findings"`
		}
		if err2 := json.Unmarshal([]byte(jsonText), &wrapped); err2 != nil {
			return nil, fmt.Errorf("failed to parse findings JSON: %w", err)
		}
		raws = wrapped.Findings
	}

	findings := make([]domain.Finding, 0, len(raws))
	for _, r := range raws {
		if strings.TrimSpace(r.Description) == "" {
			continue
		}

		f := domain.Finding{
			Type:        domain.NormalizeType(r.Type),
			Severity:    domain.NormalizeSeverity(r.Severity),
			Description: strings.TrimSpace(r.Description),
			LineNumber:  coerceLineNumber(r.LineNumber),
			CodeSnippet: strings.TrimSpace(r.CodeSnippet),
			Suggestion:  strings.TrimSpace(r.Suggestion),
			Confidence:  defaultConfidence,
			IsNewIssue:  true,
			IsFixed:     r.IsFixed,
		}
		if r.Confidence != nil {
			f.Confidence = clamp01(*r.Confidence)
		}
		if r.IsNewIssue != nil {
			f.IsNewIssue = *r.IsNewIssue
		}
		findings = append(findings, f)
	}

	return findings, nil
}

// coerceLineNumber accepts a JSON number, a numeric string, or null.
// Anything unusable becomes 0, which downstream treats as "no line claimed".
func coerceLineNumber(raw json.RawMessage) int {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	s = strings.Trim(s, `"`)

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
