package review

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/difflens/difflens/internal/diff"
)

// TokenEstimator approximates how many model tokens a string costs. Wired
// from the llm adapter's tiktoken-backed estimator; a nil estimator falls
// back to a characters/4 heuristic.
type TokenEstimator func(text string) int

// PromptBuilder renders changed blocks into the review prompt. Blocks are
// included in order until the token budget is exhausted; a truncation note
// replaces whatever did not fit.
type PromptBuilder struct {
	tmpl      *template.Template
	estimate  TokenEstimator
	maxTokens int
}

// defaultMaxPromptTokens bounds the prompt when no budget is configured.
const defaultMaxPromptTokens = 8000

// NewPromptBuilder creates a PromptBuilder with the default template.
func NewPromptBuilder(estimate TokenEstimator, maxTokens int) *PromptBuilder {
	if estimate == nil {
		estimate = func(text string) int { return len(text) / 4 }
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxPromptTokens
	}
	return &PromptBuilder{
		tmpl:      template.Must(template.New("prompt").Parse(promptTemplate)),
		estimate:  estimate,
		maxTokens: maxTokens,
	}
}

// promptData is the template input.
type promptData struct {
	File      string
	Blocks    []string
	Truncated bool
}

// Build renders the prompt for one file pass.
func (b *PromptBuilder) Build(path string, blocks []diff.ChangedBlock) (ProviderRequest, error) {
	data := promptData{File: path}

	budget := b.maxTokens
	for _, block := range blocks {
		rendered := renderBlock(block)
		cost := b.estimate(rendered)
		if cost > budget {
			data.Truncated = true
			break
		}
		budget -= cost
		data.Blocks = append(data.Blocks, rendered)
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return ProviderRequest{}, fmt.Errorf("render prompt: %w", err)
	}

	return ProviderRequest{Prompt: buf.String(), MaxTokens: b.maxTokens}, nil
}

// renderBlock formats one changed block with line numbers. Changed lines
// carry a ">" gutter marker so the model can tell change from context.
func renderBlock(block diff.ChangedBlock) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Lines %d-%d:\n", block.Start, block.End)
	for _, ln := range block.Lines {
		marker := " "
		if ln.Changed {
			marker = ">"
		}
		fmt.Fprintf(&sb, "%s %4d | %s\n", marker, ln.Number, ln.Text)
	}

	return sb.String()
}

const promptTemplate = `You are an expert software engineer reviewing a code change.

File: {{.File}}

The following excerpts show the changed regions. Lines marked with ">" were
added or modified by this change; unmarked lines are unchanged context.
Review ONLY the marked lines.

{{range .Blocks}}{{.}}
{{end}}{{if .Truncated}}(further changed regions omitted for length)
{{end}}
Respond with a JSON array of findings. Each finding must have: type (one of
bug, improvement, security, style, test), severity (info, low, medium, high,
critical), description, line_number (integer or null), code_snippet (the
exact offending line when known), suggestion, confidence (0..1),
is_new_issue (boolean), and is_fixed (true only when the change resolves a
previously reported issue).`
