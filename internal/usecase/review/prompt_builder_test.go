package review

import (
	"strings"
	"testing"

	"github.com/difflens/difflens/internal/diff"
)

func blockWith(start int, lines ...diff.BlockLine) diff.ChangedBlock {
	return diff.ChangedBlock{Start: start, End: start + len(lines) - 1, Lines: lines}
}

func TestPromptBuilder_MarksChangedLines(t *testing.T) {
	b := NewPromptBuilder(nil, 0)

	block := blockWith(10,
		diff.BlockLine{Number: 10, Text: "context before"},
		diff.BlockLine{Number: 11, Text: "the change", Changed: true},
		diff.BlockLine{Number: 12, Text: "context after"},
	)

	req, err := b.Build("pkg/thing.go", []diff.ChangedBlock{block})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !strings.Contains(req.Prompt, "File: pkg/thing.go") {
		t.Error("prompt should name the file")
	}
	if !strings.Contains(req.Prompt, ">   11 | the change") {
		t.Errorf("changed line should carry a > marker:\n%s", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "    10 | context before") {
		t.Errorf("context line should not carry a marker:\n%s", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "Lines 10-12:") {
		t.Error("prompt should carry the block span")
	}
}

func TestPromptBuilder_TokenBudgetTruncates(t *testing.T) {
	// Every rendered block costs 100 tokens; the budget fits only one.
	estimate := func(string) int { return 100 }
	b := NewPromptBuilder(estimate, 150)

	blocks := []diff.ChangedBlock{
		blockWith(1, diff.BlockLine{Number: 1, Text: "first", Changed: true}),
		blockWith(50, diff.BlockLine{Number: 50, Text: "second", Changed: true}),
	}

	req, err := b.Build("f.go", blocks)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !strings.Contains(req.Prompt, "first") {
		t.Error("first block should be included")
	}
	if strings.Contains(req.Prompt, "second") {
		t.Error("second block should be dropped by the budget")
	}
	if !strings.Contains(req.Prompt, "omitted for length") {
		t.Error("truncation should be noted in the prompt")
	}
}

func TestPromptBuilder_NoBlocks(t *testing.T) {
	b := NewPromptBuilder(nil, 0)

	req, err := b.Build("empty.go", nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(req.Prompt, "File: empty.go") {
		t.Error("prompt should still name the file")
	}
}
