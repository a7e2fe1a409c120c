package diff_test

import (
	"testing"

	"github.com/difflens/difflens/internal/diff"
)

func fileOf(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "line"
	}
	return lines
}

func TestBuildBlocks_Empty(t *testing.T) {
	if got := diff.BuildBlocks(nil, fileOf(10), 2); got != nil {
		t.Errorf("expected nil for no added lines, got %v", got)
	}
	if got := diff.BuildBlocks([]int{3}, nil, 2); got != nil {
		t.Errorf("expected nil for empty file, got %v", got)
	}
}

func TestBuildBlocks_SingleLine(t *testing.T) {
	blocks := diff.BuildBlocks([]int{5}, fileOf(10), 2)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	b := blocks[0]
	if b.Start != 3 || b.End != 7 {
		t.Errorf("span = [%d,%d], want [3,7]", b.Start, b.End)
	}
	if len(b.Lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(b.Lines))
	}
	for _, ln := range b.Lines {
		want := ln.Number == 5
		if ln.Changed != want {
			t.Errorf("line %d: Changed = %v, want %v", ln.Number, ln.Changed, want)
		}
	}
}

func TestBuildBlocks_ConsecutiveLinesMerge(t *testing.T) {
	// 4,5,7 merge into one core span (gaps <= 1) before widening.
	blocks := diff.BuildBlocks([]int{4, 5, 7}, fileOf(20), 2)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Start != 2 || blocks[0].End != 9 {
		t.Errorf("span = [%d,%d], want [2,9]", blocks[0].Start, blocks[0].End)
	}
}

func TestBuildBlocks_ClampedToFileBounds(t *testing.T) {
	// Widened spans clamp to [1,4] and [7,10] and stay separate.
	blocks := diff.BuildBlocks([]int{1, 10}, fileOf(10), 3)

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Start != 1 || blocks[0].End != 4 {
		t.Errorf("block 0 span = [%d,%d], want [1,4]", blocks[0].Start, blocks[0].End)
	}
	if blocks[1].Start != 7 || blocks[1].End != 10 {
		t.Errorf("block 1 span = [%d,%d], want [7,10]", blocks[1].Start, blocks[1].End)
	}
}

func TestBuildBlocks_OverlappingExpansionsMerge(t *testing.T) {
	// Cores {5} and {9} widen to [3,7] and [7,11], which must re-merge to
	// keep blocks disjoint.
	blocks := diff.BuildBlocks([]int{5, 9}, fileOf(20), 2)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 merged block, got %d", len(blocks))
	}
	if blocks[0].Start != 3 || blocks[0].End != 11 {
		t.Errorf("span = [%d,%d], want [3,11]", blocks[0].Start, blocks[0].End)
	}
}

func TestBuildBlocks_DisjointAscending(t *testing.T) {
	blocks := diff.BuildBlocks([]int{2, 3, 30, 60, 61}, fileOf(100), 2)

	for i := 1; i < len(blocks); i++ {
		if blocks[i].Start <= blocks[i-1].End {
			t.Errorf("blocks %d and %d overlap: [%d,%d] then [%d,%d]",
				i-1, i, blocks[i-1].Start, blocks[i-1].End, blocks[i].Start, blocks[i].End)
		}
	}
}

func TestBuildBlocks_ZeroRadius(t *testing.T) {
	blocks := diff.BuildBlocks([]int{5, 6}, fileOf(10), 0)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Start != 5 || blocks[0].End != 6 {
		t.Errorf("span = [%d,%d], want [5,6]", blocks[0].Start, blocks[0].End)
	}
}

func TestBuildBlocks_OutOfRangeLinesDropped(t *testing.T) {
	blocks := diff.BuildBlocks([]int{-1, 0, 5, 99}, fileOf(10), 1)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Start != 4 || blocks[0].End != 6 {
		t.Errorf("span = [%d,%d], want [4,6]", blocks[0].Start, blocks[0].End)
	}
}
