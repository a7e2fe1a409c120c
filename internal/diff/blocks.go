package diff

import "sort"

// DefaultContextRadius is the number of context lines included on each side
// of a changed block when no radius is configured.
const DefaultContextRadius = 2

// BlockLine is one line inside a ChangedBlock. Changed marks lines that are
// part of the diff; the rest are surrounding context.
type BlockLine struct {
	Number  int
	Text    string
	Changed bool
}

// ChangedBlock is a contiguous, context-padded span of file lines covering
// one or more changed lines. Blocks are disjoint, ascending, and clamped to
// [1, len(file)].
type ChangedBlock struct {
	Start int
	End   int
	Lines []BlockLine
}

// BuildBlocks groups added line numbers into context-padded blocks over the
// given file content. Consecutive added lines (gap <= 1) merge into a single
// block before the span is widened by radius lines on both sides; widened
// spans that run into each other merge again so the result stays disjoint.
// A negative radius selects DefaultContextRadius. Empty input yields nil.
func BuildBlocks(added []int, fileLines []string, radius int) []ChangedBlock {
	if len(added) == 0 || len(fileLines) == 0 {
		return nil
	}
	if radius < 0 {
		radius = DefaultContextRadius
	}

	lines := normalize(added, len(fileLines))
	if len(lines) == 0 {
		return nil
	}

	changed := make(map[int]bool, len(lines))
	for _, n := range lines {
		changed[n] = true
	}

	spans := mergeConsecutive(lines)
	spans = widen(spans, radius, len(fileLines))

	blocks := make([]ChangedBlock, 0, len(spans))
	for _, s := range spans {
		block := ChangedBlock{Start: s.start, End: s.end}
		for n := s.start; n <= s.end; n++ {
			block.Lines = append(block.Lines, BlockLine{
				Number:  n,
				Text:    fileLines[n-1],
				Changed: changed[n],
			})
		}
		blocks = append(blocks, block)
	}

	return blocks
}

type span struct {
	start, end int
}

// normalize sorts, de-duplicates, and drops line numbers outside the file.
func normalize(added []int, fileLen int) []int {
	seen := make(map[int]bool, len(added))
	out := make([]int, 0, len(added))
	for _, n := range added {
		if n < 1 || n > fileLen || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// mergeConsecutive folds sorted line numbers into spans, joining neighbors
// that are at most one line apart.
func mergeConsecutive(lines []int) []span {
	var spans []span
	cur := span{start: lines[0], end: lines[0]}
	for _, n := range lines[1:] {
		if n <= cur.end+1 {
			cur.end = n
			continue
		}
		spans = append(spans, cur)
		cur = span{start: n, end: n}
	}
	return append(spans, cur)
}

// widen grows each span by radius on both sides, clamps to file bounds, and
// re-merges spans that now overlap.
func widen(spans []span, radius, fileLen int) []span {
	out := make([]span, 0, len(spans))
	for _, s := range spans {
		s.start -= radius
		s.end += radius
		if s.start < 1 {
			s.start = 1
		}
		if s.end > fileLen {
			s.end = fileLen
		}
		if n := len(out); n > 0 && s.start <= out[n-1].end {
			if s.end > out[n-1].end {
				out[n-1].end = s.end
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
