package diff

import (
	"sort"
	"strconv"
	"strings"
)

// Analysis holds the addressable coordinates extracted from one file's
// unified diff.
//
// Invariants: AddedLines is strictly increasing with no duplicates,
// RemovedLines likewise, and len(AddedLines) == len(ChangedContent).
type Analysis struct {
	// AddedLines are new-file line numbers introduced by the diff.
	AddedLines []int

	// RemovedLines are old-file line numbers deleted by the diff.
	RemovedLines []int

	// ChangedContent maps each added line number to its text, prefix stripped.
	ChangedContent map[int]string
}

// Empty reports whether the diff contained no added lines.
func (a Analysis) Empty() bool {
	return len(a.AddedLines) == 0
}

// AddedSet returns the added line numbers as a set for membership checks.
func (a Analysis) AddedSet() map[int]bool {
	set := make(map[int]bool, len(a.AddedLines))
	for _, n := range a.AddedLines {
		set[n] = true
	}
	return set
}

// Parse scans unified-diff text and produces an Analysis.
//
// A hunk header "@@ -a,b +c,d @@" positions the old-file cursor at a-1 and
// the new-file cursor at c-1; lines before the first header are ignored.
// Within a hunk, '+' advances the new cursor and records the line, '-'
// advances the old cursor and records the deletion, and a space advances
// both. An empty in-hunk line advances only the new cursor; that diverges
// from canonical unified-diff semantics for blank context lines but is
// preserved deliberately (see DESIGN.md).
//
// Malformed or absent headers degrade to an empty Analysis. Parse never
// fails on any input, which is why it does not return an error.
func Parse(patch string) Analysis {
	analysis := Analysis{ChangedContent: make(map[int]string)}
	if patch == "" {
		return analysis
	}

	removed := make(map[int]bool)

	var (
		inHunk  bool
		oldLine int
		newLine int
	)

	for _, line := range strings.Split(patch, "\n") {
		// "\ No newline" markers carry no coordinates.
		if strings.HasPrefix(line, "\\ ") {
			continue
		}

		// A new file header ends the current hunk; its "---"/"+++" lines are
		// then skipped below as out-of-hunk text. Inside a hunk, lines that
		// merely start with '+' or '-' are real additions and removals.
		if strings.HasPrefix(line, "diff --git") {
			inHunk = false
			continue
		}

		if strings.HasPrefix(line, "@@") {
			oldStart, newStart, ok := parseHunkHeader(line)
			if !ok {
				// Malformed header: skip it and keep scanning.
				continue
			}
			oldLine = oldStart - 1
			newLine = newStart - 1
			inHunk = true
			continue
		}

		if !inHunk {
			continue
		}

		if line == "" {
			// Documented quirk: blank in-hunk lines advance only the new side.
			newLine++
			continue
		}

		switch line[0] {
		case '+':
			newLine++
			analysis.ChangedContent[newLine] = line[1:]
		case '-':
			oldLine++
			removed[oldLine] = true
		case ' ':
			oldLine++
			newLine++
		default:
			// Unrecognized in-hunk lines carry no coordinates.
		}
	}

	analysis.AddedLines = sortedKeys(analysis.ChangedContent)
	analysis.RemovedLines = make([]int, 0, len(removed))
	for n := range removed {
		analysis.RemovedLines = append(analysis.RemovedLines, n)
	}
	sort.Ints(analysis.RemovedLines)

	return analysis
}

// parseHunkHeader extracts the old and new start lines from a header like
// "@@ -10,7 +10,8 @@ optional context". Reports ok=false when either range
// is missing or unparseable.
func parseHunkHeader(line string) (oldStart, newStart int, ok bool) {
	parts := strings.Split(line, "@@")
	if len(parts) < 2 {
		return 0, 0, false
	}

	var haveOld, haveNew bool
	for _, field := range strings.Fields(strings.TrimSpace(parts[1])) {
		switch {
		case strings.HasPrefix(field, "-"):
			if n, err := parseRangeStart(strings.TrimPrefix(field, "-")); err == nil {
				oldStart = n
				haveOld = true
			}
		case strings.HasPrefix(field, "+"):
			if n, err := parseRangeStart(strings.TrimPrefix(field, "+")); err == nil {
				newStart = n
				haveNew = true
			}
		}
	}

	return oldStart, newStart, haveOld && haveNew
}

// parseRangeStart parses the start of a "start,count" or bare "start" range.
func parseRangeStart(s string) (int, error) {
	if idx := strings.Index(s, ","); idx >= 0 {
		s = s[:idx]
	}
	return strconv.Atoi(s)
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
