package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Unified renders a unified diff between two versions of one file. It is
// used when the hosting API serves file snapshots but no per-file patch
// text. Hunks carry no context lines; Parse does not need any.
func Unified(path, oldText, newText string) string {
	if oldText == newText {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lineText := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineText)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", path)
	fmt.Fprintf(&sb, "+++ b/%s\n", path)

	// 1-based counters for the next line on each side.
	oldLine, newLine := 1, 1

	var removed, added []string
	flush := func() {
		if len(removed) == 0 && len(added) == 0 {
			return
		}
		oldStart := oldLine
		if len(removed) == 0 {
			// Zero-length range anchors on the line before the insertion.
			oldStart = oldLine - 1
		}
		newStart := newLine
		if len(added) == 0 {
			newStart = newLine - 1
		}
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", oldStart, len(removed), newStart, len(added))
		for _, ln := range removed {
			sb.WriteString("-" + ln + "\n")
		}
		for _, ln := range added {
			sb.WriteString("+" + ln + "\n")
		}
		oldLine += len(removed)
		newLine += len(added)
		removed = removed[:0]
		added = added[:0]
	}

	for _, d := range diffs {
		lines := splitChunkLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldLine += len(lines)
			newLine += len(lines)
		case diffmatchpatch.DiffDelete:
			removed = append(removed, lines...)
		case diffmatchpatch.DiffInsert:
			added = append(added, lines...)
		}
	}
	flush()

	return sb.String()
}

// splitChunkLines splits a diff chunk into its lines. Chunks normally end
// with a newline; a final unterminated line still counts.
func splitChunkLines(text string) []string {
	if text == "" {
		return nil
	}
	trimmed := strings.TrimSuffix(text, "\n")
	return strings.Split(trimmed, "\n")
}
