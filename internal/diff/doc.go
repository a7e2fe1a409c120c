// Package diff parses unified-diff text into addressable line coordinates
// and groups changed lines into context-padded blocks for prompting.
//
// Parsing is deliberately forgiving: malformed hunk headers are skipped and
// the worst possible outcome for any input is an empty Analysis, never an
// error. Only new-file ("added") lines are ever candidates for inline
// annotation downstream.
package diff
