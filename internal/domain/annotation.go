package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Annotation is a comment ready to be posted on a reviewed file. Line is a
// new-file line number that is guaranteed to be part of the change, or 0 for
// a file-level annotation that is posted as a general comment instead of an
// inline one. Findings that could not be reconciled to a changed line are
// demoted to file-level annotations rather than dropped.
type Annotation struct {
	File       string
	Line       int
	Text       string
	Type       FindingType
	Confidence float64
	IsNewIssue bool
}

// Inline reports whether the annotation targets a specific changed line.
func (a Annotation) Inline() bool {
	return a.Line > 0
}

// AnnotationFingerprint uniquely identifies a posted annotation.
type AnnotationFingerprint string

// Fingerprint returns a deterministic identity for the annotation, derived
// from its placement and type. The text is deliberately excluded so that
// cosmetic rewording of the rendered comment does not change identity.
func (a Annotation) Fingerprint() AnnotationFingerprint {
	payload := fmt.Sprintf("%s|%d|%s", a.File, a.Line, a.Type)
	sum := sha256.Sum256([]byte(payload))
	return AnnotationFingerprint(hex.EncodeToString(sum[:]))
}
