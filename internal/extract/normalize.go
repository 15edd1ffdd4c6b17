// Package extract turns raw OCR text into structured pharmaceutical metadata
// with a deterministic heuristic confidence score.
package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// safeRune reports whether a rune survives normalization. The safe set is
// alphanumerics, hyphen, slash and period: enough to keep batch-code
// punctuation while dropping OCR noise from smudges and package borders.
func safeRune(r rune) bool {
	if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
		return true
	}
	switch r {
	case '-', '/', '.':
		return true
	}
	return false
}

// Normalize collapses whitespace runs to single spaces and strips characters
// outside the safe set. Unicode compatibility folding runs first so that
// full-width digits and ligatures from OCR engines become their ASCII forms.
func Normalize(s string) string {
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if !safeRune(r) {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	return b.String()
}
