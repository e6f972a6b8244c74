package sanitizer

import (
	"strings"
	"unicode"
)

// CollapseWhitespace trims s and folds each whitespace run, newlines
// included, into one space. Zero-width characters pasted from chat apps are
// dropped.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false

	for _, r := range s {
		switch {
		case isZeroWidth(r):
			continue
		case unicode.IsSpace(r):
			pending = b.Len() > 0
		default:
			if pending {
				b.WriteByte(' ')
				pending = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}
