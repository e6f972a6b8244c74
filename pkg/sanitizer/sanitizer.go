package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = CollapseWhitespace(line)
	}
	return strings.Join(lines, "\n")
}

func collapseBlankLines(s string) string {
	return strings.TrimSpace(reBlankLines.ReplaceAllString(s, "\n\n"))
}

// SanitizeIdentifier trims an opaque external id without altering its content.
func SanitizeIdentifier(input string) string {
	return strings.TrimSpace(input)
}

// SanitizeNote cleans multi-line free text such as observations and payment
// notes. Paragraph breaks survive; anything longer collapses to one blank line.
func SanitizeNote(input string) string {
	p := Pipeline{
		normalizeNewlines,
		dropControl,
		normalizeLines,
		collapseBlankLines,
	}
	return p.Apply(input)
}

func SanitizeRequest(input string) string {
	p := Pipeline{
		dropControl,
		CollapseWhitespace,
	}
	return p.Apply(input)
}

func SanitizeRequests(requests []string) []string {
	return uniqueNonEmpty(requests, SanitizeRequest)
}
