package core

import (
	"strings"
)

// invalidPathChars can never appear inside a single path component.
const invalidPathChars = "/\\"

// SanitizeComponent makes name safe to use as one path element. Separators
// and control characters become a space, runs of spaces collapse to one and
// the result is trimmed.
func SanitizeComponent(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastSpace := false
	for _, r := range name {
		if r < 32 || r == 127 || strings.ContainsRune(invalidPathChars, r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
			b.WriteRune(' ')
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// sanitizeTitle replaces separators and control characters in an episode
// title with a space and otherwise keeps the title as the catalog wrote it.
func sanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 || strings.ContainsRune(invalidPathChars, r) {
			return ' '
		}
		return r
	}, title)
}
