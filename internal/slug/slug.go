// Package slug derives URL-safe lowercase identifiers from display names.
// Diacritics are stripped via Unicode NFD decomposition before the
// remaining runes are folded to the [a-z0-9-] alphabet.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Make converts a display name into a slug: lowercase, diacritics
// stripped, runs of non-alphanumeric characters collapsed to single
// hyphens, no leading or trailing hyphen.
func Make(name string) string {
	s := stripDiacritics(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// stripDiacritics removes diacritical marks from a string. It
// decomposes into NFD form and drops combining marks (unicode.Mn).
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
