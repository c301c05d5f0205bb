package languageutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers keep state, so every call gets its own.
func titleCaser() cases.Caser { return cases.Title(language.English) }
func lowerCaser() cases.Caser { return cases.Lower(language.English) }

// Canonical is the form styles, moods, seasons, colors and types are stored in.
// Inner whitespace collapses to a single space.
func Canonical(value string) string {
	return lowerCaser().String(strings.Join(strings.Fields(value), " "))
}

// CanonicalTags canonicalizes and de-duplicates tags, dropping blanks and keeping first-seen order.
func CanonicalTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		c := Canonical(tag)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func DisplayName(value string) string {
	return titleCaser().String(Canonical(value))
}
