package cleaner

import (
	"strings"
	"unicode"
)

// CleanTexts normalizes raw text fragments for the digest.
//
// For every fragment:
//  1. lowercase it
//  2. drop every rune that is not a-z or whitespace (digits, punctuation
//     and non-ASCII letters are lost on purpose)
//  3. split on whitespace and remove stopwords
//  4. rejoin with single spaces
//
// Fragments that end up empty are dropped. The output keeps input order and
// is not deduplicated. CleanTexts is idempotent.
func CleanTexts(texts []string) []string {
	cleaned := make([]string, 0, len(texts))
	for _, text := range texts {
		if c := CleanText(text); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return cleaned
}

// CleanText applies the CleanTexts normalization to a single fragment and
// returns "" when nothing survives.
func CleanText(text string) string {
	letters := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, strings.ToLower(text))

	words := strings.Fields(letters)
	kept := words[:0]
	for _, w := range words {
		if !IsStopword(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
