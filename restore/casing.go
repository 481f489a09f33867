package restore

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TrueCase decides the casing of word. The pronoun "i" is always "I".
// Otherwise the word is capitalized when capitalize is set or it matches a
// proper noun pattern, and lowercased in every other case.
func (l *Lexicon) TrueCase(word string, capitalize bool) string {
	if word == "" {
		return word
	}

	lower := strings.ToLower(word)
	if lower == "i" {
		return "I"
	}

	if capitalize || l.IsProperNoun(word) {
		return capitalizeFirst(lower)
	}
	return lower
}

// capitalizeFirst upper-cases the first rune of an already lowercased word.
func capitalizeFirst(lower string) string {
	r, size := utf8.DecodeRuneInString(lower)
	if r == utf8.RuneError && size <= 1 {
		return lower
	}
	return string(unicode.ToUpper(r)) + lower[size:]
}

// startsUpper reports whether s begins with an uppercase letter.
func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
