package bench

import (
	"strings"
	"unicode"

	"github.com/jparkerweb/go-punct/splitter"
	"github.com/jparkerweb/go-punct/tokenizer"
)

// Labels are the per-word punctuation and casing decisions of a text.
// Word i is the i-th word of the text after tokenizer preprocessing, so
// labels of a gold text and of its restoration line up index for index.
type Labels struct {
	Words       []string
	Boundaries  []int // words that end a sentence
	Commas      []int // words followed by a comma
	Capitalized []bool
}

// Label derives labels from punctuated text. A word ending in '.', '?' or
// '!' ends a sentence unless it is a common abbreviation. Fragments that
// are pure punctuation attach to the preceding word.
func Label(text string) Labels {
	var l Labels

	for _, raw := range strings.Fields(text) {
		for _, word := range strings.Fields(tokenizer.Preprocess(raw)) {
			l.Words = append(l.Words, word)
			l.Capitalized = append(l.Capitalized, startsUpper(raw))
		}
		if len(l.Words) == 0 {
			continue
		}

		last := len(l.Words) - 1
		trimmed := strings.TrimRight(raw, `"')]`)
		if strings.HasSuffix(strings.TrimRight(trimmed, ".?!"), ",") && !endsWith(l.Commas, last) {
			l.Commas = append(l.Commas, last)
		}
		if strings.HasSuffix(trimmed, ".") && splitter.IsAbbreviation(trimmed) {
			continue
		}
		if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "!") {
			if !endsWith(l.Boundaries, last) {
				l.Boundaries = append(l.Boundaries, last)
			}
		}
	}

	return l
}

// endsWith reports whether v is the last element of s.
func endsWith(s []int, v int) bool {
	return len(s) > 0 && s[len(s)-1] == v
}

// startsUpper reports whether the first letter of s is uppercase.
func startsUpper(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}
