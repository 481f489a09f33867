// Package splitter splits punctuated text into sentences.
package splitter

import (
	"regexp"
	"strings"
)

// Sentence is a sentence with byte offsets into the source text.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Common abbreviations that shouldn't end sentences
var abbreviations = regexp.MustCompile(`(?i)\b(Mr|Mrs|Ms|Dr|Prof|Sr|Jr|St|vs|etc|i\.e|e\.g|U\.S|U\.K)\.$`)

// Split returns the sentences of text in order, trimmed of surrounding
// whitespace. Empty input yields nil.
func Split(text string) []string {
	sentences := SplitWithOffsets(text)
	if len(sentences) == 0 {
		return nil
	}

	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.Text
	}
	return out
}

// SplitWithOffsets splits text at '.', '?' or '!' followed by whitespace or
// the end of text, skipping periods that close a common abbreviation.
// Trailing text without a terminal mark becomes the last sentence.
func SplitWithOffsets(text string) []Sentence {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sentences []Sentence
	start := 0

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '.' && ch != '?' && ch != '!' {
			continue
		}

		// Check if this is end of text or followed by whitespace
		isEnd := i == len(text)-1 || isSpace(text[i+1])
		if !isEnd {
			continue
		}

		// Check for abbreviation
		candidate := text[start : i+1]
		if ch == '.' && abbreviations.MatchString(candidate) {
			continue
		}

		end := i + 1
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, Sentence{
				Text:  s,
				Start: start,
				End:   end,
			})
		}

		// Skip whitespace to find next sentence start
		for i+1 < len(text) && isSpace(text[i+1]) {
			i++
		}
		start = i + 1
	}

	// Handle remaining text without terminal punctuation
	if start < len(text) {
		if remaining := strings.TrimSpace(text[start:]); remaining != "" {
			sentences = append(sentences, Sentence{
				Text:  remaining,
				Start: start,
				End:   len(text),
			})
		}
	}

	return sentences
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

// IsAbbreviation reports whether word is a common abbreviation ending in a
// period, such as "Dr." or "e.g.".
func IsAbbreviation(word string) bool {
	return abbreviations.MatchString(word)
}
