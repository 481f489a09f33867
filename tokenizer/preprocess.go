package tokenizer

import (
	"strings"
	"unicode"
)

// stripped are the marks removed before tokenization; the model restores them.
const stripped = ".,!?;:"

// Preprocess prepares raw text for the model:
//   - lowercases, since the model predicts casing itself
//   - collapses whitespace runs to a single space
//   - removes existing punctuation (.,!?;:)
//   - trims the result
func Preprocess(text string) string {
	if text == "" {
		return ""
	}

	var builder strings.Builder
	builder.Grow(len(text))

	inSpace := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) {
			if !inSpace {
				builder.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		if strings.ContainsRune(stripped, r) {
			continue
		}
		builder.WriteRune(r)
	}

	return strings.TrimSpace(builder.String())
}
