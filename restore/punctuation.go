package restore

// Punctuation picks the mark to attach after token.
//
// A predicted period or question mark, or a segmentation boundary confirmed
// by context, ends the sentence unless token is non-terminal; question marks
// survive, everything else becomes a period. A predicted comma is kept only
// before a comma trigger word, or on a capitalized token that follows a
// locative preposition. next and prev are "" at the edges of the sequence.
func (l *Lexicon) Punctuation(c Class, segmentation int, token, next, prev string) string {
	raw := c.Mark()

	couldEnd := isTerminal(raw)
	segBoundary := segmentation == 1 && l.IsPotentialSentenceBoundary(token, next, prev)

	if (couldEnd || segBoundary) && !l.IsNonTerminal(token) {
		if raw == markQuestion {
			return markQuestion
		}
		return markPeriod
	}

	if raw == markComma {
		if next != "" && l.commaTriggers.has(next) {
			return markComma
		}
		if token != "" && prev != "" && l.prepositions.has(prev) && startsUpper(token) {
			return markComma
		}
		return ""
	}

	return raw
}
