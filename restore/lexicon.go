package restore

import (
	"slices"
	"strings"
)

// Words holds the word lists behind the lexical heuristics. All entries are
// matched case-insensitively.
type Words struct {
	// CommaTriggers are next-token words that allow a predicted comma.
	CommaTriggers []string
	// NonTerminal words never end a sentence.
	NonTerminal []string
	// Honorifics are title abbreviations, cased as proper nouns with or
	// without a trailing period.
	Honorifics []string
	// Calendar holds weekday and month names, cased as proper nouns.
	Calendar []string
	// Pronouns that commonly open a sentence when they follow a boundary.
	Pronouns []string
	// Conjunctions that do not open a sentence even when capitalized.
	Conjunctions []string
	// SpeechVerbs typically close a quote or a sentence.
	SpeechVerbs []string
	// NumericSuffixes continue a number rather than start a sentence.
	NumericSuffixes []string
	// Prepositions that, before a capitalized token, allow a comma after it.
	Prepositions []string
}

// DefaultWords returns a fresh copy of the built-in word lists.
func DefaultWords() Words {
	return Words{
		CommaTriggers: []string{
			"and", "but", "or", "nor", "for", "yet", "so",
			"however", "therefore", "moreover", "furthermore",
			"nevertheless", "meanwhile", "consequently",
			"instead", "indeed", "namely", "specifically",
			"additionally", "similarly", "likewise",
			"hence", "thus", "still", "otherwise",
			"rather", "accordingly", "finally",
		},
		NonTerminal: []string{
			"the", "a", "an", "this", "that", "these", "those",
			"my", "your", "his", "her", "its", "our", "their",
			"in", "on", "at", "by", "for", "with", "to", "of",
			"mr", "ms", "mrs", "dr", "prof",
		},
		Honorifics: []string{"mr", "ms", "mrs", "dr", "prof"},
		Calendar: []string{
			"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
			"january", "february", "march", "april", "may", "june", "july",
			"august", "september", "october", "november", "december",
		},
		Pronouns:     []string{"he", "she", "it", "they", "we", "i"},
		Conjunctions: []string{"and", "but", "or", "nor", "for", "yet", "so"},
		SpeechVerbs:  []string{"said", "replied", "asked", "thought", "wondered", "exclaimed", "continued"},
		NumericSuffixes: []string{
			"am", "pm", "th", "st", "nd", "rd",
			"dollars", "cents", "years", "days", "months", "weeks",
		},
		Prepositions: []string{"in", "at", "on", "from", "to"},
	}
}

type wordSet map[string]struct{}

func newWordSet(words []string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// sorted returns the lowercased entries in order.
func (s wordSet) sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

func (s wordSet) has(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// Lexicon is an immutable set of heuristic word lists.
// A Lexicon is safe for concurrent use.
type Lexicon struct {
	commaTriggers   wordSet
	nonTerminal     wordSet
	honorifics      wordSet
	calendar        wordSet
	pronouns        wordSet
	conjunctions    wordSet
	speechVerbs     wordSet
	numericSuffixes wordSet
	prepositions    wordSet
}

// NewLexicon builds a Lexicon from w. The lists are copied.
func NewLexicon(w Words) *Lexicon {
	return &Lexicon{
		commaTriggers:   newWordSet(w.CommaTriggers),
		nonTerminal:     newWordSet(w.NonTerminal),
		honorifics:      newWordSet(w.Honorifics),
		calendar:        newWordSet(w.Calendar),
		pronouns:        newWordSet(w.Pronouns),
		conjunctions:    newWordSet(w.Conjunctions),
		speechVerbs:     newWordSet(w.SpeechVerbs),
		numericSuffixes: newWordSet(w.NumericSuffixes),
		prepositions:    newWordSet(w.Prepositions),
	}
}

// Words returns the lists behind l, lowercased and sorted. Two lexicons
// with equal Words behave the same.
func (l *Lexicon) Words() Words {
	return Words{
		CommaTriggers:   l.commaTriggers.sorted(),
		NonTerminal:     l.nonTerminal.sorted(),
		Honorifics:      l.honorifics.sorted(),
		Calendar:        l.calendar.sorted(),
		Pronouns:        l.pronouns.sorted(),
		Conjunctions:    l.conjunctions.sorted(),
		SpeechVerbs:     l.speechVerbs.sorted(),
		NumericSuffixes: l.numericSuffixes.sorted(),
		Prepositions:    l.prepositions.sorted(),
	}
}

var defaultLexicon = NewLexicon(DefaultWords())

// DefaultLexicon returns the shared Lexicon built from DefaultWords.
func DefaultLexicon() *Lexicon {
	return defaultLexicon
}

// IsNonTerminal reports whether word should not end a sentence: it is a
// listed non-terminal word or consists only of digits.
func (l *Lexicon) IsNonTerminal(word string) bool {
	if word == "" {
		return false
	}
	return l.nonTerminal.has(word) || isDigits(word)
}

// IsProperNoun reports whether word is cased as a proper noun by pattern:
// an honorific (optionally followed by a period) or a weekday or month.
func (l *Lexicon) IsProperNoun(word string) bool {
	return l.honorifics.has(strings.TrimSuffix(word, ".")) || l.calendar.has(word)
}

// IsPotentialSentenceBoundary reports whether the context around token
// looks like the end of a sentence. Both token and next must be non-empty.
func (l *Lexicon) IsPotentialSentenceBoundary(token, next, prev string) bool {
	if token == "" || next == "" {
		return false
	}

	switch {
	case l.pronouns.has(next):
		return true
	case startsUpper(next) && !l.nonTerminal.has(next) && !l.conjunctions.has(next):
		return true
	case l.speechVerbs.has(token):
		return true
	case isDigits(token) && !l.isNumericSuffix(next):
		return true
	}
	return false
}

func (l *Lexicon) isNumericSuffix(word string) bool {
	if len(word) == 1 && isDigits(word) {
		return true
	}
	return l.numericSuffixes.has(word)
}
