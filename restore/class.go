package restore

// Class is a punctuation class predicted by the model.
type Class int

// Punctuation classes in model output order.
const (
	None Class = iota
	Period
	Comma
	Question
	// Exclamation is reserved; the current model never predicts it and
	// it maps to no mark.
	Exclamation
)

// Punctuation marks the engine can attach to a token.
const (
	markPeriod   = "."
	markComma    = ","
	markQuestion = "?"
)

// Mark returns the literal mark for the class, or "" for None and any
// unrecognized or inactive class.
func (c Class) Mark() string {
	switch c {
	case Period:
		return markPeriod
	case Comma:
		return markComma
	case Question:
		return markQuestion
	default:
		return ""
	}
}

func (c Class) String() string {
	switch c {
	case None:
		return "none"
	case Period:
		return "period"
	case Comma:
		return "comma"
	case Question:
		return "question"
	case Exclamation:
		return "exclamation"
	default:
		return "unknown"
	}
}

// isTerminal reports whether mark ends a sentence.
func isTerminal(mark string) bool {
	return mark == markPeriod || mark == markQuestion
}
