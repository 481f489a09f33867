// Package restore turns an unpunctuated token sequence and its model
// predictions into punctuated, true-cased text.
package restore

import (
	"log/slog"
	"strings"

	"github.com/jparkerweb/go-punct/tensor"
)

// minTokens is the shortest sequence with content between the sentinels.
const minTokens = 3

// Predictions holds the three model outputs aligned with the content tokens.
type Predictions struct {
	Punctuation    tensor.Prediction
	Capitalization tensor.Prediction
	Segmentation   tensor.Prediction
}

// Option configures an Engine.
type Option func(*Engine)

// WithLexicon sets the heuristic word lists (default: DefaultLexicon()).
func WithLexicon(l *Lexicon) Option {
	return func(e *Engine) {
		if l != nil {
			e.lexicon = l
		}
	}
}

// WithLogger sets the logger used for the decision trace (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDebugTokens sets how many leading tokens get a debug trace (default: 3).
func WithDebugTokens(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.debugTokens = n
		}
	}
}

// Engine applies punctuation and casing decisions in a single left-to-right
// pass. It holds no per-call state and is safe for concurrent use.
type Engine struct {
	lexicon     *Lexicon
	logger      *slog.Logger
	debugTokens int
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		lexicon:     DefaultLexicon(),
		logger:      slog.Default(),
		debugTokens: 3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lexicon returns the word lists used by the engine.
func (e *Engine) Lexicon() *Lexicon {
	return e.lexicon
}

// Process restores punctuation and casing for tokens, which must start and
// end with a sentinel. Prediction position i refers to the i-th token after
// the start sentinel. Sequences without content are joined verbatim.
func (e *Engine) Process(tokens []string, p Predictions) string {
	if len(tokens) < minTokens {
		return strings.Join(tokens, " ")
	}

	content := tokens[1 : len(tokens)-1]
	a := assembler{capitalizeNext: true}

	for i, token := range content {
		if strings.TrimSpace(token) == "" {
			continue
		}

		var next, prev string
		if i < len(content)-1 {
			next = content[i+1]
		}
		if i > 0 {
			prev = content[i-1]
		}

		punct := Class(tensor.Decode(p.Punctuation, i))
		capital := tensor.Decode(p.Capitalization, i)
		seg := tensor.Decode(p.Segmentation, i)

		cased := e.lexicon.TrueCase(token, a.capitalizeNext || capital == 1)
		mark := e.lexicon.Punctuation(punct, seg, token, next, prev)

		if i < e.debugTokens {
			e.logger.Debug("token decision",
				"index", i,
				"token", token,
				"next", next,
				"prev", prev,
				"punctuation", punct,
				"capitalization", capital,
				"segmentation", seg,
				"mark", mark,
				"cased", cased,
			)
		}

		a.add(cased, mark)
	}

	return a.finish()
}

// assembler accumulates the sentence being built and the flushed sentences.
type assembler struct {
	sentences      []string
	current        strings.Builder
	capitalizeNext bool
}

func (a *assembler) add(token, mark string) {
	if a.current.Len() > 0 {
		a.current.WriteByte(' ')
	}
	a.current.WriteString(token)
	a.current.WriteString(mark)

	if isTerminal(mark) {
		a.flush()
		a.capitalizeNext = true
		return
	}
	a.capitalizeNext = false
}

func (a *assembler) flush() {
	a.sentences = append(a.sentences, a.current.String())
	a.current.Reset()
}

func (a *assembler) finish() string {
	if a.current.Len() > 0 {
		s := a.current.String()
		if !strings.HasSuffix(s, markPeriod) && !strings.HasSuffix(s, markQuestion) {
			a.current.WriteString(markPeriod)
		}
		a.flush()
	}
	return strings.Join(a.sentences, " ")
}
