// Package tokenizer frames preprocessed text as model input for the
// punctuation, capitalization and segmentation model.
//
// Words are split on single spaces and wrapped in [CLS] ... [SEP]. When a
// SentencePiece vocabulary is loaded, a word maps to the ID of its
// whole-word piece ("▁word"); otherwise, and for unknown words, it maps to
// the unknown token.
package tokenizer

import (
	"fmt"
	"log/slog"
	"strings"
)

// Special tokens.
const (
	PadToken = "[PAD]"
	UnkToken = "[UNK]"
	ClsToken = "[CLS]"
	SepToken = "[SEP]"
)

// DefaultMaxLength is the model's maximum sequence length, sentinels included.
const DefaultMaxLength = 512

const sentencePieceSpace = "▁" // U+2581 LOWER ONE EIGHTH BLOCK

// Fallback IDs, used when no vocabulary is loaded or the vocabulary lacks
// an equivalent piece.
const (
	padID int64 = iota
	unkID
	clsID
	sepID
)

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithMaxLength sets the maximum sequence length (default: DefaultMaxLength).
// Values below 3 are ignored.
func WithMaxLength(n int) Option {
	return func(t *Tokenizer) {
		if n >= 3 {
			t.maxLength = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(t *Tokenizer) {
		if l != nil {
			t.logger = l
		}
	}
}

// Tokenizer converts text to sentinel-framed tokens and model input tensors.
// It is safe for concurrent use.
type Tokenizer struct {
	vocab     *Vocabulary
	maxLength int
	logger    *slog.Logger

	padID int64
	unkID int64
	clsID int64
	sepID int64
}

// New creates a Tokenizer without a vocabulary. Every word maps to the
// unknown token.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		maxLength: DefaultMaxLength,
		logger:    slog.Default(),
		padID:     padID,
		unkID:     unkID,
		clsID:     clsID,
		sepID:     sepID,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load creates a Tokenizer backed by the vocabulary of a SentencePiece
// .model file.
func Load(modelPath string, opts ...Option) (*Tokenizer, error) {
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}

	t := New(opts...)
	t.vocab = NewVocabulary(model)

	// Prefer the vocabulary's own control pieces for the sentinels.
	for piece, id := range map[string]*int64{
		"<pad>": &t.padID,
		"<unk>": &t.unkID,
		"<s>":   &t.clsID,
		"</s>":  &t.sepID,
	} {
		if v, ok := t.vocab.ID(piece); ok {
			*id = v
		}
	}

	return t, nil
}

// MaxLength returns the maximum sequence length.
func (t *Tokenizer) MaxLength() int { return t.maxLength }

// HasVocabulary reports whether a SentencePiece vocabulary is loaded.
func (t *Tokenizer) HasVocabulary() bool { return t.vocab != nil }

// Tokenize preprocesses text and frames its words with [CLS] and [SEP].
// Sequences longer than the maximum length are cut and re-terminated.
func (t *Tokenizer) Tokenize(text string) []string {
	words := strings.Split(Preprocess(text), " ")

	tokens := make([]string, 0, len(words)+2)
	tokens = append(tokens, ClsToken)
	tokens = append(tokens, words...)
	tokens = append(tokens, SepToken)

	if len(tokens) > t.maxLength {
		t.logger.Warn("input truncated",
			"tokens", len(tokens),
			"max_length", t.maxLength,
		)
		tokens = append(tokens[:t.maxLength-1], SepToken)
	}

	return tokens
}

// ModelInput returns input_ids and attention_mask for tokens, padded to
// the maximum length.
func (t *Tokenizer) ModelInput(tokens []string) (inputIDs, attentionMask []int64) {
	n := t.maxLength
	if len(tokens) > n {
		n = len(tokens)
	}

	inputIDs = make([]int64, n)
	attentionMask = make([]int64, n)
	for i := range inputIDs {
		inputIDs[i] = t.padID
	}

	for i, tok := range tokens {
		inputIDs[i] = t.id(tok)
		attentionMask[i] = 1
	}

	return inputIDs, attentionMask
}

func (t *Tokenizer) id(token string) int64 {
	switch token {
	case PadToken:
		return t.padID
	case UnkToken:
		return t.unkID
	case ClsToken:
		return t.clsID
	case SepToken:
		return t.sepID
	}

	if t.vocab != nil {
		if id, ok := t.vocab.ID(sentencePieceSpace + token); ok {
			return id
		}
	}
	return t.unkID
}

// Close releases tokenizer resources.
func (t *Tokenizer) Close() error {
	return nil
}
