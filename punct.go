package punct

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jparkerweb/go-punct/cache"
	"github.com/jparkerweb/go-punct/download"
	"github.com/jparkerweb/go-punct/inference"
	"github.com/jparkerweb/go-punct/restore"
	"github.com/jparkerweb/go-punct/splitter"
	"github.com/jparkerweb/go-punct/tensor"
	"github.com/jparkerweb/go-punct/tokenizer"
)

// Predictor runs the model on one padded sequence and returns its outputs
// by name. *inference.Pool is the production implementation.
type Predictor interface {
	Infer(ctx context.Context, inputIDs, attentionMask []int64) (map[string]tensor.Prediction, error)
	Close() error
}

// Restorer restores punctuation and casing in raw text and splits the
// result into sentences. It is safe for concurrent use.
type Restorer struct {
	tokenizer *tokenizer.Tokenizer
	predictor Predictor
	engine    *restore.Engine
	cache     cache.Cache
	scope     string // cache key prefix
	logger    *slog.Logger
	workers   int

	mu     sync.RWMutex
	closed bool
}

// New creates a Restorer from local model files. An empty tokenizerPath
// runs without a vocabulary, mapping every word to the unknown token.
func New(modelPath, tokenizerPath string, opts ...Option) (*Restorer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Check model file exists
	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	tokOpts := []tokenizer.Option{
		tokenizer.WithMaxLength(cfg.maxLength),
		tokenizer.WithLogger(cfg.logger),
	}
	tok := tokenizer.New(tokOpts...)
	if tokenizerPath != "" {
		var err error
		tok, err = tokenizer.Load(tokenizerPath, tokOpts...)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrTokenizerFailed, tokenizerPath)
			}
			return nil, fmt.Errorf("%w: %w", ErrTokenizerFailed, err)
		}
	}

	// Create session pool
	pool, err := inference.NewPool(modelPath, cfg.poolSize)
	if err != nil {
		_ = tok.Close()
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	r := newRestorer(tok, pool, cfg)
	if cfg.cache != nil {
		// Results depend on the exact model and vocabulary.
		scope, err := cacheScope(cfg, modelPath, tokenizerPath)
		if err != nil {
			_ = r.Close()
			return nil, err
		}
		r.scope = scope
	}

	cfg.logger.Info("restorer ready",
		"model", modelPath,
		"pool_size", pool.Size(),
		"max_length", tok.MaxLength(),
		"vocabulary", tok.HasVocabulary())

	return r, nil
}

// Open fetches any missing model files and creates a Restorer from them.
func Open(ctx context.Context, f *download.Fetcher, opts ...Option) (*Restorer, error) {
	paths, err := f.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	return New(paths.Model, paths.Tokenizer, opts...)
}

func newRestorer(tok *tokenizer.Tokenizer, p Predictor, cfg config) *Restorer {
	engine := restore.New(
		restore.WithLexicon(cfg.lexicon),
		restore.WithLogger(cfg.logger),
		restore.WithDebugTokens(cfg.debugTokens),
	)

	// Without model files only the heuristics scope the cache; the
	// error is unreachable.
	scope, _ := cacheScope(cfg)

	return &Restorer{
		tokenizer: tok,
		predictor: p,
		engine:    engine,
		cache:     cfg.cache,
		scope:     scope,
		logger:    cfg.logger,
		workers:   cfg.poolSize,
	}
}

// cacheScope fingerprints the inputs that decide a result besides the
// text: the given files, the lexicon and the model input length.
func cacheScope(cfg config, files ...string) (string, error) {
	s := cache.NewScope()
	for _, path := range files {
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("fingerprinting %s: %w", path, err)
		}
		_, err = io.Copy(s, f)
		_ = f.Close()
		if err != nil {
			return "", fmt.Errorf("fingerprinting %s: %w", path, err)
		}
	}

	w := cfg.lexicon.Words()
	for _, list := range [][]string{
		w.CommaTriggers, w.NonTerminal, w.Honorifics, w.Calendar, w.Pronouns,
		w.Conjunctions, w.SpeechVerbs, w.NumericSuffixes, w.Prepositions,
	} {
		fmt.Fprintf(s, "%q\n", list)
	}
	fmt.Fprintf(s, "max_length=%d\n", cfg.maxLength)
	return s.String(), nil
}

// Restore punctuates each text and returns the sentences of all texts,
// concatenated in input order. The first failing text aborts the call.
func (r *Restorer) Restore(ctx context.Context, texts []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrClosed
	}

	results := make([]string, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, text := range texts {
		g.Go(func() error {
			out, err := r.punctuate(gctx, text)
			if err != nil {
				return fmt.Errorf("%w: text %d: %w", ErrInferenceFailed, i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var sentences []string
	for _, res := range results {
		sentences = append(sentences, splitter.Split(res)...)
	}
	return sentences, nil
}

// Punctuate restores punctuation and casing in a single text without
// splitting it.
func (r *Restorer) Punctuate(ctx context.Context, text string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return "", ErrClosed
	}

	out, err := r.punctuate(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInferenceFailed, err)
	}
	return out, nil
}

func (r *Restorer) punctuate(ctx context.Context, text string) (string, error) {
	var key string
	if r.cache != nil {
		key = cache.Key(r.scope, text)
		cached, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("cache get failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	tokens := r.tokenizer.Tokenize(text)
	inputIDs, attentionMask := r.tokenizer.ModelInput(tokens)

	outputs, err := r.predictor.Infer(ctx, inputIDs, attentionMask)
	if err != nil {
		return "", err
	}

	// Outputs are indexed by input position; the engine reads content
	// positions, which start after [CLS].
	out := r.engine.Process(tokens, restore.Predictions{
		Punctuation:    tensor.Shift(outputs[inference.OutputPunctuation], 1),
		Capitalization: tensor.Shift(outputs[inference.OutputCapitalization], 1),
		Segmentation:   tensor.Shift(outputs[inference.OutputSegmentation], 1),
	})

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, out); err != nil {
			r.logger.Warn("cache set failed", "error", err)
		}
	}
	return out, nil
}

// Close releases all resources. It waits for in-flight calls.
func (r *Restorer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	if r.predictor != nil {
		if err := r.predictor.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if r.tokenizer != nil {
		if err := r.tokenizer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
