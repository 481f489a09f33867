package punct

import (
	"log/slog"
	"runtime"

	"github.com/jparkerweb/go-punct/cache"
	"github.com/jparkerweb/go-punct/restore"
	"github.com/jparkerweb/go-punct/tokenizer"
)

// Option configures a Restorer.
type Option func(*config)

type config struct {
	poolSize    int
	maxLength   int
	debugTokens int
	lexicon     *restore.Lexicon
	cache       cache.Cache
	logger      *slog.Logger
}

func defaultConfig() config {
	return config{
		poolSize:    runtime.NumCPU(),
		maxLength:   tokenizer.DefaultMaxLength,
		debugTokens: 3,
		lexicon:     restore.DefaultLexicon(),
		logger:      slog.Default(),
	}
}

// WithPoolSize sets the ONNX session pool size, which also bounds how many
// texts are processed at once (default: runtime.NumCPU()).
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithMaxLength sets the model sequence length (default: 512).
func WithMaxLength(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// WithLexicon replaces the heuristic word lists.
func WithLexicon(l *restore.Lexicon) Option {
	return func(c *config) {
		if l != nil {
			c.lexicon = l
		}
	}
}

// WithDebugTokens sets how many leading tokens of each text get a debug
// decision trace (default: 3).
func WithDebugTokens(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.debugTokens = n
		}
	}
}

// WithCache enables result caching.
func WithCache(cc cache.Cache) Option {
	return func(c *config) {
		c.cache = cc
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
