// Package app wires configuration into the library for the commands.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jparkerweb/go-punct"
	"github.com/jparkerweb/go-punct/cache"
	"github.com/jparkerweb/go-punct/download"
	"github.com/jparkerweb/go-punct/inference"
	"github.com/jparkerweb/go-punct/internal/config"
	"github.com/jparkerweb/go-punct/internal/logging"
)

// LoadConfig reads path, or returns the defaults when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// OverrideModel applies model flags on top of cfg and revalidates it.
// A model path without a tokenizer path looks for the tokenizer next to
// the model, as a config file would.
func OverrideModel(cfg *config.Config, modelPath, tokenizerPath, modelDir string) error {
	if modelPath != "" {
		cfg.Model.ModelPath = modelPath
		cfg.Model.TokenizerPath = ""
	}
	if tokenizerPath != "" {
		cfg.Model.TokenizerPath = tokenizerPath
	}
	if modelDir != "" {
		cfg.Model.Dir = modelDir
	}
	return cfg.Validate()
}

// Logger builds the logger described by cfg.
func Logger(cfg *config.Config, w io.Writer) (*logging.Logger, error) {
	return logging.New(cfg.Logging.Level, cfg.Logging.Format, w)
}

// Cache builds the configured result cache. It returns a nil cache for
// kind none. The returned close function is never nil.
func Cache(ctx context.Context, cfg *config.Config) (cache.Cache, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Cache.Kind {
	case config.CacheMemory:
		return cache.NewMemory(cfg.Cache.TTL), noop, nil
	case config.CacheRedis:
		r := cache.NewRedis(cache.RedisOptions{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TTL:      cfg.Cache.TTL,
		})
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, noop, err
		}
		return r, r.Close, nil
	default:
		return nil, noop, nil
	}
}

// Fetcher builds the model fetcher for the configured source.
func Fetcher(cfg *config.Config, logger *logging.Logger) *download.Fetcher {
	var src download.Source
	switch cfg.Model.Source {
	case config.SourceS3:
		src = download.NewS3Source(download.S3Options{
			Bucket:   cfg.Model.S3.Bucket,
			Region:   cfg.Model.S3.Region,
			Endpoint: cfg.Model.S3.Endpoint,
			Prefix:   cfg.Model.S3.Prefix,
		})
	default:
		src = download.NewHTTPSource(cfg.Model.BaseURL, os.Getenv("HF_TOKEN"))
	}
	return download.NewFetcher(src, cfg.Model.Dir, download.WithLogger(logger.Logger))
}

// OpenRestorer opens the restorer from local files when a model path is
// configured, and downloads the model otherwise.
func OpenRestorer(ctx context.Context, cfg *config.Config, logger *logging.Logger, c cache.Cache) (*punct.Restorer, error) {
	inference.SetLibraryPath(cfg.Inference.SharedLibrary)

	opts := []punct.Option{
		punct.WithPoolSize(cfg.Inference.PoolSize),
		punct.WithMaxLength(cfg.Inference.MaxLength),
		punct.WithLogger(logger.Logger),
	}
	if c != nil {
		opts = append(opts, punct.WithCache(c))
	}

	if cfg.Model.ModelPath != "" {
		r, err := punct.New(cfg.Model.ModelPath, cfg.Model.TokenizerPath, opts...)
		if err != nil {
			return nil, fmt.Errorf("opening model: %w", err)
		}
		return r, nil
	}

	r, err := punct.Open(ctx, Fetcher(cfg, logger), opts...)
	if err != nil {
		return nil, fmt.Errorf("opening model: %w", err)
	}
	return r, nil
}
