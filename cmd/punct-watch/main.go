package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jparkerweb/go-punct/internal/app"
	"github.com/jparkerweb/go-punct/watcher"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	input := flag.String("input", "", "Directory to watch for .txt files")
	output := flag.String("output", "", "Directory for restored files")
	maxConcurrent := flag.Int("max-concurrent", 0, "Files processed at once")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Watch.Input = *input
	}
	if *output != "" {
		cfg.Watch.Output = *output
	}
	if *maxConcurrent > 0 {
		cfg.Watch.MaxConcurrent = *maxConcurrent
	}

	logger, err := app.Logger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, closeCache, err := app.Cache(ctx, cfg)
	if err != nil {
		logger.Error("connecting cache", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closeCache() }()

	r, err := app.OpenRestorer(ctx, cfg, logger, c)
	if err != nil {
		logger.Error("opening restorer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = r.Close() }()

	if err := os.MkdirAll(cfg.Watch.Input, 0o755); err != nil {
		logger.Error("creating input dir", "error", err)
		os.Exit(1)
	}

	w, err := watcher.New(cfg.Watch.Input, cfg.Watch.Output, r, logger.Logger, cfg.Watch.MaxConcurrent)
	if err != nil {
		logger.Error("creating watcher", "error", err)
		os.Exit(1)
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watcher failed", "error", err)
		os.Exit(1)
	}
}
