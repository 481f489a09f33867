// Package watcher restores text files dropped into an input directory and
// writes the sentences, one per line, to an output directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Restorer is the subset of *punct.Restorer used by the watcher.
type Restorer interface {
	Restore(ctx context.Context, texts []string) ([]string, error)
}

const (
	defaultMaxConcurrent = 2
	// settleDelay lets writers finish before a new file is read.
	settleDelay = 500 * time.Millisecond
)

// Watcher monitors an input directory for .txt files.
type Watcher struct {
	inputDir      string
	outputDir     string
	restorer      Restorer
	logger        *slog.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	settle        time.Duration
	wg            sync.WaitGroup
}

// New creates a Watcher with concurrency control. The output directory is
// created if missing and must differ from the input directory.
func New(inputDir, outputDir string, r Restorer, logger *slog.Logger, maxConcurrent int) (*Watcher, error) {
	in, err := filepath.Abs(inputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve input dir: %w", err)
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if in == out {
		return nil, errors.New("input and output directories must differ")
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(in); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		inputDir:      in,
		outputDir:     out,
		restorer:      r,
		logger:        logger,
		watcher:       watcher,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
		settle:        settleDelay,
	}, nil
}

// Start restores the .txt files already in the input directory that have
// no output yet, then handles new files until ctx is done. It waits for
// in-flight files before returning.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("file watcher started",
		"input", w.inputDir, "output", w.outputDir, "max_concurrent", w.maxConcurrent)

	if err := w.scanExisting(ctx); err != nil {
		w.wg.Wait()
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("waiting for ongoing processing to complete")
			w.wg.Wait()
			w.logger.Info("file watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.wg.Wait()
				return errors.New("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isTextFile(event.Name) {
				w.logger.Debug("ignoring file", "path", event.Name)
				continue
			}

			w.logger.Info("new text file detected", "path", event.Name)
			// Small delay to ensure file is fully written
			if !sleep(ctx, w.settle) {
				continue
			}
			if err := w.dispatch(ctx, event.Name); err != nil {
				w.wg.Wait()
				return err
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.wg.Wait()
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// Stop closes the file watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inputDir)
	if err != nil {
		return fmt.Errorf("read input dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !isTextFile(e.Name()) {
			continue
		}
		if _, err := os.Stat(w.outputPath(e.Name())); err == nil {
			continue
		}
		if err := w.dispatch(ctx, filepath.Join(w.inputDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// dispatch blocks until a slot is free, then handles path in a goroutine.
func (w *Watcher) dispatch(ctx context.Context, path string) error {
	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }()

		if err := w.process(ctx, path); err != nil {
			w.logger.Error("failed to process file", "path", path, "error", err)
		}
	}()
	return nil
}

// process restores each non-blank line of path as a separate text.
func (w *Watcher) process(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var texts []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			texts = append(texts, line)
		}
	}

	sentences, err := w.restorer.Restore(ctx, texts)
	if err != nil {
		return err
	}

	out := w.outputPath(filepath.Base(path))
	if err := writeFile(out, strings.Join(sentences, "\n")+"\n"); err != nil {
		return err
	}

	w.logger.Info("restored file", "input", path, "output", out, "sentences", len(sentences))
	return nil
}

func (w *Watcher) outputPath(name string) string {
	return filepath.Join(w.outputDir, name)
}

// writeFile replaces path atomically.
func writeFile(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

func isTextFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt") && !strings.HasPrefix(filepath.Base(path), ".")
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
