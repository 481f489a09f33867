// Package download fetches the punctuation model and its tokenizer into a
// local model directory.
//
// Files are laid out as <dir>/<owner>/<name>/model.onnx and
// <dir>/<owner>/<name>/tokenizer.model. Files already present are not
// fetched again.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-retry"
)

// Local file names inside the repository directory.
const (
	ModelFile     = "model.onnx"
	TokenizerFile = "tokenizer.model"
)

const (
	defaultRetries = 3
	defaultBackoff = time.Second
)

// ErrStatus is wrapped by errors for non-200 responses.
var ErrStatus = errors.New("download: unexpected status")

// StatusError reports a non-200 response for a remote file.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v %d for %s", ErrStatus, e.Code, e.URL)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Repo names a model repository and the remote names of its two files.
type Repo struct {
	Owner         string
	Name          string
	ModelFile     string
	TokenizerFile string
}

// DefaultRepo returns the English punctuation, true-casing and
// segmentation model.
func DefaultRepo() Repo {
	return Repo{
		Owner:         "1-800-BAD-CODE",
		Name:          "punctuation_fullstop_truecase_english",
		ModelFile:     "punct_cap_seg_en.onnx",
		TokenizerFile: "spe_32k_lc_en.model",
	}
}

// Paths are the local paths of a fetched model.
type Paths struct {
	Model     string
	Tokenizer string
}

// Source retrieves one remote file of repo and writes it to w.
type Source interface {
	Get(ctx context.Context, repo Repo, name string, w io.Writer) error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRepo sets the model repository (default: DefaultRepo()).
func WithRepo(r Repo) Option {
	return func(f *Fetcher) {
		f.repo = r
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithRetries sets how many times a failed file is retried (default: 3).
func WithRetries(n uint64) Option {
	return func(f *Fetcher) {
		f.retries = n
	}
}

// WithBackoff sets the base of the Fibonacci backoff (default: 1s).
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.backoff = d
		}
	}
}

// Fetcher downloads a model repository into a local directory.
type Fetcher struct {
	source  Source
	dir     string
	repo    Repo
	logger  *slog.Logger
	retries uint64
	backoff time.Duration
}

// NewFetcher creates a Fetcher that stores files under dir.
func NewFetcher(source Source, dir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:  source,
		dir:     dir,
		repo:    DefaultRepo(),
		logger:  slog.Default(),
		retries: defaultRetries,
		backoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dir returns the local directory of the repository.
func (f *Fetcher) Dir() string {
	return filepath.Join(f.dir, f.repo.Owner, f.repo.Name)
}

// Paths returns where Fetch stores the model files.
func (f *Fetcher) Paths() Paths {
	dir := f.Dir()
	return Paths{
		Model:     filepath.Join(dir, ModelFile),
		Tokenizer: filepath.Join(dir, TokenizerFile),
	}
}

// Fetch downloads any missing model file and returns the local paths.
func (f *Fetcher) Fetch(ctx context.Context) (Paths, error) {
	if err := os.MkdirAll(f.Dir(), 0o755); err != nil {
		return Paths{}, fmt.Errorf("creating model directory: %w", err)
	}

	paths := f.Paths()
	files := []struct {
		remote string
		local  string
	}{
		{f.repo.ModelFile, paths.Model},
		{f.repo.TokenizerFile, paths.Tokenizer},
	}

	for _, file := range files {
		if _, err := os.Stat(file.local); err == nil {
			f.logger.Debug("model file present", "path", file.local)
			continue
		}

		f.logger.Info("downloading model file", "file", file.remote, "path", file.local)
		if err := f.fetchFile(ctx, file.remote, file.local); err != nil {
			return Paths{}, fmt.Errorf("fetching %s: %w", file.remote, err)
		}
	}

	return paths, nil
}

// fetchFile retries transient failures with Fibonacci backoff.
func (f *Fetcher) fetchFile(ctx context.Context, remote, local string) error {
	b := retry.WithMaxRetries(f.retries, retry.NewFibonacci(f.backoff))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := f.writeFile(ctx, remote, local)
		if err == nil {
			return nil
		}
		if !shouldRetry(err) {
			return err
		}
		f.logger.Warn("download failed, retrying", "file", remote, "error", err)
		return retry.RetryableError(err)
	})
}

// writeFile downloads into a temp file next to local and renames it into
// place, so a partial download never appears under the final name.
func (f *Fetcher) writeFile(ctx context.Context, remote, local string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(local), "."+filepath.Base(local)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = f.source.Get(ctx, f.repo, remote, tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), local); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// shouldRetry reports whether err may succeed on another attempt.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Code >= http.StatusInternalServerError || status.Code == http.StatusTooManyRequests
	}

	if errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrNotExist) {
		return false
	}
	return true
}
