package download

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

var testFiles = map[string]string{
	"punct_cap_seg_en.onnx": "onnx-bytes",
	"spe_32k_lc_en.model":   "spm-bytes",
}

// newHub serves testFiles under the HuggingFace resolve layout.
func newHub(t *testing.T, handler func(w http.ResponseWriter, r *http.Request) bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if handler != nil && handler(w, r) {
			return
		}
		prefix := "/1-800-BAD-CODE/punctuation_fullstop_truecase_english/resolve/main/"
		body, ok := testFiles[strings.TrimPrefix(r.URL.Path, prefix)]
		if !ok || !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestFetcher(baseURL, dir string, opts ...Option) *Fetcher {
	opts = append([]Option{WithBackoff(time.Millisecond)}, opts...)
	return NewFetcher(NewHTTPSource(baseURL, ""), dir, opts...)
}

func TestFetcher_Fetch(t *testing.T) {
	srv, hits := newHub(t, nil)
	dir := t.TempDir()

	paths, err := newTestFetcher(srv.URL, dir).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	wantDir := filepath.Join(dir, "1-800-BAD-CODE", "punctuation_fullstop_truecase_english")
	if paths.Model != filepath.Join(wantDir, ModelFile) {
		t.Errorf("Model = %s", paths.Model)
	}
	if paths.Tokenizer != filepath.Join(wantDir, TokenizerFile) {
		t.Errorf("Tokenizer = %s", paths.Tokenizer)
	}

	for path, want := range map[string]string{paths.Model: "onnx-bytes", paths.Tokenizer: "spm-bytes"} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if hits.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", hits.Load())
	}

	entries, err := os.ReadDir(wantDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected only the two model files, found %d entries", len(entries))
	}
}

func TestFetcher_SkipsExisting(t *testing.T) {
	srv, hits := newHub(t, nil)
	dir := t.TempDir()
	f := newTestFetcher(srv.URL, dir)

	if err := os.MkdirAll(f.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{f.Paths().Model, f.Paths().Tokenizer} {
		if err := os.WriteFile(p, []byte("local"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := f.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no requests, got %d", hits.Load())
	}
	got, _ := os.ReadFile(f.Paths().Model)
	if string(got) != "local" {
		t.Errorf("existing file overwritten: %q", got)
	}
}

func TestFetcher_NotFound(t *testing.T) {
	srv, hits := newHub(t, func(w http.ResponseWriter, r *http.Request) bool {
		http.NotFound(w, r)
		return true
	})

	_, err := newTestFetcher(srv.URL, t.TempDir()).Fetch(context.Background())
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}

	var status *StatusError
	if !errors.As(err, &status) || status.Code != http.StatusNotFound {
		t.Errorf("expected 404 StatusError, got %v", err)
	}
	if !strings.Contains(err.Error(), srv.URL) {
		t.Errorf("error should name the URL: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("404 should not be retried, got %d requests", hits.Load())
	}
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var failures atomic.Int32
	srv, _ := newHub(t, func(w http.ResponseWriter, r *http.Request) bool {
		if failures.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return true
		}
		return false
	})

	paths, err := newTestFetcher(srv.URL, t.TempDir()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got, _ := os.ReadFile(paths.Model); string(got) != "onnx-bytes" {
		t.Errorf("model = %q", got)
	}
}

func TestFetcher_GivesUp(t *testing.T) {
	srv, hits := newHub(t, func(w http.ResponseWriter, r *http.Request) bool {
		w.WriteHeader(http.StatusServiceUnavailable)
		return true
	})

	f := newTestFetcher(srv.URL, t.TempDir(), WithRetries(2))
	_, err := f.Fetch(context.Background())
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", hits.Load())
	}
	if _, err := os.Stat(f.Paths().Model); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial model file left behind: %v", err)
	}
}

func TestFetcher_FollowsRedirects(t *testing.T) {
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("from-cdn"))
	}))
	defer cdn.Close()

	srv, _ := newHub(t, func(w http.ResponseWriter, r *http.Request) bool {
		http.Redirect(w, r, cdn.URL+"/blob", http.StatusFound)
		return true
	})

	paths, err := newTestFetcher(srv.URL, t.TempDir()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got, _ := os.ReadFile(paths.Tokenizer); string(got) != "from-cdn" {
		t.Errorf("tokenizer = %q, want from-cdn", got)
	}
}

func TestFetcher_ContextCancelled(t *testing.T) {
	srv, _ := newHub(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(srv.URL, t.TempDir()).Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHTTPSource_BearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	src := NewHTTPSource(srv.URL, "secret")
	if err := src.Get(context.Background(), DefaultRepo(), "file", &buf); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
	if buf.String() != "ok" {
		t.Errorf("body = %q", buf.String())
	}
}

func TestHTTPSource_URL(t *testing.T) {
	src := NewHTTPSource("", "")
	got := src.URL(DefaultRepo(), "punct_cap_seg_en.onnx")
	want := "https://huggingface.co/1-800-BAD-CODE/punctuation_fullstop_truecase_english/resolve/main/punct_cap_seg_en.onnx"
	if got != want {
		t.Errorf("URL = %s, want %s", got, want)
	}
}
