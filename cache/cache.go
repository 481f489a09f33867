// Package cache stores restored text keyed by a hash of the raw input,
// scoped by a fingerprint of the model and heuristics that produced it.
// A miss is reported as ok == false, never as an error.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Cache maps raw text keys to punctuated results.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Key returns the cache key for raw input text restored under scope.
// Restorers with different scopes never share entries.
func Key(scope, text string) string {
	return "punct:" + scope + ":" + strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// Scope accumulates a fingerprint of everything besides the text that
// decides a result. It is an io.Writer, so model files can be copied in.
type Scope struct {
	d *xxhash.Digest
}

// NewScope returns an empty Scope.
func NewScope() *Scope {
	return &Scope{d: xxhash.New()}
}

// Write adds p to the fingerprint.
func (s *Scope) Write(p []byte) (int, error) {
	return s.d.Write(p)
}

// String returns the fingerprint in hex.
func (s *Scope) String() string {
	return strconv.FormatUint(s.d.Sum64(), 16)
}

type entry struct {
	value   string
	expires time.Time
}

// Memory is an in-process cache with a fixed entry lifetime.
type Memory struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory creates a memory cache. A ttl <= 0 keeps entries forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}

	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.mu.Lock()
		// Re-check; a concurrent Set may have refreshed the entry.
		if cur, ok := m.entries[key]; ok && cur.expires.Equal(e.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key, value string) error {
	e := entry{value: value}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
