package inference

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestPool builds a pool of sessions that carry no ONNX session.
func newTestPool(t *testing.T, size int) *Pool {
	t.Helper()
	pool, err := newPool(size, func() (*Session, error) {
		return &Session{}, nil
	})
	if err != nil {
		t.Fatalf("newPool failed: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func TestNewPool_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -5} {
		pool := newTestPool(t, size)
		if pool.Size() != 1 {
			t.Errorf("size %d: expected size 1, got %d", size, pool.Size())
		}
	}
}

func TestNewPool_ModelNotFound(t *testing.T) {
	_, err := NewPool("../testdata/nonexistent.onnx", 2)
	if err == nil {
		t.Error("expected error for non-existent model file")
	}
}

func TestNewPool_OpenFailureClosesCreated(t *testing.T) {
	var opened []*Session
	boom := errors.New("boom")

	_, err := newPool(3, func() (*Session, error) {
		if len(opened) == 2 {
			return nil, boom
		}
		s := &Session{}
		opened = append(opened, s)
		return s, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
	for i, s := range opened {
		if !s.closed {
			t.Errorf("session %d not closed after failed pool creation", i)
		}
	}
}

func TestPool_AcquireRelease(t *testing.T) {
	pool := newTestPool(t, 2)
	ctx := context.Background()

	s1, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 1 failed: %v", err)
	}
	s2, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 2 failed: %v", err)
	}

	// Third acquire should block - test with timeout
	ctx3, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	_, err = pool.Acquire(ctx3)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}

	// Release one and acquire again should work
	pool.Release(s1)

	s3, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 3 failed: %v", err)
	}

	pool.Release(s2)
	pool.Release(s3)
}

func TestPool_ReleaseNil(t *testing.T) {
	pool := newTestPool(t, 1)
	pool.Release(nil) // must not panic
}

func TestPool_ReleaseExcess(t *testing.T) {
	pool := newTestPool(t, 1)

	extra := &Session{}
	pool.Release(extra)
	if !extra.closed {
		t.Error("expected excess session to be closed")
	}
}

func TestPool_Close_Idempotent(t *testing.T) {
	pool := newTestPool(t, 2)

	if err := pool.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_ReleaseAfterClose(t *testing.T) {
	pool := newTestPool(t, 1)

	s, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	pool.Release(s)
	if !s.closed {
		t.Error("expected session released after Close to be closed")
	}
}

func TestPool_AcquireContextCancellation(t *testing.T) {
	pool := newTestPool(t, 1)

	s, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer pool.Release(s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pool.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPool_Infer_ContextCancelled(t *testing.T) {
	pool := newTestPool(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pool.Infer(ctx, []int64{0}, []int64{1}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPool_ConcurrentAccess(t *testing.T) {
	const size = 3
	pool := newTestPool(t, size)

	var (
		wg      sync.WaitGroup
		active  atomic.Int32
		maxSeen atomic.Int32
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			s, err := pool.Acquire(context.Background())
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			n := active.Add(1)
			for {
				m := maxSeen.Load()
				if n <= m || maxSeen.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			pool.Release(s)
		}()
	}
	wg.Wait()

	if got := maxSeen.Load(); got > size {
		t.Errorf("observed %d concurrent sessions, pool size is %d", got, size)
	}
}
