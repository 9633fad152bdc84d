// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	t.Parallel()

	c := New[int]("test-setget", time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	c.Set("a", 42)
	v, ok := c.Get("a")
	if !ok || v != 42 {
		t.Fatalf("Get(a) = %v, %v; want 42, true", v, ok)
	}

	s := c.GetStats()
	if s.Hits != 1 || s.Misses != 1 || s.TotalKeys != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 key", s)
	}
	if got := c.HitRate(); got != 50 {
		t.Errorf("HitRate() = %v, want 50", got)
	}
}

func TestCache_Expiry(t *testing.T) {
	t.Parallel()

	c := New[string]("test-expiry", time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed, Len() = %d", c.Len())
	}
	if c.GetStats().Evictions != 1 {
		t.Errorf("expected one eviction, got %d", c.GetStats().Evictions)
	}
}

func TestCache_Cleanup(t *testing.T) {
	t.Parallel()

	c := New[int]("test-cleanup", time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("old", 1)
	now = now.Add(30 * time.Second)
	c.Set("new", 2)
	now = now.Add(45 * time.Second)

	c.cleanup()

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("unexpired entry should survive cleanup")
	}
}

func TestCache_GetOrBuild_SharesOneBuild(t *testing.T) {
	t.Parallel()

	c := New[int]("test-build", time.Minute)
	var builds atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := c.GetOrBuild(context.Background(), "model", func() (int, error) {
				builds.Add(1)
				<-release
				return 7, nil
			})
			if err != nil {
				t.Errorf("GetOrBuild() error = %v", err)
			}
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := builds.Load(); got != 1 {
		t.Errorf("build ran %d times, want 1", got)
	}
	for i, v := range results {
		if v != 7 {
			t.Errorf("results[%d] = %d, want 7", i, v)
		}
	}

	_, cached, _ := c.GetOrBuild(context.Background(), "model", func() (int, error) { return 0, nil })
	if !cached {
		t.Error("second lookup should be served from cache")
	}
}

func TestCache_GetOrBuild_ErrorNotCached(t *testing.T) {
	t.Parallel()

	c := New[int]("test-build-err", time.Minute)
	boom := errors.New("training failed")

	if _, _, err := c.GetOrBuild(context.Background(), "k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("failed builds must not be cached")
	}

	v, cached, err := c.GetOrBuild(context.Background(), "k", func() (int, error) { return 3, nil })
	if err != nil || cached || v != 3 {
		t.Errorf("rebuild = %v, %v, %v; want 3, false, nil", v, cached, err)
	}
}

func TestCache_GetOrBuild_PanicReleasesKey(t *testing.T) {
	t.Parallel()

	c := New[int]("test-build-panic", time.Minute)

	_, _, err := c.GetOrBuild(context.Background(), "k", func() (int, error) {
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("panicking build error = %v, want one mentioning the panic", err)
	}
	if c.Len() != 0 {
		t.Error("a panicking build must not be cached")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	v, cached, err := c.GetOrBuild(ctx, "k", func() (int, error) { return 5, nil })
	if err != nil {
		t.Fatalf("rebuild after panic error = %v", err)
	}
	if cached || v != 5 {
		t.Errorf("rebuild = %v, %v; want 5, false", v, cached)
	}
}

func TestCache_GetOrBuild_PanicReachesWaiters(t *testing.T) {
	t.Parallel()

	c := New[int]("test-build-panic-wait", time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_, _, _ = c.GetOrBuild(context.Background(), "k", func() (int, error) {
			close(started)
			<-release
			panic("boom")
		})
	}()
	<-started

	errCh := make(chan error, 1)
	go func() {
		_, _, err := c.GetOrBuild(context.Background(), "k", func() (int, error) { return 1, nil })
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter still blocked after the build panicked")
	}
}

func TestCache_GetOrBuild_CallerContext(t *testing.T) {
	t.Parallel()

	c := New[int]("test-build-ctx", time.Minute)
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err := c.GetOrBuild(ctx, "slow", func() (int, error) {
		<-release
		return 1, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestCache_Bounded(t *testing.T) {
	t.Parallel()

	c := NewBounded[int]("test-bounded", time.Minute, 2)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	now = now.Add(time.Second)
	c.Set("b", 2)
	now = now.Add(time.Second)
	c.Set("c", 3)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("the entry closest to expiry should have been evicted")
	}
	for _, key := range []string{"b", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s should still be cached", key)
		}
	}

	c.Set("b", 20)
	if c.Len() != 2 {
		t.Errorf("overwriting a key must not evict, Len() = %d", c.Len())
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	a := GenerateKey("segmentation", []float64{1, 2, 3})
	b := GenerateKey("segmentation", []float64{1, 2, 3})
	c := GenerateKey("segmentation", []float64{1, 2, 4})
	d := GenerateKey("forecast", []float64{1, 2, 3})

	if a != b {
		t.Error("identical input should produce identical keys")
	}
	if a == c {
		t.Error("different data should produce different keys")
	}
	if a == d {
		t.Error("different methods should produce different keys")
	}
	if !strings.HasPrefix(a, "segmentation:") || len(a) != len("segmentation:")+32 {
		t.Errorf("unexpected key format %q", a)
	}
}
