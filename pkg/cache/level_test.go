package cache

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLevelCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	lc, err := NewLevelCache(filepath.Join(t.TempDir(), "prices"), WithLevelClock(clock.Now))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer lc.Close()

	if err := lc.Set(ctx, "redmi note 11", []int64{2_400_000, 2_500_000}, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got []int64
	if err := lc.Get(ctx, "redmi note 11", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, []int64{2_400_000, 2_500_000}) {
		t.Fatalf("unexpected value %v", got)
	}

	clock.t = clock.t.Add(2 * time.Hour)
	if err := lc.Get(ctx, "redmi note 11", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}
}

func TestLevelCacheClearAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prices")
	lc, err := NewLevelCache(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = lc.Set(ctx, "a", "x", time.Hour)
	_ = lc.Set(ctx, "b", "y", time.Hour)
	if err := lc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	lc, err = NewLevelCache(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer lc.Close()

	var v string
	if err := lc.Get(ctx, "a", &v); err != nil || v != "x" {
		t.Fatalf("value lost across reopen: %q %v", v, err)
	}
	n, err := lc.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 cleared, got %d", n)
	}
	if err := lc.Get(ctx, "b", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after clear, got %v", err)
	}
}
