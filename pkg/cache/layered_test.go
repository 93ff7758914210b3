package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLayeredCacheReadsThrough(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)}
	l1 := NewMemoryCache(WithMemoryClock(clock.Now))
	l2 := NewMemoryCache(WithMemoryClock(clock.Now))
	lc := NewLayeredCache(l1, l2, time.Minute)

	if err := l2.Set(ctx, "galaxy s23", []int64{8_400_000, 8_500_000}, time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got []int64
	if err := lc.Get(ctx, "galaxy s23", &got); err != nil || len(got) != 2 {
		t.Fatalf("get = %v, %v", got, err)
	}
	if l1.Len() != 1 {
		t.Fatalf("value not promoted to l1")
	}

	clock.t = clock.t.Add(2 * time.Minute)
	var local []int64
	if err := l1.Get(ctx, "galaxy s23", &local); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("l1 copy should expire after l1 ttl, got %v", err)
	}
	if err := lc.Get(ctx, "galaxy s23", &got); err != nil {
		t.Fatalf("l2 still holds the value: %v", err)
	}
}

func TestLayeredCacheClear(t *testing.T) {
	ctx := context.Background()
	l1, l2 := NewMemoryCache(), NewMemoryCache()
	lc := NewLayeredCache(l1, l2, time.Minute)

	for _, k := range []string{"a", "b", "c"} {
		if err := lc.Set(ctx, k, 1, time.Hour); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	n, err := lc.Clear(ctx)
	if err != nil || n != 3 {
		t.Fatalf("clear = %d, %v", n, err)
	}
	if l1.Len() != 0 || l2.Len() != 0 {
		t.Fatalf("layers not empty: %d/%d", l1.Len(), l2.Len())
	}
}
