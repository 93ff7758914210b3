package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiterBurstAndRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
		t.Fatalf("burst should be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatalf("keys must be independent")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("10.0.0.1") {
		t.Fatalf("token should refill")
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("only one token should have refilled")
	}
}

func TestLimiterPrune(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 1)
	l.now = func() time.Time { return now }
	l.Allow("a")
	now = now.Add(time.Hour)
	l.Allow("b")
	if n := l.Prune(time.Minute); n != 1 {
		t.Fatalf("expected 1 pruned, got %d", n)
	}
}

func TestFetchGateSpacing(t *testing.T) {
	g := NewFetchGate(30 * time.Millisecond)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := g.Wait(ctx); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("gate did not space fetches: %v", elapsed)
	}
}

func TestFetchGateCancel(t *testing.T) {
	g := NewFetchGate(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	cancel()
	if err := g.Wait(ctx); err == nil {
		t.Fatalf("expected error on cancelled context")
	}
}
