package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// FetchGate serializes outbound fetches so that consecutive calls are at
// least interval apart. The first call passes immediately.
type FetchGate struct {
	limiter *rate.Limiter
}

func NewFetchGate(interval time.Duration) *FetchGate {
	if interval <= 0 {
		return &FetchGate{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &FetchGate{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next fetch may start or ctx is done.
func (g *FetchGate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}
