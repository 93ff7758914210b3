package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Get decodes the stored value into dest, a pointer.
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	// Clear removes every key owned by this cache and reports how many.
	Clear(ctx context.Context) (int, error)
	Close() error
}

// defaultExpiration applies when Set is called with a non-positive TTL.
const defaultExpiration = 7 * 24 * time.Hour

func expiry(now time.Time, expiration time.Duration) time.Time {
	if expiration <= 0 {
		expiration = defaultExpiration
	}
	return now.Add(expiration)
}
