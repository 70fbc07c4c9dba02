// Package rate provides request limiters backed by Redis, shared by every
// eccd instance that points at the same Redis.
package rate

import (
	"context"
	"time"
)

// Limiter decides whether n more requests for key are allowed at t.
type Limiter interface {
	AllowN(ctx context.Context, key string, t time.Time, n int) (bool, error)
}

// Allow is AllowN for a single request now.
func Allow(ctx context.Context, l Limiter, key string) (bool, error) {
	return l.AllowN(ctx, key, time.Now(), 1)
}

// LimiterFunc adapts a function to Limiter.
type LimiterFunc func(ctx context.Context, key string, t time.Time, n int) (bool, error)

func (f LimiterFunc) AllowN(ctx context.Context, key string, t time.Time, n int) (bool, error) {
	return f(ctx, key, t, n)
}
