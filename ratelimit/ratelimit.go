// Package ratelimit defines fixed-window request limiting keyed by an
// arbitrary string, typically a client IP.
package ratelimit

import (
	"context"
	"time"
)

// Limit allows N events per rolling fixed window.
type Limit struct {
	N      int
	Window time.Duration
}

// Limiter answers whether one more event is allowed in the named bucket for
// the given key. Buckets let different routes carry different limits.
type Limiter interface {
	AllowNamed(ctx context.Context, bucket, key string, limit Limit) (bool, error)
}
