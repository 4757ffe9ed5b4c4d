// Package redislimiter is a Redis-backed fixed-window ratelimit.Limiter,
// shared across service instances.
package redislimiter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sikad-ph/otpkit/ratelimit"
)

type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func (l *Limiter) AllowNamed(ctx context.Context, bucket, key string, limit ratelimit.Limit) (bool, error) {
	id := "ratelimit:" + bucket + ":" + key
	n, err := l.rdb.Incr(ctx, id).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}
	if n == 1 {
		if err := l.rdb.PExpire(ctx, id, limit.Window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit expire: %w", err)
		}
	}
	return n <= int64(limit.N), nil
}
