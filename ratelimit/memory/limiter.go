// Package memorylimiter is a per-process fixed-window ratelimit.Limiter.
package memorylimiter

import (
	"context"
	"sync"
	"time"

	"github.com/sikad-ph/otpkit/ratelimit"
)

type window struct {
	count int
	reset time.Time
}

type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

func New() *Limiter {
	return &Limiter{windows: make(map[string]*window)}
}

func (l *Limiter) AllowNamed(ctx context.Context, bucket, key string, limit ratelimit.Limit) (bool, error) {
	now := time.Now()
	id := bucket + ":" + key
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[id]
	if !ok || now.After(w.reset) {
		l.windows[id] = &window{count: 1, reset: now.Add(limit.Window)}
		return true, nil
	}
	if w.count >= limit.N {
		return false, nil
	}
	w.count++
	return true, nil
}
