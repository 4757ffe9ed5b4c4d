// Package memorystore keeps pending verifications in a mutex-guarded map.
// Suited to a single-process deployment; records do not survive a restart.
package memorystore

import (
	"context"
	"sync"
	"time"

	"github.com/sikad-ph/otpkit/core"
)

type PendingStore struct {
	mu   sync.Mutex
	recs map[string]core.PendingVerification
}

func NewPendingStore() *PendingStore {
	return &PendingStore{recs: make(map[string]core.PendingVerification)}
}

func (s *PendingStore) Put(ctx context.Context, phone string, rec core.PendingVerification, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[phone] = rec
	return nil
}

// Get returns the record as stored. Expiry is the caller's business; keeping
// stale records visible here lets the sweeper count what it removes.
func (s *PendingStore) Get(ctx context.Context, phone string) (core.PendingVerification, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[phone]
	return rec, ok, nil
}

// FailAttempt increments the attempt counter under one lock and purges the
// record once the incremented count reaches max.
func (s *PendingStore) FailAttempt(ctx context.Context, phone string, max int) (attempts int, purged bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[phone]
	if !ok {
		return 0, false, nil
	}
	rec.Attempts++
	if rec.Attempts >= max {
		delete(s.recs, phone)
		return rec.Attempts, true, nil
	}
	s.recs[phone] = rec
	return rec.Attempts, false, nil
}

func (s *PendingStore) Delete(ctx context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, phone)
	return nil
}

// Sweep removes records past their expiry. Implements core.Sweeper.
func (s *PendingStore) Sweep(ctx context.Context) (int, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for phone, rec := range s.recs {
		if now.After(rec.ExpiresAt) {
			delete(s.recs, phone)
			removed++
		}
	}
	return removed, nil
}
