package memorystore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sikad-ph/otpkit/core"
)

func rec(code string, ttl time.Duration) core.PendingVerification {
	now := time.Now()
	return core.PendingVerification{
		Phone:     "9933671339",
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestPutGetDelete(t *testing.T) {
	s := NewPendingStore()
	ctx := context.Background()

	if _, found, _ := s.Get(ctx, "9933671339"); found {
		t.Fatal("found record in empty store")
	}
	if err := s.Put(ctx, "9933671339", rec("123456", time.Minute), time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, found, err := s.Get(ctx, "9933671339")
	if err != nil || !found {
		t.Fatalf("Get = %v, found=%v", err, found)
	}
	if got.Code != "123456" {
		t.Errorf("Code = %q", got.Code)
	}
	if err := s.Delete(ctx, "9933671339"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, "9933671339"); found {
		t.Fatal("record survived Delete")
	}
	// Deleting again is a no-op.
	if err := s.Delete(ctx, "9933671339"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := NewPendingStore()
	ctx := context.Background()

	_ = s.Put(ctx, "9933671339", rec("111111", time.Minute), time.Minute)
	_, _, _ = s.FailAttempt(ctx, "9933671339", 3)
	_ = s.Put(ctx, "9933671339", rec("222222", time.Minute), time.Minute)

	got, _, _ := s.Get(ctx, "9933671339")
	if got.Code != "222222" {
		t.Errorf("Code = %q, want fresh record", got.Code)
	}
	if got.Attempts != 0 {
		t.Errorf("Attempts = %d, want reset", got.Attempts)
	}
}

func TestFailAttemptPurgesAtThreshold(t *testing.T) {
	s := NewPendingStore()
	ctx := context.Background()
	_ = s.Put(ctx, "9933671339", rec("123456", time.Minute), time.Minute)

	for i := 1; i < 3; i++ {
		attempts, purged, err := s.FailAttempt(ctx, "9933671339", 3)
		if err != nil || purged {
			t.Fatalf("attempt %d: err=%v purged=%v", i, err, purged)
		}
		if attempts != i {
			t.Fatalf("attempt %d: attempts=%d", i, attempts)
		}
	}
	attempts, purged, err := s.FailAttempt(ctx, "9933671339", 3)
	if err != nil || !purged || attempts != 3 {
		t.Fatalf("final attempt: attempts=%d purged=%v err=%v", attempts, purged, err)
	}
	if _, found, _ := s.Get(ctx, "9933671339"); found {
		t.Fatal("record survived purge")
	}
	// Missing record: counter stays at zero.
	if attempts, purged, _ := s.FailAttempt(ctx, "9933671339", 3); attempts != 0 || purged {
		t.Fatalf("missing record: attempts=%d purged=%v", attempts, purged)
	}
}

func TestFailAttemptConcurrent(t *testing.T) {
	s := NewPendingStore()
	ctx := context.Background()
	_ = s.Put(ctx, "9933671339", rec("123456", time.Minute), time.Minute)

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	purges := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, purged, _ := s.FailAttempt(ctx, "9933671339", 3)
			if purged {
				mu.Lock()
				purges++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Exactly one worker observes the purge; the record never survives.
	if purges != 1 {
		t.Errorf("purges = %d, want 1", purges)
	}
	if _, found, _ := s.Get(ctx, "9933671339"); found {
		t.Error("record survived concurrent lockout")
	}
}

func TestSweep(t *testing.T) {
	s := NewPendingStore()
	ctx := context.Background()

	_ = s.Put(ctx, "fresh", rec("111111", time.Minute), time.Minute)
	_ = s.Put(ctx, "stale", rec("222222", -time.Minute), time.Minute)
	_ = s.Put(ctx, "stale2", rec("333333", -time.Hour), time.Minute)

	removed, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, found, _ := s.Get(ctx, "fresh"); !found {
		t.Error("fresh record swept")
	}
	if _, found, _ := s.Get(ctx, "stale"); found {
		t.Error("stale record survived")
	}
}
