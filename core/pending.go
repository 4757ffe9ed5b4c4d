package core

import (
	"context"
	"time"
)

// PendingVerification is the stored record of an outstanding, not-yet-confirmed
// OTP challenge for one phone.
type PendingVerification struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// PendingStore holds at most one PendingVerification per normalized phone.
//
// Implementations must make FailAttempt atomic with respect to concurrent
// calls for the same phone: the counter may not under-count, and the purge at
// the threshold happens within the same operation.
type PendingStore interface {
	// Put upserts the record, discarding any prior one for the same phone
	// (last-writer-wins, attempts reset by the caller-provided record).
	Put(ctx context.Context, phone string, rec PendingVerification, ttl time.Duration) error

	// Get returns the record if present. Implementations may return records
	// past their ExpiresAt; expiry is decided by the caller at check time.
	Get(ctx context.Context, phone string) (PendingVerification, bool, error)

	// FailAttempt increments the failed-attempt counter. When the incremented
	// count reaches max, the record is deleted in the same operation and
	// purged=true is returned. Compare-after-increment: a record tolerates
	// exactly max failed submissions before lockout.
	FailAttempt(ctx context.Context, phone string, max int) (attempts int, purged bool, err error)

	// Delete removes the record; deleting a missing record is a no-op.
	Delete(ctx context.Context, phone string) error
}

// Sweeper is implemented by stores that keep expired records until scanned.
// TTL-enforcing backends (Redis) do not need it.
type Sweeper interface {
	Sweep(ctx context.Context) (removed int, err error)
}
