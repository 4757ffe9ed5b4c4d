package core

import "context"

// SMSSender is the variant-A transport: the engine owns code issuance and
// storage, and the sender only delivers text to a normalized number.
// Implementations return *DeliveryError for transport and provider failures.
type SMSSender interface {
	Send(ctx context.Context, to, message string) (receiptID string, err error)
}

// HostedVerifier is the variant-B gateway: the remote service owns code
// issuance, storage, expiry and attempt limiting. The engine becomes a thin
// forwarding layer when one is installed.
type HostedVerifier interface {
	// StartVerification asks the service to issue and deliver a challenge.
	StartVerification(ctx context.Context, to string) (status string, err error)
	// CheckVerification submits a code; approved=false means the service
	// denied it (wrong, expired, or attempt-limited upstream).
	CheckVerification(ctx context.Context, to, code string) (approved bool, err error)
}
