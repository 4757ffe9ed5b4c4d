package core

import (
	"errors"
	"fmt"
)

// Terminal per-request outcomes of a verification check. Adapters map these to
// stable machine-checkable error tags.
var (
	ErrNotFound        = errors.New("no pending verification for this phone")
	ErrExpired         = errors.New("verification code has expired")
	ErrTooManyAttempts = errors.New("too many failed attempts")
	ErrInvalidCode     = errors.New("invalid verification code")
)

// DeliveryError wraps a transport or provider failure. The upstream message is
// kept for logs; callers must surface only a generic failure to end users.
type DeliveryError struct {
	Provider string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery via %s failed: %v", e.Provider, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// StoreError wraps a backing-store failure.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("pending store: %v", e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }
