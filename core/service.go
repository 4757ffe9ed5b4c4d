package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sikad-ph/otpkit/docstore"
)

const (
	DefaultTTL         = 5 * time.Minute
	DefaultMaxAttempts = 3
	DefaultCodeLength  = 6
	DefaultBrand       = "Sikad"
)

// Options tune the verification engine. Zero values fall back to defaults.
type Options struct {
	TTL         time.Duration
	MaxAttempts int
	CodeLength  int
	// Brand is interpolated into outbound SMS texts.
	Brand string
	// Provider is a human-readable gateway label surfaced on /health and in
	// start responses.
	Provider string
}

// Service orchestrates the OTP lifecycle: start a challenge for a phone,
// check a submitted code against it, and flip the matching user record's
// verified flag on success.
//
// Exactly one delivery variant is installed at construction time, via
// WithSMSSender (self-issued codes) or WithHostedVerifier (provider-owned
// codes). The variant is never re-selected per request.
type Service struct {
	opts  Options
	norm  Normalizer
	store PendingStore
	docs  docstore.Store
	users *UserLinkResolver
	log   *zap.Logger

	ch  challenger
	sms SMSSender // retained for free-form sends (geofence alerts, variant A only)
}

func NewService(opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.CodeLength <= 0 {
		opts.CodeLength = DefaultCodeLength
	}
	if opts.Brand == "" {
		opts.Brand = DefaultBrand
	}
	return &Service{
		opts: opts,
		norm: DefaultNormalizer(TargetLocal),
		log:  zap.NewNop(),
	}
}

func (s *Service) WithNormalizer(n Normalizer) *Service { s.norm = n; return s }

func (s *Service) WithPendingStore(store PendingStore) *Service { s.store = store; return s }

func (s *Service) WithDocStore(docs docstore.Store) *Service { s.docs = docs; return s }

func (s *Service) WithUserLink(r *UserLinkResolver) *Service { s.users = r; return s }

func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.log = l
	}
	return s
}

// WithSMSSender installs the self-issued-code variant: the engine generates
// and stores codes and uses sender as a dumb transport.
func (s *Service) WithSMSSender(sender SMSSender) *Service {
	s.sms = sender
	s.ch = &selfIssued{s: s}
	return s
}

// WithHostedVerifier installs the hosted variant: the remote service owns the
// whole challenge lifecycle and the local pending store goes unused.
func (s *Service) WithHostedVerifier(v HostedVerifier) *Service {
	s.ch = &hosted{s: s, v: v}
	return s
}

// HasSMSSender reports whether a free-form SMS transport is configured.
func (s *Service) HasSMSSender() bool { return s.sms != nil }

func (s *Service) Brand() string { return s.opts.Brand }

func (s *Service) Provider() string { return s.opts.Provider }

// Start issues (or delegates) a new challenge for phone. Any prior pending
// challenge for the same phone is silently discarded.
func (s *Service) Start(ctx context.Context, phone string) error {
	if s.ch == nil {
		return &DeliveryError{Provider: "none", Err: fmt.Errorf("no delivery gateway configured")}
	}
	return s.ch.start(ctx, s.norm.Normalize(phone))
}

// Check verifies a submitted code. On success the matching user record is
// marked verified as a best-effort side effect: verification is authoritative
// once the code matched, so bookkeeping failures never fail the call.
func (s *Service) Check(ctx context.Context, phone, code string) error {
	if s.ch == nil {
		return &DeliveryError{Provider: "none", Err: fmt.Errorf("no delivery gateway configured")}
	}
	if err := s.ch.check(ctx, s.norm.Normalize(phone), code); err != nil {
		return err
	}
	s.markVerified(ctx, phone)
	return nil
}

func (s *Service) markVerified(ctx context.Context, raw string) {
	if s.users == nil {
		return
	}
	local := s.norm.Local(raw)
	found, err := s.users.MarkVerified(ctx, local)
	if err != nil {
		s.log.Warn("user link update failed",
			zap.String("phone", s.norm.E164(raw)), zap.Error(err))
		return
	}
	if !found {
		s.log.Info("no user record for verified phone",
			zap.String("phone", s.norm.E164(raw)))
	}
}

// challenger is the variant-specific half of the engine.
type challenger interface {
	start(ctx context.Context, phone string) error
	check(ctx context.Context, phone, code string) error
}

// --- Variant A: self-issued codes over a dumb SMS transport ---

type selfIssued struct {
	s *Service
}

func (c *selfIssued) start(ctx context.Context, phone string) error {
	s := c.s
	if s.store == nil {
		return &StoreError{Err: fmt.Errorf("pending store not configured")}
	}
	code := generateCode(s.opts.CodeLength)
	now := time.Now()
	rec := PendingVerification{
		Phone:     phone,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.TTL),
	}
	// Stored before the send so a retry after a delivery failure simply
	// overwrites the record instead of leaving the caller without a path.
	if err := s.store.Put(ctx, phone, rec, s.opts.TTL); err != nil {
		return &StoreError{Err: err}
	}
	msg := fmt.Sprintf("Your %s verification code is: %s. Valid for %d minutes. Do not share this code.",
		s.opts.Brand, code, int(s.opts.TTL.Minutes()))
	receipt, err := s.sms.Send(ctx, phone, msg)
	if err != nil {
		s.log.Error("otp send failed", zap.String("phone", phone), zap.Error(err))
		var de *DeliveryError
		if errors.As(err, &de) {
			return err
		}
		return &DeliveryError{Provider: s.opts.Provider, Err: err}
	}
	s.log.Info("otp sent", zap.String("phone", phone), zap.String("receipt", receipt))
	return nil
}

func (c *selfIssued) check(ctx context.Context, phone, code string) error {
	s := c.s
	if s.store == nil {
		return &StoreError{Err: fmt.Errorf("pending store not configured")}
	}
	rec, found, err := s.store.Get(ctx, phone)
	if err != nil {
		return &StoreError{Err: err}
	}
	if !found {
		return ErrNotFound
	}
	if time.Now().After(rec.ExpiresAt) {
		if err := s.store.Delete(ctx, phone); err != nil {
			s.log.Warn("expired record cleanup failed", zap.String("phone", phone), zap.Error(err))
		}
		return ErrExpired
	}
	if rec.Attempts >= s.opts.MaxAttempts {
		// Normally unreachable (FailAttempt purges at the threshold); kept as
		// a fail-closed guard for records written by older deployments.
		_ = s.store.Delete(ctx, phone)
		return ErrTooManyAttempts
	}
	if rec.Code != code {
		attempts, purged, err := s.store.FailAttempt(ctx, phone, s.opts.MaxAttempts)
		if err != nil {
			return &StoreError{Err: err}
		}
		if purged {
			return ErrTooManyAttempts
		}
		s.log.Debug("invalid code submitted",
			zap.String("phone", phone), zap.Int("attempts", attempts))
		return ErrInvalidCode
	}
	if err := s.store.Delete(ctx, phone); err != nil {
		return &StoreError{Err: err}
	}
	return nil
}

// --- Variant B: hosted verify service ---

type hosted struct {
	s *Service
	v HostedVerifier
}

func (c *hosted) start(ctx context.Context, phone string) error {
	status, err := c.v.StartVerification(ctx, phone)
	if err != nil {
		c.s.log.Error("hosted verification start failed", zap.String("phone", phone), zap.Error(err))
		return err
	}
	c.s.log.Info("hosted verification started",
		zap.String("phone", phone), zap.String("status", status))
	return nil
}

func (c *hosted) check(ctx context.Context, phone, code string) error {
	approved, err := c.v.CheckVerification(ctx, phone, code)
	if err != nil {
		c.s.log.Error("hosted verification check failed", zap.String("phone", phone), zap.Error(err))
		return err
	}
	if !approved {
		return ErrInvalidCode
	}
	return nil
}
