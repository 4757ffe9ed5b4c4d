// Package otphttp mounts the verification engine on net/http with
// per-client-IP rate limiting.
package otphttp

import (
	"net/http"

	"github.com/sikad-ph/otpkit/core"
	"github.com/sikad-ph/otpkit/ratelimit"
	memorylimiter "github.com/sikad-ph/otpkit/ratelimit/memory"
)

type Service struct {
	svc    *core.Service
	rl     ratelimit.Limiter
	limits map[string]ratelimit.Limit
}

func NewService(svc *core.Service) *Service {
	return &Service{
		svc:    svc,
		rl:     memorylimiter.New(),
		limits: DefaultRateLimits(),
	}
}

// WithRateLimiter swaps the limiter backend, e.g. for a Redis limiter shared
// across instances.
func (s *Service) WithRateLimiter(rl ratelimit.Limiter) *Service {
	if rl != nil {
		s.rl = rl
	}
	return s
}

func (s *Service) DisableRateLimiter() *Service {
	s.rl = nil
	return s
}

// allow is fail-open: a broken limiter backend must not take verification
// down with it.
func (s *Service) allow(r *http.Request, bucket string) bool {
	if s.rl == nil {
		return true
	}
	limit, ok := s.limits[bucket]
	if !ok {
		return true
	}
	ok, err := s.rl.AllowNamed(r.Context(), bucket, clientIP(r), limit)
	if err != nil {
		return true
	}
	return ok
}

// APIHandler returns the full route table as a handler.
func (s *Service) APIHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthGet)
	mux.HandleFunc("POST /otp/start", s.otpStartPost)
	mux.HandleFunc("POST /otp/check", s.otpCheckPost)
	mux.HandleFunc("POST /sms/geofence-alert", s.geofenceAlertPost)
	return mux
}
