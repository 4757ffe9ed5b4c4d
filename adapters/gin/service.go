// Package otpgin mounts the verification engine on a gin router, for apps
// that already run gin and want the routes inside their existing engine.
package otpgin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sikad-ph/otpkit/core"
	"github.com/sikad-ph/otpkit/ratelimit"
	memorylimiter "github.com/sikad-ph/otpkit/ratelimit/memory"

	otphttp "github.com/sikad-ph/otpkit/adapters/http"
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
		limits: otphttp.DefaultRateLimits(),
	}
}

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

// Mount registers the verification routes on r.
func (s *Service) Mount(r gin.IRouter) {
	r.GET("/health", s.healthGet)
	r.POST("/otp/start", s.otpStartPost)
	r.POST("/otp/check", s.otpCheckPost)
	r.POST("/sms/geofence-alert", s.geofenceAlertPost)
}

func (s *Service) allow(c *gin.Context, bucket string) bool {
	if s.rl == nil {
		return true
	}
	limit, ok := s.limits[bucket]
	if !ok {
		return true
	}
	ok, err := s.rl.AllowNamed(c.Request.Context(), bucket, c.ClientIP(), limit)
	if err != nil {
		return true
	}
	return ok
}

func (s *Service) healthGet(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"service":   s.svc.Brand() + " OTP",
		"provider":  s.svc.Provider(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type startRequest struct {
	Phone string `json:"phone" binding:"required,min=7,max=20"`
}

func (s *Service) otpStartPost(c *gin.Context) {
	if !s.allow(c, otphttp.RLOTPStart) {
		fail(c, http.StatusTooManyRequests, "too_many_attempts", "too many verification requests, try again later")
		return
	}
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "phone number is required")
		return
	}
	if err := s.svc.Start(c.Request.Context(), req.Phone); err != nil {
		var de *core.DeliveryError
		if errors.As(err, &de) {
			fail(c, http.StatusBadRequest, "delivery_failed", "could not send verification code")
			return
		}
		fail(c, http.StatusInternalServerError, "internal", "could not start verification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": "pending", "provider": s.svc.Provider()})
}

type checkRequest struct {
	Phone string `json:"phone" binding:"required,min=7,max=20"`
	Code  string `json:"code" binding:"required,min=4,max=10"`
}

func (s *Service) otpCheckPost(c *gin.Context) {
	if !s.allow(c, otphttp.RLOTPCheck) {
		fail(c, http.StatusTooManyRequests, "too_many_attempts", "too many check attempts, try again later")
		return
	}
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "phone and code are required")
		return
	}
	if err := s.svc.Check(c.Request.Context(), req.Phone, req.Code); err != nil {
		s.checkError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": "verified"})
}

type alertRequest struct {
	Phone     string `json:"phone" binding:"required,min=7,max=20"`
	Message   string `json:"message" binding:"required"`
	AlertType string `json:"alertType"`
}

func (s *Service) geofenceAlertPost(c *gin.Context) {
	if !s.allow(c, otphttp.RLGeofenceAlert) {
		fail(c, http.StatusTooManyRequests, "too_many_attempts", "too many alerts, try again later")
		return
	}
	if !s.svc.HasSMSSender() {
		fail(c, http.StatusNotImplemented, "delivery_failed", "free-form SMS is not available with this provider")
		return
	}
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "phone and message are required")
		return
	}
	if err := s.svc.SendGeofenceAlert(c.Request.Context(), req.Phone, req.Message, req.AlertType); err != nil {
		fail(c, http.StatusInternalServerError, "delivery_failed", "could not send alert")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Terminal check outcomes other than a wrong code are 400s telling the client
// to restart the flow; 429 stays reserved for the rate limiter.
func (s *Service) checkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		fail(c, http.StatusBadRequest, "otp_not_found", "no pending verification for this number")
	case errors.Is(err, core.ErrExpired):
		fail(c, http.StatusBadRequest, "otp_expired", "verification code has expired, request a new one")
	case errors.Is(err, core.ErrTooManyAttempts):
		fail(c, http.StatusBadRequest, "too_many_attempts", "too many incorrect attempts, request a new code")
	case errors.Is(err, core.ErrInvalidCode):
		fail(c, http.StatusUnauthorized, "invalid_code", "incorrect verification code")
	default:
		fail(c, http.StatusInternalServerError, "internal", "verification failed")
	}
}

func fail(c *gin.Context, status int, tag, message string) {
	c.JSON(status, gin.H{"ok": false, "error": tag, "message": message})
}
