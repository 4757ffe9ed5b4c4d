package otphttp

import (
	"errors"
	"net/http"

	"github.com/sikad-ph/otpkit/core"
)

type otpStartRequest struct {
	Phone string `json:"phone"`
}

// otpStartPost issues a new verification challenge for a phone number.
func (s *Service) otpStartPost(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLOTPStart) {
		tooMany(w, "too many verification requests, try again later")
		return
	}
	var req otpStartRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if len(req.Phone) < 7 || len(req.Phone) > 20 {
		badRequest(w, "phone number is required")
		return
	}
	if err := s.svc.Start(r.Context(), req.Phone); err != nil {
		var de *core.DeliveryError
		if errors.As(err, &de) {
			sendErr(w, http.StatusBadRequest, "delivery_failed", "could not send verification code")
			return
		}
		serverErr(w, "internal", "could not start verification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"status":   "pending",
		"provider": s.svc.Provider(),
	})
}
