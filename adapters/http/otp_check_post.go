package otphttp

import (
	"net/http"
)

type otpCheckRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// otpCheckPost verifies a submitted code against the pending challenge.
func (s *Service) otpCheckPost(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLOTPCheck) {
		tooMany(w, "too many check attempts, try again later")
		return
	}
	var req otpCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if len(req.Phone) < 7 || len(req.Phone) > 20 {
		badRequest(w, "phone number is required")
		return
	}
	if len(req.Code) < 4 || len(req.Code) > 10 {
		badRequest(w, "verification code is required")
		return
	}
	if err := s.svc.Check(r.Context(), req.Phone, req.Code); err != nil {
		checkError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"status": "verified",
	})
}
