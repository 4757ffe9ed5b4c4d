package otphttp

import (
	"net/http"
	"time"
)

func (s *Service) healthGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"service":   s.svc.Brand() + " OTP",
		"provider":  s.svc.Provider(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
