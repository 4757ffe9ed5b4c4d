package otphttp

import (
	"net/http"
)

type geofenceAlertRequest struct {
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	AlertType string `json:"alertType"`
}

// geofenceAlertPost sends a rider-safety SMS and records it in the alert log.
// Only available when a raw SMS transport is configured; the hosted verify
// variant cannot send free-form text.
func (s *Service) geofenceAlertPost(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLGeofenceAlert) {
		tooMany(w, "too many alerts, try again later")
		return
	}
	if !s.svc.HasSMSSender() {
		sendErr(w, http.StatusNotImplemented, "delivery_failed", "free-form SMS is not available with this provider")
		return
	}
	var req geofenceAlertRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if len(req.Phone) < 7 || len(req.Phone) > 20 {
		badRequest(w, "phone number is required")
		return
	}
	if req.Message == "" {
		badRequest(w, "message is required")
		return
	}
	if err := s.svc.SendGeofenceAlert(r.Context(), req.Phone, req.Message, req.AlertType); err != nil {
		serverErr(w, "delivery_failed", "could not send alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
