package otphttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sikad-ph/otpkit/core"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func sendErr(w http.ResponseWriter, status int, tag, message string) {
	writeJSON(w, status, map[string]any{
		"ok":      false,
		"error":   tag,
		"message": message,
	})
}

func badRequest(w http.ResponseWriter, message string) {
	sendErr(w, http.StatusBadRequest, "invalid_request", message)
}

func unauthorized(w http.ResponseWriter, tag, message string) {
	sendErr(w, http.StatusUnauthorized, tag, message)
}

func tooMany(w http.ResponseWriter, message string) {
	sendErr(w, http.StatusTooManyRequests, "too_many_attempts", message)
}

func serverErr(w http.ResponseWriter, tag, message string) {
	sendErr(w, http.StatusInternalServerError, tag, message)
}

// checkError maps engine sentinels onto HTTP responses. Wrong codes come back
// 401 so clients treat them like failed logins; every other terminal outcome
// is a 400 telling the client to restart the flow. 429 is reserved for the
// per-IP rate limiter.
func checkError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		sendErr(w, http.StatusBadRequest, "otp_not_found", "no pending verification for this number")
	case errors.Is(err, core.ErrExpired):
		sendErr(w, http.StatusBadRequest, "otp_expired", "verification code has expired, request a new one")
	case errors.Is(err, core.ErrTooManyAttempts):
		sendErr(w, http.StatusBadRequest, "too_many_attempts", "too many incorrect attempts, request a new code")
	case errors.Is(err, core.ErrInvalidCode):
		unauthorized(w, "invalid_code", "incorrect verification code")
	default:
		serverErr(w, "internal", "verification failed")
	}
}
