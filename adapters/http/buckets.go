package otphttp

import (
	"time"

	"github.com/sikad-ph/otpkit/ratelimit"
)

// Rate-limit bucket names, one per abusable route.
const (
	RLOTPStart      = "otp_start"
	RLOTPCheck      = "otp_check"
	RLGeofenceAlert = "geofence_alert"
)

// DefaultRateLimits keeps SMS spend and brute-force surface in check. Starts
// are the expensive ones; checks get more headroom for honest typos.
func DefaultRateLimits() map[string]ratelimit.Limit {
	return map[string]ratelimit.Limit{
		RLOTPStart:      {N: 5, Window: 10 * time.Minute},
		RLOTPCheck:      {N: 15, Window: 10 * time.Minute},
		RLGeofenceAlert: {N: 30, Window: time.Minute},
	}
}
