package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported delivery providers.
const (
	ProviderITextMo = "itextmo"
	ProviderTwilio  = "twilio"
)

// Config is the devserver's environment-derived configuration. Library users
// wiring a Service by hand never need it.
type Config struct {
	Provider string

	ITextMoAPICode  string
	ITextMoAPIURL   string
	ITextMoEmail    string
	ITextMoPassword string
	ITextMoSenderID string

	TwilioAccountSID       string
	TwilioAuthToken        string
	TwilioVerifyServiceSID string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	ListenAddr  string
	TTL         time.Duration
	MaxAttempts int
	CodeLength  int
	Brand       string
	SMSDryRun   bool
}

// FromEnv reads configuration from the process environment, applying defaults
// for everything optional. Call Validate before trusting the result.
func FromEnv() Config {
	return Config{
		Provider: strings.ToLower(envOr("OTP_PROVIDER", ProviderITextMo)),

		ITextMoAPICode:  os.Getenv("ITEXTMO_API_CODE"),
		ITextMoAPIURL:   envOr("ITEXTMO_API_URL", "https://api.itexmo.com/api/broadcast"),
		ITextMoEmail:    os.Getenv("ITEXTMO_EMAIL"),
		ITextMoPassword: os.Getenv("ITEXTMO_PASSWORD"),
		ITextMoSenderID: os.Getenv("ITEXTMO_SENDER_ID"),

		TwilioAccountSID:       os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:        os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioVerifyServiceSID: os.Getenv("TWILIO_VERIFY_SERVICE_SID"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ListenAddr:  envOr("LISTEN_ADDR", ":3000"),
		TTL:         envDuration("OTP_TTL", DefaultTTL),
		MaxAttempts: envInt("OTP_MAX_ATTEMPTS", DefaultMaxAttempts),
		CodeLength:  envInt("OTP_CODE_LENGTH", DefaultCodeLength),
		Brand:       envOr("OTP_BRAND", DefaultBrand),
		SMSDryRun:   envBool("SMS_DRY_RUN"),
	}
}

// ConfigError aggregates everything wrong with a Config so operators fix the
// environment in one pass instead of one restart per variable.
type ConfigError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(e.Invalid, ", "))
	}
	return "config: " + strings.Join(parts, "; ")
}

// Validate checks provider credentials and numeric ranges. Dry-run mode
// exempts iTextMo credentials since nothing is sent.
func (c Config) Validate() error {
	var ce ConfigError
	switch c.Provider {
	case ProviderITextMo:
		if !c.SMSDryRun {
			if c.ITextMoAPICode == "" {
				ce.Missing = append(ce.Missing, "ITEXTMO_API_CODE")
			}
			if c.ITextMoEmail == "" {
				ce.Missing = append(ce.Missing, "ITEXTMO_EMAIL")
			}
			if c.ITextMoPassword == "" {
				ce.Missing = append(ce.Missing, "ITEXTMO_PASSWORD")
			}
		}
	case ProviderTwilio:
		if c.TwilioAccountSID == "" {
			ce.Missing = append(ce.Missing, "TWILIO_ACCOUNT_SID")
		}
		if c.TwilioAuthToken == "" {
			ce.Missing = append(ce.Missing, "TWILIO_AUTH_TOKEN")
		}
		if c.TwilioVerifyServiceSID == "" {
			ce.Missing = append(ce.Missing, "TWILIO_VERIFY_SERVICE_SID")
		}
	default:
		ce.Invalid = append(ce.Invalid, fmt.Sprintf("OTP_PROVIDER=%q (want %s or %s)",
			c.Provider, ProviderITextMo, ProviderTwilio))
	}
	if c.TTL < time.Second || c.TTL > 24*time.Hour {
		ce.Invalid = append(ce.Invalid, fmt.Sprintf("OTP_TTL=%s (want 1s..24h)", c.TTL))
	}
	if c.MaxAttempts < 1 || c.MaxAttempts > 100 {
		ce.Invalid = append(ce.Invalid, fmt.Sprintf("OTP_MAX_ATTEMPTS=%d (want 1..100)", c.MaxAttempts))
	}
	if c.CodeLength < 4 || c.CodeLength > 10 {
		ce.Invalid = append(ce.Invalid, fmt.Sprintf("OTP_CODE_LENGTH=%d (want 4..10)", c.CodeLength))
	}
	if len(ce.Missing) > 0 || len(ce.Invalid) > 0 {
		return &ce
	}
	return nil
}

// IsDevEnvironment reports whether the process looks like a local dev run, in
// which case config problems warn instead of aborting startup.
func IsDevEnvironment() bool {
	for _, key := range []string{"ENV", "APP_ENV", "ENVIRONMENT"} {
		switch strings.ToLower(os.Getenv(key)) {
		case "production", "prod", "staging":
			return false
		case "development", "dev", "local", "test":
			return true
		}
	}
	return true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
