// Package twilioverify implements core.HostedVerifier against the Twilio
// Verify v2 REST API. Twilio owns code issuance, storage, expiry and attempt
// limiting; this client only forwards starts and checks.
package twilioverify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sikad-ph/otpkit/core"
)

const (
	providerName   = "Twilio Verify"
	defaultBaseURL = "https://verify.twilio.com/v2"
	defaultTimeout = 15 * time.Second
)

type Client struct {
	AccountSID string
	AuthToken  string
	ServiceSID string
	BaseURL    string

	hc *http.Client
}

func New(accountSID, authToken, serviceSID string) *Client {
	return &Client{
		AccountSID: accountSID,
		AuthToken:  authToken,
		ServiceSID: serviceSID,
		BaseURL:    defaultBaseURL,
		hc:         &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) WithBaseURL(base string) *Client {
	if base != "" {
		c.BaseURL = strings.TrimRight(base, "/")
	}
	return c
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.hc = hc
	}
	return c
}

type verificationResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) StartVerification(ctx context.Context, to string) (string, error) {
	form := url.Values{"To": {to}, "Channel": {"sms"}}
	out, status, err := c.do(ctx, "/Services/"+c.ServiceSID+"/Verifications", form)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", &core.DeliveryError{Provider: providerName,
			Err: fmt.Errorf("start failed: status %d: %s", status, out.Message)}
	}
	return out.Status, nil
}

// CheckVerification submits a code. Twilio answers 404 for a check against a
// verification that no longer exists (expired or already approved), which
// callers cannot distinguish from a denial, so it maps to approved=false.
func (c *Client) CheckVerification(ctx context.Context, to, code string) (bool, error) {
	form := url.Values{"To": {to}, "Code": {code}}
	out, status, err := c.do(ctx, "/Services/"+c.ServiceSID+"/VerificationCheck", form)
	if err != nil {
		return false, err
	}
	switch {
	case status == http.StatusNotFound:
		return false, nil
	case status != http.StatusOK:
		return false, &core.DeliveryError{Provider: providerName,
			Err: fmt.Errorf("check failed: status %d: %s", status, out.Message)}
	}
	return out.Status == "approved", nil
}

// do returns a *core.DeliveryError for every transport failure so the engine
// surfaces a delivery_failed outcome rather than an opaque internal error.
func (c *Client) do(ctx context.Context, path string, form url.Values) (verificationResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return verificationResponse{}, 0, &core.DeliveryError{Provider: providerName, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.AccountSID, c.AuthToken)

	resp, err := c.hc.Do(req)
	if err != nil {
		return verificationResponse{}, 0, &core.DeliveryError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return verificationResponse{}, resp.StatusCode, &core.DeliveryError{Provider: providerName, Err: err}
	}
	var out verificationResponse
	// Error bodies are JSON too; a parse failure only matters on success.
	if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode < 300 {
		return verificationResponse{}, resp.StatusCode, &core.DeliveryError{Provider: providerName,
			Err: fmt.Errorf("bad response: %w", err)}
	}
	return out, resp.StatusCode, nil
}
