// Package itextmo implements core.SMSSender over the iTexMo SMS gateway,
// a Philippine provider with two generations of HTTP API.
package itextmo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sikad-ph/otpkit/core"
)

const (
	providerName        = "iTextMo"
	defaultBroadcastURL = "https://api.itexmo.com/api/broadcast"
	defaultTimeout      = 15 * time.Second
)

// Client speaks the newer broadcast API: a JSON POST authenticated by account
// email and password, answered with a reference ID and credit usage.
type Client struct {
	Email    string
	Password string
	APICode  string
	SenderID string
	APIURL   string
	// DryRun logs the message instead of sending it. Used in dev where the
	// account has no credits to burn.
	DryRun bool

	hc  *http.Client
	log *zap.Logger
}

func New(email, password, apiCode string) *Client {
	return &Client{
		Email:    email,
		Password: password,
		APICode:  apiCode,
		APIURL:   defaultBroadcastURL,
		hc:       &http.Client{Timeout: defaultTimeout},
		log:      zap.NewNop(),
	}
}

func (c *Client) WithSenderID(id string) *Client { c.SenderID = id; return c }

func (c *Client) WithAPIURL(url string) *Client {
	if url != "" {
		c.APIURL = url
	}
	return c
}

func (c *Client) WithDryRun(on bool) *Client { c.DryRun = on; return c }

func (c *Client) WithLogger(l *zap.Logger) *Client {
	if l != nil {
		c.log = l
	}
	return c
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.hc = hc
	}
	return c
}

type broadcastRequest struct {
	Email      string   `json:"Email"`
	Password   string   `json:"Password"`
	ApiCode    string   `json:"ApiCode"`
	Recipients []string `json:"Recipients"`
	Message    string   `json:"Message"`
	SenderId   string   `json:"SenderId,omitempty"`
}

type broadcastResponse struct {
	Error           bool    `json:"Error"`
	Message         string  `json:"Message"`
	ReferenceId     string  `json:"ReferenceId"`
	TotalCreditUsed float64 `json:"TotalCreditUsed"`
}

func (c *Client) Send(ctx context.Context, to, message string) (string, error) {
	if c.DryRun {
		c.log.Info("sms dry run", zap.String("to", to), zap.String("message", message))
		return "dry-run", nil
	}
	body, err := json.Marshal(broadcastRequest{
		Email:      c.Email,
		Password:   c.Password,
		ApiCode:    c.APICode,
		Recipients: []string{to},
		Message:    message,
		SenderId:   c.SenderID,
	})
	if err != nil {
		return "", &core.DeliveryError{Provider: providerName, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", &core.DeliveryError{Provider: providerName, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", &core.DeliveryError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", &core.DeliveryError{Provider: providerName, Err: err}
	}
	var out broadcastResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &core.DeliveryError{Provider: providerName,
			Err: fmt.Errorf("status %d: unparseable response %q", resp.StatusCode, truncate(raw))}
	}
	if resp.StatusCode != http.StatusOK || out.Error {
		return "", &core.DeliveryError{Provider: providerName,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, out.Message)}
	}
	c.log.Debug("sms accepted",
		zap.String("reference", out.ReferenceId),
		zap.Float64("credits", out.TotalCreditUsed))
	return out.ReferenceId, nil
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
