package itextmo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sikad-ph/otpkit/core"
)

const defaultLegacyURL = "https://www.itexmo.com/php_api/api.php"

// LegacyClient speaks the original php_api endpoint, still live for older
// accounts. The request body is a JSON object with positional string keys and
// the response body is a bare status code, "0" meaning success.
type LegacyClient struct {
	APICode string
	APIURL  string
	DryRun  bool

	hc  *http.Client
	log *zap.Logger
}

func NewLegacy(apiCode string) *LegacyClient {
	return &LegacyClient{
		APICode: apiCode,
		APIURL:  defaultLegacyURL,
		hc:      &http.Client{Timeout: defaultTimeout},
		log:     zap.NewNop(),
	}
}

func (c *LegacyClient) WithAPIURL(url string) *LegacyClient {
	if url != "" {
		c.APIURL = url
	}
	return c
}

func (c *LegacyClient) WithDryRun(on bool) *LegacyClient { c.DryRun = on; return c }

func (c *LegacyClient) WithLogger(l *zap.Logger) *LegacyClient {
	if l != nil {
		c.log = l
	}
	return c
}

func (c *LegacyClient) WithHTTPClient(hc *http.Client) *LegacyClient {
	if hc != nil {
		c.hc = hc
	}
	return c
}

func (c *LegacyClient) Send(ctx context.Context, to, message string) (string, error) {
	if c.DryRun {
		c.log.Info("sms dry run", zap.String("to", to), zap.String("message", message))
		return "dry-run", nil
	}
	body, err := json.Marshal(map[string]string{
		"1": c.APICode,
		"2": to,
		"3": message,
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

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
	if err != nil {
		return "", &core.DeliveryError{Provider: providerName, Err: err}
	}
	status := strings.TrimSpace(string(raw))
	if resp.StatusCode != http.StatusOK || status != "0" {
		return "", &core.DeliveryError{Provider: providerName,
			Err: fmt.Errorf("status %d: gateway code %q", resp.StatusCode, status)}
	}
	// The legacy API returns no reference ID; stamp the send time instead.
	return fmt.Sprintf("legacy-%d", time.Now().UnixMilli()), nil
}
