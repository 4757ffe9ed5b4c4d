package otpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sikad-ph/otpkit/core"
	memorystore "github.com/sikad-ph/otpkit/storage/memory"
)

var codeRe = regexp.MustCompile(`\b\d{6}\b`)

type captureSender struct {
	messages []string
}

func (c *captureSender) Send(ctx context.Context, to, message string) (string, error) {
	c.messages = append(c.messages, message)
	return "receipt", nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *captureSender) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sender := &captureSender{}
	svc := core.NewService(core.Options{Provider: "test"}).
		WithPendingStore(memorystore.NewPendingStore()).
		WithSMSSender(sender)
	r := gin.New()
	NewService(svc).DisableRateLimiter().Mount(r)
	return r, sender
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMountedFlow(t *testing.T) {
	r, sender := newTestRouter(t)

	w := postJSON(t, r, "/otp/start", map[string]string{"phone": "09933671339"})
	require.Equal(t, http.StatusOK, w.Code)

	code := codeRe.FindString(sender.messages[0])
	require.NotEmpty(t, code)

	w = postJSON(t, r, "/otp/check", map[string]string{"phone": "09933671339", "code": code})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "verified", body["status"])
}

func TestBindingValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "/otp/start", map[string]string{"phone": "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, r, "/otp/check", map[string]string{"phone": "09933671339"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckErrorsMapToStatus(t *testing.T) {
	r, sender := newTestRouter(t)

	w := postJSON(t, r, "/otp/check", map[string]string{"phone": "09933671339", "code": "123456"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "otp_not_found", body["error"])

	// A wrong code against a live challenge stays 401.
	postJSON(t, r, "/otp/start", map[string]string{"phone": "09933671339"})
	wrong := "000000"
	if codeRe.FindString(sender.messages[0]) == wrong {
		wrong = "000001"
	}
	w = postJSON(t, r, "/otp/check", map[string]string{"phone": "09933671339", "code": wrong})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "test", body["provider"])
}
