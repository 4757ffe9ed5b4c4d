package itextmo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sikad-ph/otpkit/core"
)

func TestBroadcastSend(t *testing.T) {
	var got broadcastRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(broadcastResponse{
			ReferenceId:     "ref-123",
			TotalCreditUsed: 1,
		})
	}))
	defer ts.Close()

	c := New("ops@example.com", "secret", "apicode").
		WithSenderID("SIKAD").
		WithAPIURL(ts.URL)

	receipt, err := c.Send(context.Background(), "9933671339", "hello")
	require.NoError(t, err)
	require.Equal(t, "ref-123", receipt)
	require.Equal(t, []string{"9933671339"}, got.Recipients)
	require.Equal(t, "hello", got.Message)
	require.Equal(t, "SIKAD", got.SenderId)
	require.Equal(t, "apicode", got.ApiCode)
}

func TestBroadcastSendGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(broadcastResponse{Error: true, Message: "Insufficient credits"})
	}))
	defer ts.Close()

	c := New("ops@example.com", "secret", "apicode").WithAPIURL(ts.URL)
	_, err := c.Send(context.Background(), "9933671339", "hello")

	var de *core.DeliveryError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "iTextMo", de.Provider)
	require.Contains(t, de.Err.Error(), "Insufficient credits")
}

func TestBroadcastSendHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer ts.Close()

	c := New("ops@example.com", "secret", "apicode").WithAPIURL(ts.URL)
	_, err := c.Send(context.Background(), "9933671339", "hello")

	var de *core.DeliveryError
	require.ErrorAs(t, err, &de)
}

func TestBroadcastDryRun(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	c := New("", "", "").WithAPIURL(ts.URL).WithDryRun(true)
	receipt, err := c.Send(context.Background(), "9933671339", "hello")
	require.NoError(t, err)
	require.Equal(t, "dry-run", receipt)
	require.False(t, called, "dry run must not hit the gateway")
}

func TestLegacySend(t *testing.T) {
	var got map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("0"))
	}))
	defer ts.Close()

	c := NewLegacy("apicode").WithAPIURL(ts.URL)
	receipt, err := c.Send(context.Background(), "09933671339", "hello")
	require.NoError(t, err)
	require.NotEmpty(t, receipt)
	require.Equal(t, map[string]string{
		"1": "apicode",
		"2": "09933671339",
		"3": "hello",
	}, got)
}

func TestLegacySendGatewayCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("4")) // wrong credentials
	}))
	defer ts.Close()

	c := NewLegacy("apicode").WithAPIURL(ts.URL)
	_, err := c.Send(context.Background(), "09933671339", "hello")

	var de *core.DeliveryError
	require.ErrorAs(t, err, &de)
	require.Contains(t, de.Err.Error(), `"4"`)
}
