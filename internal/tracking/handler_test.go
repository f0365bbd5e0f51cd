package tracking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studioleads/leadcapture/internal/tracking/capi"
)

func TestRelaySuccess(t *testing.T) {
	var payload map[string]any
	srv := capturingCAPIServer(t, &payload)
	defer srv.Close()

	h := NewHandler(capi.New(capi.Config{PixelID: "111", AccessToken: "tok", BaseURL: srv.URL}), nil)

	body := `{
		"eventName": "ViewContent",
		"userData": {"email": "maria@example.com", "fbp": "fb.1.1700000000000.99"},
		"customData": {"content_name": "landing"},
		"eventId": "vc-1",
		"eventSourceUrl": "https://example.com/lp"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/tracking/capi", strings.NewReader(body))
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()

	h.Relay(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp relayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	event := payload["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "ViewContent", event["event_name"])
	assert.Equal(t, "vc-1", event["event_id"])
	assert.Equal(t, "https://example.com/lp", event["event_source_url"])
	assert.Equal(t, map[string]any{"content_name": "landing"}, event["custom_data"])

	userData := event["user_data"].(map[string]any)
	assert.Equal(t, capi.HashEmail("maria@example.com"), userData["em"])
	assert.Equal(t, "203.0.113.9", userData["client_ip_address"])
	assert.Equal(t, "test-agent", userData["client_user_agent"])
}

func TestRelayFallsBackToReferer(t *testing.T) {
	var payload map[string]any
	srv := capturingCAPIServer(t, &payload)
	defer srv.Close()

	h := NewHandler(capi.New(capi.Config{PixelID: "111", AccessToken: "tok", BaseURL: srv.URL}), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/tracking/capi",
		strings.NewReader(`{"eventName": "PageView"}`))
	req.Header.Set("Referer", "https://example.com/obrigado")
	rec := httptest.NewRecorder()

	h.Relay(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	event := payload["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "https://example.com/obrigado", event["event_source_url"])
}

func TestRelayMissingEventName(t *testing.T) {
	h := NewHandler(capi.New(capi.Config{PixelID: "111", AccessToken: "tok"}), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/tracking/capi",
		strings.NewReader(`{"userData": {"email": "a@b.com"}}`))
	rec := httptest.NewRecorder()

	h.Relay(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp relayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "eventName is required", resp.Error)
}

func TestRelayInvalidJSON(t *testing.T) {
	h := NewHandler(capi.New(capi.Config{PixelID: "111", AccessToken: "tok"}), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/tracking/capi", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Relay(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelayNotConfigured(t *testing.T) {
	h := NewHandler(capi.New(capi.Config{}), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/tracking/capi",
		strings.NewReader(`{"eventName": "Lead"}`))
	rec := httptest.NewRecorder()

	h.Relay(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp relayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CAPI not configured", resp.Error)
}

func TestRelayForwardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	h := NewHandler(capi.New(capi.Config{PixelID: "111", AccessToken: "bad", BaseURL: srv.URL}), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/tracking/capi",
		strings.NewReader(`{"eventName": "Lead"}`))
	rec := httptest.NewRecorder()

	h.Relay(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp relayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "Invalid OAuth access token")
}
