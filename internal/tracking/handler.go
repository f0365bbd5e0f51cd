package tracking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/studioleads/leadcapture/internal/tracking/capi"
	"github.com/studioleads/leadcapture/pkg/logging"
)

// Handler relays events from client-side code to the Conversions API, so the
// access token never reaches the browser.
type Handler struct {
	client *capi.Client
	logger *logging.Logger
}

// NewHandler creates a new tracking relay handler.
func NewHandler(client *capi.Client, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, logger: logger}
}

type relayUserData struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	FBC   string `json:"fbc"`
	FBP   string `json:"fbp"`
}

type relayRequest struct {
	EventName      string         `json:"eventName"`
	UserData       relayUserData  `json:"userData"`
	CustomData     map[string]any `json:"customData"`
	EventID        string         `json:"eventId"`
	EventSourceURL string         `json:"eventSourceUrl"`
}

type relayResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Relay handles POST /api/tracking/capi requests
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	var req relayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, relayResponse{Success: false, Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.EventName) == "" {
		writeJSON(w, http.StatusBadRequest, relayResponse{Success: false, Error: "eventName is required"})
		return
	}

	sourceURL := req.EventSourceURL
	if sourceURL == "" {
		sourceURL = r.Referer()
	}

	err := h.client.SendEvent(r.Context(), req.EventName, capi.UserData{
		Email:     req.UserData.Email,
		Phone:     req.UserData.Phone,
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
		FBC:       req.UserData.FBC,
		FBP:       req.UserData.FBP,
	}, &capi.EventOptions{
		EventID:        req.EventID,
		EventSourceURL: sourceURL,
		CustomData:     req.CustomData,
	})
	if err != nil {
		if errors.Is(err, capi.ErrNotConfigured) {
			writeJSON(w, http.StatusInternalServerError, relayResponse{Success: false, Error: "CAPI not configured"})
			return
		}
		h.logger.Error("capi relay failed", "event_name", req.EventName, "error", err)
		writeJSON(w, http.StatusInternalServerError, relayResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, relayResponse{Success: true})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	return r.Header.Get("X-Real-Ip")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
