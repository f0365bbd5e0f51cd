// Package capi talks to the Meta Conversions API, the server-side
// alternative to the browser pixel. Email and phone are hashed before they
// leave the process; the platform matches on the digests.
package capi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/studioleads/leadcapture/internal/phone"
	"github.com/studioleads/leadcapture/pkg/logging"
)

const (
	defaultBaseURL      = "https://graph.facebook.com"
	defaultGraphVersion = "v18.0"
)

// ErrNotConfigured is returned when the pixel id or access token is missing.
// Callers treat it as "skip", not as a failure.
var ErrNotConfigured = errors.New("capi: not configured")

// Config controls how the Conversions API client behaves.
type Config struct {
	PixelID       string
	AccessToken   string
	GraphVersion  string
	TestEventCode string
	BaseURL       string
	Timeout       time.Duration
	HTTPClient    *http.Client
	Logger        *logging.Logger
}

// Client sends single-event batches to the Conversions API endpoint.
type Client struct {
	pixelID       string
	accessToken   string
	testEventCode string
	endpoint      string
	httpClient    *http.Client
	logger        *logging.Logger
}

// New creates a configured Client. A client without credentials is still
// usable; every send returns ErrNotConfigured.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := strings.TrimSpace(cfg.GraphVersion)
	if version == "" {
		version = defaultGraphVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		pixelID:       strings.TrimSpace(cfg.PixelID),
		accessToken:   strings.TrimSpace(cfg.AccessToken),
		testEventCode: cfg.TestEventCode,
		endpoint:      fmt.Sprintf("%s/%s/%s/events", baseURL, version, cfg.PixelID),
		httpClient:    httpClient,
		logger:        logger,
	}
}

// Enabled reports whether both the pixel id and the access token are set.
func (c *Client) Enabled() bool {
	return c != nil && c.pixelID != "" && c.accessToken != ""
}

// UserData identifies the visitor for platform-side matching. Email and
// phone are raw here; hashing happens inside SendEvent.
type UserData struct {
	Email     string
	Phone     string
	ClientIP  string
	UserAgent string
	FBC       string
	FBP       string
}

// EventOptions carries the optional parts of an event. EventID is the
// deduplication key shared with a browser pixel firing the same action.
type EventOptions struct {
	EventID        string
	EventSourceURL string
	CustomData     map[string]any
}

type hashedUserData struct {
	EM              string `json:"em,omitempty"`
	PH              string `json:"ph,omitempty"`
	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
	FBC             string `json:"fbc,omitempty"`
	FBP             string `json:"fbp,omitempty"`
}

type capiEvent struct {
	EventName      string         `json:"event_name"`
	EventTime      int64          `json:"event_time"`
	EventID        string         `json:"event_id,omitempty"`
	EventSourceURL string         `json:"event_source_url,omitempty"`
	ActionSource   string         `json:"action_source"`
	UserData       hashedUserData `json:"user_data"`
	CustomData     map[string]any `json:"custom_data,omitempty"`
}

type capiPayload struct {
	Data          []capiEvent `json:"data"`
	AccessToken   string      `json:"access_token"`
	TestEventCode string      `json:"test_event_code,omitempty"`
}

type capiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SendEvent posts one event. Repeated calls with the same EventID rely on
// platform-side deduplication; no retries or local dedup happen here.
func (c *Client) SendEvent(ctx context.Context, eventName string, user UserData, opts *EventOptions) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	if eventName == "" {
		return errors.New("capi: event name required")
	}

	event := capiEvent{
		EventName:    eventName,
		EventTime:    time.Now().Unix(),
		ActionSource: "website",
		UserData: hashedUserData{
			EM:              HashEmail(user.Email),
			PH:              HashPhone(user.Phone),
			ClientIPAddress: user.ClientIP,
			ClientUserAgent: user.UserAgent,
			FBC:             user.FBC,
			FBP:             user.FBP,
		},
	}
	if opts != nil {
		event.EventID = opts.EventID
		event.EventSourceURL = opts.EventSourceURL
		event.CustomData = opts.CustomData
	}

	payload := capiPayload{
		Data:          []capiEvent{event},
		AccessToken:   c.accessToken,
		TestEventCode: c.testEventCode,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("capi: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("capi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("capi: http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info("capi event sent", "event_name", eventName)
		return nil
	}

	data, _ := io.ReadAll(resp.Body)
	var errBody capiErrorBody
	if decodeErr := json.Unmarshal(data, &errBody); decodeErr == nil && errBody.Error.Message != "" {
		return fmt.Errorf("capi: platform rejected event: %s", errBody.Error.Message)
	}
	return fmt.Errorf("capi: platform returned status %d", resp.StatusCode)
}

// hashData lowercases, trims and SHA-256 digests a value, hex encoded.
func hashData(data string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(data))))
	return hex.EncodeToString(sum[:])
}

// HashEmail normalizes and hashes an email address.
func HashEmail(email string) string {
	if email == "" {
		return ""
	}
	return hashData(email)
}

// HashPhone strips the number to digits before hashing.
func HashPhone(raw string) string {
	if raw == "" {
		return ""
	}
	digits := phone.Normalize(raw)
	if digits == "" {
		return ""
	}
	return hashData(digits)
}
