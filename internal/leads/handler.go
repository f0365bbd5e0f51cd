package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/studioleads/leadcapture/internal/observability/metrics"
	"github.com/studioleads/leadcapture/pkg/logging"
)

// Handler handles HTTP requests for leads
type Handler struct {
	repo    Repository
	hooks   []Hook
	logger  *logging.Logger
	metrics *metrics.LeadMetrics
}

// NewHandler creates a new leads handler. Hooks run after a successful
// insert, in order; their failures are logged and otherwise ignored.
func NewHandler(repo Repository, hooks []Hook, logger *logging.Logger, m *metrics.LeadMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:    repo,
		hooks:   hooks,
		logger:  logger,
		metrics: m,
	}
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Create handles POST /api/leads requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode lead request", "error", err)
		h.metrics.ObserveSubmission("validation_error")
		writeJSON(w, http.StatusBadRequest, submitResponse{Success: false, Message: "Invalid form data"})
		return
	}

	if err := req.Validate(); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			h.metrics.ObserveSubmission("validation_error")
			writeJSON(w, http.StatusBadRequest, submitResponse{Success: false, Message: vErr.Message})
			return
		}
		h.metrics.ObserveSubmission("validation_error")
		writeJSON(w, http.StatusBadRequest, submitResponse{Success: false, Message: "Invalid form data"})
		return
	}

	req.IPAddress = clientIP(r)
	req.UserAgent = userAgent(r)

	lead, err := h.repo.Create(r.Context(), req.ToLead())
	if err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) {
			h.logger.Info("duplicate lead rejected", "field", dup.Field)
			h.metrics.ObserveSubmission("duplicate")
			writeJSON(w, http.StatusBadRequest, submitResponse{Success: false, Message: dup.UserMessage()})
			return
		}
		h.logger.Error("failed to insert lead", "error", err)
		h.metrics.ObserveSubmission("error")
		writeJSON(w, http.StatusInternalServerError, submitResponse{Success: false, Message: "Internal server error"})
		return
	}

	h.logger.Info("lead created",
		"id", lead.ID,
		"source", lead.Source,
		"medium", lead.Medium,
		"campaign", lead.Campaign,
	)
	h.metrics.ObserveSubmission("created")
	h.metrics.ObserveSubmissionLatency(time.Since(start).Seconds())

	// Best-effort post-commit work. The outcome is already decided; a hook
	// failure must never surface to the visitor.
	for _, hook := range h.hooks {
		if err := hook.LeadCreated(r.Context(), lead, &req); err != nil {
			h.logger.Error("lead post-commit hook failed", "lead_id", lead.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, submitResponse{Success: true, Message: "Lead captured successfully"})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func userAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
