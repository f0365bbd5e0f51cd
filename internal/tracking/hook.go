package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/studioleads/leadcapture/internal/leads"
	"github.com/studioleads/leadcapture/internal/observability/metrics"
	"github.com/studioleads/leadcapture/internal/tracking/capi"
	"github.com/studioleads/leadcapture/pkg/logging"
)

// LeadEventName is the fixed vocabulary for form-submission conversions.
const LeadEventName = "Lead"

// ConversionHook records a conversion row and forwards a "Lead" event after
// each successful lead insert. Both steps are best-effort.
type ConversionHook struct {
	store          *Store
	client         *capi.Client
	currency       string
	eventSourceURL string
	logger         *logging.Logger
	metrics        *metrics.LeadMetrics
	now            func() time.Time
}

// NewConversionHook wires the post-commit conversion work. store may be nil
// (no local recording) and client may be disabled (no forwarding).
func NewConversionHook(store *Store, client *capi.Client, currency, eventSourceURL string, logger *logging.Logger, m *metrics.LeadMetrics) *ConversionHook {
	if logger == nil {
		logger = logging.Default()
	}
	if currency == "" {
		currency = "BRL"
	}
	return &ConversionHook{
		store:          store,
		client:         client,
		currency:       currency,
		eventSourceURL: eventSourceURL,
		logger:         logger,
		metrics:        m,
		now:            time.Now,
	}
}

// LeadCreated implements leads.Hook.
func (h *ConversionHook) LeadCreated(ctx context.Context, lead *leads.Lead, req *leads.CreateLeadRequest) error {
	// Stable per submission attempt: the platform deduplicates a browser
	// pixel firing the same logical event against this id.
	eventID := LeadEventName + "_" + lead.ID

	fbc := req.FBC
	if fbc == "" && req.FBClid != "" {
		fbc = fmt.Sprintf("fb.1.%d.%s", h.now().UnixMilli(), req.FBClid)
	}

	if err := h.store.InsertConversion(ctx, ConversionRecord{
		LeadID:    lead.ID,
		EventName: LeadEventName,
		Value:     0,
		Currency:  h.currency,
		EventID:   eventID,
		FBC:       fbc,
		GClid:     req.GClid,
	}); err != nil {
		h.logger.Error("conversion row not recorded", "lead_id", lead.ID, "error", err)
	}

	if !h.client.Enabled() {
		h.logger.Debug("conversion forwarding disabled, skipping", "lead_id", lead.ID)
		return nil
	}

	err := h.client.SendEvent(ctx, LeadEventName, capi.UserData{
		Email:     lead.Email,
		Phone:     lead.Phone,
		ClientIP:  lead.IPAddress,
		UserAgent: lead.UserAgent,
		FBC:       fbc,
		FBP:       req.FBP,
	}, &capi.EventOptions{
		EventID:        eventID,
		EventSourceURL: h.eventSourceURL,
	})
	if err != nil {
		h.metrics.ObserveForward("error")
		return fmt.Errorf("tracking: forward lead event: %w", err)
	}
	h.metrics.ObserveForward("success")
	return nil
}
