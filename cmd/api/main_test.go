package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/studioleads/leadcapture/internal/config"
	"github.com/studioleads/leadcapture/pkg/logging"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, leadMetrics := setupMetrics()
	if handler == nil || leadMetrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	leadMetrics.ObserveSubmission("created")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "leadcapture_leads_submissions_total") {
		t.Fatalf("expected submission counter to be exported")
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestBuildLeadHooksAlwaysIncludesConversions(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{DefaultCurrency: "BRL"}

	hooks := buildLeadHooks(cfg, nil, nil, nil, logger)
	if len(hooks) != 1 {
		t.Fatalf("expected conversion hook only, got %d hooks", len(hooks))
	}
}

func TestBuildLeadHooksAddsNotifierWhenConfigured(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		DefaultCurrency:   "BRL",
		SendGridAPIKey:    "SG.test",
		SendGridFromEmail: "noreply@studio.com",
		LeadNotifyEmail:   "owner@studio.com",
	}

	hooks := buildLeadHooks(cfg, nil, nil, nil, logger)
	if len(hooks) != 2 {
		t.Fatalf("expected conversion + notifier hooks, got %d", len(hooks))
	}
}
