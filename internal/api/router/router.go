// Package router assembles the HTTP surface of the lead capture API.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/studioleads/leadcapture/internal/http/handlers"
	httpmiddleware "github.com/studioleads/leadcapture/internal/http/middleware"
	"github.com/studioleads/leadcapture/internal/leads"
	"github.com/studioleads/leadcapture/internal/tracking"
	"github.com/studioleads/leadcapture/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	LeadsHandler    *leads.Handler
	TrackingHandler *tracking.Handler
	AdminLeads      *handlers.AdminLeadsHandler
	MetricsHandler  http.Handler
	AdminAuthSecret string

	CORSAllowedOrigins []string

	// Submission rate limiting, requests/sec and burst per client IP.
	FormRateLimit float64
	FormRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.LeadsHandler != nil {
			submit := api
			if cfg.FormRateLimit > 0 {
				burst := cfg.FormRateBurst
				if burst < 1 {
					burst = 1
				}
				submit = api.With(httpmiddleware.RateLimit(cfg.FormRateLimit, burst))
			}
			submit.Post("/leads", cfg.LeadsHandler.Create)
		}
		if cfg.TrackingHandler != nil {
			api.Post("/tracking/capi", cfg.TrackingHandler.Relay)
		}
	})

	// Admin routes (protected by HMAC-signed JWT)
	if cfg.AdminAuthSecret != "" && cfg.AdminLeads != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/leads", cfg.AdminLeads.ListLeads)
			admin.Get("/leads/export", cfg.AdminLeads.ExportLeads)
			admin.Get("/leads/stats", cfg.AdminLeads.GetLeadStats)
			admin.Get("/leads/{leadID}", cfg.AdminLeads.GetLead)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
