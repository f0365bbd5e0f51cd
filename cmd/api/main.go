package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studioleads/leadcapture/internal/api/router"
	appconfig "github.com/studioleads/leadcapture/internal/config"
	"github.com/studioleads/leadcapture/internal/http/handlers"
	"github.com/studioleads/leadcapture/internal/leads"
	"github.com/studioleads/leadcapture/internal/notify"
	"github.com/studioleads/leadcapture/internal/observability/metrics"
	"github.com/studioleads/leadcapture/internal/tracking"
	"github.com/studioleads/leadcapture/internal/tracking/capi"
	"github.com/studioleads/leadcapture/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lead capture API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	metricsHandler, leadMetrics := setupMetrics()

	ctx := context.Background()
	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)

	var leadsRepo leads.Repository
	var adminLeads *handlers.AdminLeadsHandler
	if pool != nil {
		leadsRepo = leads.NewPostgresRepository(pool)
		if adminDB := openAdminDB(cfg.DatabaseURL, logger); adminDB != nil {
			adminLeads = handlers.NewAdminLeadsHandler(adminDB, logger)
		}
	} else {
		logger.Warn("no database configured, leads are kept in memory")
		leadsRepo = leads.NewInMemoryRepository()
	}

	capiClient := capi.New(capi.Config{
		PixelID:       cfg.MetaPixelID,
		AccessToken:   cfg.MetaCAPIAccessToken,
		GraphVersion:  cfg.MetaGraphVersion,
		TestEventCode: cfg.MetaCAPITestCode,
		Logger:        logger,
	})
	if capiClient.Enabled() {
		logger.Info("conversion forwarding enabled", "pixel_id", cfg.MetaPixelID)
	}

	hooks := buildLeadHooks(cfg, pool, capiClient, leadMetrics, logger)

	leadsHandler := leads.NewHandler(leadsRepo, hooks, logger, leadMetrics)
	trackingHandler := tracking.NewHandler(capiClient, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		TrackingHandler:    trackingHandler,
		AdminLeads:         adminLeads,
		MetricsHandler:     metricsHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		FormRateLimit:      cfg.FormRateLimit,
		FormRateBurst:      cfg.FormRateBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		pool.Close()
	}

	logger.Info("server stopped")
}

// setupMetrics registers the lead metrics on a fresh registry and returns
// the scrape handler alongside them.
func setupMetrics() (http.Handler, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	leadMetrics := metrics.NewLeadMetrics(reg)
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return handler, leadMetrics
}

// connectPostgresPool opens a pgx pool, or returns nil when no URL is set.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}
	return pool
}

// openAdminDB opens a database/sql handle for the admin read endpoints.
func openAdminDB(databaseURL string, logger *logging.Logger) *sql.DB {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("failed to open admin db handle", "error", err)
		return nil
	}
	return db
}

// buildLeadHooks assembles the post-insert pipeline: conversion recording
// and forwarding first, then the owner notification email.
func buildLeadHooks(cfg *appconfig.Config, pool *pgxpool.Pool, capiClient *capi.Client, m *metrics.LeadMetrics, logger *logging.Logger) []leads.Hook {
	var hooks []leads.Hook

	var store *tracking.Store
	if pool != nil {
		store = tracking.NewStore(pool)
	}
	hooks = append(hooks, tracking.NewConversionHook(store, capiClient, cfg.DefaultCurrency, cfg.PublicBaseURL, logger, m))

	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil {
		if notifier := notify.NewLeadNotifier(sender, cfg.LeadNotifyEmail, cfg.LeadNotifyName, logger); notifier != nil {
			hooks = append(hooks, notifier)
		}
	}

	return hooks
}
