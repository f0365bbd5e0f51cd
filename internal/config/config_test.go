package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	// Neutralize anything the host environment may carry for the keys
	// asserted below; empty values fall through to the defaults.
	for _, key := range []string{"PORT", "DEFAULT_CURRENCY", "META_GRAPH_API_VERSION", "FORM_RATE_BURST"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DefaultCurrency != "BRL" {
		t.Errorf("expected default currency BRL, got %s", cfg.DefaultCurrency)
	}
	if cfg.MetaGraphVersion != "v18.0" {
		t.Errorf("expected default graph version v18.0, got %s", cfg.MetaGraphVersion)
	}
	if cfg.FormRateBurst != 5 {
		t.Errorf("expected default burst 5, got %d", cfg.FormRateBurst)
	}
}

func TestMetaCAPIEnabled(t *testing.T) {
	cfg := &Config{}
	if cfg.MetaCAPIEnabled() {
		t.Error("CAPI should be disabled with no credentials")
	}

	cfg.MetaPixelID = "123456"
	if cfg.MetaCAPIEnabled() {
		t.Error("CAPI should be disabled with pixel id only")
	}

	cfg.MetaCAPIAccessToken = "token"
	if !cfg.MetaCAPIEnabled() {
		t.Error("CAPI should be enabled with pixel id and token")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("FORM_RATE_LIMIT", "2.5")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.FormRateLimit != 2.5 {
		t.Errorf("expected rate 2.5, got %f", cfg.FormRateLimit)
	}
}
