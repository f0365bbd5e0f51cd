package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	CORSAllowedOrigins []string

	// Public form rate limiting (requests/sec and burst, per IP)
	FormRateLimit float64
	FormRateBurst int

	// Meta (Facebook) Pixel + Conversions API
	MetaPixelID         string
	MetaCAPIAccessToken string
	MetaCAPITestCode    string
	MetaGraphVersion    string

	// Default currency attached to conversion events
	DefaultCurrency string

	AdminJWTSecret string

	// Owner notification on new leads
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	LeadNotifyEmail   string
	LeadNotifyName    string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		FormRateLimit: getEnvAsFloat("FORM_RATE_LIMIT", 1),
		FormRateBurst: getEnvAsInt("FORM_RATE_BURST", 5),

		MetaPixelID:         getEnv("META_PIXEL_ID", ""),
		MetaCAPIAccessToken: getEnv("META_CAPI_ACCESS_TOKEN", ""),
		MetaCAPITestCode:    getEnv("META_CAPI_TEST_EVENT_CODE", ""),
		MetaGraphVersion:    getEnv("META_GRAPH_API_VERSION", "v18.0"),

		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "BRL"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Landing Page"),
		LeadNotifyEmail:   getEnv("LEAD_NOTIFY_EMAIL", ""),
		LeadNotifyName:    getEnv("LEAD_NOTIFY_NAME", ""),
	}
}

// MetaCAPIEnabled reports whether server-side conversion forwarding is
// configured. Both the pixel identifier and the access token are required.
func (c *Config) MetaCAPIEnabled() bool {
	return c.MetaPixelID != "" && c.MetaCAPIAccessToken != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
