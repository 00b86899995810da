// Package config loads service configuration from environment variables.
package config

import "os"

// Config holds everything the server needs at startup.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DBPath is the SQLite database file path.
	DBPath string

	// StaticPath is the directory the frontend is served from.
	StaticPath string

	// BaseURL is the externally visible application URL, used to build
	// the payment provider's success/cancel redirect targets.
	BaseURL string

	// StripeSecretKey authenticates calls to the Stripe API.
	StripeSecretKey string

	// StripeWebhookSecret verifies incoming webhook signatures.
	StripeWebhookSecret string
}

// Load reads the configuration from the environment, falling back to
// development defaults.
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		DBPath:              getEnv("DB_PATH", "./data/invoices.db"),
		StaticPath:          getEnv("STATIC_PATH", "../frontend/static"),
		BaseURL:             getEnv("BASE_URL", "http://localhost:8080"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
