package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
// Note: This is a stateless configuration - requests carry everything the
// engine needs, so there is no database or auth state to configure
type Config struct {
	// Environment
	Environment string
	Port        string

	// Engine limits
	MaxMelodyAttempts int // hard cap on caller-supplied max_attempts

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// CORS
	AllowedOrigins string // comma-separated list, "*" for any
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		MaxMelodyAttempts: getEnvInt("MAX_MELODY_ATTEMPTS", 1000),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
