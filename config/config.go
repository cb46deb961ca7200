package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration for the CLI and the HTTP server
type Config struct {
	// Environment
	Environment string
	Port        string
	LogLevel    string

	// Observability
	SentryDSN string // errors are reported to Sentry when set

	// Defaults for requests that name no key
	DefaultRoot  string
	DefaultScale string

	// Browser origins allowed to call the server
	CORSAllowedOrigins []string

	// Step grid resolution used for MIDI imports
	StepsPerQuarter int

	// Idle time after which a chord session is dropped
	SessionTTL time.Duration
}

// Load reads the configuration from the environment. Variables in a .env file
// in the working directory are loaded first without overriding the environment.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	stepsPerQuarter, err := strconv.Atoi(getEnv("STEPS_PER_QUARTER", "4"))
	if err != nil || stepsPerQuarter <= 0 {
		return nil, fmt.Errorf("invalid STEPS_PER_QUARTER %q", os.Getenv("STEPS_PER_QUARTER"))
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		DefaultRoot:        getEnv("DEFAULT_ROOT", "C"),
		DefaultScale:       getEnv("DEFAULT_SCALE", "major"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		StepsPerQuarter:    stepsPerQuarter,
		SessionTTL:         sessionTTL,
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
