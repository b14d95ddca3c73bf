// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// Config holds all service settings. Values come from the environment
// (optionally seeded from a .env file loaded by main).
type Config struct {
	HTTPPort string
	// WSBase is the externally reachable WebSocket base URL advertised in
	// job-creation responses, e.g. "ws://localhost:8000".
	WSBase string

	// DatabaseURL enables the Postgres usage ledger; empty selects the
	// in-memory ledger.
	DatabaseURL string

	// PricingFile optionally overrides the builtin model pricing table.
	PricingFile string

	StaticDir string

	// Registry retention.
	JobTTL        time.Duration
	CredentialTTL time.Duration
	SweepInterval time.Duration

	// WSWriteTimeout bounds each WebSocket send.
	WSWriteTimeout time.Duration

	// PacingDisabled drops the cosmetic inter-stage delays.
	PacingDisabled bool

	// DefaultCredentials are server-side provider keys, used when a job's
	// own bundle is missing an entry and to answer /health's
	// realtimeAvailable.
	DefaultCredentials models.CredentialBundle
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8000"),
		WSBase:         getEnv("WS_BASE", "ws://localhost:8000"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PricingFile:    os.Getenv("PRICING_FILE"),
		StaticDir:      getEnv("STATIC_DIR", "static"),
		JobTTL:         getDuration("JOB_TTL", time.Hour),
		CredentialTTL:  getDuration("CREDENTIAL_TTL", 5*time.Minute),
		SweepInterval:  getDuration("SWEEP_INTERVAL", time.Minute),
		WSWriteTimeout: getDuration("WS_WRITE_TIMEOUT", 10*time.Second),
		PacingDisabled: getBool("PACING_DISABLED", false),
		DefaultCredentials: models.CredentialBundle{
			Keys: map[string]string{
				models.ProviderOpenAI:    os.Getenv("OPENAI_API_KEY"),
				models.ProviderAnthropic: os.Getenv("ANTHROPIC_API_KEY"),
				models.ProviderFireworks: os.Getenv("FIREWORKS_API_KEY"),
			},
			ModelHint: os.Getenv("DOBBY_MODEL"),
		},
	}
}
