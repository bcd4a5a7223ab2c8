// Package config reads process configuration from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AuthModeClerk = "clerk"
	AuthModeJWT   = "jwt"
)

type Config struct {
	Port        string
	DatabaseURL string

	AuthMode           string
	ClerkSecretKey     string
	ClerkWebhookSecret string
	// WebhookAllowUnsigned mounts the webhook route without a signing secret.
	// Local development only.
	WebhookAllowUnsigned bool
	JWTSecret            string

	OpenAIKey        string
	OpenAIModel      string
	OpenAIBaseURL    string
	PredictorTimeout time.Duration
	PredictorRPS     float64

	Timezone *time.Location

	MetricsUser string
	MetricsPass string

	LogLevel string
	LogFile  string
}

// LoadDotEnv loads .env if present. A missing file is not an error.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load builds a Config from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getenv("PORT", "3333"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		AuthMode:           strings.ToLower(getenv("AUTH_MODE", AuthModeClerk)),
		ClerkSecretKey:     os.Getenv("CLERK_SECRET_KEY"),
		ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getenv("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		MetricsUser:        os.Getenv("METRICS_USER"),
		MetricsPass:        os.Getenv("METRICS_PASS"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFile:            os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.PredictorTimeout, err = time.ParseDuration(getenv("PREDICTOR_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("invalid PREDICTOR_TIMEOUT: %w", err)
	}
	if cfg.PredictorTimeout <= 0 {
		return nil, errors.New("PREDICTOR_TIMEOUT must be positive")
	}

	if cfg.PredictorRPS, err = strconv.ParseFloat(getenv("PREDICTOR_RPS", "2"), 64); err != nil {
		return nil, fmt.Errorf("invalid PREDICTOR_RPS: %w", err)
	}
	if cfg.PredictorRPS <= 0 {
		return nil, errors.New("PREDICTOR_RPS must be positive")
	}

	if raw := os.Getenv("WEBHOOK_ALLOW_UNSIGNED"); raw != "" {
		if cfg.WebhookAllowUnsigned, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("invalid WEBHOOK_ALLOW_UNSIGNED: %w", err)
		}
	}

	if cfg.Timezone, err = time.LoadLocation(getenv("APP_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that depend on each other.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	if _, _, err := c.Database(); err != nil {
		return err
	}

	switch c.AuthMode {
	case AuthModeClerk:
		if c.ClerkSecretKey == "" {
			return errors.New("CLERK_SECRET_KEY environment variable is not set")
		}
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET environment variable is not set")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	return nil
}

// Database splits DATABASE_URL into a driver name ("postgres" or "sqlite") and
// the connection string that driver expects.
func (c *Config) Database() (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "postgres", c.DatabaseURL, nil
	case strings.HasPrefix(c.DatabaseURL, "sqlite://"):
		return "sqlite", strings.TrimPrefix(c.DatabaseURL, "sqlite://"), nil
	case strings.HasPrefix(c.DatabaseURL, "sqlite:"):
		return "sqlite", strings.TrimPrefix(c.DatabaseURL, "sqlite:"), nil
	}
	return "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", c.DatabaseURL)
}

// WebhookEnabled reports whether /webhooks/clerk should be served: either
// deliveries can be verified or unsigned ones were explicitly allowed.
func (c *Config) WebhookEnabled() bool {
	return c.ClerkWebhookSecret != "" || c.WebhookAllowUnsigned
}

// PredictorEnabled reports whether an OpenAI key is configured.
func (c *Config) PredictorEnabled() bool {
	return c.OpenAIKey != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
