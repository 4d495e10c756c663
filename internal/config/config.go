// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseURL string
	LogLevel    string

	RateLimit   RateLimit
	Tracing     Tracing
	Prediction  Prediction
	Leaderboard Leaderboard
}

// RateLimit bounds mutating requests per user per window.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// Tracing configures the OTLP exporter.
type Tracing struct {
	Enabled       bool
	Endpoint      string
	Protocol      string
	SamplingRatio float64
}

// Prediction points at the external lifestyle-prediction service.
type Prediction struct {
	BaseURL string
	Timeout time.Duration
}

// Leaderboard controls the cached top-N refresh worker.
type Leaderboard struct {
	Size            int
	RefreshInterval time.Duration
}

// Load reads configuration from the environment, consulting an optional
// .env file first.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: envString("ECOTRACK_ENV", "development"),
		HTTPAddr:    envString("ECOTRACK_HTTP_ADDR", ":8080"),
		DatabaseURL: envString("ECOTRACK_DATABASE_URL", "postgres://localhost:5432/ecotrack?sslmode=disable"),
		LogLevel:    envString("ECOTRACK_LOG_LEVEL", "info"),
		RateLimit: RateLimit{
			Limit:  envInt("ECOTRACK_RATE_LIMIT", 60),
			Window: envDuration("ECOTRACK_RATE_WINDOW", time.Minute),
		},
		Tracing: Tracing{
			Enabled:       envBool("ECOTRACK_TRACING_ENABLED", false),
			Endpoint:      envString("ECOTRACK_OTLP_ENDPOINT", ""),
			Protocol:      envString("ECOTRACK_OTLP_PROTOCOL", "grpc"),
			SamplingRatio: envFloat("ECOTRACK_TRACE_SAMPLING_RATIO", 1.0),
		},
		Prediction: Prediction{
			BaseURL: envString("ECOTRACK_PREDICTION_URL", ""),
			Timeout: envDuration("ECOTRACK_PREDICTION_TIMEOUT", 10*time.Second),
		},
		Leaderboard: Leaderboard{
			Size:            envInt("ECOTRACK_LEADERBOARD_SIZE", 20),
			RefreshInterval: envDuration("ECOTRACK_LEADERBOARD_REFRESH", 30*time.Second),
		},
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in the production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
