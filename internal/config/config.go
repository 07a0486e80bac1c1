package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the environment-driven configuration surface of the banter
// subsystem. Tuning knobs with richer structure (priorities, exchange
// weights) live in the optional YAML file, see tuning.go.
type Config struct {
	Environment string
	LogLevel    slog.Level

	// BanterEnabled gates the whole pipeline; when false the
	// orchestrator's Update is a no-op.
	BanterEnabled bool

	// Generation endpoint.
	EndpointURL       string
	Model             string
	RequestTimeout    time.Duration
	Temperature       float64
	MaxTokens         int
	RepetitionPenalty float64
	MinP              float64

	// RedisURL enables the banter journal when non-empty.
	RedisURL string

	// MetricsAddr serves Prometheus metrics when non-empty.
	MetricsAddr string

	// TuningPath points at the optional YAML tuning file.
	TuningPath string
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          parseLogLevel(getEnv("LOG_LEVEL", "info")),
		BanterEnabled:     getEnvBool("BANTER_ENABLED", true),
		EndpointURL:       getEnv("BANTER_ENDPOINT_URL", "http://localhost:5001/v1/completions"),
		Model:             getEnv("BANTER_MODEL", ""),
		RequestTimeout:    getEnvDuration("BANTER_REQUEST_TIMEOUT", 30*time.Second),
		Temperature:       getEnvFloat("BANTER_TEMPERATURE", 0.8),
		MaxTokens:         getEnvInt("BANTER_MAX_TOKENS", 300),
		RepetitionPenalty: getEnvFloat("BANTER_REPETITION_PENALTY", 1.1),
		MinP:              getEnvFloat("BANTER_MIN_P", 0.05),
		RedisURL:          getEnv("REDIS_URL", ""),
		MetricsAddr:       getEnv("METRICS_ADDR", ""),
		TuningPath:        getEnv("BANTER_TUNING_PATH", ""),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
