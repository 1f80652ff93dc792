// Package config loads service configuration from the environment.
// A .env file is honored in local development; real deployments set
// the variables directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServiceConfig identifies the running service instance.
type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

// StoreConfig selects and configures the session record store.
type StoreConfig struct {
	// Backend is "postgres" or "memory". The memory backend is for
	// local development and tests only; it loses data on restart.
	Backend     string
	DatabaseURL string
}

// LoggingConfig controls the zerolog global level.
type LoggingConfig struct {
	Level string
}

// TracingConfig controls OpenTelemetry trace export.
type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// Config is the full service configuration.
type Config struct {
	Service   ServiceConfig
	Store     StoreConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig

	// SnapshotCacheTTLSeconds bounds how long a cached stats snapshot
	// may be served before a recompute from the store is forced.
	SnapshotCacheTTLSeconds int

	ShutdownTimeoutSeconds     int
	ReadinessDrainDelaySeconds int
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	// Best-effort: absence of a .env file is the normal case outside dev.
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "stats-service"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("SERVICE_ENV", "development"),
			Port:    getEnv("PORT", "8081"),
		},
		Store: StoreConfig{
			Backend:     getEnv("STORE_BACKEND", "postgres"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		SnapshotCacheTTLSeconds:    getEnvInt("SNAPSHOT_CACHE_TTL_SECONDS", 60),
		ShutdownTimeoutSeconds:     getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 15),
		ReadinessDrainDelaySeconds: getEnvInt("READINESS_DRAIN_DELAY_SECONDS", 0),
	}
}

// Validate checks configuration combinations that cannot work.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	case "memory":
		// no further requirements
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want postgres or memory)", c.Store.Backend)
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be in [0,1], got %v", c.Tracing.SampleRate)
	}
	if c.SnapshotCacheTTLSeconds < 0 {
		return fmt.Errorf("SNAPSHOT_CACHE_TTL_SECONDS must be >= 0, got %d", c.SnapshotCacheTTLSeconds)
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be > 0, got %d", c.ShutdownTimeoutSeconds)
	}
	return nil
}

// GetSnapshotCacheTTL returns the snapshot cache TTL as a duration.
func (c *Config) GetSnapshotCacheTTL() time.Duration {
	return time.Duration(c.SnapshotCacheTTLSeconds) * time.Second
}

// GetShutdownTimeoutDuration returns the graceful shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// GetReadinessDrainDelayDuration returns how long to keep serving
// after readiness starts failing, so load balancers stop routing here.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.ReadinessDrainDelaySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
