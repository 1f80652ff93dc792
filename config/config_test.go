package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "stats-service", cfg.Service.Name)
	assert.Equal(t, "8081", cfg.Service.Port)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 60, cfg.SnapshotCacheTTLSeconds)
	assert.Equal(t, 15*time.Second, cfg.GetShutdownTimeoutDuration())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("PORT", "9090")
	t.Setenv("SNAPSHOT_CACHE_TTL_SECONDS", "5")
	t.Setenv("TRACING_SAMPLE_RATE", "0.5")

	cfg := Load()

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "9090", cfg.Service.Port)
	assert.Equal(t, 5*time.Second, cfg.GetSnapshotCacheTTL())
	assert.Equal(t, 0.5, cfg.Tracing.SampleRate)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "memory backend needs no url",
			mutate: func(c *Config) { c.Store.Backend = "memory" },
		},
		{
			name:   "postgres backend with url",
			mutate: func(c *Config) { c.Store.DatabaseURL = "postgres://localhost/stats" },
		},
		{
			name:    "postgres backend without url",
			mutate:  func(c *Config) { c.Store.DatabaseURL = "" },
			wantErr: true,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "redis" },
			wantErr: true,
		},
		{
			name:    "sample rate out of range",
			mutate:  func(c *Config) { c.Store.Backend = "memory"; c.Tracing.SampleRate = 1.5 },
			wantErr: true,
		},
		{
			name:    "negative cache ttl",
			mutate:  func(c *Config) { c.Store.Backend = "memory"; c.SnapshotCacheTTLSeconds = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
