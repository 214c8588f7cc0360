package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when nothing is set", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "backoffice-bff", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, "http://localhost:3000/api", cfg.Backend.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, int64(1), cfg.Collection.MinTotalCents)
		assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.Collection.Location().String())
		assert.False(t, cfg.Delivery.ClampCreditToSubtotal)
		assert.Equal(t, 30*time.Minute, cfg.Drafts.IdleTTL)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("BACKOFFICE_BACKEND_BASE_URL", "http://api.internal:9000")
		t.Setenv("BACKOFFICE_DELIVERY_CLAMP_CREDIT_TO_SUBTOTAL", "true")
		t.Setenv("BACKOFFICE_COLLECTION_MIN_TOTAL_CENTS", "100")
		t.Setenv("BACKOFFICE_DRAFTS_IDLE_TTL", "5m")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://api.internal:9000", cfg.Backend.BaseURL)
		assert.True(t, cfg.Delivery.ClampCreditToSubtotal)
		assert.Equal(t, int64(100), cfg.Collection.MinTotalCents)
		assert.Equal(t, 5*time.Minute, cfg.Drafts.IdleTTL)
	})

	t.Run("config file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		content := `
[app]
port = "9090"

[redis]
enabled = true
host = "cache"
port = 6380

[collection]
time_zone = "UTC"
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.App.Port)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "cache:6380", cfg.Redis.Addr())
		assert.Equal(t, "UTC", cfg.Collection.Location().String())
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"relative base url", func(c *Config) { c.Backend.BaseURL = "/api" }, "backend.base_url"},
		{"bad time zone", func(c *Config) { c.Collection.TimeZone = "Mars/Olympus" }, "collection.time_zone"},
		{"zero minimum", func(c *Config) { c.Collection.MinTotalCents = -5 }, "collection.min_total_cents"},
		{"sampling out of range", func(c *Config) { c.Telemetry.SamplingRatio = 1.5 }, "sampling_ratio"},
		{"profiling without address", func(c *Config) { c.Telemetry.ProfilingEnabled = true }, "profiling_server_address"},
		{"profiling with address", func(c *Config) {
			c.Telemetry.ProfilingEnabled = true
			c.Telemetry.ProfilingServerAddress = "http://pyroscope:4040"
		}, ""},
		{"production over http", func(c *Config) { c.App.Env = "production" }, "https"},
		{"production wildcard cors", func(c *Config) {
			c.App.Env = "production"
			c.Backend.BaseURL = "https://api.example.com"
			c.HTTP.CORSAllowOrigins = []string{"*"}
		}, "cors_allow_origins"},
		{"production short secret", func(c *Config) {
			c.App.Env = "production"
			c.Backend.BaseURL = "https://api.example.com"
			c.Session.JWTSecret = "short"
		}, "jwt_secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
