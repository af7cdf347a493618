package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 120, cfg.Server.RateLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 12*time.Second, cfg.Aggregator.CallTimeout)

	assert.True(t, cfg.Providers.OpenAlex.Enabled)
	assert.True(t, cfg.Providers.MedBooks.Enabled)
	assert.Empty(t, cfg.Providers.YouTube.APIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AGGREGATOR_SERVER_PORT", "9090")
	t.Setenv("AGGREGATOR_LOGGING_LEVEL", "debug")
	t.Setenv("AGGREGATOR_PROVIDERS_YOUTUBE_API_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "env-key", cfg.Providers.YouTube.APIKey)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 3000
  rate_limit: 0
providers:
  libgen:
    enabled: false
    mirrors:
      - https://mirror.example.com
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Zero(t, cfg.Server.RateLimit)
	assert.False(t, cfg.Providers.LibGen.Enabled)
	assert.Equal(t, []string{"https://mirror.example.com"}, cfg.Providers.LibGen.Mirrors)
	assert.True(t, cfg.Providers.OpenAlex.Enabled, "unmentioned providers keep defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative call timeout", func(t *testing.T) {
		cfg := valid()
		cfg.Aggregator.CallTimeout = -time.Second
		assert.Error(t, cfg.Validate())
	})

	t.Run("metrics enabled without a path", func(t *testing.T) {
		cfg := valid()
		cfg.Metrics.Path = ""
		assert.Error(t, cfg.Validate())
	})
}
