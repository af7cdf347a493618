// Package config loads service configuration from an optional YAML file
// and AGGREGATOR_-prefixed environment variables. API keys are read
// from the environment only and never belong in the file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RateLimit is the per-client request limit per minute at the HTTP
	// boundary. Zero disables it.
	RateLimit int `mapstructure:"rate_limit"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// AggregatorConfig configures the search orchestrator.
type AggregatorConfig struct {
	// CallTimeout bounds each provider call within an aggregate search.
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// ProviderConfig is the per-source block shared by every provider.
type ProviderConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	BurstSize int           `mapstructure:"burst_size"`

	// APIKey comes from the environment only
	// (e.g. AGGREGATOR_PROVIDERS_YOUTUBE_API_KEY).
	APIKey string `mapstructure:"api_key"`

	// Mailto is the polite-pool contact for sources that support it.
	Mailto string `mapstructure:"mailto"`

	// Mirrors overrides the mirror list for mirror-backed sources.
	Mirrors []string `mapstructure:"mirrors"`
}

// ProvidersConfig holds one block per source.
type ProvidersConfig struct {
	OpenAlex        ProviderConfig `mapstructure:"openalex"`
	SemanticScholar ProviderConfig `mapstructure:"semanticscholar"`
	Crossref        ProviderConfig `mapstructure:"crossref"`
	YouTube         ProviderConfig `mapstructure:"youtube"`
	GoogleBooks     ProviderConfig `mapstructure:"googlebooks"`
	Archive         ProviderConfig `mapstructure:"archive"`
	LibGen          ProviderConfig `mapstructure:"libgen"`
	DuckDuckGo      ProviderConfig `mapstructure:"duckduckgo"`
	MedBooks        ProviderConfig `mapstructure:"medbooks"`
}

// Load reads configuration from the given file path (optional, empty
// skips the file) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AGGREGATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the defaults cannot guarantee.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Aggregator.CallTimeout < 0 {
		return fmt.Errorf("aggregator call_timeout must not be negative")
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("metrics path must be set when metrics are enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.rate_limit", 120)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("aggregator.call_timeout", 12*time.Second)

	for _, source := range []string{
		"openalex", "semanticscholar", "crossref", "youtube",
		"googlebooks", "archive", "libgen", "duckduckgo", "medbooks",
	} {
		v.SetDefault("providers."+source+".enabled", true)
		// Keys must be known to viper for AutomaticEnv to bind them
		// during Unmarshal.
		v.SetDefault("providers."+source+".api_key", "")
		v.SetDefault("providers."+source+".mailto", "")
	}
}
