// Package config provides configuration management for the analytics core.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Provider    ProviderConfig `mapstructure:"provider"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Options     OptionsConfig  `mapstructure:"options"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	Credentials Credentials    `mapstructure:"-"` // Loaded separately
}

// ProviderConfig selects and configures the upstream data backend.
// Exactly one backend serves every call; there is no runtime failover.
type ProviderConfig struct {
	Backend        string `mapstructure:"backend"`         // "yahoo", "alpaca"
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // per-request bound
	YahooProxyURL  string `mapstructure:"yahoo_proxy_url"`
}

// CacheConfig holds quote/bar cache configuration.
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// OptionsConfig holds the fixed options-model assumptions.
type OptionsConfig struct {
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
	ImpliedVol   float64 `mapstructure:"implied_vol"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// Credentials holds API credentials.
type Credentials struct {
	Alpaca AlpacaCredentials `mapstructure:"alpaca"`
}

// AlpacaCredentials holds Alpaca Market Data API credentials.
type AlpacaCredentials struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stock-analyst"
	}
	return filepath.Join(home, ".config", "stock-analyst")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Backend:        "yahoo",
			TimeoutSeconds: 30,
		},
		Cache: CacheConfig{
			TTLSeconds: 60,
		},
		Options: OptionsConfig{
			RiskFreeRate: 0.05,
			ImpliedVol:   0.25,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    true,
		},
	}
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Credentials.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Credentials.Alpaca.APISecret = v
	}
	if v := os.Getenv("ANALYST_PROVIDER"); v != "" {
		cfg.Provider.Backend = v
	}
	if v := os.Getenv("ANALYST_CACHE_TTL"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLSeconds = ttl
		}
	}
	if v := os.Getenv("ANALYST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Provider.Backend {
	case "yahoo", "alpaca":
	default:
		return fmt.Errorf("unknown provider backend %q (expected yahoo or alpaca)", c.Provider.Backend)
	}
	if c.Provider.Backend == "alpaca" && c.Credentials.Alpaca.APIKey == "" {
		return fmt.Errorf("alpaca backend selected but no API key configured")
	}
	if c.Provider.TimeoutSeconds <= 0 {
		return fmt.Errorf("provider timeout must be positive, got %d", c.Provider.TimeoutSeconds)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache TTL must be non-negative, got %d", c.Cache.TTLSeconds)
	}
	if c.Options.ImpliedVol <= 0 {
		return fmt.Errorf("implied vol must be positive, got %f", c.Options.ImpliedVol)
	}
	return nil
}

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	template := `# stock-analyst configuration

[provider]
# Data backend: "yahoo" (no credentials) or "alpaca"
backend = "yahoo"
timeout_seconds = 30
# yahoo_proxy_url = "http://127.0.0.1:7890"

[cache]
ttl_seconds = 60

[options]
risk_free_rate = 0.05
implied_vol = 0.25

[logging]
level = "info"
console = true
file = true
`
	return os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(template), 0644)
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	template := `# stock-analyst credentials
# Environment variables ALPACA_API_KEY / ALPACA_API_SECRET take precedence.

[alpaca]
api_key = ""
api_secret = ""
`
	return os.WriteFile(filepath.Join(configDir, "credentials.toml"), []byte(template), 0600)
}
