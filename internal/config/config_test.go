package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "yahoo", cfg.Provider.Backend)
	assert.Equal(t, 60, cfg.Cache.TTLSeconds)
	assert.Equal(t, 0.05, cfg.Options.RiskFreeRate)
	assert.Equal(t, 0.25, cfg.Options.ImpliedVol)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Provider.Backend = "bloomberg" }},
		{"alpaca without key", func(c *Config) { c.Provider.Backend = "alpaca" }},
		{"zero timeout", func(c *Config) { c.Provider.TimeoutSeconds = 0 }},
		{"negative cache ttl", func(c *Config) { c.Cache.TTLSeconds = -1 }},
		{"zero implied vol", func(c *Config) { c.Options.ImpliedVol = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAlpacaWithCredentials(t *testing.T) {
	cfg := Default()
	cfg.Provider.Backend = "alpaca"
	cfg.Credentials.Alpaca.APIKey = "key"
	cfg.Credentials.Alpaca.APISecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `[provider]
backend = "yahoo"
timeout_seconds = 10

[cache]
ttl_seconds = 120

[options]
risk_free_rate = 0.04
implied_vol = 0.30
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Provider.TimeoutSeconds)
	assert.Equal(t, 120, cfg.Cache.TTLSeconds)
	assert.Equal(t, 0.30, cfg.Options.ImpliedVol)
}

func TestLoadCreatesTemplates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "yahoo", cfg.Provider.Backend)

	assert.FileExists(t, filepath.Join(dir, "config.toml"))
	assert.FileExists(t, filepath.Join(dir, "credentials.toml"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ANALYST_CACHE_TTL", "5")
	t.Setenv("ANALYST_LOG_LEVEL", "debug")
	t.Setenv("ALPACA_API_KEY", "env-key")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, 5, cfg.Cache.TTLSeconds)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "env-key", cfg.Credentials.Alpaca.APIKey)
}
