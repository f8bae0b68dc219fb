package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().WithEnvPrefix("SHAPERUNNER_TEST_NONE").Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "http://localhost:11434/api/generate", cfg.LLM.BaseURL)
	assert.Equal(t, "llama3.2:3b", cfg.LLM.Model)
	assert.Equal(t, 4*time.Minute, cfg.LLM.RunTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: 9000
  rate_limit_rps: 25
llm:
  base_url: http://mock:8081
  timeout: 10s
log:
  level: debug
  format: console
`), 0o644))

	cfg, err := NewLoader().
		WithConfigPath(path).
		WithEnvPrefix("SHAPERUNNER_TEST_NONE").
		Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, float64(25), cfg.Server.RateLimitRPS)
	assert.Equal(t, "http://mock:8081", cfg.LLM.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// Untouched sections keep defaults.
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "llama3.2:3b", cfg.LLM.Model)
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	cfg, err := NewLoader().
		WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")).
		WithEnvPrefix("SHAPERUNNER_TEST_NONE").
		Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: 9000\n"), 0o644))

	t.Setenv("SHAPERUNNER_TEST_SERVER_HTTP_PORT", "9100")
	t.Setenv("SHAPERUNNER_TEST_LLM_MODEL", "qwen2.5:7b")
	t.Setenv("SHAPERUNNER_TEST_LLM_RUN_TIMEOUT", "90s")
	t.Setenv("SHAPERUNNER_TEST_METRICS_ENABLED", "false")

	cfg, err := NewLoader().
		WithConfigPath(path).
		WithEnvPrefix("SHAPERUNNER_TEST").
		Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.HTTPPort)
	assert.Equal(t, "qwen2.5:7b", cfg.LLM.Model)
	assert.Equal(t, 90*time.Second, cfg.LLM.RunTimeout)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("SHAPERUNNER_TEST_SERVER_HTTP_PORT", "not-a-number")
	_, err := NewLoader().WithEnvPrefix("SHAPERUNNER_TEST").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHAPERUNNER_TEST_SERVER_HTTP_PORT")
}

func TestLoad_CustomValidator(t *testing.T) {
	_, err := NewLoader().
		WithEnvPrefix("SHAPERUNNER_TEST_NONE").
		WithValidator(func(cfg *Config) error {
			return fmt.Errorf("rejected by policy")
		}).
		Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected by policy")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }, "invalid server.http_port"},
		{"bad metrics port", func(c *Config) { c.Metrics.Port = -1 }, "invalid metrics.port"},
		{"metrics port collision", func(c *Config) { c.Metrics.Port = c.Server.HTTPPort }, "must differ"},
		{"metrics disabled skips port checks", func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.Port = -1
		}, ""},
		{"empty base url", func(c *Config) { c.LLM.BaseURL = "" }, "llm.base_url is required"},
		{"negative timeout", func(c *Config) { c.LLM.Timeout = -time.Second }, "must not be negative"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "invalid log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "invalid log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
