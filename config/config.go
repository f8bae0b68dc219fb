// Package config provides unified configuration loading.
//
// Precedence: defaults, then YAML file, then SHAPERUNNER_* environment
// variables.
package config

import (
	"fmt"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	// Server holds the run endpoint server settings.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// LLM holds the model endpoint settings.
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Log holds the logging settings.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Metrics holds the metrics server settings.
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// ServerConfig tunes the HTTP server.
type ServerConfig struct {
	// HTTP listen port.
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`
	// Read timeout.
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	// Write timeout. Must cover a full attempt loop.
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// Graceful shutdown timeout.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// Rate limit in requests per second per client. Zero disables.
	RateLimitRPS float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	// Rate limit burst size.
	RateLimitBurst int `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// LLMConfig configures the model endpoint.
type LLMConfig struct {
	// BaseURL of the model endpoint. Ollama endpoints are auto-detected.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// Model name for Ollama-style endpoints.
	Model string `yaml:"model" env:"MODEL"`
	// Per-call HTTP timeout.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// RunTimeout bounds one whole invocation (all attempts). Zero disables.
	RunTimeout time.Duration `yaml:"run_timeout" env:"RUN_TIMEOUT"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json or console.
	Format string `yaml:"format" env:"FORMAT"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	// Enabled toggles the metrics server.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Port for the /metrics listener.
	Port int `yaml:"port" env:"PORT"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}
	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics.port: %d", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.HTTPPort {
			return fmt.Errorf("metrics.port must differ from server.http_port")
		}
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log.format: %q", c.Log.Format)
	}
	return nil
}
