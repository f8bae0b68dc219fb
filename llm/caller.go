// Package llm provides the model caller abstraction and its HTTP
// implementations.
//
// The orchestrator only requires "prompt in, text out, or a transport
// error"; which endpoint flavor answers is a construction-time detail.
package llm

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Caller performs one text-generation request against a model endpoint.
type Caller interface {
	// Call sends the prompt and returns the model's raw text output.
	// A transport-level failure (endpoint unreachable, non-success status)
	// is returned as a *types.Error with code TRANSPORT_ERROR.
	Call(ctx context.Context, prompt string) (string, error)
}

// Config holds the model endpoint configuration. It is read-only process
// state fixed at startup and safe for unsynchronized concurrent reads.
type Config struct {
	// BaseURL is the model endpoint base URL.
	BaseURL string

	// Model is the model name sent to Ollama-style endpoints.
	Model string

	// Timeout is the per-call HTTP timeout. Defaults to 60s if zero.
	Timeout time.Duration
}

// New creates a Caller for the configured endpoint. Ollama endpoints are
// detected from the URL (port 11434 or an /api/generate path); anything else
// is treated as a plain completion endpoint.
func New(cfg Config, logger *zap.Logger) Caller {
	if isOllamaURL(cfg.BaseURL) {
		return NewOllamaCaller(cfg, logger)
	}
	return NewCompletionCaller(cfg, logger)
}

func isOllamaURL(baseURL string) bool {
	return strings.Contains(baseURL, ":11434") || strings.Contains(baseURL, "/api/generate")
}
