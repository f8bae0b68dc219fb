package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/shaperunner/types"
)

const defaultTimeout = 60 * time.Second

// OllamaCaller posts {model, prompt, stream:false} to an Ollama
// /api/generate endpoint and reads back a {response, done} envelope.
type OllamaCaller struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewOllamaCaller creates a caller for an Ollama endpoint.
func NewOllamaCaller(cfg Config, logger *zap.Logger) *OllamaCaller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaCaller{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "ollama_caller")),
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Call implements Caller.
func (c *OllamaCaller) Call(ctx context.Context, prompt string) (string, error) {
	url := c.endpoint()
	body, err := json.Marshal(ollamaRequest{Model: c.cfg.Model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", types.NewError(types.ErrInternalError, "failed to marshal model request").WithCause(err)
	}

	start := time.Now()
	raw, err := postJSON(ctx, c.client, url, body)
	if err != nil {
		return "", err
	}
	c.logger.Debug("model call completed",
		zap.String("url", url),
		zap.Duration("latency", time.Since(start)),
		zap.Int("response_bytes", len(raw)),
	)

	var resp ollamaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", types.NewError(types.ErrTransport, "malformed model response envelope").
			WithCause(err).WithHTTPStatus(http.StatusBadGateway)
	}
	return resp.Response, nil
}

// endpoint resolves the /api/generate URL from the configured base.
func (c *OllamaCaller) endpoint() string {
	base := c.cfg.BaseURL
	if strings.HasSuffix(base, "/api/generate") {
		return base
	}
	return strings.TrimRight(base, "/") + "/api/generate"
}

// CompletionCaller posts {prompt} to a plain completion endpoint and reads
// back an {output} envelope. Used against the mock model server.
type CompletionCaller struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewCompletionCaller creates a caller for a plain completion endpoint.
func NewCompletionCaller(cfg Config, logger *zap.Logger) *CompletionCaller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionCaller{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "completion_caller")),
	}
}

type completionRequest struct {
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Output string `json:"output"`
}

// Call implements Caller.
func (c *CompletionCaller) Call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{Prompt: prompt})
	if err != nil {
		return "", types.NewError(types.ErrInternalError, "failed to marshal model request").WithCause(err)
	}

	raw, err := postJSON(ctx, c.client, c.cfg.BaseURL, body)
	if err != nil {
		return "", err
	}

	var resp completionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", types.NewError(types.ErrTransport, "malformed model response envelope").
			WithCause(err).WithHTTPStatus(http.StatusBadGateway)
	}
	return resp.Output, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// postJSON performs the POST and maps every failure mode to a transport
// error. Context cancellation surfaces as TIMEOUT so the caller can tell an
// abandoned attempt from an unreachable endpoint.
func postJSON(ctx context.Context, client *http.Client, url string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to create request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, types.NewError(types.ErrTimeout, fmt.Sprintf("model call aborted: %v", ctx.Err())).
				WithHTTPStatus(http.StatusGatewayTimeout).WithCause(err)
		}
		return nil, types.NewError(types.ErrTransport, fmt.Sprintf("model endpoint unreachable: %s", url)).
			WithHTTPStatus(http.StatusBadGateway).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, types.NewError(types.ErrTransport,
			fmt.Sprintf("model endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))).
			WithHTTPStatus(http.StatusBadGateway)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrTransport, "failed to read model response").
			WithHTTPStatus(http.StatusBadGateway).WithCause(err)
	}
	return raw, nil
}
