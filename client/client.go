// Package client provides a typed wrapper around the run procedure.
package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/shaperunner/api"
	"github.com/BaSui01/shaperunner/codec"
	"github.com/BaSui01/shaperunner/types"
)

// Client calls a ShapeRunner server. Inputs and outputs travel
// msgpack-encoded inside the run envelope.
type Client struct {
	baseURL string
	http    *http.Client
	codec   codec.Codec
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each whole call, attempts included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCodec overrides the payload codec (JSON is useful when debugging).
func WithCodec(cd codec.Codec) Option {
	return func(c *Client) { c.codec = cd }
}

// New creates a client for a server base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
		codec:   codec.Msgpack{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes a shape: it encodes input, posts the envelope, checks ok, and
// decodes the output record into out.
func (c *Client) Run(ctx context.Context, taskID string, input, out any) error {
	inputBytes, err := c.codec.Encode(input)
	if err != nil {
		return types.NewError(types.ErrEncodeFailed, "failed to encode input").WithCause(err)
	}

	reqBytes, err := c.codec.Encode(api.RunRequest{TaskID: taskID, Input: inputBytes})
	if err != nil {
		return types.NewError(types.ErrEncodeFailed, "failed to encode run request").WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+api.RunPath, bytes.NewReader(reqBytes))
	if err != nil {
		return types.NewError(types.ErrInvalidRequest, "failed to create request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", c.codec.ContentType())

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return types.NewError(types.ErrTransport, "run call failed").WithCause(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return types.NewError(types.ErrTransport, "failed to read run response").WithCause(err)
	}

	var resp api.RunResponse
	if err := c.codec.Decode(body, &resp); err != nil {
		return types.NewError(types.ErrDecodeFailed, "malformed run response envelope").WithCause(err)
	}

	if !resp.OK {
		return remoteError(resp.Error, httpResp.StatusCode)
	}

	if err := c.codec.Decode(resp.Output, out); err != nil {
		return types.NewError(types.ErrDecodeFailed, "failed to decode output").WithCause(err)
	}
	return nil
}

// remoteError rebuilds a taxonomy error from a server-reported failure. The
// server formats terminal errors as "[CODE] message"; that code is recovered
// so callers can tell a bad request from an exhausted run. Without the
// prefix the HTTP status decides the code.
func remoteError(msg string, status int) error {
	code := codeForStatus(status)
	if strings.HasPrefix(msg, "[") {
		if end := strings.Index(msg, "] "); end > 1 {
			code = types.ErrorCode(msg[1:end])
			msg = msg[end+2:]
		}
	}
	return types.NewError(code, msg).WithHTTPStatus(status)
}

func codeForStatus(status int) types.ErrorCode {
	switch status {
	case http.StatusNotFound:
		return types.ErrShapeNotFound
	case http.StatusBadRequest:
		return types.ErrInvalidRequest
	case http.StatusBadGateway:
		return types.ErrTransport
	case http.StatusGatewayTimeout:
		return types.ErrTimeout
	case http.StatusUnprocessableEntity:
		return types.ErrValidationFailed
	default:
		return types.ErrInternalError
	}
}
