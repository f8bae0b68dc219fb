package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/shaperunner/api"
	"github.com/BaSui01/shaperunner/codec"
	"github.com/BaSui01/shaperunner/shape"
	"github.com/BaSui01/shaperunner/types"
)

// maxRequestBytes bounds the request body read.
const maxRequestBytes = 4 << 20

// RunHandler serves the run procedure: route by task identifier, execute the
// shape, reply with the encoded result or a terminal error. The payload
// codec follows the request Content-Type (msgpack default, JSON accepted for
// debugging tooling).
type RunHandler struct {
	registry *shape.Registry
	logger   *zap.Logger
}

// NewRunHandler creates the run handler.
func NewRunHandler(registry *shape.Registry, logger *zap.Logger) *RunHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunHandler{
		registry: registry,
		logger:   logger.With(zap.String("component", "run_handler")),
	}
}

// ServeHTTP implements http.Handler.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c := codec.ForContentType(r.Header.Get("Content-Type"))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		h.reply(w, c, http.StatusBadRequest, api.RunResponse{Error: "failed to read request body"})
		return
	}

	var req api.RunRequest
	if err := c.Decode(body, &req); err != nil {
		h.reply(w, c, http.StatusBadRequest, api.RunResponse{Error: "malformed run request envelope"})
		return
	}

	// Unknown identifiers are rejected before any model call.
	handler, ok := h.registry.Handler(req.TaskID)
	if !ok {
		terr := types.NewError(types.ErrShapeNotFound, "unknown task_id: "+req.TaskID)
		h.reply(w, c, mapErrorCodeToHTTPStatus(terr.Code), api.RunResponse{Error: terr.Error()})
		return
	}

	output, err := handler(r.Context(), c, req.Input)
	if err != nil {
		logTerminal(h.logger, req.TaskID, err)
		h.reply(w, c, statusFor(err), api.RunResponse{Error: err.Error()})
		return
	}

	h.logger.Info("run succeeded", zap.String("task_id", req.TaskID), zap.Int("output_bytes", len(output)))
	h.reply(w, c, http.StatusOK, api.RunResponse{Output: output, OK: true})
}

func (h *RunHandler) reply(w http.ResponseWriter, c codec.Codec, status int, resp api.RunResponse) {
	data, err := c.Encode(resp)
	if err != nil {
		h.logger.Error("failed to encode response envelope", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", c.ContentType())
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}
