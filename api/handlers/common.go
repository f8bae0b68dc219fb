// Package handlers implements the HTTP handlers for the run service.
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/shaperunner/types"
)

// mapErrorCodeToHTTPStatus derives an HTTP status for a terminal error when
// the error itself carries none.
func mapErrorCodeToHTTPStatus(code types.ErrorCode) int {
	switch code {
	case types.ErrShapeNotFound:
		return http.StatusNotFound
	case types.ErrDecodeFailed, types.ErrInvalidRequest:
		return http.StatusBadRequest
	case types.ErrTransport:
		return http.StatusBadGateway
	case types.ErrTimeout:
		return http.StatusGatewayTimeout
	case types.ErrParseFailed, types.ErrValidationFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// statusFor resolves the response status of a terminal error.
func statusFor(err error) int {
	if e, ok := err.(*types.Error); ok {
		if e.HTTPStatus != 0 {
			return e.HTTPStatus
		}
		return mapErrorCodeToHTTPStatus(e.Code)
	}
	return http.StatusInternalServerError
}

// logTerminal records a terminal error with its taxonomy fields.
func logTerminal(logger *zap.Logger, taskID string, err error) {
	if e, ok := err.(*types.Error); ok {
		logger.Error("run failed",
			zap.String("task_id", taskID),
			zap.String("code", string(e.Code)),
			zap.Int("attempts", e.Attempts),
			zap.Error(err),
		)
		return
	}
	logger.Error("run failed", zap.String("task_id", taskID), zap.Error(err))
}
