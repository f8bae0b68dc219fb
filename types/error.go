package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the service.
type ErrorCode string

// Run error codes
const (
	ErrTransport        ErrorCode = "TRANSPORT_ERROR"
	ErrParseFailed      ErrorCode = "PARSE_FAILED"
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrTimeout          ErrorCode = "TIMEOUT"
)

// Dispatch error codes
const (
	ErrShapeNotFound  ErrorCode = "SHAPE_NOT_FOUND"
	ErrDecodeFailed   ErrorCode = "DECODE_FAILED"
	ErrEncodeFailed   ErrorCode = "ENCODE_FAILED"
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Attempts   int       `json:"attempts,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithAttempts records how many model attempts were spent before failing.
func (e *Error) WithAttempts(n int) *Error {
	e.Attempts = n
	return e
}

// GetErrorCode extracts the error code from an error, unwrapping as needed.
// Errors without a code report ErrInternalError.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternalError
}
