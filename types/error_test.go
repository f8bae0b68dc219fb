package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	e := NewError(ErrParseFailed, "bad output")
	assert.Equal(t, "[PARSE_FAILED] bad output", e.Error())

	cause := errors.New("unexpected end of input")
	e = e.WithCause(cause)
	assert.Equal(t, "[PARSE_FAILED] bad output: unexpected end of input", e.Error())
	assert.ErrorIs(t, e, cause)
}

func TestError_Builders(t *testing.T) {
	e := NewError(ErrValidationFailed, "x").
		WithHTTPStatus(422).
		WithRetryable(true).
		WithAttempts(3)

	assert.Equal(t, ErrValidationFailed, e.Code)
	assert.Equal(t, 422, e.HTTPStatus)
	assert.True(t, e.Retryable)
	assert.Equal(t, 3, e.Attempts)
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrTransport, GetErrorCode(NewError(ErrTransport, "x")))
	assert.Equal(t, ErrInternalError, GetErrorCode(errors.New("plain")))

	wrapped := fmt.Errorf("context: %w", NewError(ErrTimeout, "slow"))
	assert.Equal(t, ErrTimeout, GetErrorCode(wrapped))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root")
	e := NewError(ErrInternalError, "outer").WithCause(cause)

	var target *Error
	require.ErrorAs(t, fmt.Errorf("wrap: %w", e), &target)
	assert.Equal(t, ErrInternalError, target.Code)
	assert.Equal(t, cause, errors.Unwrap(target))
}
