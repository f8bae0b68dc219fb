// Package testutil provides shared helpers for tests across the project.
package testutil

import (
	"context"
	"testing"
	"time"
)

// TestContext returns a context with a 30 second timeout that is cancelled
// when the test finishes.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext returns an already cancelled context.
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
