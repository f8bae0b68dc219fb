// Package mocks provides mock implementations for tests.
//
// MockCaller stands in for a model backend. It supports scripted response
// sequences, error injection, and records every prompt it receives so tests
// can assert on the feedback rendered between attempts.
package mocks

import (
	"context"
	"sync"
)

// MockCaller is a scriptable model caller. Responses are consumed in order;
// once the script is exhausted the last entry repeats. The zero value returns
// an empty string for every call.
type MockCaller struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
	callCount int
	fn        func(ctx context.Context, prompt string) (string, error)
}

// NewMockCaller creates an empty MockCaller.
func NewMockCaller() *MockCaller {
	return &MockCaller{}
}

// WithResponses scripts the sequence of outputs to return.
func (m *MockCaller) WithResponses(responses ...string) *MockCaller {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	return m
}

// WithError makes every call return err.
func (m *MockCaller) WithError(err error) *MockCaller {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = []error{err}
	return m
}

// WithErrorSequence scripts per-call errors alongside responses. A nil entry
// means the call succeeds with the scripted response at the same index.
func (m *MockCaller) WithErrorSequence(errs ...error) *MockCaller {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = errs
	return m
}

// WithCallFunc overrides the scripted behaviour with a custom function.
func (m *MockCaller) WithCallFunc(fn func(ctx context.Context, prompt string) (string, error)) *MockCaller {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return m
}

// Call implements the model caller contract.
func (m *MockCaller) Call(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	fn := m.fn
	if fn == nil {
		m.prompts = append(m.prompts, prompt)
		idx := m.callCount
		m.callCount++

		var err error
		if len(m.errs) > 0 {
			ei := idx
			if ei >= len(m.errs) {
				ei = len(m.errs) - 1
			}
			err = m.errs[ei]
		}
		var resp string
		if len(m.responses) > 0 {
			ri := idx
			if ri >= len(m.responses) {
				ri = len(m.responses) - 1
			}
			resp = m.responses[ri]
		}
		m.mu.Unlock()
		if err != nil {
			return "", err
		}
		return resp, nil
	}
	m.prompts = append(m.prompts, prompt)
	m.callCount++
	m.mu.Unlock()
	return fn(ctx, prompt)
}

// Prompts returns a copy of every prompt received so far.
func (m *MockCaller) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns the number of calls made.
func (m *MockCaller) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears recorded prompts and the call counter, keeping the script.
func (m *MockCaller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = nil
	m.callCount = 0
}
