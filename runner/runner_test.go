package runner

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/shaperunner/schema"
	"github.com/BaSui01/shaperunner/testutil"
	"github.com/BaSui01/shaperunner/testutil/mocks"
	"github.com/BaSui01/shaperunner/types"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

var recordDef = schema.ObjectOf(
	schema.Field("name", schema.Text()),
	schema.Field("count", schema.Number()),
)

func recordTask() Task[record] {
	return Task[record]{
		Shape:   "Record",
		Schema:  recordDef,
		Context: "Task: produce a record.\n",
	}
}

// spyObserver records every event for assertions.
type spyObserver struct {
	mu        sync.Mutex
	started   int
	failures  []string
	succeeded bool
	exhausted bool
}

func (s *spyObserver) AttemptStarted(shape string, attempt, max int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
}

func (s *spyObserver) AttemptFailed(shape string, attempt int, reason FailureReason, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, string(reason))
}

func (s *spyObserver) RunSucceeded(shape string, attempts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.succeeded = true
}

func (s *spyObserver) RunExhausted(shape string, attempts int, reason FailureReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exhausted = true
}

func TestRun_SucceedsFirstAttempt(t *testing.T) {
	caller := mocks.NewMockCaller().WithResponses(`{"name": "a", "count": 2}`)
	spy := &spyObserver{}
	r := New(caller, WithObserver(spy))

	out, err := Run(testutil.TestContext(t), r, recordTask())
	require.NoError(t, err)
	assert.Equal(t, "a", out.Name)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, 1, caller.CallCount())
	assert.True(t, spy.succeeded)
	assert.Empty(t, spy.failures)
}

func TestRun_SanitizesBeforeParsing(t *testing.T) {
	caller := mocks.NewMockCaller().WithResponses(
		"```json\n{\"name\": \"a\", \"count\": 2,}\n```",
	)
	r := New(caller)

	out, err := Run(testutil.TestContext(t), r, recordTask())
	require.NoError(t, err)
	assert.Equal(t, "a", out.Name)
	assert.Equal(t, 1, caller.CallCount())
}

func TestRun_ParseFailureFeedsBackAndRecovers(t *testing.T) {
	caller := mocks.NewMockCaller().WithResponses(
		`this is not json at all`,
		`{"name": "a", "count": 2}`,
	)
	spy := &spyObserver{}
	r := New(caller, WithObserver(spy))

	out, err := Run(testutil.TestContext(t), r, recordTask())
	require.NoError(t, err)
	assert.Equal(t, "a", out.Name)
	require.Equal(t, 2, caller.CallCount())

	prompts := caller.Prompts()
	assert.NotContains(t, prompts[0], "previous response was not valid JSON")
	assert.Contains(t, prompts[1], "Your previous response was not valid JSON. The error was:")
	assert.Equal(t, []string{"parse"}, spy.failures)
	assert.True(t, spy.succeeded)
}

func TestRun_ValidationFailureFeedsBackAndRecovers(t *testing.T) {
	caller := mocks.NewMockCaller().WithResponses(
		`{"name": "a"}`,
		`{"name": "a", "count": 2}`,
	)
	r := New(caller)

	out, err := Run(testutil.TestContext(t), r, recordTask())
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)

	prompts := caller.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "Your previous JSON had these validation problems:")
	assert.Contains(t, prompts[1], "- Missing required field at path $.count")
}

func TestRun_FeedbackReplacedEachAttempt(t *testing.T) {
	// Attempt 1 fails to parse, attempt 2 fails validation; the prompt for
	// attempt 3 must carry only the validation feedback.
	caller := mocks.NewMockCaller().WithResponses(
		`garbage`,
		`{"count": 2}`,
		`{"name": "a", "count": 2}`,
	)
	r := New(caller)

	_, err := Run(testutil.TestContext(t), r, recordTask())
	require.NoError(t, err)

	prompts := caller.Prompts()
	require.Len(t, prompts, 3)
	assert.Contains(t, prompts[2], "validation problems")
	assert.NotContains(t, prompts[2], "previous response was not valid JSON")
}

func TestRun_ExhaustsAfterThreeParseFailures(t *testing.T) {
	caller := mocks.NewMockCaller().WithResponses(`never json`)
	spy := &spyObserver{}
	r := New(caller, WithObserver(spy))

	out, err := Run(testutil.TestContext(t), r, recordTask())
	assert.Nil(t, out)
	require.Error(t, err)
	assert.Equal(t, types.ErrParseFailed, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, caller.CallCount())
	assert.True(t, spy.exhausted)
	assert.False(t, spy.succeeded)

	var terr *types.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 3, terr.Attempts)
}

func TestRun_ExhaustsAfterThreeValidationFailures(t *testing.T) {
	caller := mocks.NewMockCaller().WithResponses(`{"name": 42, "count": "x"}`)
	r := New(caller)

	out, err := Run(testutil.TestContext(t), r, recordTask())
	assert.Nil(t, out)
	require.Error(t, err)
	assert.Equal(t, types.ErrValidationFailed, types.GetErrorCode(err))
	assert.Equal(t, 3, caller.CallCount())
}

func TestRun_TransportErrorIsFatalNotRetried(t *testing.T) {
	terr := types.NewError(types.ErrTransport, "endpoint unreachable")
	caller := mocks.NewMockCaller().WithError(terr)
	spy := &spyObserver{}
	r := New(caller, WithObserver(spy))

	out, err := Run(testutil.TestContext(t), r, recordTask())
	assert.Nil(t, out)
	require.Error(t, err)
	assert.Equal(t, types.ErrTransport, types.GetErrorCode(err))
	assert.Equal(t, 1, caller.CallCount())
	assert.Empty(t, spy.failures)
	assert.False(t, spy.exhausted)
}

func TestRun_TransportErrorMidLoopIsFatal(t *testing.T) {
	// First attempt fails validation, then the endpoint goes away; the
	// transport error surfaces untouched with no third attempt.
	terr := types.NewError(types.ErrTransport, "connection reset")
	caller := mocks.NewMockCaller().
		WithResponses(`{"name": "a"}`, "").
		WithErrorSequence(nil, terr)
	r := New(caller)

	_, err := Run(testutil.TestContext(t), r, recordTask())
	require.Error(t, err)
	assert.Equal(t, types.ErrTransport, types.GetErrorCode(err))
	assert.Equal(t, 2, caller.CallCount())
}

func TestRun_CheckFailureTreatedAsValidation(t *testing.T) {
	task := recordTask()
	task.Check = func(out *record) *schema.ValidationError {
		if out.Count == 2 {
			return nil
		}
		return &schema.ValidationError{
			Kind:     schema.TypeMismatch,
			Path:     "$.count",
			Expected: "exactly 2",
			Found:    "something else",
		}
	}

	caller := mocks.NewMockCaller().WithResponses(
		`{"name": "a", "count": 5}`,
		`{"name": "a", "count": 2}`,
	)
	r := New(caller)

	out, err := Run(testutil.TestContext(t), r, task)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)

	prompts := caller.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "Type mismatch at $.count: expected exactly 2, found something else")
}

func TestRun_CheckFailureExhausts(t *testing.T) {
	task := recordTask()
	task.Check = func(out *record) *schema.ValidationError {
		return &schema.ValidationError{
			Kind:     schema.TypeMismatch,
			Path:     "$.count",
			Expected: "never satisfied",
			Found:    "anything",
		}
	}

	caller := mocks.NewMockCaller().WithResponses(`{"name": "a", "count": 1}`)
	r := New(caller)

	_, err := Run(testutil.TestContext(t), r, task)
	require.Error(t, err)
	assert.Equal(t, types.ErrValidationFailed, types.GetErrorCode(err))
	assert.Equal(t, 3, caller.CallCount())
}

func TestRun_MaxAttemptsOption(t *testing.T) {
	caller := mocks.NewMockCaller().WithResponses(`garbage`)
	r := New(caller, WithMaxAttempts(1))

	_, err := Run(testutil.TestContext(t), r, recordTask())
	require.Error(t, err)
	assert.Equal(t, 1, caller.CallCount())
	assert.Contains(t, err.Error(), "after 1 attempts")
}

func TestRun_SuccessOnLastAttempt(t *testing.T) {
	caller := mocks.NewMockCaller().WithResponses(
		`garbage`,
		`{"name": "a"}`,
		`{"name": "a", "count": 2}`,
	)
	r := New(caller)

	out, err := Run(testutil.TestContext(t), r, recordTask())
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, 3, caller.CallCount())
}
