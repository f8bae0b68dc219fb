// Package runner drives the bounded attempt loop that turns free-text model
// output into schema-conformant typed records.
//
// One invocation is strictly sequential: attempt n+1 renders its prompt from
// the outcome of attempt n, so attempts are never issued in parallel. The
// loop either returns a fully valid output or a terminal error; it never
// returns a value that merely parsed but did not validate.
package runner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BaSui01/shaperunner/llm"
	"github.com/BaSui01/shaperunner/prompt"
	"github.com/BaSui01/shaperunner/sanitize"
	"github.com/BaSui01/shaperunner/schema"
	"github.com/BaSui01/shaperunner/types"
)

// DefaultMaxAttempts is the hard attempt ceiling per invocation.
const DefaultMaxAttempts = 3

// Runner executes attempt loops against a model caller. It holds no
// per-request state and is safe for concurrent use; each Run call owns its
// own transient feedback record.
type Runner struct {
	caller      llm.Caller
	observer    Observer
	maxAttempts int
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver sets the attempt event sink.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithMaxAttempts overrides the attempt ceiling. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.maxAttempts = n
		}
	}
}

// New creates a Runner bound to a model caller.
func New(caller llm.Caller, opts ...Option) *Runner {
	r := &Runner{
		caller:      caller,
		observer:    NopObserver{},
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Task describes one shape's run: the schema the output must satisfy, the
// task context rendered into every prompt, and an optional domain check that
// runs after decoding (for contracts the generic schema cannot express, such
// as exact element counts).
type Task[T any] struct {
	Shape   string
	Schema  schema.TypeDef
	Context string

	// Check may return a synthesized validation error; it is treated
	// exactly like a schema violation (fed back, retried, or exhausted).
	Check func(out *T) *schema.ValidationError
}

// feedback is the transient attempt record scoped to one invocation.
// parseErr and errs are mutually exclusive.
type feedback struct {
	parseErr string
	errs     []schema.ValidationError
}

// Run executes the attempt loop for a task and returns the decoded output.
// Transport failures from the caller are fatal immediately; parse and
// validation failures feed corrective text into the next prompt until the
// attempt ceiling is reached.
func Run[T any](ctx context.Context, r *Runner, task Task[T]) (*T, error) {
	var fb feedback

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		r.observer.AttemptStarted(task.Shape, attempt, r.maxAttempts)

		p := prompt.Render(prompt.Request{
			Schema:     task.Schema,
			Context:    task.Context,
			ParseError: fb.parseErr,
			Errors:     fb.errs,
		})

		raw, err := r.caller.Call(ctx, p)
		if err != nil {
			// Retries are reserved for content-shape defects, not
			// connectivity.
			return nil, err
		}

		candidate := sanitize.Sanitize(raw)

		var value any
		if err := json.Unmarshal([]byte(candidate), &value); err != nil {
			detail := err.Error()
			r.observer.AttemptFailed(task.Shape, attempt, ReasonParse, detail)
			if attempt == r.maxAttempts {
				r.observer.RunExhausted(task.Shape, attempt, ReasonParse)
				return nil, types.NewError(types.ErrParseFailed,
					fmt.Sprintf("model did not return valid JSON after %d attempts: %s", attempt, detail)).
					WithAttempts(attempt)
			}
			fb = feedback{parseErr: detail}
			continue
		}

		if err := schema.Validate(task.Schema, value); err != nil {
			ve := err.(*schema.ValidationErrors)
			r.observer.AttemptFailed(task.Shape, attempt, ReasonValidation, ve.Error())
			if attempt == r.maxAttempts {
				r.observer.RunExhausted(task.Shape, attempt, ReasonValidation)
				return nil, types.NewError(types.ErrValidationFailed,
					fmt.Sprintf("model output failed validation after %d attempts: %s", attempt, ve.Error())).
					WithAttempts(attempt).WithCause(ve)
			}
			fb = feedback{errs: ve.Errors}
			continue
		}

		var out T
		if err := json.Unmarshal([]byte(candidate), &out); err != nil {
			// Structurally valid per schema but not decodable into the
			// record; treat like a parse defect and feed it back.
			detail := err.Error()
			r.observer.AttemptFailed(task.Shape, attempt, ReasonParse, detail)
			if attempt == r.maxAttempts {
				r.observer.RunExhausted(task.Shape, attempt, ReasonParse)
				return nil, types.NewError(types.ErrParseFailed,
					fmt.Sprintf("model output could not be decoded after %d attempts: %s", attempt, detail)).
					WithAttempts(attempt)
			}
			fb = feedback{parseErr: detail}
			continue
		}

		if task.Check != nil {
			if verr := task.Check(&out); verr != nil {
				r.observer.AttemptFailed(task.Shape, attempt, ReasonValidation, verr.Error())
				if attempt == r.maxAttempts {
					r.observer.RunExhausted(task.Shape, attempt, ReasonValidation)
					return nil, types.NewError(types.ErrValidationFailed,
						fmt.Sprintf("model output failed validation after %d attempts: %s", attempt, verr.Error())).
						WithAttempts(attempt).WithCause(*verr)
				}
				fb = feedback{errs: []schema.ValidationError{*verr}}
				continue
			}
		}

		r.observer.RunSucceeded(task.Shape, attempt)
		return &out, nil
	}

	// Unreachable: the last attempt always returns.
	return nil, types.NewError(types.ErrInternalError, "attempt loop exited without a result")
}
