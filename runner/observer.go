package runner

import "go.uber.org/zap"

// FailureReason classifies why one attempt was rejected.
type FailureReason string

const (
	// ReasonParse means the sanitized response was not valid JSON.
	ReasonParse FailureReason = "parse"
	// ReasonValidation means the JSON parsed but failed the schema or a
	// domain cardinality check.
	ReasonValidation FailureReason = "validation"
)

// Observer receives structured attempt events from the run loop. Diagnostic
// printing stays out of the control flow so tests can assert on attempt
// counts without capturing console text.
type Observer interface {
	AttemptStarted(shape string, attempt, max int)
	AttemptFailed(shape string, attempt int, reason FailureReason, detail string)
	RunSucceeded(shape string, attempts int)
	RunExhausted(shape string, attempts int, reason FailureReason)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) AttemptStarted(string, int, int)                      {}
func (NopObserver) AttemptFailed(string, int, FailureReason, string)     {}
func (NopObserver) RunSucceeded(string, int)                             {}
func (NopObserver) RunExhausted(string, int, FailureReason)              {}

// LogObserver emits attempt events to a zap logger.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates an observer logging at debug/info level.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger.With(zap.String("component", "runner"))}
}

func (o *LogObserver) AttemptStarted(shape string, attempt, max int) {
	o.logger.Debug("attempt started",
		zap.String("shape", shape),
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", max),
	)
}

func (o *LogObserver) AttemptFailed(shape string, attempt int, reason FailureReason, detail string) {
	o.logger.Info("attempt failed",
		zap.String("shape", shape),
		zap.Int("attempt", attempt),
		zap.String("reason", string(reason)),
		zap.String("detail", detail),
	)
}

func (o *LogObserver) RunSucceeded(shape string, attempts int) {
	o.logger.Info("run succeeded",
		zap.String("shape", shape),
		zap.Int("attempts", attempts),
	)
}

func (o *LogObserver) RunExhausted(shape string, attempts int, reason FailureReason) {
	o.logger.Warn("run exhausted",
		zap.String("shape", shape),
		zap.Int("attempts", attempts),
		zap.String("reason", string(reason)),
	)
}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

func (m MultiObserver) AttemptStarted(shape string, attempt, max int) {
	for _, o := range m {
		o.AttemptStarted(shape, attempt, max)
	}
}

func (m MultiObserver) AttemptFailed(shape string, attempt int, reason FailureReason, detail string) {
	for _, o := range m {
		o.AttemptFailed(shape, attempt, reason, detail)
	}
}

func (m MultiObserver) RunSucceeded(shape string, attempts int) {
	for _, o := range m {
		o.RunSucceeded(shape, attempts)
	}
}

func (m MultiObserver) RunExhausted(shape string, attempts int, reason FailureReason) {
	for _, o := range m {
		o.RunExhausted(shape, attempts, reason)
	}
}
