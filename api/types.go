// Package api defines the wire envelope for the run procedure.
package api

// RunRequest is the remote procedure request: a task identifier and the
// codec-encoded input record.
type RunRequest struct {
	TaskID string `json:"task_id" msgpack:"task_id"`
	Input  []byte `json:"input" msgpack:"input"`
}

// RunResponse is the remote procedure reply. OK=false carries a
// human-readable Error; OK=true carries the encoded output record.
type RunResponse struct {
	Output []byte `json:"output,omitempty" msgpack:"output"`
	OK     bool   `json:"ok" msgpack:"ok"`
	Error  string `json:"error,omitempty" msgpack:"error"`
}

// RunPath is the HTTP route for the run procedure.
const RunPath = "/v1/shapes/run"

// HealthPath is the HTTP route for the liveness probe.
const HealthPath = "/healthz"
