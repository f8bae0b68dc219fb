// mockllm is a stand-in model server for local development and load tests.
// It speaks the completion envelope ({"prompt": ...} -> {"output": ...}) and
// answers with canned JSON matching the shape it detects in the prompt. The
// -fail-attempts flag makes the first N calls return malformed JSON so the
// retry loop can be exercised end to end.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type llmRequest struct {
	Prompt string `json:"prompt"`
}

type llmResponse struct {
	Output string `json:"output"`
}

type mockServer struct {
	logger       *zap.Logger
	attempts     atomic.Int64
	failAttempts int64
	latency      time.Duration
}

var unitCountRe = regexp.MustCompile(`EXACTLY (\d+) coordinate`)

func (s *mockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req llmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("bad request body", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	attempt := s.attempts.Add(1)
	preview := req.Prompt
	if len(preview) > 200 {
		preview = preview[:200]
	}
	s.logger.Info("request received",
		zap.Int64("attempt", attempt),
		zap.String("prompt_preview", preview),
	)

	var output string
	switch {
	case attempt <= s.failAttempts:
		s.logger.Info("returning malformed JSON to trigger a retry")
		output = `{"invalid": "json", missing_fields: true}`
	case strings.Contains(req.Prompt, "coordinates"):
		output = formationOutput(req.Prompt)
	default:
		output = featureDesignOutput
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(llmResponse{Output: output}); err != nil {
		s.logger.Error("failed to write response", zap.Error(err))
	}
}

// formationOutput builds a coordinates array whose length matches the count
// demanded by the prompt, defaulting to 4 when no count is stated.
func formationOutput(prompt string) string {
	count := 4
	if m := unitCountRe.FindStringSubmatch(prompt); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			count = n
		}
	}
	var b strings.Builder
	b.WriteString(`{"coordinates": [`)
	for i := 0; i < count; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, `{"x": %d.0, "y": %d.5}`, i*10, i*5)
	}
	b.WriteString(`]}`)
	return b.String()
}

const featureDesignOutput = `{
  "name": "Task Management & Collaboration System",
  "rationale": "A system for managing tasks and projects with real-time collaboration. Uses PostgreSQL for persistence, WebSockets for instant updates, and a RESTful API for integration.",
  "components": [
    {
      "id": "task-service",
      "responsibility": "Core task CRUD operations, task assignment, and status management",
      "api": "POST /api/tasks - Create task\nGET /api/tasks - List tasks\nPUT /api/tasks/:id - Update task"
    },
    {
      "id": "project-service",
      "responsibility": "Project management, membership, and project-level settings",
      "api": "POST /api/projects - Create project\nGET /api/projects - List projects"
    },
    {
      "id": "websocket-service",
      "responsibility": "Real-time updates for task changes and collaboration events",
      "api": "WS /ws - WebSocket connection\nMessages: {type: 'task_updated', data: {...}}"
    },
    {
      "id": "postgres-db",
      "responsibility": "Data persistence for tasks, projects, users, and relationships",
      "api": "tasks(id, project_id, title, status, assignee_id)\nprojects(id, name, owner_id)"
    }
  ],
  "risks": [
    "WebSocket connections need a scaling strategy for multi-server deployments",
    "PostgreSQL connection pooling required for high concurrency",
    "Task assignment conflicts when multiple users assign simultaneously"
  ]
}`

func main() {
	var (
		addr         = flag.String("addr", ":8081", "listen address")
		failAttempts = flag.Int64("fail-attempts", 0, "return malformed JSON for the first N calls")
		latency      = flag.Duration("latency", 0, "artificial delay before each response")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("component", "mockllm"))

	srv := &mockServer{
		logger:       logger,
		failAttempts: *failAttempts,
		latency:      *latency,
	}

	logger.Info("mock model server listening",
		zap.String("addr", *addr),
		zap.Int64("fail_attempts", *failAttempts),
	)
	if err := http.ListenAndServe(*addr, srv); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
