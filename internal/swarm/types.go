package swarm

import (
	"time"

	"github.com/nlemesios/smenos/internal/agent"
	"github.com/nlemesios/smenos/internal/task"
)

// Result is the aggregate of one swarm call.
type Result struct {
	ID           string          `json:"id"`
	StartedAt    time.Time       `json:"started_at"`
	Duration     time.Duration   `json:"duration"`
	Successful   []agent.Outcome `json:"successful"`
	Failed       []agent.Outcome `json:"failed"`
	Combined     task.Payload    `json:"combined"`
	HasFailures  bool            `json:"has_failures"`
	AllSucceeded bool            `json:"all_succeeded"`
}

// Event is a structured record of swarm activity, emitted best-effort
// to the configured sinks.
type Event struct {
	Type      string         `json:"type"`
	SwarmID   string         `json:"swarm_id"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventSink receives swarm events. Sinks are best-effort by contract: a
// sink error is logged locally and never fails or alters the swarm's
// own result.
type EventSink interface {
	Emit(e Event) error
}

// Entry is one bounded-history record of a past swarm execution.
type Entry struct {
	ID         string        `json:"id"`
	AgentTypes []string      `json:"agent_types"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
}
