package agent

import (
	"context"
	"time"

	"github.com/nlemesios/smenos/internal/task"
)

// Built-in agent types. The registry accepts any type tag; these are the
// ones the default extractor tables and the shape router know about.
const (
	TypeEmail     = "email"
	TypePrice     = "price"
	TypeStock     = "stock"
	TypeProduct   = "product"
	TypeValidator = "validator"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 2
)

// Handler is the agent contract: a unit of business logic invoked with
// an agent-private task view. Handlers must be safe to call concurrently
// with other agent types and should honor ctx cancellation for long
// operations. All resilience behavior (timeout, retry, backoff, metrics)
// is supplied by the Runner, not the handler.
type Handler func(ctx context.Context, input task.Payload) (task.Payload, error)

// Status is the descriptor's advisory execution state. It is tracked for
// observability only and never drives control flow.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
)

// Outcome statuses. A timed-out agent is reported as failed; the
// failed/timeout distinction survives only in the descriptor status.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Outcome is the result of one wrapped agent execution. Exactly one
// Outcome is produced per dispatched agent, success or not.
type Outcome struct {
	AgentType     string        `json:"agent_type"`
	Status        string        `json:"status"`
	Result        task.Payload  `json:"result,omitempty"`
	Error         string        `json:"error,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
	Attempts      int           `json:"attempts"`
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool {
	return o.Status == OutcomeSuccess
}

// Metrics is a point-in-time copy of one descriptor's counters.
type Metrics struct {
	Type           string        `json:"type"`
	Status         Status        `json:"status"`
	Invocations    int64         `json:"invocations"`
	Successes      int64         `json:"successes"`
	AverageLatency time.Duration `json:"average_latency"`
}
