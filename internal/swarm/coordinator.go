// Package swarm dispatches groups of agents concurrently against one
// master task and aggregates their outcomes with partial-failure
// tolerance.
package swarm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nlemesios/smenos/internal/agent"
	"github.com/nlemesios/smenos/internal/registry"
	"github.com/nlemesios/smenos/internal/router"
	"github.com/nlemesios/smenos/internal/task"
)

const (
	defaultHistoryCapacity = 100
	recentHistoryLimit     = 10
)

// Contract violations. These are the only errors the public operations
// return; runtime agent failures are always communicated through
// outcome statuses instead.
var (
	ErrNoAgents = errors.New("swarm: no agents registered")
	ErrNoTypes  = errors.New("swarm: no agent types requested")
)

// Coordinator orchestrates swarm and single-task execution over a
// registry of agent runners. Construct one instance at process start
// and pass it to callers; there is no package-level coordinator.
type Coordinator struct {
	registry  *registry.Registry
	extractor *task.Extractor
	sinks     []EventSink
	history   *history

	mu        sync.Mutex
	total     int64
	totalTime time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithEventSink adds an event sink. Multiple sinks may be added; each
// is best-effort.
func WithEventSink(s EventSink) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
}

// WithHistoryCapacity overrides the bounded history size (default 100).
func WithHistoryCapacity(n int) Option {
	return func(c *Coordinator) {
		c.history = newHistory(n)
	}
}

// WithExtractor replaces the default task extractor.
func WithExtractor(e *task.Extractor) Option {
	return func(c *Coordinator) {
		if e != nil {
			c.extractor = e
		}
	}
}

func NewCoordinator(reg *registry.Registry, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:  reg,
		extractor: task.DefaultExtractor(),
		history:   newHistory(defaultHistoryCapacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExecuteSwarm extracts each requested agent type's task view from the
// master task, dispatches all of them concurrently, waits for every
// outcome and aggregates. One agent's failure never blocks or drops
// another's outcome: the returned result always carries exactly one
// outcome per requested type. Only programming misuse (no registered
// agents, empty type list) returns an error.
func (c *Coordinator) ExecuteSwarm(ctx context.Context, master task.Payload, agentTypes []string) (*Result, error) {
	if c.registry.Len() == 0 {
		return nil, ErrNoAgents
	}
	if len(agentTypes) == 0 {
		return nil, ErrNoTypes
	}

	id := uuid.New().String()
	start := time.Now()
	slog.Info("starting swarm", "id", id, "agents", agentTypes)

	c.emit(Event{
		Type:      "swarm_started",
		SwarmID:   id,
		Timestamp: start.UTC(),
		Data: map[string]any{
			"agent_types": agentTypes,
			"count":       len(agentTypes),
		},
	})

	// One slot per requested type; each goroutine writes only its own
	// slot, so no further synchronization is needed beyond the wait.
	outcomes := make([]agent.Outcome, len(agentTypes))

	var wg sync.WaitGroup
	for i, agentType := range agentTypes {
		runner, ok := c.registry.Runner(agentType)
		if !ok {
			outcomes[i] = agent.Outcome{
				AgentType: agentType,
				Status:    agent.OutcomeFailed,
				Error:     fmt.Sprintf("Agent %s not found", agentType),
			}
			continue
		}

		view := c.extractor.Extract(master, agentType)
		wg.Add(1)
		go func(i int, runner *agent.Runner, view task.Payload) {
			defer wg.Done()
			outcomes[i] = runner.Run(ctx, view)
		}(i, runner, view)
	}
	wg.Wait()

	agg := aggregate(agentTypes, outcomes)
	duration := time.Since(start)

	result := &Result{
		ID:           id,
		StartedAt:    start,
		Duration:     duration,
		Successful:   agg.successful,
		Failed:       agg.failed,
		Combined:     agg.combined,
		HasFailures:  len(agg.failed) > 0,
		AllSucceeded: len(agg.failed) == 0,
	}

	c.record(result, agentTypes)

	c.emit(Event{
		Type:      "swarm_completed",
		SwarmID:   id,
		Timestamp: time.Now().UTC(),
		Data: map[string]any{
			"duration_ms": duration.Milliseconds(),
			"succeeded":   len(agg.successful),
			"failed":      len(agg.failed),
		},
	})

	slog.Info("swarm finished", "id", id, "duration", duration,
		"succeeded", len(agg.successful), "failed", len(agg.failed))

	return result, nil
}

// ExecuteTask routes a single ad-hoc task by its shape and runs it
// through the same runtime wrapper as swarm dispatch. A task routed to
// an unregistered type yields a failed outcome, not an error.
func (c *Coordinator) ExecuteTask(ctx context.Context, t task.Payload) (agent.Outcome, error) {
	if c.registry.Len() == 0 {
		return agent.Outcome{}, ErrNoAgents
	}

	agentType := router.Route(t)
	runner, ok := c.registry.Runner(agentType)
	if !ok {
		return agent.Outcome{
			AgentType: agentType,
			Status:    agent.OutcomeFailed,
			Error:     fmt.Sprintf("Agent %s not found", agentType),
		}, nil
	}

	slog.Debug("routing task", "agent", agentType)
	return runner.Run(ctx, c.extractor.Extract(t, agentType)), nil
}

// Metrics is a point-in-time view of the coordinator's activity.
type Metrics struct {
	TotalSwarms      int64                    `json:"total_swarms"`
	AverageSwarmTime time.Duration            `json:"average_swarm_time"`
	Agents           map[string]agent.Metrics `json:"agents"`
	RecentHistory    []Entry                  `json:"recent_history"`
}

func (c *Coordinator) Metrics() Metrics {
	c.mu.Lock()
	total := c.total
	var avg time.Duration
	if total > 0 {
		avg = time.Duration(int64(c.totalTime) / total)
	}
	c.mu.Unlock()

	return Metrics{
		TotalSwarms:      total,
		AverageSwarmTime: avg,
		Agents:           c.registry.Snapshot(),
		RecentHistory:    c.history.recent(recentHistoryLimit),
	}
}

// History returns up to n past swarm entries, newest first.
func (c *Coordinator) History(n int) []Entry {
	return c.history.recent(n)
}

func (c *Coordinator) record(result *Result, agentTypes []string) {
	c.mu.Lock()
	c.total++
	c.totalTime += result.Duration
	c.mu.Unlock()

	types := make([]string, len(agentTypes))
	copy(types, agentTypes)
	c.history.append(Entry{
		ID:         result.ID,
		AgentTypes: types,
		StartedAt:  result.StartedAt,
		Duration:   result.Duration,
		Succeeded:  len(result.Successful),
		Failed:     len(result.Failed),
	})
}

// emit delivers an event to every sink, best-effort. Sink failures are
// logged and swallowed; they never surface to the swarm caller.
func (c *Coordinator) emit(e Event) {
	for _, sink := range c.sinks {
		if err := sink.Emit(e); err != nil {
			slog.Warn("event sink failed", "event", e.Type, "swarm", e.SwarmID, "error", err)
		}
	}
}
