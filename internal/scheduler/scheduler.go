// Package scheduler dispatches configured recurring swarms on their
// cron schedules. It polls rather than sleeping until the next tick so
// schedules stay correct across clock adjustments.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/nlemesios/smenos/internal/config"
	"github.com/nlemesios/smenos/internal/swarm"
	"github.com/nlemesios/smenos/internal/task"
)

// Executor runs a swarm on behalf of the scheduler.
type Executor interface {
	ExecuteSwarm(ctx context.Context, master task.Payload, agentTypes []string) (*swarm.Result, error)
}

type entry struct {
	def     config.SwarmDefinition
	nextRun time.Time
}

type Scheduler struct {
	executor     Executor
	pollInterval time.Duration
	reloadCh     chan struct{}

	mu      sync.Mutex
	entries []*entry
}

func New(executor Executor, cfg config.SchedulerConfig, swarms []config.SwarmDefinition) *Scheduler {
	s := &Scheduler{
		executor:     executor,
		pollInterval: cfg.PollInterval,
		reloadCh:     make(chan struct{}, 1),
	}
	s.setSwarms(swarms)
	return s
}

// UpdateConfig replaces the poll interval and swarm definitions, then
// signals the run loop to reset its ticker.
func (s *Scheduler) UpdateConfig(pollInterval time.Duration, swarms []config.SwarmDefinition) {
	s.mu.Lock()
	s.pollInterval = pollInterval
	s.mu.Unlock()
	s.setSwarms(swarms)
	select {
	case s.reloadCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) setSwarms(swarms []config.SwarmDefinition) {
	entries := make([]*entry, 0, len(swarms))
	for _, def := range swarms {
		next, err := gronx.NextTick(def.Schedule, false)
		if err != nil {
			slog.Error("invalid swarm schedule", "name", def.Name, "schedule", def.Schedule, "error", err)
			continue
		}
		entries = append(entries, &entry{def: def, nextRun: next})
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.pollInterval == 0 {
		s.pollInterval = 30 * time.Second
	}
	interval := s.pollInterval
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("scheduler started", "poll_interval", interval, "swarms", s.Len())

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-s.reloadCh:
			s.mu.Lock()
			interval = s.pollInterval
			s.mu.Unlock()
			ticker.Reset(interval)
			slog.Info("scheduler config reloaded", "poll_interval", interval, "swarms", s.Len())
		case <-ticker.C:
			s.poll(ctx, time.Now())
		}
	}
}

// Len returns the number of scheduled swarms.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) poll(ctx context.Context, now time.Time) {
	for _, e := range s.due(now) {
		s.execute(ctx, e.def)
	}
}

// due returns the entries whose next run has passed and advances their
// schedules before execution, so a slow swarm cannot be dispatched twice.
func (s *Scheduler) due(now time.Time) []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*entry
	for _, e := range s.entries {
		if e.nextRun.After(now) {
			continue
		}
		due = append(due, e)
		next, err := gronx.NextTick(e.def.Schedule, false)
		if err != nil {
			slog.Error("failed to advance swarm schedule", "name", e.def.Name, "error", err)
			continue
		}
		e.nextRun = next
	}
	return due
}

func (s *Scheduler) execute(ctx context.Context, def config.SwarmDefinition) {
	slog.Info("executing scheduled swarm", "name", def.Name, "agents", def.AgentTypes)

	result, err := s.executor.ExecuteSwarm(ctx, task.Payload(def.Task), def.AgentTypes)
	if err != nil {
		slog.Error("scheduled swarm failed", "name", def.Name, "error", err)
		return
	}

	slog.Info("scheduled swarm completed",
		"name", def.Name,
		"swarm_id", result.ID,
		"duration", result.Duration,
		"failed", len(result.Failed))
}
