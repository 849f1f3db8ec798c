package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nlemesios/smenos/internal/task"
)

const defaultBackoffBase = 500 * time.Millisecond

// Runner wraps a handler with the uniform resilience behavior every
// agent gets: per-attempt timeout, retry with exponential backoff,
// status tracking and metrics. Run never panics and never returns an
// error value; all failure is communicated through the Outcome status.
type Runner struct {
	desc    *Descriptor
	handler Handler

	// backoffBase is the delay before the second attempt; subsequent
	// delays double. Overridable in tests.
	backoffBase time.Duration
}

// NewRunner wraps handler with the resilience config of desc.
func NewRunner(desc *Descriptor, handler Handler) *Runner {
	return &Runner{
		desc:        desc,
		handler:     handler,
		backoffBase: defaultBackoffBase,
	}
}

// Descriptor returns the runner's descriptor.
func (r *Runner) Descriptor() *Descriptor {
	return r.desc
}

// Run executes the handler with up to Retries+1 attempts. Each attempt
// races the handler against the descriptor's timeout; a timed-out
// attempt counts as a failed attempt. The backoff before attempt k
// (k >= 2) is backoffBase * 2^(k-2).
func (r *Runner) Run(ctx context.Context, input task.Payload) Outcome {
	start := time.Now()
	r.desc.recordInvocation()
	r.desc.setStatus(StatusRunning)

	attempts := r.desc.Retries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := r.backoffBase << (attempt - 2)
			slog.Debug("retrying agent", "agent", r.desc.Type, "attempt", attempt, "backoff", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				r.desc.setStatus(StatusFailed)
				return r.failed(ctx.Err(), start, attempt-1)
			}
		}

		result, err := r.attempt(ctx, input)
		if err == nil {
			elapsed := time.Since(start)
			r.desc.setStatus(StatusSuccess)
			r.desc.recordSuccess(elapsed)
			return Outcome{
				AgentType:     r.desc.Type,
				Status:        OutcomeSuccess,
				Result:        result,
				ExecutionTime: elapsed,
				Attempts:      attempt,
			}
		}

		lastErr = err
		if errors.Is(err, context.DeadlineExceeded) {
			r.desc.setStatus(StatusTimeout)
		} else {
			r.desc.setStatus(StatusFailed)
		}
		slog.Debug("agent attempt failed", "agent", r.desc.Type, "attempt", attempt, "error", err)
	}

	// The descriptor keeps the status of the last attempt (failed or
	// timeout); the outcome itself only ever reports failed.
	return r.failed(lastErr, start, attempts)
}

func (r *Runner) failed(err error, start time.Time, attempts int) Outcome {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Outcome{
		AgentType:     r.desc.Type,
		Status:        OutcomeFailed,
		Error:         msg,
		ExecutionTime: time.Since(start),
		Attempts:      attempts,
	}
}

// attempt runs the handler once, racing it against the per-attempt
// deadline. The first of {handler completion, deadline} wins; a losing
// handler goroutine is signalled through its context and abandoned.
func (r *Runner) attempt(ctx context.Context, input task.Payload) (task.Payload, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.desc.Timeout)
	defer cancel()

	type handlerResult struct {
		payload task.Payload
		err     error
	}
	done := make(chan handlerResult, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- handlerResult{err: fmt.Errorf("agent %s panicked: %v", r.desc.Type, rec)}
			}
		}()
		payload, err := r.handler(attemptCtx, input)
		done <- handlerResult{payload: payload, err: err}
	}()

	select {
	case res := <-done:
		return res.payload, res.err
	case <-attemptCtx.Done():
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("agent %s timed out after %s: %w", r.desc.Type, r.desc.Timeout, context.DeadlineExceeded)
		}
		return nil, attemptCtx.Err()
	}
}
