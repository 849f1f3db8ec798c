package agent

import (
	"sync"
	"time"
)

// Descriptor identifies one registered agent type: its runtime
// configuration and its execution metrics. One descriptor exists per
// type for the process lifetime. Metrics updates from concurrent
// executions are serialized by the descriptor's own mutex.
type Descriptor struct {
	Type    string
	Timeout time.Duration
	Retries int

	mu          sync.Mutex
	status      Status
	invocations int64
	successes   int64
	avgLatency  time.Duration
}

// NewDescriptor creates a descriptor with the default timeout and retry
// budget where zero values are given.
func NewDescriptor(agentType string, timeout time.Duration, retries int) *Descriptor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries < 0 {
		retries = DefaultRetries
	}
	return &Descriptor{
		Type:    agentType,
		Timeout: timeout,
		Retries: retries,
		status:  StatusIdle,
	}
}

func (d *Descriptor) setStatus(s Status) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}

// Status returns the advisory execution status.
func (d *Descriptor) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// recordInvocation bumps the invocation counter. Called once per Run,
// not per attempt.
func (d *Descriptor) recordInvocation() {
	d.mu.Lock()
	d.invocations++
	d.mu.Unlock()
}

// recordSuccess bumps the success counter and folds the new latency
// sample into the running average without keeping sample history:
// avg' = (avg*(n-1) + sample) / n with n the post-increment count.
func (d *Descriptor) recordSuccess(elapsed time.Duration) {
	d.mu.Lock()
	d.successes++
	n := d.successes
	d.avgLatency = time.Duration((int64(d.avgLatency)*(n-1) + int64(elapsed)) / n)
	d.mu.Unlock()
}

// Snapshot returns a copy of the descriptor's counters.
func (d *Descriptor) Snapshot() Metrics {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Metrics{
		Type:           d.Type,
		Status:         d.status,
		Invocations:    d.invocations,
		Successes:      d.successes,
		AverageLatency: d.avgLatency,
	}
}
