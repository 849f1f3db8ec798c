package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nlemesios/smenos/internal/agent"
	"github.com/nlemesios/smenos/internal/config"
)

// Registry holds the descriptor and runner for every registered agent
// type. It is an explicit instance handed to its consumers; there is no
// package-level shared registry.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]*agent.Runner
	order   []string
}

// Option adjusts a descriptor at registration time.
type Option func(*agent.Descriptor)

// WithTimeout overrides the per-attempt timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(desc *agent.Descriptor) {
		if d > 0 {
			desc.Timeout = d
		}
	}
}

// WithRetries overrides the retry budget (default 2, i.e. 3 attempts).
func WithRetries(n int) Option {
	return func(desc *agent.Descriptor) {
		if n >= 0 {
			desc.Retries = n
		}
	}
}

func New() *Registry {
	return &Registry{
		runners: make(map[string]*agent.Runner),
	}
}

// FromConfig builds a registry from configured agent definitions,
// binding each to its handler. Definitions without a handler are
// skipped; handlers without a definition get the defaults. Types are
// registered in sorted order so Types() is stable across restarts.
func FromConfig(defs map[string]config.AgentDefinition, handlers map[string]agent.Handler, defaults config.DefaultsConfig) (*Registry, error) {
	types := make([]string, 0, len(handlers))
	for agentType := range handlers {
		types = append(types, agentType)
	}
	sort.Strings(types)

	r := New()
	for _, agentType := range types {
		h := handlers[agentType]
		def, ok := defs[agentType]
		if !ok {
			if err := r.Register(agentType, h, WithTimeout(defaults.Timeout), WithRetries(defaults.Retries)); err != nil {
				return nil, err
			}
			continue
		}
		err := r.Register(agentType, h,
			WithTimeout(def.ResolveTimeout(defaults)),
			WithRetries(def.ResolveRetries(defaults)),
		)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an agent type. Registering an existing type replaces its
// handler and configuration; its metrics start over.
func (r *Registry) Register(agentType string, handler agent.Handler, opts ...Option) error {
	if agentType == "" {
		return fmt.Errorf("register: empty agent type")
	}
	if handler == nil {
		return fmt.Errorf("register %s: nil handler", agentType)
	}

	desc := agent.NewDescriptor(agentType, 0, -1)
	for _, opt := range opts {
		opt(desc)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runners[agentType]; !exists {
		r.order = append(r.order, agentType)
	}
	r.runners[agentType] = agent.NewRunner(desc, handler)
	return nil
}

// Runner returns the runner for an agent type.
func (r *Registry) Runner(agentType string) (*agent.Runner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runner, ok := r.runners[agentType]
	return runner, ok
}

// Types lists registered agent types in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered agent types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runners)
}

// Snapshot returns a copy of every descriptor's metrics, keyed by type.
func (r *Registry) Snapshot() map[string]agent.Metrics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]agent.Metrics, len(r.runners))
	for t, runner := range r.runners {
		out[t] = runner.Descriptor().Snapshot()
	}
	return out
}
