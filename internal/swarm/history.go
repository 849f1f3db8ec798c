package swarm

import "sync"

// history is a bounded in-memory record of past swarm executions.
// Pushing past capacity evicts the oldest entry. Nothing here survives
// a process restart.
type history struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	return &history{capacity: capacity}
}

func (h *history) append(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
}

// recent returns up to n entries, newest first.
func (h *history) recent(n int) []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(h.entries) - 1; i >= len(h.entries)-n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}

func (h *history) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
