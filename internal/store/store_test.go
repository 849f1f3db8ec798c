package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/nlemesios/smenos/internal/config"
	"github.com/nlemesios/smenos/internal/swarm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(config.StoreConfig{Path: filepath.Join(dir, "test.db")})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEmitAndList(t *testing.T) {
	s := newTestStore(t)

	events := []swarm.Event{
		{Type: "swarm_started", SwarmID: "run-1", Timestamp: time.Now().UTC(), Data: map[string]any{"count": float64(2)}},
		{Type: "swarm_completed", SwarmID: "run-1", Timestamp: time.Now().UTC(), Data: map[string]any{"failed": float64(0)}},
		{Type: "swarm_started", SwarmID: "run-2", Timestamp: time.Now().UTC()},
	}
	for _, e := range events {
		if err := s.Emit(e); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}

	got, err := s.ListEvents("run-1")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events for run-1, got %d", len(got))
	}
	if got[0].Type != "swarm_started" || got[1].Type != "swarm_completed" {
		t.Errorf("expected append order, got %s then %s", got[0].Type, got[1].Type)
	}

	var data map[string]any
	if err := json.Unmarshal(got[0].Payload, &data); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if data["count"] != float64(2) {
		t.Errorf("expected count 2 in payload, got %v", data["count"])
	}
}

func TestEmitNilData(t *testing.T) {
	s := newTestStore(t)

	if err := s.Emit(swarm.Event{Type: "swarm_started", SwarmID: "run-1", Timestamp: time.Now().UTC()}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	got, err := s.ListEvents("run-1")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
}

func TestRecentEvents(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		_ = s.Emit(swarm.Event{Type: "swarm_started", SwarmID: "run", Timestamp: time.Now().UTC()})
	}

	got, err := s.RecentEvents(3)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].ID < got[1].ID {
		t.Error("expected newest-first ordering")
	}
}

func TestCountEvents(t *testing.T) {
	s := newTestStore(t)

	n, err := s.CountEvents()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty log, got %d", n)
	}

	_ = s.Emit(swarm.Event{Type: "swarm_started", SwarmID: "run-1", Timestamp: time.Now().UTC()})
	_ = s.Emit(swarm.Event{Type: "swarm_completed", SwarmID: "run-1", Timestamp: time.Now().UTC()})

	n, err = s.CountEvents()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 events, got %d", n)
	}

	all, err := s.AllEvents()
	if err != nil {
		t.Fatalf("all events: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 events in full log, got %d", len(all))
	}
}
