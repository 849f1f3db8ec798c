package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nlemesios/smenos/internal/swarm"
)

// EventRow is one persisted swarm event.
type EventRow struct {
	ID        int64           `json:"id"`
	SwarmID   string          `json:"swarm_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Emit appends a swarm event to the log. The store satisfies
// swarm.EventSink so the gateway can hand it straight to the
// coordinator.
func (s *Store) Emit(e swarm.Event) error {
	var payload []byte
	if e.Data != nil {
		var err error
		payload, err = json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO swarm_events (swarm_id, type, payload, created_at)
		VALUES (?, ?, ?, ?)`,
		e.SwarmID, e.Type, payload, e.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("append swarm event: %w", err)
	}
	return nil
}

// ListEvents returns the events for one swarm in append order.
func (s *Store) ListEvents(swarmID string) ([]EventRow, error) {
	rows, err := s.db.Query(`
		SELECT id, swarm_id, type, payload, created_at
		FROM swarm_events WHERE swarm_id = ? ORDER BY id`, swarmID)
	if err != nil {
		return nil, fmt.Errorf("list swarm events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// RecentEvents returns up to limit events across all swarms, newest
// first.
func (s *Store) RecentEvents(limit int) ([]EventRow, error) {
	rows, err := s.db.Query(`
		SELECT id, swarm_id, type, payload, created_at
		FROM swarm_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent swarm events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// AllEvents returns the whole log in append order. Used by the export
// command.
func (s *Store) AllEvents() ([]EventRow, error) {
	rows, err := s.db.Query(`
		SELECT id, swarm_id, type, payload, created_at
		FROM swarm_events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("all swarm events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// CountEvents returns the size of the log.
func (s *Store) CountEvents() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM swarm_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count swarm events: %w", err)
	}
	return n, nil
}

func scanEvents(rows *sql.Rows) ([]EventRow, error) {
	var events []EventRow
	for rows.Next() {
		var e EventRow
		var payload *string
		if err := rows.Scan(&e.ID, &e.SwarmID, &e.Type, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan swarm event: %w", err)
		}
		if payload != nil {
			e.Payload = json.RawMessage(*payload)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
