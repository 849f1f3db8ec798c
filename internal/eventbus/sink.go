package eventbus

import (
	"github.com/nlemesios/smenos/internal/swarm"
)

// Sink publishes swarm events to the bus. It satisfies swarm.EventSink;
// the coordinator treats publish failures as best-effort and never lets
// them surface to callers.
type Sink struct {
	client *Client
}

func NewSink(client *Client) *Sink {
	return &Sink{client: client}
}

func (s *Sink) Emit(e swarm.Event) error {
	return s.client.PublishJSON(TopicSwarmEvents(e.SwarmID), e)
}
