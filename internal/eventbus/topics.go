package eventbus

import "fmt"

// Topic patterns for NATS pub/sub communication.

// TopicSwarmEvents carries the event stream for one swarm run.
func TopicSwarmEvents(swarmID string) string {
	return fmt.Sprintf("events.swarm.%s", swarmID)
}

const (
	// TopicEventsAll matches every event the gateway publishes.
	TopicEventsAll = "events.>"
	// TopicEventsSwarm matches events for any swarm run.
	TopicEventsSwarm = "events.swarm.*"

	// TopicSwarmExecute is the request/reply subject for swarm execution.
	TopicSwarmExecute = "swarm.execute"
	// TopicTaskExecute is the request/reply subject for single-task routing.
	TopicTaskExecute = "task.execute"
)
