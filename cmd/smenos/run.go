package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nlemesios/smenos/internal/eventbus"
	"github.com/nlemesios/smenos/internal/task"
)

// runRun dispatches a swarm (or a single routed task) against a running
// gateway over its NATS request/reply surface and prints the response.
func runRun(args []string) error {
	var (
		url      string
		agents   string
		taskJSON string
		timeout  = 10 * time.Second
	)

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-url":
			if i+1 >= len(args) {
				return fmt.Errorf("missing value for -url")
			}
			i++
			url = args[i]
		case "-agents":
			if i+1 >= len(args) {
				return fmt.Errorf("missing value for -agents")
			}
			i++
			agents = args[i]
		case "-task":
			if i+1 >= len(args) {
				return fmt.Errorf("missing value for -task")
			}
			i++
			taskJSON = args[i]
		case "-timeout":
			if i+1 >= len(args) {
				return fmt.Errorf("missing value for -timeout")
			}
			i++
			d, err := time.ParseDuration(args[i])
			if err != nil {
				return fmt.Errorf("invalid -timeout: %w", err)
			}
			timeout = d
		}
	}

	if taskJSON == "" {
		fmt.Fprintf(os.Stderr, "Usage: smenos run -task '<json>' [-agents price,stock] [-url nats://...] [-timeout 10s]\n")
		return fmt.Errorf("missing -task flag")
	}
	if url == "" {
		url = os.Getenv("SMENOS_NATS_URL")
		if url == "" {
			url = "nats://localhost:4222"
		}
	}

	var t task.Payload
	if err := json.Unmarshal([]byte(taskJSON), &t); err != nil {
		return fmt.Errorf("parse task: %w", err)
	}

	topic, req, err := buildRunRequest(t, agents)
	if err != nil {
		return err
	}

	client, err := eventbus.NewClientFromURL(url)
	if err != nil {
		return fmt.Errorf("connect to gateway: %w", err)
	}
	defer client.Close()

	msg, err := client.Request(topic, req, timeout)
	if err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, msg.Data, "", "  "); err != nil {
		// Not JSON; print as-is.
		fmt.Println(string(msg.Data))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

// buildRunRequest picks the execution subject: a swarm when agent types
// are named, otherwise single-task shape routing.
func buildRunRequest(t task.Payload, agents string) (string, []byte, error) {
	if agents == "" {
		data, err := json.Marshal(taskRequest{Task: t})
		if err != nil {
			return "", nil, fmt.Errorf("marshal request: %w", err)
		}
		return eventbus.TopicTaskExecute, data, nil
	}

	var types []string
	for _, a := range strings.Split(agents, ",") {
		if a = strings.TrimSpace(a); a != "" {
			types = append(types, a)
		}
	}
	data, err := json.Marshal(swarmRequest{Task: t, AgentTypes: types})
	if err != nil {
		return "", nil, fmt.Errorf("marshal request: %w", err)
	}
	return eventbus.TopicSwarmExecute, data, nil
}
