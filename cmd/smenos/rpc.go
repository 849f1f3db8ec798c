package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/nlemesios/smenos/internal/eventbus"
	"github.com/nlemesios/smenos/internal/swarm"
	"github.com/nlemesios/smenos/internal/task"
)

// rpc exposes swarm execution over NATS request/reply so other
// processes on the bus can dispatch work without going through HTTP.
type rpc struct {
	client *eventbus.Client
	coord  *swarm.Coordinator
}

func newRPC(client *eventbus.Client, coord *swarm.Coordinator) *rpc {
	return &rpc{client: client, coord: coord}
}

type swarmRequest struct {
	Task       task.Payload `json:"task"`
	AgentTypes []string     `json:"agent_types"`
}

type taskRequest struct {
	Task task.Payload `json:"task"`
}

func (r *rpc) subscribe(ctx context.Context) error {
	if _, err := r.client.Subscribe(eventbus.TopicSwarmExecute, func(msg *nats.Msg) {
		r.handleSwarm(ctx, msg)
	}); err != nil {
		return err
	}
	if _, err := r.client.Subscribe(eventbus.TopicTaskExecute, func(msg *nats.Msg) {
		r.handleTask(ctx, msg)
	}); err != nil {
		return err
	}
	return nil
}

func (r *rpc) handleSwarm(ctx context.Context, msg *nats.Msg) {
	var req swarmRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		r.replyError(msg, "invalid request: "+err.Error())
		return
	}

	result, err := r.coord.ExecuteSwarm(ctx, req.Task, req.AgentTypes)
	if err != nil {
		r.replyError(msg, err.Error())
		return
	}
	r.reply(msg, result)
}

func (r *rpc) handleTask(ctx context.Context, msg *nats.Msg) {
	var req taskRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		r.replyError(msg, "invalid request: "+err.Error())
		return
	}

	outcome, err := r.coord.ExecuteTask(ctx, req.Task)
	if err != nil {
		r.replyError(msg, err.Error())
		return
	}
	r.reply(msg, outcome)
}

func (r *rpc) reply(msg *nats.Msg, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.replyError(msg, "marshal response: "+err.Error())
		return
	}
	if err := msg.Respond(data); err != nil {
		slog.Warn("rpc respond failed", "subject", msg.Subject, "error", err)
	}
}

func (r *rpc) replyError(msg *nats.Msg, text string) {
	data, _ := json.Marshal(map[string]string{"error": text})
	if err := msg.Respond(data); err != nil {
		slog.Warn("rpc respond failed", "subject", msg.Subject, "error", err)
	}
}
