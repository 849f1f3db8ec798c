// Package router infers which agent type should handle an ad-hoc single
// task from the shape of its payload.
package router

import (
	"github.com/nlemesios/smenos/internal/agent"
	"github.com/nlemesios/smenos/internal/task"
)

// routingRule matches a set of payload fields to an agent type. Rules
// are evaluated in order; the first match wins.
type routingRule struct {
	agentType string
	fields    []string
}

var rules = []routingRule{
	{agent.TypeEmail, []string{"emailContent", "email", "body"}},
	{agent.TypePrice, []string{"price", "currentPrice", "priceHistory"}},
	{agent.TypeStock, []string{"stock", "currentStock", "salesHistory"}},
	{agent.TypeProduct, []string{"productName", "product"}},
	{agent.TypeValidator, []string{"validate", "data"}},
}

// Route returns the agent type best matching the task's shape. The
// priority order is fixed; tasks matching nothing fall back to the
// generic validator.
func Route(t task.Payload) string {
	for _, r := range rules {
		if t.Has(r.fields...) {
			return r.agentType
		}
	}
	return agent.TypeValidator
}
