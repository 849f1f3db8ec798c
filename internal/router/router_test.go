package router

import (
	"testing"

	"github.com/nlemesios/smenos/internal/agent"
	"github.com/nlemesios/smenos/internal/task"
)

func TestRoute(t *testing.T) {
	cases := []struct {
		name string
		in   task.Payload
		want string
	}{
		{"email content", task.Payload{"emailContent": "50% off"}, agent.TypeEmail},
		{"email body alias", task.Payload{"body": "hello"}, agent.TypeEmail},
		{"price field", task.Payload{"price": 10.0}, agent.TypePrice},
		{"price history", task.Payload{"priceHistory": []float64{1, 2}}, agent.TypePrice},
		{"stock field", task.Payload{"currentStock": 5}, agent.TypeStock},
		{"product name", task.Payload{"productName": "widget"}, agent.TypeProduct},
		{"validation data", task.Payload{"data": map[string]any{}}, agent.TypeValidator},
		{"empty task falls back", task.Payload{}, agent.TypeValidator},
		{"unknown shape falls back", task.Payload{"foo": "bar"}, agent.TypeValidator},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Route(c.in); got != c.want {
				t.Errorf("Route(%v) = %s, want %s", c.in, got, c.want)
			}
		})
	}
}

func TestRoutePriorityOrder(t *testing.T) {
	// A task matching several rules routes to the highest-priority one:
	// email beats price beats stock.
	in := task.Payload{"emailContent": "x", "price": 1.0, "stock": 3}
	if got := Route(in); got != agent.TypeEmail {
		t.Errorf("expected email to win priority, got %s", got)
	}

	in = task.Payload{"price": 1.0, "stock": 3, "productName": "widget"}
	if got := Route(in); got != agent.TypePrice {
		t.Errorf("expected price to win over stock and product, got %s", got)
	}
}
