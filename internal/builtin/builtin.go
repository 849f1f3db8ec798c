// Package builtin provides the stock agent handlers wired in by the
// gateway when a configured agent has no custom handler. They implement
// lightweight heuristics over the shared payload shapes so a fresh
// deployment produces meaningful swarm results out of the box.
package builtin

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nlemesios/smenos/internal/agent"
	"github.com/nlemesios/smenos/internal/config"
	"github.com/nlemesios/smenos/internal/task"
)

// Handlers returns the default handler for every built-in agent type.
func Handlers() map[string]agent.Handler {
	return map[string]agent.Handler{
		agent.TypeEmail:     EmailParser,
		agent.TypePrice:     PriceAnalyzer,
		agent.TypeStock:     StockPredictor,
		agent.TypeProduct:   ProductMatcher,
		agent.TypeValidator: Validator,
	}
}

// Definitions returns the default runtime configuration for the
// built-in agents. The product matcher gets a longer timeout than the
// rest because its underlying lookup is slower. Entries from the
// config file replace these wholesale.
func Definitions() map[string]config.AgentDefinition {
	return map[string]config.AgentDefinition{
		agent.TypeEmail:     {Description: "Extracts order details from email text"},
		agent.TypePrice:     {Description: "Scores the current price against its history"},
		agent.TypeStock:     {Description: "Estimates days of cover from sales history"},
		agent.TypeProduct:   {Description: "Normalizes product names for matching", Timeout: 45 * time.Second},
		agent.TypeValidator: {Description: "Checks required fields on the payload"},
	}
}

var priceRe = regexp.MustCompile(`\$?(\d+(?:\.\d{1,2})?)`)

// EmailParser extracts structured order details from free-form email text.
func EmailParser(ctx context.Context, t task.Payload) (task.Payload, error) {
	var body string
	var ok bool
	for _, field := range []string{"content", "emailContent", "body"} {
		if body, ok = t.String(field); ok {
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("missing email content")
	}

	var prices []float64
	for _, m := range priceRe.FindAllStringSubmatch(body, -1) {
		if v, ok := task.ToFloat(m[1]); ok {
			prices = append(prices, v)
		}
	}

	result := task.Payload{
		"extractedPrices": prices,
		"wordCount":       len(strings.Fields(body)),
	}
	if subject, ok := t.String("subject"); ok {
		result["subject"] = subject
	}
	return result, nil
}

// PriceAnalyzer scores the current price against its recent history.
func PriceAnalyzer(ctx context.Context, t task.Payload) (task.Payload, error) {
	price, ok := t.Float("currentPrice")
	if !ok {
		if price, ok = t.Float("price"); !ok {
			return nil, fmt.Errorf("missing price")
		}
	}

	history := floatValues(t["priceHistory"])
	result := task.Payload{"currentPrice": price}
	if len(history) > 0 {
		var sum float64
		for _, v := range history {
			sum += v
		}
		avg := sum / float64(len(history))
		result["historicalAverage"] = avg
		result["trend"] = trend(price, avg)
	}
	return result, nil
}

// StockPredictor estimates days of cover from sales history.
func StockPredictor(ctx context.Context, t task.Payload) (task.Payload, error) {
	stock, ok := t.Float("currentStock")
	if !ok {
		if stock, ok = t.Float("stock"); !ok {
			return nil, fmt.Errorf("missing stock level")
		}
	}

	result := task.Payload{"currentStock": stock}
	sales := floatValues(t["salesHistory"])
	if len(sales) > 0 {
		var sum float64
		for _, v := range sales {
			sum += v
		}
		daily := sum / float64(len(sales))
		result["dailySalesRate"] = daily
		if daily > 0 {
			result["daysOfCover"] = stock / daily
			result["restockNeeded"] = stock/daily < 7
		}
	}
	return result, nil
}

// ProductMatcher normalizes a product name into a match key.
func ProductMatcher(ctx context.Context, t task.Payload) (task.Payload, error) {
	name, ok := t.String("productName")
	if !ok {
		if name, ok = t.String("product"); !ok {
			return nil, fmt.Errorf("missing product name")
		}
	}

	words := strings.Fields(strings.ToLower(name))
	sort.Strings(words)
	return task.Payload{
		"productName": name,
		"matchKey":    strings.Join(words, "-"),
	}, nil
}

// Validator checks required fields on the payload and reports per-field
// validity. Payloads without explicit requirements are considered valid.
func Validator(ctx context.Context, t task.Payload) (task.Payload, error) {
	required := stringValues(t["requiredFields"])

	results := make([]task.Payload, 0, len(required))
	valid := true
	for _, field := range required {
		present := t.Has(field)
		if !present {
			valid = false
		}
		results = append(results, task.Payload{
			"field": field,
			"valid": present,
		})
	}

	return task.Payload{
		"isValid": valid,
		"results": results,
	}, nil
}

func trend(price, avg float64) string {
	switch {
	case price > avg*1.05:
		return "above"
	case price < avg*0.95:
		return "below"
	default:
		return "stable"
	}
}

func floatValues(v any) []float64 {
	switch vs := v.(type) {
	case []float64:
		return vs
	case []any:
		out := make([]float64, 0, len(vs))
		for _, item := range vs {
			if f, ok := task.ToFloat(item); ok {
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}

func stringValues(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
