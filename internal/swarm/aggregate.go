package swarm

import (
	"github.com/nlemesios/smenos/internal/agent"
	"github.com/nlemesios/smenos/internal/task"
)

// aggregation is the partitioned and merged view of one swarm's
// outcomes.
type aggregation struct {
	successful []agent.Outcome
	failed     []agent.Outcome
	combined   task.Payload
}

// conflictRule applies one cross-agent relationship to the combined
// payload. The rule list is deliberately explicit and shallow: a new
// overlapping-field case is a new entry here, not a generic merge
// algorithm.
type conflictRule struct {
	name  string
	apply func(combined task.Payload)
}

var conflictRules = []conflictRule{
	{name: "validation_failed", apply: applyValidationFlag},
	{name: "price_reconciliation", apply: applyPriceReconciliation},
}

// aggregate partitions outcomes into successful and failed, merges the
// success payloads keyed by agent type, and applies the fixed conflict
// resolution rules. The outcomes slice is aligned with the requested
// agent-type list, so the combined view is built in request order and
// its content is deterministic regardless of completion order.
func aggregate(requested []string, outcomes []agent.Outcome) aggregation {
	agg := aggregation{combined: task.Payload{}}

	for i := range requested {
		o := outcomes[i]
		if o.Succeeded() {
			agg.successful = append(agg.successful, o)
			agg.combined[o.AgentType] = o.Result
		} else {
			agg.failed = append(agg.failed, o)
		}
	}

	for _, rule := range conflictRules {
		rule.apply(agg.combined)
	}

	return agg
}

// applyValidationFlag surfaces a validator agent's overall invalidity as
// a derived flag plus the offending per-field entries.
func applyValidationFlag(combined task.Payload) {
	payload, ok := validatorPayload(combined)
	if !ok {
		return
	}
	valid, ok := payload["isValid"].(bool)
	if !ok || valid {
		return
	}

	combined["_validationFailed"] = true

	results, ok := payload["results"].([]any)
	if !ok {
		if typed, okT := payload["results"].([]task.Payload); okT {
			results = make([]any, len(typed))
			for i, r := range typed {
				results[i] = r
			}
		}
	}

	var errors []any
	for _, r := range results {
		if fieldValid, okF := fieldResultValid(r); okF && !fieldValid {
			errors = append(errors, r)
		}
	}
	combined["_validationErrors"] = errors
}

// applyPriceReconciliation cross-checks the price analyzer's current
// price against the prices the email parser extracted. This is a plain
// membership check, not a statistical merge.
func applyPriceReconciliation(combined task.Payload) {
	emailPayload, ok := agentPayload(combined, agent.TypeEmail)
	if !ok {
		return
	}
	pricePayload, ok := agentPayload(combined, agent.TypePrice)
	if !ok {
		return
	}

	extracted, ok := floatSlice(emailPayload["extractedPrices"])
	if !ok || len(extracted) == 0 {
		return
	}
	current, ok := task.ToFloat(pricePayload["currentPrice"])
	if !ok {
		return
	}

	found := false
	for _, p := range extracted {
		if p == current {
			found = true
			break
		}
	}

	combined["_priceReconciliation"] = task.Payload{
		"analyzedPrice":    current,
		"matchesExtracted": found,
		"extractedPrices":  extracted,
	}
}

func validatorPayload(combined task.Payload) (task.Payload, bool) {
	return agentPayload(combined, agent.TypeValidator)
}

func agentPayload(combined task.Payload, agentType string) (task.Payload, bool) {
	switch p := combined[agentType].(type) {
	case task.Payload:
		return p, true
	case map[string]any:
		return task.Payload(p), true
	default:
		return nil, false
	}
}

func fieldResultValid(r any) (valid bool, ok bool) {
	switch m := r.(type) {
	case task.Payload:
		valid, ok = m["valid"].(bool)
	case map[string]any:
		valid, ok = m["valid"].(bool)
	}
	return valid, ok
}

func floatSlice(v any) ([]float64, bool) {
	switch s := v.(type) {
	case []float64:
		return s, true
	case []any:
		out := make([]float64, 0, len(s))
		for _, item := range s {
			f, ok := task.ToFloat(item)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	default:
		return nil, false
	}
}
