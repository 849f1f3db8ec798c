package task

// Payload is a task's named fields. Payloads are treated as immutable
// once created; every agent receives its own extracted view, never a
// shared reference.
type Payload map[string]any

// Clone returns a shallow copy of the payload. Field values are shared,
// but the top-level mapping is private to the caller.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Has reports whether any of the given fields is present.
func (p Payload) Has(fields ...string) bool {
	for _, f := range fields {
		if _, ok := p[f]; ok {
			return true
		}
	}
	return false
}

// Float returns the named field coerced to float64. YAML and JSON
// decoding produce a mix of int, int64 and float64 for numeric fields.
func (p Payload) Float(field string) (float64, bool) {
	return ToFloat(p[field])
}

// String returns the named field as a string.
func (p Payload) String(field string) (string, bool) {
	s, ok := p[field].(string)
	return s, ok
}

// ToFloat coerces a decoded numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
