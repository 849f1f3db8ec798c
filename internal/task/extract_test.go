package task

import "testing"

func TestExtractAliasPriority(t *testing.T) {
	e := DefaultExtractor()

	// "price" wins over "currentPrice" because it is listed first.
	master := Payload{"price": 10.0, "currentPrice": 99.0, "priceHistory": []float64{8, 9}}
	view := e.Extract(master, "price")

	if got, _ := view.Float("currentPrice"); got != 10.0 {
		t.Errorf("expected currentPrice 10 from 'price' alias, got %v", got)
	}
	if _, ok := view["priceHistory"]; !ok {
		t.Error("expected priceHistory to be carried over")
	}
}

func TestExtractFallbackAlias(t *testing.T) {
	e := DefaultExtractor()

	master := Payload{"currentPrice": 42.0}
	view := e.Extract(master, "price")

	if got, _ := view.Float("currentPrice"); got != 42.0 {
		t.Errorf("expected currentPrice 42 via fallback alias, got %v", got)
	}
}

func TestExtractOmitsMissingFields(t *testing.T) {
	e := DefaultExtractor()

	view := e.Extract(Payload{"subject": "offer"}, "email")
	if len(view) != 1 {
		t.Errorf("expected only subject in view, got %v", view)
	}
	if _, ok := view["content"]; ok {
		t.Error("content should be absent when no source field is present")
	}
}

func TestExtractUnregisteredTypePassthrough(t *testing.T) {
	e := DefaultExtractor()

	master := Payload{"data": map[string]any{"price": 10}, "extra": true}
	view := e.Extract(master, "validator")

	if len(view) != len(master) {
		t.Fatalf("expected full passthrough, got %v", view)
	}

	// The view must be a private copy, not the master itself.
	view["mutated"] = true
	if _, ok := master["mutated"]; ok {
		t.Error("mutating the view must not affect the master task")
	}
}

func TestExtractEmailAliases(t *testing.T) {
	e := DefaultExtractor()

	master := Payload{"emailContent": "Special offer: $19.99", "from": "shop@example.com"}
	view := e.Extract(master, "email")

	if got, _ := view.String("content"); got != "Special offer: $19.99" {
		t.Errorf("unexpected content: %q", got)
	}
	if got, _ := view.String("sender"); got != "shop@example.com" {
		t.Errorf("unexpected sender: %q", got)
	}
}

func TestRegisterCustomTable(t *testing.T) {
	e := NewExtractor()
	e.Register("custom", []FieldAliases{
		{Target: "value", Sources: []string{"v", "value"}},
	})

	view := e.Extract(Payload{"v": 1, "noise": "x"}, "custom")
	if len(view) != 1 {
		t.Fatalf("expected single-field view, got %v", view)
	}
	if got, _ := view.Float("value"); got != 1 {
		t.Errorf("expected value 1, got %v", got)
	}
}

func TestCloneNil(t *testing.T) {
	var p Payload
	c := p.Clone()
	if c == nil {
		t.Fatal("clone of nil payload should be an empty payload")
	}
	c["k"] = "v"
}

func TestToFloat(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{10, 10, true},
		{int64(7), 7, true},
		{3.5, 3.5, true},
		{float32(2), 2, true},
		{"10", 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := ToFloat(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ToFloat(%v) = %v,%v; want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
