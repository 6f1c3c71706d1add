package yangson

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMarshalJSONPreservesDeclaredOrder(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"tags": []interface{}{"x", "y"},
		"name": "bob",
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	out, err := MarshalJSON(top, v)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	s := string(out)
	if i, j := strings.Index(s, "\"name\""), strings.Index(s, "\"tags\""); i < 0 || j < 0 || i > j {
		t.Fatalf("declared member order not preserved: %s", s)
	}
	if !json.Valid(out) {
		t.Fatalf("MarshalJSON produced invalid JSON: %s", s)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	raw := map[string]interface{}{
		"name": "bob",
		"tags": []interface{}{"x", "y"},
		"items": []interface{}{
			map[string]interface{}{"id": float64(1), "value": "one"},
		},
	}
	v, err := top.FromRawValue(raw)
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	out, err := MarshalJSON(top, v)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	v2, err := UnmarshalJSON(top, out)
	if err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	o2, ok := v2.(*ObjectValue)
	if !ok {
		t.Fatalf("expected *ObjectValue, got %T", v2)
	}
	name, ok := o2.Get("name")
	if !ok || name.(*ScalarValue).Value != "bob" {
		t.Fatalf("round-tripped name = %#v, want \"bob\"", name)
	}
	items, ok := o2.Get("items")
	if !ok || items.(*ArrayValue).Len() != 1 {
		t.Fatalf("round-tripped items = %#v, want a one-entry array", items)
	}
}

func TestUnmarshalJSONInvalid(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	_, err := UnmarshalJSON(top, []byte("not json"))
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
