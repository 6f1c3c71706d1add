package yangson

import "testing"

func TestAddDefaultsLeafAndChoice(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")

	v, err := top.FromRawValue(map[string]interface{}{
		"items": []interface{}{},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}

	filled, err := AddDefaults(top, v, ContentAll, false)
	if err != nil {
		t.Fatalf("AddDefaults: %v", err)
	}
	o := filled.(*ObjectValue)

	name, ok := o.Get("name")
	if !ok {
		t.Fatal("expected a defaulted name member")
	}
	if sv := name.(*ScalarValue); sv.Value != "anon" {
		t.Fatalf("name default = %v, want \"anon\"", sv.Value)
	}

	a, ok := o.Get("a")
	if !ok {
		t.Fatal("expected the default choice case's leaf a to be materialized")
	}
	if sv := a.(*ScalarValue); sv.Value != "A" {
		t.Fatalf("a default = %v, want \"A\"", sv.Value)
	}
	if _, ok := o.Get("b"); ok {
		t.Fatal("non-default case leaf b should not be materialized")
	}

	origObj := v.(*ObjectValue)
	if _, ok := origObj.Get("name"); ok {
		t.Fatal("original value mutated by AddDefaults")
	}
}

func TestAddDefaultsSkipsExplicitCase(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")

	v, err := top.FromRawValue(map[string]interface{}{
		"b":     "explicit",
		"items": []interface{}{},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	filled, err := AddDefaults(top, v, ContentAll, false)
	if err != nil {
		t.Fatalf("AddDefaults: %v", err)
	}
	o := filled.(*ObjectValue)
	if _, ok := o.Get("a"); ok {
		t.Fatal("default case a should not be materialized once case b is explicitly present")
	}
	if b, ok := o.Get("b"); !ok || b.(*ScalarValue).Value != "explicit" {
		t.Fatal("explicit case b value lost")
	}
}

func TestAddDefaultsContentFilter(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{"items": []interface{}{}})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}

	filled, err := AddDefaults(top, v, ContentNonConfig, false)
	if err != nil {
		t.Fatalf("AddDefaults: %v", err)
	}
	o := filled.(*ObjectValue)
	if _, ok := o.Get("name"); ok {
		t.Fatal("config-only default leaf should be excluded under ContentNonConfig")
	}
}
