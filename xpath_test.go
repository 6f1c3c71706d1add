package yangson

import "testing"

func TestEvaluateWhenSimpleComparison(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"required": "abc",
		"ids":      []interface{}{float64(1)},
		"entries":  []interface{}{},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	ok, err := EvaluateWhen(top, v, top, nil, "required = 'abc'")
	if err != nil {
		t.Fatalf("EvaluateWhen: %v", err)
	}
	if !ok {
		t.Fatal("expected required = 'abc' to hold")
	}
	ok, err = EvaluateWhen(top, v, top, nil, "required = 'xyz'")
	if err != nil {
		t.Fatalf("EvaluateWhen: %v", err)
	}
	if ok {
		t.Fatal("expected required = 'xyz' to be false")
	}
}

func TestEvaluateWhenBooleanConnectives(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"required": "abc",
		"ids":      []interface{}{float64(1)},
		"entries":  []interface{}{},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	cases := []struct {
		expr string
		want bool
	}{
		{"required = 'abc' and required != 'xyz'", true},
		{"required = 'xyz' or required = 'abc'", true},
		{"required = 'xyz' and required = 'abc'", false},
		{"not(required = 'xyz')", true},
		{"not(required = 'abc')", false},
	}
	for _, c := range cases {
		ok, err := EvaluateWhen(top, v, top, nil, c.expr)
		if err != nil {
			t.Fatalf("EvaluateWhen(%q): %v", c.expr, err)
		}
		if ok != c.want {
			t.Fatalf("EvaluateWhen(%q) = %v, want %v", c.expr, ok, c.want)
		}
	}
}

func TestEvaluateWhenRelativeNavigation(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	requiredSchema := top.GetDataChild("required", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"required": "abc",
		"ids":      []interface{}{float64(1)},
		"entries":  []interface{}{},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	ok, err := EvaluateWhen(top, v, requiredSchema, []string{"required"}, "../required = 'abc'")
	if err != nil {
		t.Fatalf("EvaluateWhen: %v", err)
	}
	if !ok {
		t.Fatal("expected ../required = 'abc' to hold from the required leaf's own context")
	}
}

func TestResolvePathAbsolute(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"required": "abc",
		"ids":      []interface{}{float64(1)},
		"entries":  []interface{}{},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	got, err := ResolvePath(top, v, top, nil, "/required")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	sv, ok := got.(*ScalarValue)
	if !ok || sv.Value != "abc" {
		t.Fatalf("ResolvePath(/required) = %#v, want scalar \"abc\"", got)
	}
}
