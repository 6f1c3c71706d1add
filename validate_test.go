package yangson

import "testing"

const mandatoryYANG = `
module mandatory {
  namespace "urn:mandatory";
  prefix m;

  container top {
    leaf required {
      type string;
      mandatory true;
    }
    leaf-list ids {
      type uint32;
      min-elements 1;
    }
    list entries {
      key "id";
      max-elements 2;
      leaf id { type uint32; }
      leaf label { type string; }
      unique "label";
    }
  }
}
`

func TestValidateMandatoryMissing(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"ids":     []interface{}{float64(1)},
		"entries": []interface{}{},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	if err := Validate(top, v, ScopeSyntax, ContentAll); err == nil {
		t.Fatal("expected a mandatory-node violation")
	}
}

func TestValidateMandatoryPresent(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"required": "x",
		"ids":      []interface{}{float64(1)},
		"entries":  []interface{}{},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	if err := Validate(top, v, ScopeSyntax, ContentAll); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateMinElements(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"required": "x",
		"ids":      []interface{}{},
		"entries":  []interface{}{},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	if err := Validate(top, v, ScopeSyntax, ContentAll); err == nil {
		t.Fatal("expected a min-elements violation on ids")
	}
}

func TestValidateMaxElements(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"required": "x",
		"ids":      []interface{}{float64(1)},
		"entries": []interface{}{
			map[string]interface{}{"id": float64(1), "label": "a"},
			map[string]interface{}{"id": float64(2), "label": "b"},
			map[string]interface{}{"id": float64(3), "label": "c"},
		},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	if err := Validate(top, v, ScopeSyntax, ContentAll); err == nil {
		t.Fatal("expected a max-elements violation on entries")
	}
}

func TestValidateDuplicateKey(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"required": "x",
		"ids":      []interface{}{float64(1)},
		"entries": []interface{}{
			map[string]interface{}{"id": float64(1), "label": "a"},
			map[string]interface{}{"id": float64(1), "label": "b"},
		},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	if err := Validate(top, v, ScopeSyntax, ContentAll); err == nil {
		t.Fatal("expected a duplicate-key violation")
	}
}

func TestValidateUniqueConstraint(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"required": "x",
		"ids":      []interface{}{float64(1)},
		"entries": []interface{}{
			map[string]interface{}{"id": float64(1), "label": "dup"},
			map[string]interface{}{"id": float64(2), "label": "dup"},
		},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	if err := Validate(top, v, ScopeSyntax, ContentAll); err == nil {
		t.Fatal("expected a unique constraint violation")
	}
}

func TestValidateChoiceExclusivity(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{
		"a":     "x",
		"b":     "y",
		"items": []interface{}{},
	})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	if err := Validate(top, v, ScopeSyntax, ContentAll); err == nil {
		t.Fatal("expected a choice-exclusivity violation when both cases are present")
	}
}

func TestValidateContentTypeFilter(t *testing.T) {
	root := buildSchema(t, mandatoryYANG, "mandatory", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(map[string]interface{}{})
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	if err := Validate(top, v, ScopeSyntax, ContentNonConfig); err != nil {
		t.Fatalf("a config-true mandatory node absent should not violate ContentNonConfig: %v", err)
	}
	if err := Validate(top, v, ScopeSyntax, ContentAll); err == nil {
		t.Fatal("the same document should still violate the mandatory-node rule under ContentAll")
	}
}
