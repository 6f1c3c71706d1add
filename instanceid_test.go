package yangson

import "testing"

func TestParseInstanceIdentifierLeafListValue(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	route, err := ParseInstanceIdentifier("/top/tags[.='x']", root)
	if err != nil {
		t.Fatalf("ParseInstanceIdentifier: %v", err)
	}
	if len(route) != 3 {
		t.Fatalf("route = %v, want 3 selectors", route)
	}
	ev, ok := route[2].(EntryValue)
	if !ok || ev.Value != "x" {
		t.Fatalf("route[2] = %#v, want EntryValue{\"x\"}", route[2])
	}
}

func TestParseInstanceIdentifierKeyPredicates(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	route, err := ParseInstanceIdentifier(`/top/items[id='1']`, root)
	if err != nil {
		t.Fatalf("ParseInstanceIdentifier: %v", err)
	}
	ek, ok := route[2].(EntryKeys)
	if !ok || len(ek.Keys) != 1 || ek.Keys[0].Name != "id" {
		t.Fatalf("route[2] = %#v, want EntryKeys{id}", route[2])
	}
}

func TestParseInstanceIdentifierWhitespaceTolerant(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	route, err := ParseInstanceIdentifier(`  /top/items[ id = '1' ]  `, root)
	if err != nil {
		t.Fatalf("ParseInstanceIdentifier: %v", err)
	}
	if len(route) != 3 {
		t.Fatalf("route = %v, want 3 selectors", route)
	}
}

func TestParseInstanceIdentifierPositionalIndex(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	route, err := ParseInstanceIdentifier("/top/items[2]", root)
	if err != nil {
		t.Fatalf("ParseInstanceIdentifier: %v", err)
	}
	if len(route) != 3 {
		t.Fatalf("route = %v, want 3 selectors", route)
	}
	ei, ok := route[2].(EntryIndex)
	if !ok || ei.Index != 1 {
		t.Fatalf("route[2] = %#v, want EntryIndex{1} (0-based for 1-based predicate [2])", route[2])
	}
}

func TestParseInstanceIdentifierPositionalIndexGoto(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(sampleTopRaw())
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	n := NewRoot(top, v)

	route, err := ParseInstanceIdentifier("/items[2]/value", top)
	if err != nil {
		t.Fatalf("ParseInstanceIdentifier: %v", err)
	}
	got, err := route.Goto(n)
	if err != nil {
		t.Fatalf("Goto: %v", err)
	}
	if sv := got.Value().(*ScalarValue); sv.Value != "two" {
		t.Fatalf("Goto resolved to %v, want \"two\"", sv.Value)
	}
}

func TestParseInstanceIdentifierDoubleQuoted(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	route, err := ParseInstanceIdentifier(`/top/tags[.="x"]`, root)
	if err != nil {
		t.Fatalf("ParseInstanceIdentifier: %v", err)
	}
	ev, ok := route[2].(EntryValue)
	if !ok || ev.Value != "x" {
		t.Fatalf("route[2] = %#v, want EntryValue{\"x\"}", route[2])
	}
}

func TestParseInstanceIdentifierUnknownKey(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	_, err := ParseInstanceIdentifier(`/top/items[nosuch='1']`, root)
	if err == nil {
		t.Fatal("expected an error for an unknown key name")
	}
}

func TestParseInstanceIdentifierGoto(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(sampleTopRaw())
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	n := NewRoot(top, v)

	route, err := ParseInstanceIdentifier(`/items[id='2']/value`, top)
	if err != nil {
		t.Fatalf("ParseInstanceIdentifier: %v", err)
	}
	got, err := route.Goto(n)
	if err != nil {
		t.Fatalf("Goto: %v", err)
	}
	if sv := got.Value().(*ScalarValue); sv.Value != "two" {
		t.Fatalf("Goto resolved to %v, want \"two\"", sv.Value)
	}
}
