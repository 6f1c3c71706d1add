package yangson

import (
	"testing"

	"github.com/openconfig/goyang/pkg/yang"
)

func sampleTopRaw() map[string]interface{} {
	return map[string]interface{}{
		"name": "bob",
		"tags": []interface{}{"x", "y"},
		"items": []interface{}{
			map[string]interface{}{"id": float64(1), "value": "one"},
			map[string]interface{}{"id": float64(2), "value": "two"},
		},
	}
}

func TestInstanceChildUpRoundTrip(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(sampleTopRaw())
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	n := NewRoot(top, v)

	name, err := n.Child("name")
	if err != nil {
		t.Fatalf("Child(name): %v", err)
	}
	if sv, ok := name.Value().(*ScalarValue); !ok || sv.Value != "bob" {
		t.Fatalf("name value = %#v, want \"bob\"", name.Value())
	}

	back, err := name.Up()
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	got, err := MarshalJSON(top, back.Value())
	if err != nil {
		t.Fatalf("MarshalJSON(back): %v", err)
	}
	want, err := MarshalJSON(top, n.Value())
	if err != nil {
		t.Fatalf("MarshalJSON(original): %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("round-tripped value differs from original: %s vs %s", got, want)
	}
}

func TestInstanceMutationPersistence(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(sampleTopRaw())
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	n := NewRoot(top, v)

	name, err := n.Child("name")
	if err != nil {
		t.Fatalf("Child(name): %v", err)
	}
	changed, err := name.Update(NewScalar(nil, "alice"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	origName, err := n.Child("name")
	if err != nil {
		t.Fatalf("Child(name) on original: %v", err)
	}
	if sv := origName.Value().(*ScalarValue); sv.Value != "bob" {
		t.Fatalf("original node mutated: name = %v, want \"bob\"", sv.Value)
	}
	if sv := changed.Value().(*ScalarValue); sv.Value != "alice" {
		t.Fatalf("changed.Value() = %v, want \"alice\"", sv.Value)
	}

	up, err := changed.Up()
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	upName, err := up.Child("name")
	if err != nil {
		t.Fatalf("Child(name) on updated parent: %v", err)
	}
	if sv := upName.Value().(*ScalarValue); sv.Value != "alice" {
		t.Fatalf("updated parent did not carry the change through: %v", sv.Value)
	}
}

func TestInstanceArrayNavigation(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(sampleTopRaw())
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	n := NewRoot(top, v)

	items, err := n.Child("items")
	if err != nil {
		t.Fatalf("Child(items): %v", err)
	}
	first, err := items.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	second, err := first.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	id, err := second.Child("id")
	if err != nil {
		t.Fatalf("Child(id): %v", err)
	}
	sv := id.Value().(*ScalarValue)
	num, ok := sv.Value.(yang.Number)
	if !ok || num.String() != "2" {
		t.Fatalf("second entry id = %#v, want 2", sv.Value)
	}

	back, err := second.Previous()
	if err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if back.Value() != first.Value() {
		t.Fatalf("Previous after Next did not return to the original entry")
	}
}

func TestInstanceInsertAndDelete(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(sampleTopRaw())
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	n := NewRoot(top, v)

	items, err := n.Child("items")
	if err != nil {
		t.Fatalf("Child(items): %v", err)
	}
	first, err := items.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}

	inserted, err := first.InsertBefore(NewObject().
		With("id", NewScalar(nil, float64(0))).
		With("value", NewScalar(nil, "zero")))
	if err != nil {
		t.Fatalf("InsertBefore: %v", err)
	}
	grown, err := inserted.Up()
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	grownArr := grown.Value().(*ArrayValue)
	if grownArr.Len() != 3 {
		t.Fatalf("grownArr.Len() = %d, want 3", grownArr.Len())
	}

	origArr := items.Value().(*ArrayValue)
	if origArr.Len() != 2 {
		t.Fatalf("original items array mutated: len = %d, want 2", origArr.Len())
	}

	deleted, err := grown.DeleteItem(0)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	deletedArr := deleted.Value().(*ArrayValue)
	if deletedArr.Len() != 2 {
		t.Fatalf("deletedArr.Len() = %d, want 2", deletedArr.Len())
	}
}

func TestInstanceTop(t *testing.T) {
	root := buildSchema(t, exampleYANG, "example", nil)
	top := root.GetChild("top", "")
	v, err := top.FromRawValue(sampleTopRaw())
	if err != nil {
		t.Fatalf("FromRawValue: %v", err)
	}
	n := NewRoot(top, v)
	items, err := n.Child("items")
	if err != nil {
		t.Fatalf("Child(items): %v", err)
	}
	first, err := items.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	id, err := first.Child("id")
	if err != nil {
		t.Fatalf("Child(id): %v", err)
	}
	got, err := MarshalJSON(top, id.Top().Value())
	if err != nil {
		t.Fatalf("MarshalJSON(Top): %v", err)
	}
	want, err := MarshalJSON(top, n.Value())
	if err != nil {
		t.Fatalf("MarshalJSON(original): %v", err)
	}
	if string(got) != string(want) {
		t.Fatal("Top() did not climb back to the original root value")
	}
}
