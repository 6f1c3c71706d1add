package yangson

import "testing"

func TestEntryListSharesTail(t *testing.T) {
	tail := entryListFromSlice([]Value{NewScalar(nil, "b"), NewScalar(nil, "c")})
	a := consEntry(NewScalar(nil, "a"), tail)
	if a.tail != tail {
		t.Fatal("consEntry should share tail, not copy it")
	}
	if lenEntryList(a) != 3 {
		t.Fatalf("lenEntryList(a) = %d, want 3", lenEntryList(a))
	}
	if lenEntryList(tail) != 2 {
		t.Fatalf("lenEntryList(tail) = %d, want 2", lenEntryList(tail))
	}
}

func TestEntryListRoundTrip(t *testing.T) {
	items := []Value{NewScalar(nil, "x"), NewScalar(nil, "y"), NewScalar(nil, "z")}
	l := entryListFromSlice(items)
	out := l.toSlice()
	if len(out) != len(items) {
		t.Fatalf("toSlice len = %d, want %d", len(out), len(items))
	}
	for i, v := range out {
		if v.(*ScalarValue).Value != items[i].(*ScalarValue).Value {
			t.Fatalf("out[%d] = %#v, want %#v", i, v, items[i])
		}
	}
}

func TestEntryListNilSafe(t *testing.T) {
	if lenEntryList(nil) != 0 {
		t.Fatal("lenEntryList(nil) should be 0")
	}
	var l *entryList
	if out := l.toSlice(); len(out) != 0 {
		t.Fatalf("nil.toSlice() = %v, want empty", out)
	}
}
