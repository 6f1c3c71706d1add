package yangson

// entryList is a genuine persistent singly linked list of array entries,
// used by ArrayEntry for its "before" and "after" neighbor chains (spec
// §3, §9: "the sibling linked list must be a genuine singly-linked
// persistent list, head/tail sharing"). Prepending never copies the tail;
// any two lists that share a suffix share its nodes.
type entryList struct {
	head Value
	tail *entryList
}

// consEntry prepends v to l without touching l.
func consEntry(v Value, l *entryList) *entryList {
	return &entryList{head: v, tail: l}
}

// lenEntryList counts elements of l, nil-safe.
func lenEntryList(l *entryList) int {
	n := 0
	for ; l != nil; l = l.tail {
		n++
	}
	return n
}

// toSlice renders l (head first) as a slice, nil-safe.
func (l *entryList) toSlice() []Value {
	items := make([]Value, 0, lenEntryList(l))
	for n := l; n != nil; n = n.tail {
		items = append(items, n.head)
	}
	return items
}

// entryListFromSlice builds a list from items such that toSlice on the
// result reproduces items in the same order.
func entryListFromSlice(items []Value) *entryList {
	var l *entryList
	for i := len(items) - 1; i >= 0; i-- {
		l = consEntry(items[i], l)
	}
	return l
}
