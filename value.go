package yangson

import "time"

// now is a seam over time.Now so defaulting/mutation timestamps are
// observable and reproducible in tests without faking the clock package.
var now = time.Now

// Value is the tagged union the spec's data model describes: a Scalar, an
// Object (an ordered module:local -> Value mapping) or an Array (an
// ordered sequence, used for list and leaf-list instances). It is a closed
// sum type: the only implementations are the three concrete types below,
// enforced by the unexported isValue marker method.
type Value interface {
	isValue()
	// Timestamp returns the last-modification wall-clock time of this
	// value. Scalars report the zero Time; Object/Array report their own.
	Timestamp() time.Time
}

// ScalarValue wraps a single typed primitive produced by a Datatype's
// ParseValue/FromRaw. Scalars carry no timestamp of their own.
type ScalarValue struct {
	Type  Datatype
	Value interface{} // the cooked Go representation, see Datatype docs
}

func (*ScalarValue) isValue() {}

func (*ScalarValue) Timestamp() time.Time { return time.Time{} }

// NewScalar wraps a cooked value under the given type without validating
// it; callers that need validation go through Datatype.ParseValue/FromRaw.
func NewScalar(t Datatype, v interface{}) *ScalarValue {
	return &ScalarValue{Type: t, Value: v}
}

// ObjectValue is a persistent, insertion-ordered mapping from instance
// name to Value, used for container- and list-entry-shaped data. It is
// copy-on-write: every mutating method returns a new *ObjectValue sharing
// the unmodified members with the receiver.
type ObjectValue struct {
	order []string
	byKey map[string]Value
	ts    time.Time
}

func (*ObjectValue) isValue() {}

func (o *ObjectValue) Timestamp() time.Time { return o.ts }

// NewObject builds an empty, freshly timestamped object.
func NewObject() *ObjectValue {
	return &ObjectValue{byKey: map[string]Value{}, ts: now()}
}

// Len returns the number of members.
func (o *ObjectValue) Len() int {
	if o == nil {
		return 0
	}
	return len(o.order)
}

// Keys returns the member names in insertion order. The returned slice
// must not be mutated by the caller.
func (o *ObjectValue) Keys() []string {
	if o == nil {
		return nil
	}
	return o.order
}

// Get returns the member named key, or (nil, false) if absent.
func (o *ObjectValue) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.byKey[key]
	return v, ok
}

// With returns a new object with key set to v, appended at the end of the
// order if it is new, or replaced in place if it already exists.
func (o *ObjectValue) With(key string, v Value) *ObjectValue {
	n := o.clone()
	if _, exists := n.byKey[key]; !exists {
		n.order = append(n.order, key)
	}
	n.byKey[key] = v
	n.ts = now()
	return n
}

// WithAt is like With but inserts a brand-new key at a specific position
// in the order slice, used by ObjectMember.Up to restore a member to its
// original declaration position.
func (o *ObjectValue) WithAt(key string, v Value, pos int) *ObjectValue {
	n := o.clone()
	if _, exists := n.byKey[key]; exists {
		n.byKey[key] = v
		n.ts = now()
		return n
	}
	order := make([]string, 0, len(n.order)+1)
	order = append(order, n.order[:pos]...)
	order = append(order, key)
	order = append(order, n.order[pos:]...)
	n.order = order
	n.byKey[key] = v
	n.ts = now()
	return n
}

// Without returns a new object with key removed. ok is false if key was
// not present (the returned object is then the unmodified receiver).
func (o *ObjectValue) Without(key string) (result *ObjectValue, ok bool) {
	if _, exists := o.byKey[key]; !exists {
		return o, false
	}
	n := o.clone()
	delete(n.byKey, key)
	for i, k := range n.order {
		if k == key {
			n.order = append(append([]string{}, n.order[:i]...), n.order[i+1:]...)
			break
		}
	}
	n.ts = now()
	return n, true
}

// IndexOf returns the position of key in declaration order, or -1.
func (o *ObjectValue) IndexOf(key string) int {
	if o == nil {
		return -1
	}
	for i, k := range o.order {
		if k == key {
			return i
		}
	}
	return -1
}

func (o *ObjectValue) clone() *ObjectValue {
	n := &ObjectValue{
		order: append([]string{}, o.order...),
		byKey: make(map[string]Value, len(o.byKey)+1),
		ts:    o.ts,
	}
	for k, v := range o.byKey {
		n.byKey[k] = v
	}
	return n
}

// ArrayValue is a persistent, ordered sequence of Value used for list and
// leaf-list instance data.
type ArrayValue struct {
	items []Value
	ts    time.Time
}

func (*ArrayValue) isValue() {}

func (a *ArrayValue) Timestamp() time.Time { return a.ts }

// NewArray builds a freshly timestamped array from items (copied).
func NewArray(items ...Value) *ArrayValue {
	return &ArrayValue{items: append([]Value{}, items...), ts: now()}
}

// Len returns the number of entries.
func (a *ArrayValue) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// At returns the entry at index i (supporting negative indices counted
// from the tail, per the spec's array-indexing contract) and whether i
// was in range.
func (a *ArrayValue) At(i int) (Value, bool) {
	if a == nil {
		return nil, false
	}
	if i < 0 {
		i += len(a.items)
	}
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}

// Items returns the entries in order. Must not be mutated by the caller.
func (a *ArrayValue) Items() []Value {
	if a == nil {
		return nil
	}
	return a.items
}

// WithAt returns a new array with index i replaced by v.
func (a *ArrayValue) WithAt(i int, v Value) *ArrayValue {
	if i < 0 {
		i += len(a.items)
	}
	items := append([]Value{}, a.items...)
	items[i] = v
	return &ArrayValue{items: items, ts: now()}
}

// WithInserted returns a new array with v inserted at position i (entries
// at and after i shift right).
func (a *ArrayValue) WithInserted(i int, v Value) *ArrayValue {
	items := make([]Value, 0, len(a.items)+1)
	items = append(items, a.items[:i]...)
	items = append(items, v)
	items = append(items, a.items[i:]...)
	return &ArrayValue{items: items, ts: now()}
}

// WithRemoved returns a new array without the entry at index i.
func (a *ArrayValue) WithRemoved(i int) *ArrayValue {
	items := make([]Value, 0, len(a.items)-1)
	items = append(items, a.items[:i]...)
	items = append(items, a.items[i+1:]...)
	return &ArrayValue{items: items, ts: now()}
}
