package yangson

// instanceKind discriminates the three instance-node shapes the spec's
// §3 data model names: Root, Object member, Array entry.
type instanceKind int

const (
	kindRoot instanceKind = iota
	kindObjectMember
	kindArrayEntry
)

// InstanceNode is the persistent instance zipper's node. Every mutating
// method returns a new *InstanceNode; the receiver, and every instance
// node reachable from it, remains valid and unchanged (spec §3
// Lifecycle, §8 invariant 1).
type InstanceNode struct {
	kind   instanceKind
	value  Value
	schema *SchemaNode

	// kindObjectMember only.
	name      string      // this member's instance-name key
	siblings  *ObjectValue // the object's OTHER members, in original order
	siblingPos int         // this member's position among all members, for up()
	objParent *InstanceNode

	// kindArrayEntry only.
	index        int
	before       *entryList // nearer entries first (closest to focus)
	after        *entryList // farther entries, in document order
	arrayParent  *InstanceNode // the object member or root owning this array
}

// NewRoot builds the root instance node over v, bound to schema.
func NewRoot(schema *SchemaNode, v Value) *InstanceNode {
	return &InstanceNode{kind: kindRoot, schema: schema, value: v}
}

// FromRaw decodes raw (an RFC 7951 JSON-shaped generic value, as produced
// by encoding/json.Unmarshal into interface{}) against schema and returns
// its root instance node (spec §4.3).
func FromRaw(schema *SchemaNode, raw interface{}) (*InstanceNode, error) {
	v, err := schema.FromRawValue(raw)
	if err != nil {
		return nil, err
	}
	return NewRoot(schema, v), nil
}

// Value returns the node's focused value.
func (n *InstanceNode) Value() Value { return n.value }

// Schema returns the node's corresponding schema node.
func (n *InstanceNode) Schema() *SchemaNode { return n.schema }

// IsRoot reports whether n is the document root.
func (n *InstanceNode) IsRoot() bool { return n.kind == kindRoot }

func instancePath(n *InstanceNode) string {
	switch n.kind {
	case kindRoot:
		return "/"
	case kindObjectMember:
		return instancePath(n.objParent) + n.name + "/"
	default:
		return instancePath(n.arrayParent) + "[]/"
	}
}

// Child indexes an object-valued node by instance name (spec §4.6).
func (n *InstanceNode) Child(name string) (*InstanceNode, error) {
	o, ok := n.value.(*ObjectValue)
	if !ok {
		return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "not an object")
	}
	v, ok := o.Get(name)
	if !ok {
		return nil, newInstanceErrorf(KindNonexistentInstance, instancePath(n), "no member %q", name)
	}
	childSchema := childSchemaFor(n.schema, name)
	if childSchema == nil {
		return nil, newInstanceErrorf(KindNonexistentInstance, instancePath(n), "no member %q", name)
	}
	rest, _ := o.Without(name)
	return &InstanceNode{
		kind: kindObjectMember, value: v, schema: childSchema,
		name: name, siblings: rest, siblingPos: o.IndexOf(name), objParent: n,
	}, nil
}

// At indexes an array-valued node by position; negative indices count
// from the tail (spec §4.6).
func (n *InstanceNode) At(i int) (*InstanceNode, error) {
	a, ok := n.value.(*ArrayValue)
	if !ok {
		return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "not an array")
	}
	idx := i
	if idx < 0 {
		idx += a.Len()
	}
	v, ok := a.At(idx)
	if !ok {
		return nil, newInstanceErrorf(KindNonexistentInstance, instancePath(n), "index %d out of range", i)
	}
	items := a.Items()
	return &InstanceNode{
		kind: kindArrayEntry, value: v, schema: n.schema, index: idx,
		before: entryListFromSlice(reverseValues(items[:idx])),
		after:  entryListFromSlice(items[idx+1:]),
		arrayParent: n,
	}, nil
}

func reverseValues(items []Value) []Value {
	out := make([]Value, len(items))
	for i, v := range items {
		out[len(items)-1-i] = v
	}
	return out
}

// LookUp linearly scans a list-valued node for the entry whose key leaves
// match keys (spec §4.6 look_up).
func (n *InstanceNode) LookUp(keys []KeyValue) (*InstanceNode, error) {
	a, ok := n.value.(*ArrayValue)
	if !ok {
		return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "not an array")
	}
	for i, it := range a.Items() {
		if entryMatchesKeys(it, keys) {
			return n.At(i)
		}
	}
	return nil, newInstanceErrorf(KindNonexistentInstance, instancePath(n), "no entry matches key")
}

// LookUpValue linearly scans a leaf-list-valued node for the entry equal
// to v.
func (n *InstanceNode) LookUpValue(v interface{}) (*InstanceNode, error) {
	a, ok := n.value.(*ArrayValue)
	if !ok {
		return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "not an array")
	}
	for i, it := range a.Items() {
		if sv, ok := it.(*ScalarValue); ok && valuesEqual(sv.Value, v) {
			return n.At(i)
		}
	}
	return nil, newInstanceErrorf(KindNonexistentInstance, instancePath(n), "no entry equals value")
}

// Up reconstitutes the parent instance node (spec §4.6).
func (n *InstanceNode) Up() (*InstanceNode, error) {
	switch n.kind {
	case kindRoot:
		return nil, newInstanceErrorf(KindNonexistentInstance, instancePath(n), "root has no parent")
	case kindObjectMember:
		parentObj := n.siblings.WithAt(n.name, n.value, n.siblingPos)
		return withValue(n.objParent, parentObj), nil
	default: // kindArrayEntry
		items := n.before.toSlice()
		reverseInPlace(items)
		items = append(items, n.value)
		items = append(items, n.after.toSlice()...)
		return withValue(n.arrayParent, NewArray(items...)), nil
	}
}

func reverseInPlace(items []Value) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

// withValue returns a shallow copy of n focused on a replacement value,
// preserving its structural position (siblings/before/after untouched).
func withValue(n *InstanceNode, v Value) *InstanceNode {
	cp := *n
	cp.value = v
	return &cp
}

// Top iterates Up to the root (spec §4.6).
func (n *InstanceNode) Top() *InstanceNode {
	cur := n
	for cur.kind != kindRoot {
		up, err := cur.Up()
		if err != nil {
			return cur
		}
		cur = up
	}
	return cur
}

// Next moves to the following array entry, O(1) via the before/after
// cons lists.
func (n *InstanceNode) Next() (*InstanceNode, error) {
	if n.kind != kindArrayEntry || n.after == nil {
		return nil, newInstanceErrorf(KindNonexistentInstance, instancePath(n), "no next entry")
	}
	return &InstanceNode{
		kind: kindArrayEntry, value: n.after.head, schema: n.schema, index: n.index + 1,
		before: consEntry(n.value, n.before), after: n.after.tail, arrayParent: n.arrayParent,
	}, nil
}

// Previous moves to the preceding array entry, O(1).
func (n *InstanceNode) Previous() (*InstanceNode, error) {
	if n.kind != kindArrayEntry || n.before == nil {
		return nil, newInstanceErrorf(KindNonexistentInstance, instancePath(n), "no previous entry")
	}
	return &InstanceNode{
		kind: kindArrayEntry, value: n.before.head, schema: n.schema, index: n.index - 1,
		before: n.before.tail, after: consEntry(n.value, n.after), arrayParent: n.arrayParent,
	}, nil
}

// Goto composes route's selectors starting from n.
func (n *InstanceNode) Goto(route InstanceRoute) (*InstanceNode, error) {
	return route.Goto(n)
}

// Update replaces the focused value (spec §4.6 update). UpdateRaw is the
// raw mode, which decodes the replacement against the schema first.
func (n *InstanceNode) Update(v Value) (*InstanceNode, error) {
	return withValue(n, v), nil
}

// UpdateRaw implements update(value, raw=true). An array entry shares its
// list/leaf-list schema node, whose FromRawValue decodes a whole array, so
// an entry's replacement is decoded as a one-entry array and unwrapped,
// i.e. by the per-entry decoder rather than as a list.
func (n *InstanceNode) UpdateRaw(raw interface{}) (*InstanceNode, error) {
	if n.kind == kindArrayEntry {
		a, err := n.schema.FromRawValue([]interface{}{raw})
		if err != nil {
			return nil, err
		}
		return withValue(n, a.(*ArrayValue).Items()[0]), nil
	}
	v, err := n.schema.FromRawValue(raw)
	if err != nil {
		return nil, err
	}
	return withValue(n, v), nil
}

// PutMember sets or creates a named member on an object-valued node
// (spec §4.6 put_member). Creating a member the schema does not define
// raises *nonexistent-schema-node*.
func (n *InstanceNode) PutMember(name string, v Value) (*InstanceNode, error) {
	o, ok := n.value.(*ObjectValue)
	if !ok {
		return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "not an object")
	}
	if childSchemaFor(n.schema, name) == nil {
		return nil, newSchemaErrorf(KindNonexistentSchemaNode, n.schema.Path(), "no schema child %q", name)
	}
	return withValue(n, o.With(name, v)), nil
}

// PutMemberRaw implements put_member(name, raw, raw=true).
func (n *InstanceNode) PutMemberRaw(name string, raw interface{}) (*InstanceNode, error) {
	childSchema := childSchemaFor(n.schema, name)
	if childSchema == nil {
		return nil, newSchemaErrorf(KindNonexistentSchemaNode, n.schema.Path(), "no schema child %q", name)
	}
	v, err := childSchema.FromRawValue(raw)
	if err != nil {
		return nil, err
	}
	o, ok := n.value.(*ObjectValue)
	if !ok {
		return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "not an object")
	}
	return withValue(n, o.With(name, v)), nil
}

// DeleteItem removes a member (key is a string) or array entry (key is
// an int) from the focused value (spec §4.6 delete_item).
func (n *InstanceNode) DeleteItem(key interface{}) (*InstanceNode, error) {
	switch k := key.(type) {
	case string:
		o, ok := n.value.(*ObjectValue)
		if !ok {
			return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "not an object")
		}
		nv, ok := o.Without(k)
		if !ok {
			return nil, newInstanceErrorf(KindNonexistentInstance, instancePath(n), "no member %q", k)
		}
		return withValue(n, nv), nil
	case int:
		a, ok := n.value.(*ArrayValue)
		if !ok {
			return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "not an array")
		}
		idx := k
		if idx < 0 {
			idx += a.Len()
		}
		if idx < 0 || idx >= a.Len() {
			return nil, newInstanceErrorf(KindNonexistentInstance, instancePath(n), "index %d out of range", k)
		}
		return withValue(n, a.WithRemoved(idx)), nil
	default:
		return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "bad delete_item key %T", key)
	}
}

// InsertBefore inserts v ahead of the focused array entry and returns a
// new entry focused on v, at the focus's original index (spec §4.6).
func (n *InstanceNode) InsertBefore(v Value) (*InstanceNode, error) {
	if n.kind != kindArrayEntry {
		return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "insert_before requires an array entry")
	}
	return &InstanceNode{
		kind: kindArrayEntry, value: v, schema: n.schema, index: n.index,
		before: n.before, after: consEntry(n.value, n.after), arrayParent: n.arrayParent,
	}, nil
}

// InsertAfter inserts v following the focused array entry and returns a
// new entry focused on v, one position after the former focus (spec
// §4.6).
func (n *InstanceNode) InsertAfter(v Value) (*InstanceNode, error) {
	if n.kind != kindArrayEntry {
		return nil, newInstanceErrorf(KindInstanceValueError, instancePath(n), "insert_after requires an array entry")
	}
	return &InstanceNode{
		kind: kindArrayEntry, value: v, schema: n.schema, index: n.index + 1,
		before: consEntry(n.value, n.before), after: n.after, arrayParent: n.arrayParent,
	}, nil
}

// AddDefaultsHere runs AddDefaults (the Value-level algorithm, spec
// §4.4) over n's focused subtree and refocuses on the result.
func (n *InstanceNode) AddDefaultsHere(ct ContentType, lazy bool) (*InstanceNode, error) {
	v, err := AddDefaults(n.schema, n.value, ct, lazy)
	if err != nil {
		return nil, err
	}
	return withValue(n, v), nil
}

// Validate runs the two-scope validation walk (spec §4.5) over n's
// focused subtree.
func (n *InstanceNode) Validate(scope ValidationScope, ct ContentType) error {
	return Validate(n.schema, n.value, scope, ct)
}
