package yangson

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"
)

// Selector is one step of an InstanceRoute (spec §4.6 "Route application").
// PeekStep never errors; GotoStep drives the instance zipper and may raise
// *nonexistent-instance*.
type Selector interface {
	PeekStep(v Value) Value
	GotoStep(n *InstanceNode) (*InstanceNode, error)
	String() string
}

// InstanceRoute is an ordered sequence of selectors, produced by the two
// path parsers (path.go, instanceid.go) and consumed by goto/Resolve.
type InstanceRoute []Selector

// Goto composes GotoStep over every selector in the route, starting from n.
func (r InstanceRoute) Goto(n *InstanceNode) (*InstanceNode, error) {
	cur := n
	for _, s := range r {
		var err error
		cur, err = s.GotoStep(cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// ResolveValue composes PeekStep over every selector against a bare value
// tree, without an instance node — used by semantic validation's leafref
// and instance-identifier checks, which only need to know whether
// something exists at the far end, not a navigable zipper position.
func (r InstanceRoute) ResolveValue(root Value) Value {
	cur := root
	for _, s := range r {
		if cur == nil {
			return nil
		}
		cur = s.PeekStep(cur)
	}
	return cur
}

// String renders the route in YANG instance-identifier textual form.
func (r InstanceRoute) String() string {
	var b strings.Builder
	for _, s := range r {
		b.WriteString(s.String())
	}
	return b.String()
}

// MemberName selects an object member by its instance name ("module:local"
// or plain "local").
type MemberName struct{ Name string }

func (s MemberName) PeekStep(v Value) Value {
	o, ok := v.(*ObjectValue)
	if !ok {
		return nil
	}
	c, _ := o.Get(s.Name)
	return c
}

func (s MemberName) GotoStep(n *InstanceNode) (*InstanceNode, error) {
	return n.Child(s.Name)
}

func (s MemberName) String() string { return "/" + s.Name }

// EntryIndex selects an array entry by position; negative indices count
// from the tail.
type EntryIndex struct{ Index int }

func (s EntryIndex) PeekStep(v Value) Value {
	a, ok := v.(*ArrayValue)
	if !ok {
		return nil
	}
	c, _ := a.At(s.Index)
	return c
}

func (s EntryIndex) GotoStep(n *InstanceNode) (*InstanceNode, error) {
	return n.At(s.Index)
}

func (s EntryIndex) String() string {
	i := s.Index
	if i >= 0 {
		i++ // YANG instance-identifier positional predicates are 1-based
	}
	return fmt.Sprintf("[%d]", i)
}

// EntryValue selects a leaf-list entry by value equality ("[.='value']").
type EntryValue struct{ Value interface{} }

func (s EntryValue) PeekStep(v Value) Value {
	a, ok := v.(*ArrayValue)
	if !ok {
		return nil
	}
	for _, it := range a.Items() {
		if sv, ok := it.(*ScalarValue); ok && valuesEqual(sv.Value, s.Value) {
			return it
		}
	}
	return nil
}

func (s EntryValue) GotoStep(n *InstanceNode) (*InstanceNode, error) {
	return n.LookUpValue(s.Value)
}

func (s EntryValue) String() string {
	return fmt.Sprintf("[.=%s]", quoteXPathLiteral(s.Value))
}

// KeyValue is one key-name/cooked-value pair of an EntryKeys selector.
type KeyValue struct {
	Name  string
	Value interface{}
}

// EntryKeys selects a list entry by its full key tuple.
type EntryKeys struct{ Keys []KeyValue }

func (s EntryKeys) PeekStep(v Value) Value {
	a, ok := v.(*ArrayValue)
	if !ok {
		return nil
	}
	for _, it := range a.Items() {
		if entryMatchesKeys(it, s.Keys) {
			return it
		}
	}
	return nil
}

func (s EntryKeys) GotoStep(n *InstanceNode) (*InstanceNode, error) {
	return n.LookUp(s.Keys)
}

func (s EntryKeys) String() string {
	var b strings.Builder
	for _, kv := range s.Keys {
		fmt.Fprintf(&b, "[%s=%s]", kv.Name, quoteXPathLiteral(kv.Value))
	}
	return b.String()
}

func entryMatchesKeys(entry Value, keys []KeyValue) bool {
	o, ok := entry.(*ObjectValue)
	if !ok {
		return false
	}
	for _, kv := range keys {
		c, present := o.Get(kv.Name)
		if !present {
			return false
		}
		sv, ok := c.(*ScalarValue)
		if !ok || !valuesEqual(sv.Value, kv.Value) {
			return false
		}
	}
	return true
}

// valuesEqual compares two cooked scalar representations. yang.Number
// compares by canonical string since two Numbers built through different
// bases (e.g. decimal64 scale) can be reflect-unequal yet denote the same
// quantity.
func valuesEqual(a, b interface{}) bool {
	if an, ok := a.(yang.Number); ok {
		if bn, ok := b.(yang.Number); ok {
			return an.String() == bn.String()
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func quoteXPathLiteral(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return "\"" + s + "\""
}
