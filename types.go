package yangson

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/openconfig/goyang/pkg/yang"
	"github.com/openconfig/ygot/util"
)

// Datatype is the polymorphic per-leaf type object the spec's §4.2
// describes: parse external text, render canonical text, and convert to
// and from the RFC 7951 JSON-shaped "raw" representation. Dereferencing
// (leafref / instance-identifier) needs the instance tree, so it takes
// the instance node the value is attached to.
type Datatype interface {
	// Name is the YANG type name (builtin or typedef-derived).
	Name() string
	// Kind is the builtin kind this type ultimately reduces to.
	Kind() yang.TypeKind
	// ParseValue converts external text (RESTCONF path segment, XPath
	// literal, CLI argument) into the cooked Go representation.
	ParseValue(text string) (interface{}, error)
	// CanonicalString renders the cooked value in YANG's canonical form.
	CanonicalString(v interface{}) (string, error)
	// ToRaw converts a cooked value to its RFC 7951 JSON-shaped form.
	ToRaw(v interface{}) (interface{}, error)
	// FromRaw converts an RFC 7951 JSON-shaped value to cooked form.
	FromRaw(raw interface{}) (interface{}, error)
	// Deref resolves a leafref or instance-identifier value to the
	// instance nodes it designates (empty if none, never nil+error for
	// a plain non-reference type).
	Deref(focus *InstanceNode, v interface{}) ([]*InstanceNode, error)
}

// goyangType is the single concrete Datatype implementation: behavior is
// dispatched on yang.YangType.Kind, mirroring goyang's own one-struct,
// Kind-discriminated representation rather than one Go type per YANG
// builtin.
type goyangType struct {
	yt      *yang.YangType
	schema  *SchemaNode // the leaf/leaf-list this type is attached to, for leafref/identityref resolution
	unions  []Datatype
	pattern []*regexp.Regexp
	once    sync.Once
	compErr error
}

func newDatatype(yt *yang.YangType, schema *SchemaNode) Datatype {
	return &goyangType{yt: yt, schema: schema}
}

func (g *goyangType) Name() string { return g.yt.Name }

func (g *goyangType) Kind() yang.TypeKind { return g.yt.Kind }

func (g *goyangType) compile() error {
	g.once.Do(func() {
		switch g.yt.Kind {
		case yang.Yunion:
			for _, m := range g.yt.Type {
				g.unions = append(g.unions, newDatatype(m, g.schema))
			}
		case yang.Ystring:
			pats, _ := util.SanitizedPattern(g.yt)
			for _, p := range pats {
				re, err := regexp.Compile(p)
				if err != nil {
					g.compErr = newErrorf(KindTypeError, "bad pattern %q: %v", p, err)
					return
				}
				g.pattern = append(g.pattern, re)
			}
		}
	})
	return g.compErr
}

// ParseValue implements Datatype.
func (g *goyangType) ParseValue(text string) (interface{}, error) {
	if err := g.compile(); err != nil {
		return nil, err
	}
	switch g.yt.Kind {
	case yang.Ybool:
		switch text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, newErrorf(KindTypeError, "invalid boolean %q", text)
	case yang.Yint8, yang.Yint16, yang.Yint32, yang.Yint64,
		yang.Yuint8, yang.Yuint16, yang.Yuint32, yang.Yuint64:
		n, err := yang.ParseInt(text)
		if err != nil {
			return nil, newErrorf(KindTypeError, "invalid integer %q: %v", text, err)
		}
		if !g.yt.Range.Contains(yang.YangRange{{Min: n, Max: n}}) {
			return nil, newErrorf(KindTypeError, "%q out of range for %s", text, g.yt.Name)
		}
		return n, nil
	case yang.Ydecimal64:
		n, err := yang.ParseDecimal(text, uint8(g.yt.FractionDigits))
		if err != nil {
			return nil, newErrorf(KindTypeError, "invalid decimal64 %q: %v", text, err)
		}
		if !g.yt.Range.Contains(yang.YangRange{{Min: n, Max: n}}) {
			return nil, newErrorf(KindTypeError, "%q out of range for %s", text, g.yt.Name)
		}
		return n, nil
	case yang.Ystring, yang.Ybinary:
		if err := g.checkLength(text); err != nil {
			return nil, err
		}
		for _, re := range g.pattern {
			if !re.MatchString(text) {
				return nil, newErrorf(KindTypeError, "%q does not match pattern %s", text, re.String())
			}
		}
		if g.yt.Kind == yang.Ybinary {
			if _, err := base64.StdEncoding.DecodeString(text); err != nil {
				return nil, newErrorf(KindTypeError, "invalid base64 %q: %v", text, err)
			}
		}
		return text, nil
	case yang.Yenum:
		if g.yt.Enum == nil {
			return nil, newErrorf(KindTypeError, "enumeration %q has no members", text)
		}
		if _, ok := g.yt.Enum.NameMap()[text]; !ok {
			return nil, newErrorf(KindTypeError, "%q is not a member of enumeration %s", text, g.yt.Name)
		}
		return text, nil
	case yang.Ybits:
		if g.yt.Bit == nil {
			return text, nil
		}
		names := g.yt.Bit.NameMap()
		for _, b := range strings.Fields(text) {
			if _, ok := names[b]; !ok {
				return nil, newErrorf(KindTypeError, "%q is not a bit of %s", b, g.yt.Name)
			}
		}
		return text, nil
	case yang.Yempty:
		if text != "" {
			return nil, newErrorf(KindTypeError, "empty type must have no value, got %q", text)
		}
		return struct{}{}, nil
	case yang.Yidentityref:
		if !strings.Contains(text, ":") && g.schema != nil {
			text = g.schema.Namespace() + ":" + text
		}
		return text, nil
	case yang.YinstanceIdentifier:
		route, err := ParseInstanceIdentifier(text, g.schemaRoot())
		if err != nil {
			return nil, err
		}
		return route, nil
	case yang.Yleafref:
		target := g.resolveLeafref()
		if target == nil {
			return text, nil
		}
		return newDatatype(target.entry.Type, target).ParseValue(text)
	case yang.Yunion:
		var firstErr error
		for _, u := range g.unions {
			v, err := u.ParseValue(text)
			if err == nil {
				return v, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return nil, newErrorf(KindTypeError, "%q matches no branch of union %s: %v", text, g.yt.Name, firstErr)
	default:
		return text, nil
	}
}

func (g *goyangType) checkLength(text string) error {
	if len(g.yt.Length) == 0 {
		return nil
	}
	n := int64(len([]rune(text)))
	ln := yang.FromInt(n)
	if !g.yt.Length.Contains(yang.YangRange{{Min: ln, Max: ln}}) {
		return newErrorf(KindTypeError, "%q length %d out of range for %s", text, n, g.yt.Name)
	}
	return nil
}

// CanonicalString implements Datatype.
func (g *goyangType) CanonicalString(v interface{}) (string, error) {
	switch g.yt.Kind {
	case yang.Ybool:
		if b, ok := v.(bool); ok {
			if b {
				return "true", nil
			}
			return "false", nil
		}
		return "", newErrorf(KindTypeError, "not a boolean: %v", v)
	case yang.Yint8, yang.Yint16, yang.Yint32, yang.Yint64,
		yang.Yuint8, yang.Yuint16, yang.Yuint32, yang.Yuint64, yang.Ydecimal64:
		if n, ok := v.(yang.Number); ok {
			return n.String(), nil
		}
		return "", newErrorf(KindTypeError, "not a number: %v", v)
	case yang.Yempty:
		return "", nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// ToRaw implements Datatype: the RFC 7951 JSON-shaped external encoding.
func (g *goyangType) ToRaw(v interface{}) (interface{}, error) {
	switch g.yt.Kind {
	case yang.Yint8, yang.Yint16, yang.Yint32, yang.Yuint8, yang.Yuint16, yang.Yuint32:
		n, ok := v.(yang.Number)
		if !ok {
			return nil, newErrorf(KindRawTypeError, "not a number: %v", v)
		}
		i, err := n.Int()
		if err != nil {
			return nil, newErrorf(KindRawTypeError, "%v", err)
		}
		return i, nil
	case yang.Yint64, yang.Yuint64, yang.Ydecimal64:
		// 64-bit range values are encoded as strings per RFC 7951 §6.1.
		n, ok := v.(yang.Number)
		if !ok {
			return nil, newErrorf(KindRawTypeError, "not a number: %v", v)
		}
		return n.String(), nil
	case yang.Yempty:
		return []interface{}{nil}, nil
	case yang.YinstanceIdentifier:
		route, ok := v.(InstanceRoute)
		if !ok {
			return nil, newErrorf(KindRawTypeError, "not an instance route: %v", v)
		}
		return route.String(), nil
	default:
		return v, nil
	}
}

// FromRaw implements Datatype: decodes an RFC 7951 JSON-shaped value.
func (g *goyangType) FromRaw(raw interface{}) (interface{}, error) {
	if err := g.compile(); err != nil {
		return nil, err
	}
	switch g.yt.Kind {
	case yang.Ybool:
		b, ok := raw.(bool)
		if !ok {
			return nil, newErrorf(KindRawTypeError, "expected boolean, got %T", raw)
		}
		return b, nil
	case yang.Yint8, yang.Yint16, yang.Yint32, yang.Yuint8, yang.Yuint16, yang.Yuint32:
		return g.numberFromRaw(raw)
	case yang.Yint64, yang.Yuint64, yang.Ydecimal64:
		s, ok := raw.(string)
		if !ok {
			return nil, newErrorf(KindRawTypeError, "expected string-encoded 64-bit number, got %T", raw)
		}
		return g.ParseValue(s)
	case yang.Ystring, yang.Ybinary, yang.Yenum, yang.Ybits, yang.Yidentityref:
		s, ok := raw.(string)
		if !ok {
			return nil, newErrorf(KindRawTypeError, "expected string, got %T", raw)
		}
		return g.ParseValue(s)
	case yang.Yempty:
		return struct{}{}, nil
	case yang.YinstanceIdentifier:
		s, ok := raw.(string)
		if !ok {
			return nil, newErrorf(KindRawTypeError, "expected string, got %T", raw)
		}
		return g.ParseValue(s)
	case yang.Yleafref:
		target := g.resolveLeafref()
		if target == nil {
			s, _ := raw.(string)
			return s, nil
		}
		return newDatatype(target.entry.Type, target).FromRaw(raw)
	case yang.Yunion:
		var firstErr error
		for _, u := range g.unions {
			v, err := u.FromRaw(raw)
			if err == nil {
				return v, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return nil, newErrorf(KindRawTypeError, "raw value matches no branch of union %s: %v", g.yt.Name, firstErr)
	default:
		return raw, nil
	}
}

func (g *goyangType) numberFromRaw(raw interface{}) (interface{}, error) {
	f, ok := raw.(float64)
	if !ok {
		return nil, newErrorf(KindRawTypeError, "expected number, got %T", raw)
	}
	n := yang.FromInt(int64(f))
	if !g.yt.Range.Contains(yang.YangRange{{Min: n, Max: n}}) {
		return nil, newErrorf(KindRawTypeError, "%v out of range for %s", f, g.yt.Name)
	}
	return n, nil
}

// Deref implements Datatype.
func (g *goyangType) Deref(focus *InstanceNode, v interface{}) ([]*InstanceNode, error) {
	switch g.yt.Kind {
	case yang.Yleafref:
		target := g.resolveLeafref()
		if target == nil {
			return nil, nil
		}
		n, err := resolveRelativePath(focus, g.yt.Path)
		if err != nil || n == nil {
			return nil, nil
		}
		return []*InstanceNode{n}, nil
	case yang.YinstanceIdentifier:
		route, ok := v.(InstanceRoute)
		if !ok {
			return nil, nil
		}
		n, err := focus.Top().Goto(route)
		if err != nil {
			return nil, nil
		}
		return []*InstanceNode{n}, nil
	default:
		return nil, nil
	}
}

func (g *goyangType) resolveLeafref() *SchemaNode {
	if g.schema == nil || g.yt.Path == "" {
		return nil
	}
	target, err := util.ResolveIfLeafRef(g.schema.entry)
	if err != nil || target == nil {
		return nil
	}
	return g.schema.root().bySchemaEntry(target)
}

func (g *goyangType) schemaRoot() *SchemaNode {
	if g.schema == nil {
		return nil
	}
	return g.schema.root()
}
