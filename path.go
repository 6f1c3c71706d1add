package yangson

import (
	"net/url"
	"strings"
)

// ParseResourcePath parses a RESTCONF resource identifier (spec §4.7)
// against root, a hand-rolled scanner in the same style as the
// `ParsePath` functions the schema statement parser itself uses: no
// regular expressions, one rune of lookahead at a time.
func ParseResourcePath(text string, root *SchemaNode) (InstanceRoute, error) {
	p := &pathScanner{s: text}
	var route InstanceRoute
	schema := root
	for p.pos < len(p.s) {
		if !p.consumeByte('/') {
			return nil, newOffsetErrorf(KindUnexpectedInput, p.pos, "expected '/'")
		}
		if p.pos >= len(p.s) {
			break
		}
		name, ns, err := p.scanMemberName()
		if err != nil {
			return nil, err
		}
		child := schema.GetDataChild(name, ns)
		if child == nil {
			return nil, newOffsetErrorf(KindNonexistentSchemaNode, p.pos, "no such member %q", name)
		}
		route = append(route, MemberName{Name: instanceNameFor(child)})
		schema = child

		if p.consumeByte('=') {
			raw, err := p.scanValueList()
			if err != nil {
				return nil, err
			}
			switch child.kind {
			case KindList:
				if len(raw) != len(child.keys) {
					return nil, newOffsetErrorf(KindUnexpectedInput, p.pos,
						"expected %d key value(s), got %d", len(child.keys), len(raw))
				}
				keys := make([]KeyValue, len(child.keys))
				for i, k := range child.keys {
					kc := child.GetDataChild(k, "")
					if kc == nil || kc.datatype == nil {
						return nil, newOffsetErrorf(KindNonexistentSchemaNode, p.pos, "no such key %q", k)
					}
					v, err := kc.datatype.ParseValue(raw[i])
					if err != nil {
						return nil, err
					}
					keys[i] = KeyValue{Name: k, Value: v}
				}
				route = append(route, EntryKeys{Keys: keys})
			case KindLeafList:
				if len(raw) != 1 {
					return nil, newOffsetErrorf(KindUnexpectedInput, p.pos, "leaf-list takes exactly one value")
				}
				v, err := child.datatype.ParseValue(raw[0])
				if err != nil {
					return nil, err
				}
				route = append(route, EntryValue{Value: v})
			default:
				return nil, newOffsetErrorf(KindUnexpectedInput, p.pos, "%q does not take key values", name)
			}
		}
	}
	return route, nil
}

type pathScanner struct {
	s   string
	pos int
}

func (p *pathScanner) consumeByte(b byte) bool {
	if p.pos < len(p.s) && p.s[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

// scanMemberName scans a "[prefix:]local" production up to the next '/',
// '=' or end of input, percent-decoding as it goes.
func (p *pathScanner) scanMemberName() (name, ns string, err error) {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != '/' && p.s[p.pos] != '=' {
		p.pos++
	}
	raw, derr := url.PathUnescape(p.s[start:p.pos])
	if derr != nil {
		return "", "", newOffsetErrorf(KindUnexpectedInput, start, "bad percent-encoding: %v", derr)
	}
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		return raw[i+1:], raw[:i], nil
	}
	return raw, "", nil
}

// scanValueList scans a comma-separated `k1,k2,...` key-value list (or a
// single leaf-list value), percent-decoding each field.
func (p *pathScanner) scanValueList() ([]string, error) {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != '/' {
		p.pos++
	}
	fields := strings.Split(p.s[start:p.pos], ",")
	out := make([]string, len(fields))
	for i, f := range fields {
		dec, err := url.PathUnescape(f)
		if err != nil {
			return nil, newOffsetErrorf(KindUnexpectedInput, start, "bad percent-encoding: %v", err)
		}
		out[i] = dec
	}
	return out, nil
}

// resolveRelativePath walks a bare (non-predicated) YANG leafref `path`
// substatement from focus via the live instance zipper, used by
// Datatype.Deref. Predicates are not expected in practice for the
// simple sibling-reference leafrefs this walks; a predicate-bearing step
// ends the underlying token scan early and resolves to the unfiltered
// list, mirroring xpath.go's ResolvePath simplification.
func resolveRelativePath(focus *InstanceNode, pathExpr string) (*InstanceNode, error) {
	p := &xpathParser{s: pathExpr}
	node, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	cur := focus
	if node.absolute {
		cur = focus.Top()
	}
	for _, step := range node.steps {
		if step == ".." {
			cur, err = cur.Up()
		} else {
			cur, err = cur.Child(instanceKeyForStep(cur.Schema(), step))
		}
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func instanceKeyForStep(schema *SchemaNode, step string) string {
	name := step
	ns := ""
	if i := strings.IndexByte(step, ':'); i >= 0 {
		ns, name = step[:i], step[i+1:]
	}
	child := schema.GetDataChild(name, ns)
	if child == nil {
		return step
	}
	return instanceNameFor(child)
}
