package yangson

import (
	"strconv"
	"strings"
)

// ParseInstanceIdentifier parses a YANG instance-identifier value (the
// XPath subset RFC 7950 §9.13 allows for this type) against schema, the
// root of the data tree the identifier is rooted at. Unlike
// ParseResourcePath this grammar is whitespace-tolerant and uses
// bracketed predicates rather than "=" for list keys and leaf-list
// values, so it gets its own scanner instead of sharing pathScanner.
func ParseInstanceIdentifier(text string, schema *SchemaNode) (InstanceRoute, error) {
	p := &instanceIDScanner{s: text}
	var route InstanceRoute
	cur := schema
	for {
		p.skipSpace()
		if p.pos >= len(p.s) {
			break
		}
		if !p.consumeByte('/') {
			return nil, newOffsetErrorf(KindUnexpectedInput, p.pos, "expected '/'")
		}
		name, ns, err := p.scanStep()
		if err != nil {
			return nil, err
		}
		child := cur.GetDataChild(name, ns)
		if child == nil {
			return nil, newOffsetErrorf(KindNonexistentSchemaNode, p.pos, "no such member %q", name)
		}
		route = append(route, MemberName{Name: instanceNameFor(child)})
		cur = child

		for {
			p.skipSpace()
			if p.pos >= len(p.s) || p.s[p.pos] != '[' {
				break
			}
			sel, err := p.scanPredicate(cur)
			if err != nil {
				return nil, err
			}
			route = append(route, sel)
		}
	}
	return route, nil
}

type instanceIDScanner struct {
	s   string
	pos int
}

func (p *instanceIDScanner) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n') {
		p.pos++
	}
}

func (p *instanceIDScanner) consumeByte(b byte) bool {
	if p.pos < len(p.s) && p.s[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func (p *instanceIDScanner) scanStep() (name, ns string, err error) {
	start := p.pos
	for p.pos < len(p.s) && isIdentRune(rune(p.s[p.pos])) && p.s[p.pos] != '.' {
		p.pos++
	}
	if p.pos == start {
		return "", "", newOffsetErrorf(KindUnexpectedInput, start, "expected a member name")
	}
	raw := p.s[start:p.pos]
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		return raw[i+1:], raw[:i], nil
	}
	return raw, "", nil
}

// scanPredicate scans one `[...]` bracket: `[n]` positional (a 1-based
// index, rendered as the 0-based EntryIndex selector), `[.='value']` for
// a leaf-list entry value, or `[prefix:name='value']` repeated
// key=value pairs which this function accumulates into a single
// EntryKeys selector spanning consecutive brackets sharing the same
// list node.
func (p *instanceIDScanner) scanPredicate(schema *SchemaNode) (Selector, error) {
	start := p.pos
	if !p.consumeByte('[') {
		return nil, newOffsetErrorf(KindUnexpectedInput, p.pos, "expected '['")
	}
	p.skipSpace()

	if p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		digitStart := p.pos
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
		}
		digits := p.s[digitStart:p.pos]
		save := p.pos
		p.skipSpace()
		if p.consumeByte(']') {
			idx, err := strconv.Atoi(digits)
			if err != nil || idx < 1 {
				return nil, newOffsetErrorf(KindUnexpectedInput, digitStart, "invalid positional predicate %q", digits)
			}
			return EntryIndex{Index: idx - 1}, nil
		}
		p.pos = save
	}

	if p.consumeByte('.') {
		if !p.consumeByte('=') {
			return nil, newOffsetErrorf(KindUnexpectedInput, p.pos, "expected '=' after '.'")
		}
		val, err := p.scanQuotedOrBare()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consumeByte(']') {
			return nil, newOffsetErrorf(KindUnexpectedInput, p.pos, "expected ']'")
		}
		if schema.datatype == nil {
			return nil, newOffsetErrorf(KindBadSchemaNodeType, start, "%s has no leaf-list value type", schema.name)
		}
		v, err := schema.datatype.ParseValue(val)
		if err != nil {
			return nil, err
		}
		return EntryValue{Value: v}, nil
	}

	keys := []KeyValue{}
	for {
		kstart := p.pos
		for p.pos < len(p.s) && isIdentRune(rune(p.s[p.pos])) {
			p.pos++
		}
		if p.pos == kstart {
			return nil, newOffsetErrorf(KindUnexpectedInput, kstart, "expected a key name")
		}
		key := p.s[kstart:p.pos]
		if i := strings.IndexByte(key, ':'); i >= 0 {
			key = key[i+1:]
		}
		p.skipSpace()
		if !p.consumeByte('=') {
			return nil, newOffsetErrorf(KindUnexpectedInput, p.pos, "expected '=' after key %q", key)
		}
		val, err := p.scanQuotedOrBare()
		if err != nil {
			return nil, err
		}
		kc := schema.GetDataChild(key, "")
		if kc == nil || kc.datatype == nil {
			return nil, newOffsetErrorf(KindNonexistentSchemaNode, kstart, "no such key %q", key)
		}
		v, err := kc.datatype.ParseValue(val)
		if err != nil {
			return nil, err
		}
		keys = append(keys, KeyValue{Name: key, Value: v})

		p.skipSpace()
		if !p.consumeByte(']') {
			return nil, newOffsetErrorf(KindUnexpectedInput, p.pos, "expected ']'")
		}
		// consecutive `[k=v]` brackets on the same list node append keys.
		save := p.pos
		p.skipSpace()
		if p.pos < len(p.s) && p.s[p.pos] == '[' && p.peekIsKeyPredicate() {
			p.pos++
			p.skipSpace()
			continue
		}
		p.pos = save
		break
	}
	return EntryKeys{Keys: keys}, nil
}

// peekIsKeyPredicate reports whether the bracket at p.pos opens a
// `name=value` predicate rather than a fresh step's positional index,
// without consuming input.
func (p *instanceIDScanner) peekIsKeyPredicate() bool {
	i := p.pos + 1
	for i < len(p.s) && (p.s[i] == ' ' || p.s[i] == '\t') {
		i++
	}
	return i < len(p.s) && p.s[i] != '.' && (p.s[i] < '0' || p.s[i] > '9') && isIdentRune(rune(p.s[i]))
}

func (p *instanceIDScanner) scanQuotedOrBare() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return "", newOffsetErrorf(KindEndOfInput, p.pos, "unexpected end of instance-identifier")
	}
	if p.s[p.pos] == '\'' || p.s[p.pos] == '"' {
		quote := p.s[p.pos]
		p.pos++
		start := p.pos
		for p.pos < len(p.s) && p.s[p.pos] != quote {
			p.pos++
		}
		if p.pos >= len(p.s) {
			return "", newOffsetErrorf(KindEndOfInput, start, "unterminated quoted literal")
		}
		lit := p.s[start:p.pos]
		p.pos++
		return lit, nil
	}
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != ']' && p.s[p.pos] != ' ' {
		p.pos++
	}
	return p.s[start:p.pos], nil
}
