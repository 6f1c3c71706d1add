package yangson

import (
	"strconv"
	"strings"

	"github.com/PaesslerAG/gval"
)

// xpathContext is everything path-step resolution needs: the root value
// of the instance document, the schema node the expression is attached
// to, and the path (schema-qualified instance names from the document
// root) of the node currently being evaluated, i.e. what `current()`
// designates.
type xpathContext struct {
	root       Value
	rootSchema *SchemaNode
	focusPath  []string
	focusSchema *SchemaNode
}

// EvaluateWhen implements the spec's §4.5 semantic check for a single
// when/must XPath string attached to schema, evaluated with the instance
// document rooted at root and the expression's context node at focusPath.
func EvaluateWhen(rootSchema *SchemaNode, root Value, focusSchema *SchemaNode, focusPath []string, expr string) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	ctx := &xpathContext{root: root, rootSchema: rootSchema, focusPath: focusPath, focusSchema: focusSchema}
	p := &xpathParser{s: expr}
	node, err := p.parseOr(ctx)
	if err != nil {
		return false, newErrorf(KindSemanticError, "bad XPath expression %q: %v", expr, err)
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return false, newErrorf(KindSemanticError, "trailing input in XPath expression %q at %d", expr, p.pos)
	}
	v, err := node.eval(ctx)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// xpathNode is the parsed-expression tree; each variant knows how to
// reduce itself to an operand or boolean against an xpathContext. Scalar
// comparisons are deferred to gval.Evaluate, keeping the hand-rolled
// parser responsible only for YANG's path/current()/boolean grammar.
type xpathNode interface {
	eval(ctx *xpathContext) (interface{}, error)
}

type boolOp struct {
	op       string // "and", "or"
	lhs, rhs xpathNode
}

func (n *boolOp) eval(ctx *xpathContext) (interface{}, error) {
	l, err := n.lhs.eval(ctx)
	if err != nil {
		return nil, err
	}
	if n.op == "or" && truthy(l) {
		return true, nil
	}
	if n.op == "and" && !truthy(l) {
		return false, nil
	}
	r, err := n.rhs.eval(ctx)
	if err != nil {
		return nil, err
	}
	return truthy(r), nil
}

type notOp struct{ operand xpathNode }

func (n *notOp) eval(ctx *xpathContext) (interface{}, error) {
	v, err := n.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	return !truthy(v), nil
}

// cmpOp hands both sides off to gval once they are reduced to plain Go
// scalars, rather than reimplementing YANG/XPath's numeric-vs-string
// comparison coercion rules by hand.
type cmpOp struct {
	op       string
	lhs, rhs xpathNode
}

func (n *cmpOp) eval(ctx *xpathContext) (interface{}, error) {
	l, err := n.lhs.eval(ctx)
	if err != nil {
		return nil, err
	}
	r, err := n.rhs.eval(ctx)
	if err != nil {
		return nil, err
	}
	expr := compareExprFor(n.op)
	result, err := gval.Evaluate(expr, map[string]interface{}{"l": l, "r": r})
	if err != nil {
		return nil, newErrorf(KindSemanticError, "comparison %s failed: %v", n.op, err)
	}
	return result, nil
}

func compareExprFor(op string) string {
	switch op {
	case "=":
		return "l == r"
	case "!=":
		return "l != r"
	case "<":
		return "l < r"
	case "<=":
		return "l <= r"
	case ">":
		return "l > r"
	case ">=":
		return "l >= r"
	default:
		return "false"
	}
}

// pathNode resolves a location path (absolute or relative to current())
// to the scalar value found there, or nil if the path designates nothing.
type pathNode struct {
	absolute bool
	current  bool // path began with current()
	steps    []string
}

func (n *pathNode) eval(ctx *xpathContext) (interface{}, error) {
	v, _ := resolvePath(ctx, n)
	if sv, ok := v.(*ScalarValue); ok {
		return sv.Value, nil
	}
	return v, nil
}

func resolvePath(ctx *xpathContext, n *pathNode) (Value, *SchemaNode) {
	var path []string
	var schema *SchemaNode
	var v Value
	if n.absolute {
		path = nil
		schema = ctx.rootSchema
		v = ctx.root
	} else {
		path = append([]string{}, ctx.focusPath...)
		schema = ctx.focusSchema
		v = valueAt(ctx.root, path)
	}
	for _, step := range n.steps {
		if step == ".." {
			if len(path) == 0 {
				return nil, nil
			}
			path = path[:len(path)-1]
			schema = schema.Parent()
			v = valueAt(ctx.root, path)
			continue
		}
		name := step
		ns := ""
		if i := strings.IndexByte(step, ':'); i >= 0 {
			ns, name = step[:i], step[i+1:]
		}
		child := schema.GetDataChild(name, ns)
		if child == nil {
			return nil, nil
		}
		schema = child
		path = append(path, instanceNameFor(child))
		v = childValue(v, instanceNameFor(child))
	}
	return v, schema
}

// ResolvePath evaluates a bare YANG path expression (no predicates) at
// focusPath against the instance document, used by leafref/instance-
// identifier semantic checks (validate.go). A step containing '[' ends
// the scan there, so predicate-qualified steps resolve to their
// unfiltered list/leaf-list rather than a specific entry — a documented
// simplification of the XPath subset this evaluator covers.
func ResolvePath(rootSchema *SchemaNode, root Value, focusSchema *SchemaNode, focusPath []string, pathExpr string) (Value, error) {
	p := &xpathParser{s: pathExpr}
	node, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	ctx := &xpathContext{root: root, rootSchema: rootSchema, focusPath: focusPath, focusSchema: focusSchema}
	v, _ := resolvePath(ctx, node)
	return v, nil
}

func valueAt(root Value, path []string) Value {
	v := root
	for _, seg := range path {
		v = childValue(v, seg)
		if v == nil {
			return nil
		}
	}
	return v
}

func childValue(v Value, key string) Value {
	if o, ok := v.(*ObjectValue); ok {
		c, _ := o.Get(key)
		return c
	}
	return nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

// xpathParser is a small recursive-descent parser over the YANG XPath
// subset the spec's when/must expressions actually use: boolean
// connectives, the six comparison operators, current()/../path steps and
// quoted or numeric literals.
type xpathParser struct {
	s   string
	pos int
}

func (p *xpathParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n') {
		p.pos++
	}
}

func (p *xpathParser) peekWord(w string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.s[p.pos:], w) {
		after := p.pos + len(w)
		if after == len(p.s) || !isIdentRune(rune(p.s[after])) {
			return true
		}
	}
	return false
}

func (p *xpathParser) consumeWord(w string) bool {
	if p.peekWord(w) {
		p.pos += len(w)
		return true
	}
	return false
}

func (p *xpathParser) consumeByte(b byte) bool {
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '-' || r == ':' || r == '.' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func (p *xpathParser) parseOr(ctx *xpathContext) (xpathNode, error) {
	lhs, err := p.parseAnd(ctx)
	if err != nil {
		return nil, err
	}
	for p.consumeWord("or") {
		rhs, err := p.parseAnd(ctx)
		if err != nil {
			return nil, err
		}
		lhs = &boolOp{op: "or", lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *xpathParser) parseAnd(ctx *xpathContext) (xpathNode, error) {
	lhs, err := p.parseNot(ctx)
	if err != nil {
		return nil, err
	}
	for p.consumeWord("and") {
		rhs, err := p.parseNot(ctx)
		if err != nil {
			return nil, err
		}
		lhs = &boolOp{op: "and", lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *xpathParser) parseNot(ctx *xpathContext) (xpathNode, error) {
	if p.consumeWord("not") {
		p.skipSpace()
		if !p.consumeByte('(') {
			return nil, newError(KindUnexpectedInput, "expected '(' after not")
		}
		inner, err := p.parseOr(ctx)
		if err != nil {
			return nil, err
		}
		if !p.consumeByte(')') {
			return nil, newError(KindUnexpectedInput, "expected ')'")
		}
		return &notOp{operand: inner}, nil
	}
	return p.parseComparison(ctx)
}

var compareOps = []string{"!=", "<=", ">=", "=", "<", ">"}

func (p *xpathParser) parseComparison(ctx *xpathContext) (xpathNode, error) {
	lhs, err := p.parsePrimary(ctx)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	for _, op := range compareOps {
		if strings.HasPrefix(p.s[p.pos:], op) {
			p.pos += len(op)
			rhs, err := p.parsePrimary(ctx)
			if err != nil {
				return nil, err
			}
			return &cmpOp{op: op, lhs: lhs, rhs: rhs}, nil
		}
	}
	return lhs, nil
}

type literalNode struct{ v interface{} }

func (n *literalNode) eval(*xpathContext) (interface{}, error) { return n.v, nil }

func (p *xpathParser) parsePrimary(ctx *xpathContext) (xpathNode, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, newError(KindEndOfInput, "unexpected end of XPath expression")
	}
	switch {
	case p.consumeByte('('):
		n, err := p.parseOr(ctx)
		if err != nil {
			return nil, err
		}
		if !p.consumeByte(')') {
			return nil, newError(KindUnexpectedInput, "expected ')'")
		}
		return n, nil
	case p.s[p.pos] == '\'' || p.s[p.pos] == '"':
		return p.parseStringLiteral()
	case p.s[p.pos] >= '0' && p.s[p.pos] <= '9':
		return p.parseNumberLiteral()
	case p.peekWord("not"):
		return p.parseNot(ctx)
	default:
		return p.parsePath()
	}
}

func (p *xpathParser) parseStringLiteral() (xpathNode, error) {
	quote := p.s[p.pos]
	p.pos++
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != quote {
		p.pos++
	}
	if p.pos >= len(p.s) {
		return nil, newError(KindEndOfInput, "unterminated string literal")
	}
	lit := p.s[start:p.pos]
	p.pos++
	return &literalNode{v: lit}, nil
}

func (p *xpathParser) parseNumberLiteral() (xpathNode, error) {
	start := p.pos
	for p.pos < len(p.s) && (p.s[p.pos] == '.' || (p.s[p.pos] >= '0' && p.s[p.pos] <= '9')) {
		p.pos++
	}
	f, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return nil, newErrorf(KindUnexpectedInput, "bad number literal %q", p.s[start:p.pos])
	}
	return &literalNode{v: f}, nil
}

func (p *xpathParser) parsePath() (*pathNode, error) {
	n := &pathNode{}
	if p.consumeWord("current") {
		p.skipSpace()
		if !p.consumeByte('(') || !p.consumeByte(')') {
			return nil, newError(KindUnexpectedInput, "expected current()")
		}
		n.current = true
	} else if p.consumeByte('/') {
		n.absolute = true
	}
	for {
		p.skipSpace()
		if p.consumeByte('/') {
			continue
		}
		if strings.HasPrefix(p.s[p.pos:], "..") {
			p.pos += 2
			n.steps = append(n.steps, "..")
			continue
		}
		start := p.pos
		for p.pos < len(p.s) && isIdentRune(rune(p.s[p.pos])) {
			p.pos++
		}
		if p.pos == start {
			break
		}
		n.steps = append(n.steps, p.s[start:p.pos])
	}
	if !n.absolute && !n.current && len(n.steps) == 0 {
		return nil, newErrorf(KindUnexpectedInput, "expected path expression at %d", p.pos)
	}
	return n, nil
}
