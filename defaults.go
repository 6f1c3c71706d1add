package yangson

import "strings"

// ContentType selects which config/state children defaulting and
// validation consider (spec §4.4, §4.5).
type ContentType int

const (
	ContentAll ContentType = iota
	ContentConfig
	ContentNonConfig
)

func (ct ContentType) admits(configFlag bool) bool {
	switch ct {
	case ContentConfig:
		return configFlag
	case ContentNonConfig:
		return !configFlag
	default:
		return true
	}
}

func (ct ContentType) String() string {
	switch ct {
	case ContentConfig:
		return "config"
	case ContentNonConfig:
		return "nonconfig"
	default:
		return "all"
	}
}

// instanceNameFor is the member key a schema child is stored under in its
// parent's ObjectValue: "module:local" iff the child's namespace differs
// from its parent's, else plain "local" (spec §4.3 from_raw naming rule,
// reused here since defaulting inserts members the same way raw decoding
// does).
func instanceNameFor(c *SchemaNode) string {
	if c.parent != nil && c.parent.namespace != c.namespace {
		return c.namespace + ":" + c.name
	}
	return c.name
}

func childSchemaFor(schema *SchemaNode, key string) *SchemaNode {
	name := key
	ns := ""
	if i := strings.IndexByte(key, ':'); i >= 0 {
		ns, name = key[:i], key[i+1:]
	}
	return schema.GetDataChild(name, ns)
}

// defaultsCtx carries the document root fixed throughout one AddDefaults
// call, since when/must evaluation (xpath.go) needs the whole tree for
// absolute paths and ancestor axes, not just the subtree being defaulted.
type defaultsCtx struct {
	root       Value
	rootSchema *SchemaNode
	ct         ContentType
	lazy       bool
}

// AddDefaults recursively computes v's default-completed form under
// schema, per spec §4.4. It never mutates v; newly created object/array
// values receive a fresh timestamp. lazy defers materializing empty
// default containers that have no already-present data of their own.
func AddDefaults(schema *SchemaNode, v Value, ct ContentType, lazy bool) (Value, error) {
	dc := &defaultsCtx{root: v, rootSchema: schema, ct: ct, lazy: lazy}
	return dc.addAt(schema, v, nil)
}

func (dc *defaultsCtx) addAt(schema *SchemaNode, v Value, path []string) (Value, error) {
	switch val := v.(type) {
	case *ObjectValue:
		return dc.addObject(schema, val, path)
	case *ArrayValue:
		return dc.addArray(schema, val, path)
	default:
		return v, nil
	}
}

func (dc *defaultsCtx) addObject(schema *SchemaNode, o *ObjectValue, path []string) (*ObjectValue, error) {
	result := o
	if result == nil {
		result = NewObject()
	}
	for _, key := range append([]string{}, result.Keys()...) {
		child, _ := result.Get(key)
		childSchema := childSchemaFor(schema, key)
		if childSchema == nil {
			continue
		}
		childPath := append(append([]string{}, path...), key)
		nv, err := dc.addAt(childSchema, child, childPath)
		if err != nil {
			return nil, err
		}
		if nv != child {
			result = result.With(key, nv)
		}
	}
	return dc.applyStructuralDefaults(schema, result, path)
}

func (dc *defaultsCtx) addArray(schema *SchemaNode, a *ArrayValue, path []string) (*ArrayValue, error) {
	items := a.Items()
	out := make([]Value, len(items))
	changed := false
	for i, it := range items {
		nv, err := dc.addAt(schema, it, path)
		if err != nil {
			return nil, err
		}
		out[i] = nv
		if nv != it {
			changed = true
		}
	}
	if !changed {
		return a, nil
	}
	return NewArray(out...), nil
}

// applyStructuralDefaults is the schema node's `_add_defaults`: it
// inspects each not-yet-present child of schema and injects what the
// spec's rules call for, honoring the content-type filter.
func (dc *defaultsCtx) applyStructuralDefaults(schema *SchemaNode, result *ObjectValue, path []string) (*ObjectValue, error) {
	for _, c := range schema.Children() {
		if c.kind == KindCase {
			continue // only visited through its enclosing choice
		}
		if c.kind == KindChoice {
			nr, err := dc.applyChoiceDefault(c, result, path)
			if err != nil {
				return nil, err
			}
			result = nr
			continue
		}
		if !dc.ct.admits(c.config) {
			continue
		}
		name := instanceNameFor(c)
		if _, present := result.Get(name); present {
			continue
		}
		v, added, err := dc.defaultFor(path, c)
		if err != nil {
			return nil, err
		}
		if added {
			result = result.With(name, v)
		}
	}
	return result, nil
}

func (dc *defaultsCtx) applyChoiceDefault(choice *SchemaNode, result *ObjectValue, path []string) (*ObjectValue, error) {
	if !dc.ct.admits(choice.config) || !choice.hasDefaultCase {
		return result, nil
	}
	if choiceHasMaterializedCase(choice, result) {
		return result, nil
	}
	caseNode := choice.GetChild(choice.defaultCase, "")
	if caseNode == nil {
		return result, nil
	}
	if choice.when != "" {
		ok, err := EvaluateWhen(dc.rootSchema, dc.root, choice, path, choice.when)
		if err != nil || !ok {
			return result, err
		}
	}
	return dc.applyStructuralDefaults(caseNode, result, path)
}

func choiceHasMaterializedCase(choice *SchemaNode, obj *ObjectValue) bool {
	for _, cs := range choice.Cases() {
		for _, d := range cs.DataChildren() {
			if _, ok := obj.Get(instanceNameFor(d)); ok {
				return true
			}
		}
	}
	return false
}

// defaultFor decides what, if anything, to inject for the not-yet-present
// child c, per spec §4.4's four node-kind rules.
func (dc *defaultsCtx) defaultFor(parentPath []string, c *SchemaNode) (Value, bool, error) {
	focusPath := append(append([]string{}, parentPath...), instanceNameFor(c))

	switch c.kind {
	case KindLeaf:
		if !c.hasDefault {
			return nil, false, nil
		}
		if c.when != "" {
			ok, err := EvaluateWhen(dc.rootSchema, dc.root, c, focusPath, c.when)
			if err != nil || !ok {
				return nil, false, err
			}
		}
		raw, err := c.datatype.ParseValue(c.defaultValue)
		if err != nil {
			return nil, false, err
		}
		return NewScalar(c.datatype, raw), true, nil

	case KindLeafList:
		if len(c.defaultValues) == 0 {
			return nil, false, nil
		}
		items := make([]Value, 0, len(c.defaultValues))
		for _, dv := range c.defaultValues {
			raw, err := c.datatype.ParseValue(dv)
			if err != nil {
				return nil, false, err
			}
			items = append(items, NewScalar(c.datatype, raw))
		}
		return NewArray(items...), true, nil

	case KindContainer:
		if c.presence || dc.lazy {
			return nil, false, nil
		}
		hasDesc := hasDefaultableDescendant(c)
		whenOK := true
		if c.when != "" {
			var err error
			whenOK, err = EvaluateWhen(dc.rootSchema, dc.root, c, focusPath, c.when)
			if err != nil {
				return nil, false, err
			}
		}
		if !hasDesc && !whenOK {
			return nil, false, nil
		}
		filled, err := dc.addObject(c, NewObject(), focusPath)
		if err != nil {
			return nil, false, err
		}
		if filled.Len() == 0 {
			return nil, false, nil
		}
		return filled, true, nil

	default:
		return nil, false, nil
	}
}

// hasDefaultableDescendant reports whether c (a non-presence container)
// has some descendant, not crossing into a nested presence container,
// that would itself inject a default.
func hasDefaultableDescendant(c *SchemaNode) bool {
	for _, child := range c.Children() {
		switch child.kind {
		case KindLeaf:
			if child.hasDefault {
				return true
			}
		case KindLeafList:
			if len(child.defaultValues) > 0 {
				return true
			}
		case KindChoice:
			if child.hasDefaultCase {
				return true
			}
		case KindContainer:
			if !child.presence && hasDefaultableDescendant(child) {
				return true
			}
		case KindCase:
			if hasDefaultableDescendant(child) {
				return true
			}
		}
	}
	return false
}
