package yangson

import (
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/openconfig/goyang/pkg/yang"
)

// NodeKind enumerates the schema node variants the spec's data model
// names: container, list, leaf, leaf-list, choice, case, anydata, anyxml.
type NodeKind int

const (
	KindContainer NodeKind = iota
	KindList
	KindLeaf
	KindLeafList
	KindChoice
	KindCase
	KindAnydata
	KindAnyxml
)

func (k NodeKind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindList:
		return "list"
	case KindLeaf:
		return "leaf"
	case KindLeafList:
		return "leaf-list"
	case KindChoice:
		return "choice"
	case KindCase:
		return "case"
	case KindAnydata:
		return "anydata"
	case KindAnyxml:
		return "anyxml"
	default:
		return "unknown"
	}
}

// DenyLevel is the NACM default-deny attribute (spec §3).
type DenyLevel int

const (
	DenyNone DenyLevel = iota
	DenyWrite
	DenyAll
)

// SchemaNode is the schema tree's node, one per statement instance after
// grouping/uses/refine/augment expansion (carried out for us by
// goyang/pkg/yang's Modules.Process, the module-source-loader collaborator
// the spec treats as external).
type SchemaNode struct {
	entry  *yang.Entry
	parent *SchemaNode
	kind   NodeKind

	name      string
	namespace string // owning module name; spec §3 "namespace equals module's name"
	config    bool
	presence  bool
	mandatory bool
	minElem   int
	maxElem   int // 0 means unbounded
	hasMin    bool
	hasMax    bool
	orderedByUser bool

	keys       []string   // ordered key leaf names, for list
	uniques    [][]string // each inner slice is one "unique" statement's schema-node-id list

	defaultValue  string   // leaf default
	hasDefault    bool
	defaultValues []string // leaf-list defaults
	defaultCase   string   // choice default case name
	hasDefaultCase bool

	when  string
	musts []string

	denyLevel DenyLevel

	datatype Datatype // leaf / leaf-list only

	children []*SchemaNode
	byLocal  map[string]*SchemaNode // local name -> child (unprefixed)
	byQName  map[string]*SchemaNode // "module:name" -> child

	rx *rootExtra // only ever populated via the tree-wide pointer shared from the root
}

// rootExtra carries the state that only makes sense once, globally, for
// the whole schema tree: the back-reference index used to map a
// *yang.Entry (as returned by ygot/util's leafref resolver) back to our
// SchemaNode, and the identity dictionary used by semantic validation.
type rootExtra struct {
	byEntry    map[*yang.Entry]*SchemaNode
	modules    *yang.Modules
	identities map[string]*yang.Identity // "module:name" -> identity
}

// BuildSchema assembles the schema tree from a set of top-level module
// entries (already uses/refine/augment-expanded by goyang) plus the set of
// features the server supports. Unsatisfiable if-feature prerequisites on
// a supported feature itself fail construction (spec §4.1).
func BuildSchema(ms *yang.Modules, moduleNames []string, supportedFeatures map[string]bool) (*SchemaNode, error) {
	root := &SchemaNode{
		name: "", namespace: "", kind: KindContainer, config: true,
		byLocal: map[string]*SchemaNode{}, byQName: map[string]*SchemaNode{},
		rx: &rootExtra{byEntry: map[*yang.Entry]*SchemaNode{}, modules: ms, identities: map[string]*yang.Identity{}},
	}
	for _, name := range moduleNames {
		e, errs := ms.GetModule(name)
		if len(errs) > 0 {
			return nil, newErrorf(KindModuleNotFound, "module %s: %v", name, errs[0])
		}
		collectIdentities(e, root.rx.identities)
		for _, ce := range sortedDir(e) {
			if _, err := buildChild(ce, root, supportedFeatures); err != nil {
				return nil, err
			}
		}
	}
	return root, nil
}

func collectIdentities(e *yang.Entry, into map[string]*yang.Identity) {
	for _, id := range e.Identities {
		m := moduleNameOf(findModule(id.ParentNode()))
		into[m+":"+id.Name] = id
	}
}

func findModule(n yang.Node) *yang.Module {
	for n != nil {
		if m, ok := n.(*yang.Module); ok {
			return m
		}
		n = n.ParentNode()
	}
	return nil
}

func moduleNameOf(m *yang.Module) string {
	if m == nil {
		return ""
	}
	if m.BelongsTo != nil {
		return m.BelongsTo.Name
	}
	return m.Name
}

// sortedDir returns e's direct data children in a stable order; goyang
// stores them in a name-keyed map, so they are sorted by their statement
// argument (the node name). The YANG source's declaration order is not
// reconstructed.
func sortedDir(e *yang.Entry) []*yang.Entry {
	out := make([]*yang.Entry, 0, len(e.Dir))
	for _, c := range e.Dir {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return sourceLess(out[i], out[j])
	})
	return out
}

func sourceLess(a, b *yang.Entry) bool {
	as, aok := a.Node.Statement().Arg()
	bs, bok := b.Node.Statement().Arg()
	if aok && bok && as != bs {
		return as < bs
	}
	return a.Name < b.Name
}

func ifFeatures(n yang.Node) []*yang.Value {
	switch s := n.(type) {
	case *yang.Container:
		return s.IfFeature
	case *yang.List:
		return s.IfFeature
	case *yang.Leaf:
		return s.IfFeature
	case *yang.LeafList:
		return s.IfFeature
	case *yang.Choice:
		return s.IfFeature
	case *yang.Case:
		return s.IfFeature
	case *yang.AnyXML:
		return s.IfFeature
	case *yang.AnyData:
		return s.IfFeature
	default:
		return nil
	}
}

func featuresSatisfied(n yang.Node, supported map[string]bool) (bool, string, error) {
	for _, f := range ifFeatures(n) {
		name := f.Name
		if i := strings.IndexByte(name, ':'); i >= 0 {
			name = name[i+1:]
		}
		if supported == nil {
			return false, name, nil
		}
		ok, known := supported[name]
		if !known {
			return false, name, newErrorf(KindFeaturePrerequisiteError, "unknown feature %q", name)
		}
		if !ok {
			return false, name, nil
		}
	}
	return true, "", nil
}

func buildChild(e *yang.Entry, parent *SchemaNode, supported map[string]bool) (*SchemaNode, error) {
	ok, fname, err := featuresSatisfied(e.Node, supported)
	if err != nil {
		return nil, err
	}
	if !ok {
		glog.V(1).Infof("dropping %s: feature %q not supported", e.Path(), fname)
		return nil, nil
	}

	n := &SchemaNode{
		entry:   e,
		parent:  parent,
		name:    e.Name,
		byLocal: map[string]*SchemaNode{},
		byQName: map[string]*SchemaNode{},
	}
	n.rx = parent.rx

	mod := findModule(e.Node)
	n.namespace = moduleNameOf(mod)

	n.config = true
	if parent != nil {
		n.config = parent.config
	}
	if e.Config == yang.TSFalse {
		n.config = false
	}

	switch e.Kind {
	case yang.LeafEntry:
		if e.ListAttr != nil {
			n.kind = KindLeafList
			applyListAttr(n, e.ListAttr)
			n.defaultValues = leafListDefaults(e)
		} else {
			n.kind = KindLeaf
			if e.Default != "" {
				n.defaultValue, n.hasDefault = e.Default, true
			}
			if leaf, ok := e.Node.(*yang.Leaf); ok && leaf.Mandatory != nil {
				n.mandatory = leaf.Mandatory.Name == "true"
			}
		}
		n.datatype = newDatatype(e.Type, n)
	case yang.AnyXMLEntry:
		if _, ok := e.Node.(*yang.AnyData); ok {
			n.kind = KindAnydata
		} else {
			n.kind = KindAnyxml
		}
	case yang.ChoiceEntry:
		n.kind = KindChoice
		if c, ok := e.Node.(*yang.Choice); ok && c.Default != nil {
			n.defaultCase, n.hasDefaultCase = c.Default.Name, true
		}
	case yang.CaseEntry:
		n.kind = KindCase
	case yang.DirectoryEntry:
		if e.ListAttr != nil {
			n.kind = KindList
			applyListAttr(n, e.ListAttr)
			if e.Key != "" {
				n.keys = strings.Fields(e.Key)
			}
			if l, ok := e.Node.(*yang.List); ok {
				for _, u := range l.Unique {
					n.uniques = append(n.uniques, strings.Fields(u.Name))
				}
			}
		} else {
			n.kind = KindContainer
			if c, ok := e.Node.(*yang.Container); ok && c.Presence != nil {
				n.presence = true
			}
		}
	default:
		n.kind = KindContainer
	}

	n.when = whenXPath(e.Node)
	n.musts = mustXPaths(e.Node)
	n.denyLevel = nacmDenyLevel(e)

	parent.children = append(parent.children, n)
	registerChild(parent, n)
	n.rx.byEntry[e] = n

	if e.Dir != nil {
		for _, ce := range sortedDir(e) {
			if _, err := buildChild(ce, n, supported); err != nil {
				return nil, err
			}
		}
	}
	return n, nil
}

func applyListAttr(n *SchemaNode, la *yang.ListAttr) {
	if la.OrderedBy != nil && la.OrderedBy.Name == "user" {
		n.orderedByUser = true
	}
	if la.MinElements != nil {
		if v, err := yang.ParseInt(la.MinElements.Name); err == nil {
			if i, err2 := v.Int(); err2 == nil {
				n.minElem, n.hasMin = int(i), true
			}
		}
	}
	if la.MaxElements != nil && la.MaxElements.Name != "unbounded" {
		if v, err := yang.ParseInt(la.MaxElements.Name); err == nil {
			if i, err2 := v.Int(); err2 == nil {
				n.maxElem, n.hasMax = int(i), true
			}
		}
	}
}

func leafListDefaults(e *yang.Entry) []string {
	var out []string
	for _, s := range e.Node.Statement().SubStatements() {
		if s.Keyword == "default" {
			out = append(out, s.Argument)
		}
	}
	return out
}

func whenXPath(n yang.Node) string {
	switch s := n.(type) {
	case *yang.Container:
		return valName(s.When)
	case *yang.List:
		return valName(s.When)
	case *yang.Leaf:
		return valName(s.When)
	case *yang.LeafList:
		return valName(s.When)
	case *yang.Choice:
		return valName(s.When)
	case *yang.Case:
		return valName(s.When)
	default:
		return ""
	}
}

func valName(v *yang.Value) string {
	if v == nil {
		return ""
	}
	return v.Name
}

func mustXPaths(n yang.Node) []string {
	var musts []*yang.Must
	switch s := n.(type) {
	case *yang.Container:
		musts = s.Must
	case *yang.List:
		musts = s.Must
	case *yang.Leaf:
		musts = s.Must
	case *yang.LeafList:
		musts = s.Must
	}
	out := make([]string, 0, len(musts))
	for _, m := range musts {
		out = append(out, m.Name)
	}
	return out
}

// nacmDenyLevel reads the ietf-netconf-acm default-deny-all/-write
// extension statements, unknown to goyang's typed AST and therefore only
// reachable as raw substatements (spec §4.1).
func nacmDenyLevel(e *yang.Entry) DenyLevel {
	for _, s := range e.Node.Statement().SubStatements() {
		switch {
		case strings.HasSuffix(s.Keyword, "default-deny-all"):
			return DenyAll
		case strings.HasSuffix(s.Keyword, "default-deny-write"):
			return DenyWrite
		}
	}
	return DenyNone
}

func registerChild(parent, n *SchemaNode) {
	parent.byLocal[n.name] = n
	parent.byQName[n.namespace+":"+n.name] = n
}

// Name is the node's local name.
func (s *SchemaNode) Name() string { return s.name }

// Namespace is the owning module's name (spec §3).
func (s *SchemaNode) Namespace() string { return s.namespace }

// Kind is the node variant.
func (s *SchemaNode) Kind() NodeKind { return s.kind }

// Parent returns the schema parent, or nil at the root.
func (s *SchemaNode) Parent() *SchemaNode { return s.parent }

// Config reports the node's inherited config flag.
func (s *SchemaNode) Config() bool { return s.config }

// IsPresence reports whether a container is presence-valued.
func (s *SchemaNode) IsPresence() bool { return s.presence }

// Keys returns the ordered key leaf names of a list.
func (s *SchemaNode) Keys() []string { return s.keys }

// Datatype returns the leaf/leaf-list datatype, or nil otherwise.
func (s *SchemaNode) Datatype() Datatype { return s.datatype }

// DenyLevel returns the NACM default-deny attribute.
func (s *SchemaNode) DenyLevel() DenyLevel { return s.denyLevel }

// root returns the schema tree's implicit root node.
func (s *SchemaNode) root() *SchemaNode {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

func (s *SchemaNode) bySchemaEntry(e *yang.Entry) *SchemaNode {
	return s.root().rx.byEntry[e]
}

// Path renders the schema node's absolute module:name/module:name path,
// used as an error cursor.
func (s *SchemaNode) Path() string {
	if s.parent == nil {
		return "/"
	}
	return s.parent.Path() + s.namespace + ":" + s.name + "/"
}

// GetChild implements spec §4.1 get_child: the unique direct child by
// name and optional namespace (empty namespace matches the parent's own
// namespace first, then any unique match).
func (s *SchemaNode) GetChild(name, namespace string) *SchemaNode {
	if namespace != "" {
		return s.byQName[namespace+":"+name]
	}
	if c, ok := s.byQName[s.namespace+":"+name]; ok {
		return c
	}
	var found *SchemaNode
	for _, c := range s.children {
		if c.name == name {
			if found != nil {
				return nil
			}
			found = c
		}
	}
	return found
}

// GetDataChild implements spec §4.1 get_data_child: the first descendant
// data node reachable only through transparent choice/case nodes.
func (s *SchemaNode) GetDataChild(name, namespace string) *SchemaNode {
	for _, c := range s.children {
		if c.kind == KindChoice || c.kind == KindCase {
			if d := c.GetDataChild(name, namespace); d != nil {
				return d
			}
			continue
		}
		if namespace != "" {
			if c.namespace == namespace && c.name == name {
				return c
			}
			continue
		}
		if c.name == name {
			return c
		}
	}
	return nil
}

// Children returns the direct schema children, including transparent
// choice/case nodes, in the order sortedDir built them (by name, not by
// YANG source declaration order).
func (s *SchemaNode) Children() []*SchemaNode { return s.children }

// DataChildren returns the direct *data* children, expanding through
// choice/case transparently (spec §4.1), in Children order.
func (s *SchemaNode) DataChildren() []*SchemaNode {
	var out []*SchemaNode
	for _, c := range s.children {
		if c.kind == KindChoice || c.kind == KindCase {
			out = append(out, c.DataChildren()...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Cases returns a choice's case children.
func (s *SchemaNode) Cases() []*SchemaNode {
	return s.children
}

func (s *SchemaNode) isIdentityKnown(qname string) bool {
	_, ok := s.root().rx.identities[qname]
	return ok
}

// isChoiceOrCase mirrors ygot/util.IsChoiceOrCase for our own node kind.
func (s *SchemaNode) isChoiceOrCase() bool {
	return s.kind == KindChoice || s.kind == KindCase
}

// FromRawValue implements spec §4.3: it walks s and raw in lockstep,
// producing a cooked Value tree. Object nodes resolve each raw key
// against a data child (choice/case transparent) and store it under the
// child's instance name; array nodes (list, leaf-list) map over raw
// entries without recursing into FromRawValue itself, since the node's
// own schema describes the *entry* shape, not a further nesting level:
// list entries go through entryFromRaw, leaf-list entries through the
// node's datatype.
func (s *SchemaNode) FromRawValue(raw interface{}) (Value, error) {
	switch s.kind {
	case KindList, KindLeafList:
		items, ok := raw.([]interface{})
		if !ok {
			return nil, newSchemaErrorf(KindRawTypeError, s.Path(), "expected a JSON array for %s", s.name)
		}
		out := make([]Value, 0, len(items))
		for _, it := range items {
			if s.kind == KindLeafList {
				cooked, err := s.datatype.FromRaw(it)
				if err != nil {
					return nil, newSchemaErrorf(KindRawTypeError, s.Path(), "%v", err)
				}
				out = append(out, NewScalar(s.datatype, cooked))
				continue
			}
			v, err := s.entryFromRaw(it)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return NewArray(out...), nil
	case KindLeaf, KindAnydata, KindAnyxml:
		if s.datatype == nil {
			return NewScalar(nil, raw), nil
		}
		cooked, err := s.datatype.FromRaw(raw)
		if err != nil {
			return nil, newSchemaErrorf(KindRawTypeError, s.Path(), "%v", err)
		}
		return NewScalar(s.datatype, cooked), nil
	default:
		return s.entryFromRaw(raw)
	}
}

// entryFromRaw decodes one object-shaped raw value (a container, or one
// entry of a list) against s's data children. Members are stored in
// DataChildren order, not in the raw map's iteration order.
func (s *SchemaNode) entryFromRaw(raw interface{}) (Value, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, newSchemaErrorf(KindRawMemberError, s.Path(), "expected a JSON object for %s", s.name)
	}
	members := make(map[string]Value, len(obj))
	for key, rv := range obj {
		name := key
		ns := ""
		if i := strings.IndexByte(key, ':'); i >= 0 {
			ns, name = key[:i], key[i+1:]
		}
		child := s.GetDataChild(name, ns)
		if child == nil {
			return nil, newSchemaErrorf(KindRawMemberError, s.Path(), "unknown member %q", key)
		}
		v, err := child.FromRawValue(rv)
		if err != nil {
			return nil, err
		}
		members[instanceNameFor(child)] = v
	}
	result := NewObject()
	for _, c := range s.DataChildren() {
		if v, ok := members[instanceNameFor(c)]; ok {
			result = result.With(instanceNameFor(c), v)
		}
	}
	return result, nil
}
