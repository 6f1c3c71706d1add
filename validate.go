package yangson

import (
	"fmt"

	"github.com/openconfig/goyang/pkg/yang"
)

// ValidationScope selects which of the spec's two orthogonal validation
// scopes (§4.5) a Validate call checks.
type ValidationScope int

const (
	ScopeAll ValidationScope = iota
	ScopeSyntax
	ScopeSemantics
)

func (s ValidationScope) wantsSyntax() bool    { return s == ScopeAll || s == ScopeSyntax }
func (s ValidationScope) wantsSemantics() bool { return s == ScopeAll || s == ScopeSemantics }

func (s ValidationScope) String() string {
	switch s {
	case ScopeSyntax:
		return "syntax"
	case ScopeSemantics:
		return "semantics"
	default:
		return "all"
	}
}

type validateCtx struct {
	root       Value
	rootSchema *SchemaNode
	scope      ValidationScope
	ct         ContentType
}

// Validate runs the two-scope validation walk of spec §4.5 over v (bound
// to schema), in document order, failing at the first violation found.
func Validate(schema *SchemaNode, v Value, scope ValidationScope, ct ContentType) error {
	vc := &validateCtx{root: v, rootSchema: schema, scope: scope, ct: ct}
	return vc.validateAt(schema, v, nil)
}

func (vc *validateCtx) validateAt(schema *SchemaNode, v Value, path []string) error {
	switch val := v.(type) {
	case *ObjectValue:
		return vc.validateObject(schema, val, path)
	case *ArrayValue:
		return vc.validateArray(schema, val, path)
	case *ScalarValue:
		return vc.validateScalar(schema, val, path)
	default:
		return nil
	}
}

func (vc *validateCtx) validateObject(schema *SchemaNode, o *ObjectValue, path []string) error {
	if vc.scope.wantsSyntax() {
		if err := vc.checkChoiceExclusivity(schema, o); err != nil {
			return err
		}
	}
	for _, c := range schema.Children() {
		if c.kind == KindChoice || c.kind == KindCase {
			continue
		}
		name := instanceNameFor(c)
		child, present := o.Get(name)
		childPath := append(append([]string{}, path...), name)

		if present {
			if vc.scope.wantsSyntax() && !vc.ct.admits(c.config) {
				return newInstanceErrorf(KindSchemaError, pathString(childPath),
					"content-type %s does not admit %s", vc.ct, name)
			}
			if vc.scope.wantsSemantics() {
				if err := vc.checkWhenMust(c, childPath); err != nil {
					return err
				}
			}
			if err := vc.validateAt(c, child, childPath); err != nil {
				return err
			}
			continue
		}

		if !vc.scope.wantsSyntax() || !vc.ct.admits(c.config) {
			continue
		}
		if c.mandatory {
			return newInstanceErrorf(KindSchemaError, pathString(childPath), "mandatory node %s is absent", name)
		}
		if (c.kind == KindList || c.kind == KindLeafList) && c.hasMin && c.minElem > 0 {
			return newInstanceErrorf(KindSchemaError, pathString(childPath), "%s requires at least %d entries", name, c.minElem)
		}
	}
	return nil
}

func (vc *validateCtx) checkChoiceExclusivity(schema *SchemaNode, o *ObjectValue) error {
	for _, c := range schema.Children() {
		if c.kind != KindChoice {
			continue
		}
		activeCases := map[string]bool{}
		for _, cs := range c.Cases() {
			for _, d := range cs.DataChildren() {
				if _, ok := o.Get(instanceNameFor(d)); ok {
					activeCases[cs.Name()] = true
				}
			}
		}
		if len(activeCases) > 1 {
			return newSchemaErrorf(KindSchemaError, c.Path(), "more than one case of choice %s is present", c.Name())
		}
	}
	return nil
}

func (vc *validateCtx) validateArray(schema *SchemaNode, a *ArrayValue, path []string) error {
	if vc.scope.wantsSyntax() {
		if schema.hasMax && a.Len() > schema.maxElem {
			return newInstanceErrorf(KindSchemaError, pathString(path), "%s has more than max-elements %d entries", schema.name, schema.maxElem)
		}
		if schema.hasMin && a.Len() < schema.minElem {
			return newInstanceErrorf(KindSchemaError, pathString(path), "%s has fewer than min-elements %d entries", schema.name, schema.minElem)
		}
		if schema.kind == KindList {
			if err := vc.checkKeysAndUnique(schema, a, path); err != nil {
				return err
			}
		}
	}
	for i, it := range a.Items() {
		entryPath := append(append([]string{}, path...), fmt.Sprintf("[%d]", i))
		if err := vc.validateAt(schema, it, entryPath); err != nil {
			return err
		}
	}
	return nil
}

func (vc *validateCtx) checkKeysAndUnique(schema *SchemaNode, a *ArrayValue, path []string) error {
	seenKeys := map[string]bool{}
	for i, it := range a.Items() {
		o, ok := it.(*ObjectValue)
		if !ok {
			return newInstanceErrorf(KindSchemaError, pathString(path), "list entry %d is not an object", i)
		}
		var keyRepr string
		for _, k := range schema.keys {
			kc := schema.GetDataChild(k, "")
			if kc == nil {
				continue
			}
			v, present := o.Get(instanceNameFor(kc))
			if !present {
				return newInstanceErrorf(KindSchemaError, pathString(path), "list entry %d missing key %s", i, k)
			}
			sv, ok := v.(*ScalarValue)
			if !ok {
				return newInstanceErrorf(KindSchemaError, pathString(path), "list entry %d key %s is not a scalar", i, k)
			}
			keyRepr += "\x00" + fmt.Sprintf("%v", sv.Value)
		}
		if seenKeys[keyRepr] {
			return newInstanceErrorf(KindSchemaError, pathString(path), "duplicate key tuple at entry %d", i)
		}
		seenKeys[keyRepr] = true
	}
	for _, unique := range schema.uniques {
		if err := vc.checkUnique(schema, a, unique, path); err != nil {
			return err
		}
	}
	return nil
}

func (vc *validateCtx) checkUnique(schema *SchemaNode, a *ArrayValue, nodeIDs []string, path []string) error {
	seen := map[string]bool{}
	for i, it := range a.Items() {
		o, ok := it.(*ObjectValue)
		if !ok {
			continue
		}
		tuple := ""
		complete := true
		for _, id := range nodeIDs {
			c := schema.GetDataChild(id, "")
			if c == nil {
				complete = false
				break
			}
			v, present := o.Get(instanceNameFor(c))
			if !present {
				complete = false
				break
			}
			sv, ok := v.(*ScalarValue)
			if !ok {
				complete = false
				break
			}
			tuple += "\x00" + fmt.Sprintf("%v", sv.Value)
		}
		if !complete {
			continue
		}
		if seen[tuple] {
			return newInstanceErrorf(KindSchemaError, pathString(path), "unique constraint violated at entry %d", i)
		}
		seen[tuple] = true
	}
	return nil
}

func (vc *validateCtx) validateScalar(schema *SchemaNode, sv *ScalarValue, path []string) error {
	if vc.scope.wantsSyntax() && schema.datatype != nil {
		if _, err := schema.datatype.CanonicalString(sv.Value); err != nil {
			return newInstanceErrorf(KindSchemaError, pathString(path), "%v", err)
		}
	}
	if !vc.scope.wantsSemantics() || schema.datatype == nil {
		return nil
	}
	gt, ok := schema.datatype.(*goyangType)
	if !ok {
		return nil
	}
	switch gt.yt.Kind {
	case yang.Yleafref:
		return vc.checkLeafref(schema, gt, path, sv)
	case yang.Yidentityref:
		qname, _ := sv.Value.(string)
		if !schema.isIdentityKnown(qname) {
			return newInstanceErrorf(KindSemanticError, pathString(path), "identityref %q designates no known identity", qname)
		}
	case yang.YinstanceIdentifier:
		if gt.yt.OptionalInstance {
			return nil
		}
		route, ok := sv.Value.(InstanceRoute)
		if !ok {
			return nil
		}
		if route.ResolveValue(vc.root) == nil {
			return newInstanceErrorf(KindSemanticError, pathString(path), "instance-identifier %s does not resolve", route.String())
		}
	}
	return nil
}

func (vc *validateCtx) checkLeafref(schema *SchemaNode, gt *goyangType, path []string, sv *ScalarValue) error {
	if gt.yt.OptionalInstance || gt.yt.Path == "" {
		return nil
	}
	target, err := ResolvePath(vc.rootSchema, vc.root, schema, path, gt.yt.Path)
	if err != nil {
		return nil // path text that does not parse: accept permissively
	}
	if target == nil {
		return newInstanceErrorf(KindSemanticError, pathString(path), "leafref %s does not resolve", schema.name)
	}
	tsv, ok := target.(*ScalarValue)
	if !ok {
		return nil
	}
	c1, e1 := schema.datatype.CanonicalString(sv.Value)
	c2, e2 := schema.datatype.CanonicalString(tsv.Value)
	if e1 == nil && e2 == nil && c1 != c2 {
		return newInstanceErrorf(KindSemanticError, pathString(path), "leafref %s target value mismatch", schema.name)
	}
	return nil
}

func (vc *validateCtx) checkWhenMust(schema *SchemaNode, path []string) error {
	if schema.when != "" {
		ok, err := EvaluateWhen(vc.rootSchema, vc.root, schema, path, schema.when)
		if err != nil {
			return err
		}
		if !ok {
			return newInstanceErrorf(KindSemanticError, pathString(path), "when expression false for present node %s", schema.name)
		}
	}
	for _, m := range schema.musts {
		ok, err := EvaluateWhen(vc.rootSchema, vc.root, schema, path, m)
		if err != nil {
			return err
		}
		if !ok {
			return newInstanceErrorf(KindSemanticError, pathString(path), "must expression false for %s", schema.name)
		}
	}
	return nil
}

func pathString(path []string) string {
	s := "/"
	for _, p := range path {
		s += p + "/"
	}
	return s
}
