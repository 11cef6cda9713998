package chdr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Finalize runs the post-parse resolution passes, in order: macro constant
// values, enum member values, array lengths spelled as constants, and named
// type references. Declarations left with unresolved pieces are excluded
// from emission with a diagnostic; the header itself stays usable. After
// Finalize the Header is read-only.
func (h *Header) Finalize() {
	if h.finalized {
		return
	}
	h.finalized = true

	resolveConstants(h)
	h.resolveEnums()
	h.resolveRefs()
	h.cascadeExclusions()
}

// resolveEnums evaluates explicit member expressions and auto-increments the
// rest, starting at 0. Members may reference macro constants and earlier
// members of the same enum.
func (h *Header) resolveEnums() {
	consts := make(map[string]ConstValue)
	for name, c := range h.consts {
		if c.Value != nil {
			consts[name] = *c.Value
		}
	}
	for _, d := range h.Decls {
		e, ok := d.(*EnumDecl)
		if !ok || h.excluded[e] {
			continue
		}
		env := make(map[string]ConstValue, len(consts)+len(e.Members))
		for k, v := range consts {
			env[k] = v
		}
		next := int64(0)
		for i := range e.Members {
			m := &e.Members[i]
			if m.Expr == nil {
				m.Value = next
			} else {
				v, err := evalConstExpr(m.Expr, env)
				if err != nil || v.Kind != ConstInt {
					h.exclude(e, DiagUnresolvedConstant,
						fmt.Sprintf("member %s has an unresolvable value", m.Name))
					break
				}
				m.Value = v.Int
			}
			env[m.Name] = ConstValue{Kind: ConstInt, Int: m.Value}
			next = m.Value + 1
		}
	}
}

// checkCompositeType validates a compound-literal constant against the struct
// it names: the type must be declared in this header with a body, and the
// positional element count must match the field count.
func (h *Header) checkCompositeType(v *ConstValue) error {
	d, ok := h.types[v.Type]
	if !ok {
		return errors.Errorf("compound literal names unknown type %s", v.Type)
	}
	s, ok := d.(*StructDecl)
	if !ok || s.Opaque {
		return errors.Errorf("compound literal type %s is not a struct with a body", v.Type)
	}
	if len(v.Elems) != len(s.Fields) {
		return errors.Errorf("compound literal for %s has %d elements, struct has %d fields",
			v.Type, len(v.Elems), len(s.Fields))
	}
	return nil
}

// promoteTypeAlias converts a define whose value never resolved as a constant
// into a type alias when the value is a bare name of a declared type
// (`#define Quaternion Vector4`). The constant declaration is replaced
// in place, keeping header order.
func (h *Header) promoteTypeAlias(c *ConstantDecl) bool {
	if len(c.Expr) != 1 || c.Expr[0].Kind != TokenIdent {
		return false
	}
	target := c.Expr[0].Text
	if _, ok := h.types[target]; !ok {
		return false
	}
	alias := &TypeAliasDecl{Name: c.Name, Pos: c.Pos, Target: &Named{Name: target}}
	for i, d := range h.Decls {
		if d == c {
			h.Decls[i] = alias
			break
		}
	}
	delete(h.consts, c.Name)
	if prev, ok := h.types[c.Name]; ok {
		h.exclude(prev, DiagShadowed, "type redeclared later in the header")
	}
	h.types[c.Name] = alias
	return true
}

// resolveRefs resolves every Named reference and every named array length
// in the surviving declarations. A reference that never resolves excludes
// the owning declaration only.
func (h *Header) resolveRefs() {
	for _, d := range h.Decls {
		if h.excluded[d] {
			continue
		}
		if err := h.resolveDeclTypes(d); err != nil {
			h.exclude(d, DiagUnresolvedType, err.Error())
		}
	}
}

func (h *Header) resolveDeclTypes(d Decl) error {
	switch d := d.(type) {
	case *StructDecl:
		for _, f := range d.Fields {
			if err := h.resolveType(f.Type); err != nil {
				return errors.WithMessagef(err, "field %s", f.Name)
			}
		}
	case *TypeAliasDecl:
		if err := h.resolveType(d.Target); err != nil {
			return err
		}
		// `typedef void MyVoid;` has no representable value type; void is
		// only meaningful behind a pointer or as a return type.
		if p, ok := d.Target.(*Primitive); ok && p.Kind == PrimVoid {
			return errors.New("alias of void is not bindable")
		}
	case *CallbackDecl:
		if err := h.resolveType(d.Ret); err != nil {
			return errors.WithMessage(err, "return type")
		}
		for i, p := range d.Params {
			if err := h.resolveType(p.Type); err != nil {
				return errors.WithMessagef(err, "parameter %d", i+1)
			}
		}
	case *FunctionDecl:
		if err := h.resolveType(d.Ret); err != nil {
			return errors.WithMessage(err, "return type")
		}
		for i, p := range d.Params {
			if err := h.resolveType(p.Type); err != nil {
				if p.Name != "" {
					return errors.WithMessagef(err, "parameter %s", p.Name)
				}
				return errors.WithMessagef(err, "parameter %d", i+1)
			}
		}
	}
	return nil
}

func (h *Header) resolveType(t Type) error {
	switch t := t.(type) {
	case *Primitive:
		return nil
	case *Pointer:
		return h.resolveType(t.Elem)
	case *Array:
		if t.LenName != "" {
			c, ok := h.consts[t.LenName]
			if !ok || c.Value == nil || c.Value.Kind != ConstInt || c.Value.Int <= 0 {
				return errors.Errorf("array length %s does not resolve to a positive integer", t.LenName)
			}
			t.Len = int(c.Value.Int)
		}
		return h.resolveType(t.Elem)
	case *Named:
		ref, ok := h.types[t.Name]
		if !ok {
			return errors.Errorf("unknown type %s", t.Name)
		}
		t.Ref = ref
		return nil
	case *FuncPtr:
		if err := h.resolveType(t.Ret); err != nil {
			return err
		}
		for _, p := range t.Params {
			if err := h.resolveType(p); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return errors.New("missing type")
	}
	return errors.Errorf("unhandled type node %T", t)
}

// cascadeExclusions drops declarations whose signatures reference a type
// that itself got excluded, so the emitted module never names a type it does
// not define. Runs to a fixpoint since exclusions can chain.
func (h *Header) cascadeExclusions() {
	for {
		changed := false
		for _, d := range h.Decls {
			if h.excluded[d] {
				continue
			}
			if name, bad := h.referencesExcluded(d); bad {
				h.exclude(d, DiagUnresolvedType,
					fmt.Sprintf("references type %s which was dropped", name))
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func (h *Header) referencesExcluded(d Decl) (string, bool) {
	check := func(t Type) (string, bool) { return h.typeReferencesExcluded(t) }
	switch d := d.(type) {
	case *ConstantDecl:
		if d.Value != nil && d.Value.Kind == ConstComposite {
			if ref, ok := h.types[d.Value.Type]; ok && h.excluded[ref] {
				return d.Value.Type, true
			}
		}
	case *StructDecl:
		for _, f := range d.Fields {
			if name, bad := check(f.Type); bad {
				return name, true
			}
		}
	case *TypeAliasDecl:
		return check(d.Target)
	case *CallbackDecl:
		if name, bad := check(d.Ret); bad {
			return name, true
		}
		for _, p := range d.Params {
			if name, bad := check(p.Type); bad {
				return name, true
			}
		}
	case *FunctionDecl:
		if name, bad := check(d.Ret); bad {
			return name, true
		}
		for _, p := range d.Params {
			if name, bad := check(p.Type); bad {
				return name, true
			}
		}
	}
	return "", false
}

func (h *Header) typeReferencesExcluded(t Type) (string, bool) {
	switch t := t.(type) {
	case *Pointer:
		return h.typeReferencesExcluded(t.Elem)
	case *Array:
		return h.typeReferencesExcluded(t.Elem)
	case *Named:
		if t.Ref != nil && h.excluded[t.Ref] {
			return t.Name, true
		}
	case *FuncPtr:
		if name, bad := h.typeReferencesExcluded(t.Ret); bad {
			return name, true
		}
		for _, p := range t.Params {
			if name, bad := h.typeReferencesExcluded(p); bad {
				return name, true
			}
		}
	}
	return "", false
}
