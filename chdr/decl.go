package chdr

// DeclKind discriminates the parsed declaration variants.
type DeclKind int

//go:generate go tool enumer -type=DeclKind decl.go

const (
	DeclConstant DeclKind = iota
	DeclEnum
	DeclStruct
	DeclTypeAlias
	DeclCallback
	DeclFunction
)

// Decl is one parsed unit from the header. Concrete types: *ConstantDecl,
// *EnumDecl, *StructDecl, *TypeAliasDecl, *CallbackDecl, *FunctionDecl.
type Decl interface {
	DeclName() string
	DeclKind() DeclKind
	DeclPos() Pos
}

// ConstKind tags the resolved value of a macro constant.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString

	// ConstComposite is a struct-valued constant from a compound-literal
	// macro such as `#define LIGHTGRAY CLITERAL(Color){ 200, 200, 200, 255 }`.
	ConstComposite
)

// ConstValue is the evaluated value of a ConstantDecl together with its
// inferred primitive type.
type ConstValue struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string

	// Type and Elems are set for ConstComposite: the struct type name from
	// the header and the evaluated scalar elements, in declaration order.
	Type  string
	Elems []ConstValue

	// GoType is the inferred Go type of the constant: int64, float32,
	// float64 or string.
	GoType string
}

// ConstantDecl is an object-like `#define NAME value` macro. Expr holds the
// raw value tokens; Value is filled by the post-parse constant resolution
// pass and stays nil when the expression never resolves.
type ConstantDecl struct {
	Name string
	Pos  Pos
	Expr []Token
	Value *ConstValue
}

// EnumMember is one enumerator. Expr is nil when the header omitted an
// explicit value; Value is filled during Finalize (auto-incremented from the
// previous member, starting at 0).
type EnumMember struct {
	Name  string
	Pos   Pos
	Expr  []Token
	Value int64
}

// EnumDecl is a `typedef enum { ... } Name;` declaration. Member order is
// the header order.
type EnumDecl struct {
	Name    string
	Pos     Pos
	Members []EnumMember
}

// Field is one struct field. Fixed-size arrays and pointers are encoded in
// Type; field order is ABI-significant and preserved exactly.
type Field struct {
	Name string
	Pos  Pos
	Type Type
}

// StructDecl is a `typedef struct Tag? { ... } Name;` declaration, or an
// opaque handle (`typedef struct Tag Name;` / `typedef struct Tag *Name;`)
// when Opaque is set.
type StructDecl struct {
	Name   string
	Tag    string
	Pos    Pos
	Opaque bool
	Fields []Field
}

// TypeAliasDecl is a `typedef <type> Name;` over a primitive or another
// named type.
type TypeAliasDecl struct {
	Name   string
	Pos    Pos
	Target Type
}

// Param is one function or callback parameter. Name may be empty (C allows
// unnamed prototype parameters); order is call-ABI-significant.
type Param struct {
	Name string
	Type Type
}

// CallbackDecl is a named function-pointer typedef:
// `typedef Ret (*Name)(params);`.
type CallbackDecl struct {
	Name   string
	Pos    Pos
	Ret    Type
	Params []Param
}

// FunctionDecl is a top-level function prototype.
type FunctionDecl struct {
	Name   string
	Pos    Pos
	Ret    Type
	Params []Param
}

func (d *ConstantDecl) DeclName() string { return d.Name }
func (d *EnumDecl) DeclName() string     { return d.Name }
func (d *StructDecl) DeclName() string   { return d.Name }
func (d *TypeAliasDecl) DeclName() string { return d.Name }
func (d *CallbackDecl) DeclName() string { return d.Name }
func (d *FunctionDecl) DeclName() string { return d.Name }

func (d *ConstantDecl) DeclKind() DeclKind  { return DeclConstant }
func (d *EnumDecl) DeclKind() DeclKind      { return DeclEnum }
func (d *StructDecl) DeclKind() DeclKind    { return DeclStruct }
func (d *TypeAliasDecl) DeclKind() DeclKind { return DeclTypeAlias }
func (d *CallbackDecl) DeclKind() DeclKind  { return DeclCallback }
func (d *FunctionDecl) DeclKind() DeclKind  { return DeclFunction }

func (d *ConstantDecl) DeclPos() Pos  { return d.Pos }
func (d *EnumDecl) DeclPos() Pos      { return d.Pos }
func (d *StructDecl) DeclPos() Pos    { return d.Pos }
func (d *TypeAliasDecl) DeclPos() Pos { return d.Pos }
func (d *CallbackDecl) DeclPos() Pos  { return d.Pos }
func (d *FunctionDecl) DeclPos() Pos  { return d.Pos }

// Header is the parsed and (after Finalize) resolved declaration set of one
// C header. Decls keeps header order; the maps are the per-namespace symbol
// tables (constants, types, functions).
type Header struct {
	Decls []Decl
	Diags []Diagnostic

	consts map[string]*ConstantDecl
	types  map[string]Decl
	funcs  map[string]*FunctionDecl

	excluded  map[Decl]bool
	finalized bool
}

func newHeader() *Header {
	return &Header{
		consts:   make(map[string]*ConstantDecl),
		types:    make(map[string]Decl),
		funcs:    make(map[string]*FunctionDecl),
		excluded: make(map[Decl]bool),
	}
}

// LookupType resolves a name in the shared struct/enum/alias/callback
// namespace.
func (h *Header) LookupType(name string) (Decl, bool) {
	d, ok := h.types[name]
	return d, ok
}

// LookupConst resolves a macro constant by name.
func (h *Header) LookupConst(name string) (*ConstantDecl, bool) {
	d, ok := h.consts[name]
	return d, ok
}

// LookupFunc resolves a function prototype by exported symbol name.
func (h *Header) LookupFunc(name string) (*FunctionDecl, bool) {
	d, ok := h.funcs[name]
	return d, ok
}

// Excluded reports whether a declaration was dropped from emission (shadowed
// by a later declaration of the same name, or owning an unresolved type).
func (h *Header) Excluded(d Decl) bool {
	return h.excluded[d]
}

// Emittable returns the declarations that survived resolution, in header
// order. Only valid after Finalize.
func (h *Header) Emittable() []Decl {
	out := make([]Decl, 0, len(h.Decls))
	for _, d := range h.Decls {
		if !h.excluded[d] {
			out = append(out, d)
		}
	}
	return out
}

func (h *Header) exclude(d Decl, kind DiagKind, msg string) {
	h.excluded[d] = true
	h.Diags = append(h.Diags, Diagnostic{Kind: kind, Pos: d.DeclPos(), Name: d.DeclName(), Message: msg})
}

// add appends a declaration, updating its namespace. On a duplicate name the
// later declaration wins and the earlier one is excluded with a Shadowed
// diagnostic.
func (h *Header) add(d Decl) {
	h.Decls = append(h.Decls, d)
	switch d := d.(type) {
	case *ConstantDecl:
		if prev, ok := h.consts[d.Name]; ok {
			h.exclude(prev, DiagShadowed, "constant redefined later in the header")
		}
		h.consts[d.Name] = d
	case *FunctionDecl:
		if prev, ok := h.funcs[d.Name]; ok {
			h.exclude(prev, DiagShadowed, "function redeclared later in the header")
		}
		h.funcs[d.Name] = d
	default:
		name := d.DeclName()
		if prev, ok := h.types[name]; ok {
			h.exclude(prev, DiagShadowed, "type redeclared later in the header")
		}
		h.types[name] = d
		// A struct tag that differs from the typedef name is a second valid
		// spelling (`struct tagFoo *p`), so it resolves to the same decl.
		if s, ok := d.(*StructDecl); ok && s.Tag != "" && s.Tag != s.Name {
			h.types[s.Tag] = d
		}
	}
}
