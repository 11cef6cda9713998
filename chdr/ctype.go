package chdr

import (
	"fmt"
	"strings"
)

// PrimKind enumerates the C primitive types the generator understands,
// keyed by exact width and signedness rather than by the loose C name.
type PrimKind int

const (
	PrimVoid PrimKind = iota
	PrimBool
	PrimChar
	PrimSChar
	PrimUChar
	PrimShort
	PrimUShort
	PrimInt
	PrimUInt
	PrimLong
	PrimULong
	PrimLongLong
	PrimULongLong
	PrimFloat16
	PrimFloat
	PrimDouble
	PrimInt8
	PrimUint8
	PrimInt16
	PrimUint16
	PrimInt32
	PrimUint32
	PrimInt64
	PrimUint64
	PrimSizeT
	PrimSSizeT
	PrimUintptr
	PrimIntptr
)

// Type is the recursive model of a C type as used in fields, parameters and
// return positions. Nodes are one of *Primitive, *Pointer, *Array, *Named or
// *FuncPtr.
type Type interface {
	typeString() string
}

// Primitive is a built-in C type.
type Primitive struct {
	Kind PrimKind
}

// Pointer is pointer-to-Elem.
type Pointer struct {
	Elem Type
}

// Array is a fixed-size array field type. Len is the resolved element count;
// LenName is set when the header spelled the length as a macro constant, in
// which case Len is filled during Finalize.
type Array struct {
	Elem    Type
	Len     int
	LenName string
}

// Named is a reference to a struct, enum, alias or callback declared in the
// same header. Ref is nil until Finalize resolves it; a Named whose Ref is
// still nil after Finalize is an unresolved type.
type Named struct {
	Name string
	Ref  Decl
}

// FuncPtr is a function-pointer type appearing inline in a parameter or
// field, e.g. `void (*cb)(int, float)`.
type FuncPtr struct {
	Ret    Type
	Params []Type
}

func (t *Primitive) typeString() string { return primNames[t.Kind] }
func (t *Pointer) typeString() string   { return t.Elem.typeString() + "*" }
func (t *Named) typeString() string     { return t.Name }

func (t *Array) typeString() string {
	if t.LenName != "" && t.Len == 0 {
		return fmt.Sprintf("%s[%s]", t.Elem.typeString(), t.LenName)
	}
	return fmt.Sprintf("%s[%d]", t.Elem.typeString(), t.Len)
}

func (t *FuncPtr) typeString() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.typeString()
	}
	return fmt.Sprintf("%s (*)(%s)", t.Ret.typeString(), strings.Join(parts, ", "))
}

// TypeString renders a type in C-ish notation for diagnostics.
func TypeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.typeString()
}

var primNames = map[PrimKind]string{
	PrimVoid:      "void",
	PrimBool:      "bool",
	PrimChar:      "char",
	PrimSChar:     "signed char",
	PrimUChar:     "unsigned char",
	PrimShort:     "short",
	PrimUShort:    "unsigned short",
	PrimInt:       "int",
	PrimUInt:      "unsigned int",
	PrimLong:      "long",
	PrimULong:     "unsigned long",
	PrimLongLong:  "long long",
	PrimULongLong: "unsigned long long",
	PrimFloat16:   "_Float16",
	PrimFloat:     "float",
	PrimDouble:    "double",
	PrimInt8:      "int8_t",
	PrimUint8:     "uint8_t",
	PrimInt16:     "int16_t",
	PrimUint16:    "uint16_t",
	PrimInt32:     "int32_t",
	PrimUint32:    "uint32_t",
	PrimInt64:     "int64_t",
	PrimUint64:    "uint64_t",
	PrimSizeT:     "size_t",
	PrimSSizeT:    "ssize_t",
	PrimUintptr:   "uintptr_t",
	PrimIntptr:    "intptr_t",
}

// primLookup maps normalized C type spellings (qualifiers stripped, single
// spaces) to primitive kinds. "unsigned" alone means unsigned int.
var primLookup = map[string]PrimKind{
	"void":                   PrimVoid,
	"bool":                   PrimBool,
	"_Bool":                  PrimBool,
	"char":                   PrimChar,
	"signed char":            PrimSChar,
	"unsigned char":          PrimUChar,
	"short":                  PrimShort,
	"short int":              PrimShort,
	"signed short":           PrimShort,
	"unsigned short":         PrimUShort,
	"unsigned short int":     PrimUShort,
	"int":                    PrimInt,
	"signed":                 PrimInt,
	"signed int":             PrimInt,
	"unsigned":               PrimUInt,
	"unsigned int":           PrimUInt,
	"long":                   PrimLong,
	"long int":               PrimLong,
	"unsigned long":          PrimULong,
	"unsigned long int":      PrimULong,
	"long long":              PrimLongLong,
	"long long int":          PrimLongLong,
	"unsigned long long":     PrimULongLong,
	"unsigned long long int": PrimULongLong,
	"_Float16":               PrimFloat16,
	"__fp16":                 PrimFloat16,
	"float":                  PrimFloat,
	"double":                 PrimDouble,
	"long double":            PrimDouble,
	"int8_t":                 PrimInt8,
	"uint8_t":                PrimUint8,
	"int16_t":                PrimInt16,
	"uint16_t":               PrimUint16,
	"int32_t":                PrimInt32,
	"uint32_t":               PrimUint32,
	"int64_t":                PrimInt64,
	"uint64_t":               PrimUint64,
	"size_t":                 PrimSizeT,
	"ssize_t":                PrimSSizeT,
	"uintptr_t":              PrimUintptr,
	"intptr_t":               PrimIntptr,
}

// lookupPrimitive resolves a normalized base-type spelling. va_list is
// treated as an opaque pointer, matching what the original headers need.
func lookupPrimitive(spelling string) (Type, bool) {
	if kind, ok := primLookup[spelling]; ok {
		return &Primitive{Kind: kind}, true
	}
	if spelling == "va_list" {
		return &Pointer{Elem: &Primitive{Kind: PrimVoid}}, true
	}
	return nil, false
}
