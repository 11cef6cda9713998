// Package ffimap maps the parsed C type model to the foreign-function
// binding idiom of the generated Go code: a Go-side type, a libffi type
// descriptor (github.com/jupiterrider/ffi) and the size/alignment the native
// compiler gives the type. All functions are pure; the mapper never mutates
// the header.
//
// Sizes assume the LP64 data model of the 64-bit platforms the generated
// bindings run on (long and pointers are 8 bytes).
package ffimap

import (
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/cgobind/cgobind/chdr"
)

// Mapped is the binding-side description of one C type.
type Mapped struct {
	// Go is the type spelled in the generated Go source.
	Go string

	// FFI is the libffi descriptor expression, e.g. "&ffi.TypeSint32" or
	// "&FFITypeColor" for a generated struct descriptor.
	FFI string

	// FFIRepeat is how many times FFI must be repeated inside a struct
	// descriptor. 1 for scalars; N (or a product of nested lengths) for
	// fixed arrays, which libffi encodes by element repetition.
	FFIRepeat int

	Size  uintptr
	Align uintptr
}

// Mapper maps types against one resolved header. Rename is the cosmetic
// name transform the emitter applies to declaration names; identity when
// nil. The transform never leaks into symbol resolution, only into the Go
// spellings.
type Mapper struct {
	Header *chdr.Header
	Rename func(string) string
}

func New(h *chdr.Header) *Mapper {
	return &Mapper{Header: h}
}

func (m *Mapper) rename(name string) string {
	if m.Rename == nil {
		return name
	}
	return m.Rename(name)
}

// Map converts one type node. Mapping `void` yields the zero Mapped with
// FFI "&ffi.TypeVoid": callers decide whether that means "no return value".
func (m *Mapper) Map(t chdr.Type) (Mapped, error) {
	return m.mapType(t, make(map[*chdr.StructDecl]bool))
}

func (m *Mapper) mapType(t chdr.Type, visiting map[*chdr.StructDecl]bool) (Mapped, error) {
	switch t := t.(type) {
	case *chdr.Primitive:
		return mapPrimitive(t.Kind)

	case *chdr.Pointer:
		return m.mapPointer(t, visiting)

	case *chdr.Array:
		elem, err := m.mapType(t.Elem, visiting)
		if err != nil {
			return Mapped{}, err
		}
		if t.Len <= 0 {
			return Mapped{}, errors.Errorf("array of %s has no resolved length", chdr.TypeString(t.Elem))
		}
		return Mapped{
			Go:        fmt.Sprintf("[%d]%s", t.Len, elem.Go),
			FFI:       elem.FFI,
			FFIRepeat: elem.FFIRepeat * t.Len,
			Size:      elem.Size * uintptr(t.Len),
			Align:     elem.Align,
		}, nil

	case *chdr.Named:
		return m.mapNamed(t, visiting)

	case *chdr.FuncPtr:
		// Platform default calling convention; the caller passes a raw
		// function pointer.
		return pointerMapped("uintptr"), nil

	case nil:
		return Mapped{}, errors.New("missing type")
	}
	return Mapped{}, errors.Errorf("unhandled type node %T", t)
}

func (m *Mapper) mapPointer(t *chdr.Pointer, visiting map[*chdr.StructDecl]bool) (Mapped, error) {
	switch elem := t.Elem.(type) {
	case *chdr.Primitive:
		switch elem.Kind {
		case chdr.PrimVoid:
			return pointerMapped("unsafe.Pointer"), nil
		case chdr.PrimChar, chdr.PrimSChar, chdr.PrimUChar:
			// Raw byte buffer. Text decoding is the caller's business.
			return pointerMapped("*byte"), nil
		}
		inner, err := mapPrimitive(elem.Kind)
		if err != nil {
			return Mapped{}, err
		}
		return pointerMapped("*" + inner.Go), nil

	case *chdr.Named:
		ref, err := m.deref(elem)
		if err != nil {
			return Mapped{}, err
		}
		switch ref := ref.(type) {
		case *chdr.StructDecl:
			if ref.Opaque {
				return pointerMapped("uintptr"), nil
			}
			return pointerMapped("*" + m.rename(ref.Name)), nil
		case *chdr.EnumDecl:
			return pointerMapped("*" + m.rename(ref.Name)), nil
		case *chdr.CallbackDecl:
			return pointerMapped("*uintptr"), nil
		case *chdr.TypeAliasDecl:
			return m.mapPointer(&chdr.Pointer{Elem: ref.Target}, visiting)
		}
		return Mapped{}, errors.Errorf("pointer to unsupported declaration %s", elem.Name)

	case *chdr.FuncPtr:
		return pointerMapped("uintptr"), nil

	default:
		inner, err := m.mapType(t.Elem, visiting)
		if err != nil {
			return Mapped{}, err
		}
		return pointerMapped("*" + inner.Go), nil
	}
}

func (m *Mapper) mapNamed(t *chdr.Named, visiting map[*chdr.StructDecl]bool) (Mapped, error) {
	ref, err := m.deref(t)
	if err != nil {
		return Mapped{}, err
	}
	switch ref := ref.(type) {
	case *chdr.StructDecl:
		if ref.Opaque {
			// Opaque handles travel as pointers even by value.
			return pointerMapped("uintptr"), nil
		}
		layout, err := m.layout(ref, visiting)
		if err != nil {
			return Mapped{}, err
		}
		return Mapped{
			Go:        m.rename(ref.Name),
			FFI:       "&FFIType" + m.rename(ref.Name),
			FFIRepeat: 1,
			Size:      layout.Size,
			Align:     layout.Align,
		}, nil
	case *chdr.EnumDecl:
		// Enums are emitted as int32 types.
		return Mapped{Go: m.rename(ref.Name), FFI: "&ffi.TypeSint32", FFIRepeat: 1, Size: 4, Align: 4}, nil
	case *chdr.TypeAliasDecl:
		return m.mapType(ref.Target, visiting)
	case *chdr.CallbackDecl:
		return Mapped{Go: m.rename(ref.Name), FFI: "&ffi.TypePointer", FFIRepeat: 1, Size: ptrSize, Align: ptrSize}, nil
	}
	return Mapped{}, errors.Errorf("reference %s resolves to unsupported declaration", t.Name)
}

func (m *Mapper) deref(t *chdr.Named) (chdr.Decl, error) {
	if t.Ref == nil {
		return nil, errors.Errorf("type %s is unresolved", t.Name)
	}
	return t.Ref, nil
}

// IsVoid reports whether a type is plain `void`, i.e. "no return value".
func IsVoid(t chdr.Type) bool {
	p, ok := t.(*chdr.Primitive)
	return ok && p.Kind == chdr.PrimVoid
}

// FieldLayout is one field's placement inside a struct.
type FieldLayout struct {
	Name   string
	Offset uintptr
	Mapped Mapped
}

// Layout is the computed in-memory layout of a struct under natural
// alignment: each field aligned to its own alignment, total size rounded up
// to the largest field alignment. This must match what the native compiler
// produced, assuming the library was built without packing pragmas.
type Layout struct {
	Fields []FieldLayout
	Size   uintptr
	Align  uintptr
}

// StructLayout computes the layout of a non-opaque struct, preserving header
// field order exactly.
func (m *Mapper) StructLayout(d *chdr.StructDecl) (Layout, error) {
	return m.layout(d, make(map[*chdr.StructDecl]bool))
}

func (m *Mapper) layout(d *chdr.StructDecl, visiting map[*chdr.StructDecl]bool) (Layout, error) {
	if d.Opaque {
		return Layout{}, errors.Errorf("struct %s is opaque", d.Name)
	}
	if visiting[d] {
		return Layout{}, errors.Errorf("struct %s contains itself by value", d.Name)
	}
	visiting[d] = true
	defer delete(visiting, d)

	var l Layout
	var offset uintptr
	for _, f := range d.Fields {
		fm, err := m.mapType(f.Type, visiting)
		if err != nil {
			return Layout{}, errors.WithMessagef(err, "field %s", f.Name)
		}
		if fm.Align == 0 {
			return Layout{}, errors.Errorf("field %s has no size", f.Name)
		}
		offset = alignUp(offset, fm.Align)
		l.Fields = append(l.Fields, FieldLayout{Name: f.Name, Offset: offset, Mapped: fm})
		offset += fm.Size
		if fm.Align > l.Align {
			l.Align = fm.Align
		}
	}
	if l.Align == 0 {
		l.Align = 1
	}
	l.Size = alignUp(offset, l.Align)
	return l, nil
}

func alignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

const ptrSize = 8

var float16Size = unsafe.Sizeof(float16.Frombits(0))

func pointerMapped(goType string) Mapped {
	return Mapped{Go: goType, FFI: "&ffi.TypePointer", FFIRepeat: 1, Size: ptrSize, Align: ptrSize}
}

// mapPrimitive maps by exact bit width and signedness, never by the loose C
// name alone.
func mapPrimitive(kind chdr.PrimKind) (Mapped, error) {
	scalar := func(goType, ffiType string, size uintptr) (Mapped, error) {
		return Mapped{Go: goType, FFI: "&ffi." + ffiType, FFIRepeat: 1, Size: size, Align: size}, nil
	}
	switch kind {
	case chdr.PrimVoid:
		return Mapped{FFI: "&ffi.TypeVoid", FFIRepeat: 1}, nil
	case chdr.PrimBool:
		return scalar("bool", "TypeUint8", 1)
	case chdr.PrimChar, chdr.PrimSChar, chdr.PrimInt8:
		return scalar("int8", "TypeSint8", 1)
	case chdr.PrimUChar, chdr.PrimUint8:
		return scalar("uint8", "TypeUint8", 1)
	case chdr.PrimShort, chdr.PrimInt16:
		return scalar("int16", "TypeSint16", 2)
	case chdr.PrimUShort, chdr.PrimUint16:
		return scalar("uint16", "TypeUint16", 2)
	case chdr.PrimInt, chdr.PrimInt32:
		return scalar("int32", "TypeSint32", 4)
	case chdr.PrimUInt, chdr.PrimUint32:
		return scalar("uint32", "TypeUint32", 4)
	case chdr.PrimLong, chdr.PrimLongLong, chdr.PrimInt64, chdr.PrimSSizeT, chdr.PrimIntptr:
		return scalar("int64", "TypeSint64", 8)
	case chdr.PrimULong, chdr.PrimULongLong, chdr.PrimUint64, chdr.PrimSizeT:
		return scalar("uint64", "TypeUint64", 8)
	case chdr.PrimUintptr:
		return scalar("uintptr", "TypeUint64", 8)
	case chdr.PrimFloat16:
		// Carried in a 16-bit slot; float16.Float16 is its Go-side shape.
		return scalar("float16.Float16", "TypeUint16", float16Size)
	case chdr.PrimFloat:
		return scalar("float32", "TypeFloat", 4)
	case chdr.PrimDouble:
		return scalar("float64", "TypeDouble", 8)
	}
	return Mapped{}, errors.Errorf("unhandled primitive kind %d", kind)
}
