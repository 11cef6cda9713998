package ffimap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cgobind/cgobind/chdr"
)

func mapperFor(t *testing.T, src string) (*Mapper, *chdr.Header) {
	hdr, err := chdr.Parse(src)
	require.NoError(t, err)
	hdr.Finalize()
	require.Empty(t, hdr.Diags)
	return New(hdr), hdr
}

func fieldType(t *testing.T, hdr *chdr.Header, structName string, i int) chdr.Type {
	d, ok := hdr.LookupType(structName)
	require.True(t, ok)
	s, ok := d.(*chdr.StructDecl)
	require.True(t, ok)
	require.Greater(t, len(s.Fields), i)
	return s.Fields[i].Type
}

func TestMapPrimitives(t *testing.T) {
	m, hdr := mapperFor(t, `
typedef struct Probe {
    int a;
    unsigned char b;
    long c;
    unsigned long long d;
    float e;
    double f;
    bool g;
    short h;
} Probe;
`)
	want := []struct {
		goType string
		ffi    string
		size   uintptr
	}{
		{"int32", "&ffi.TypeSint32", 4},
		{"uint8", "&ffi.TypeUint8", 1},
		{"int64", "&ffi.TypeSint64", 8},
		{"uint64", "&ffi.TypeUint64", 8},
		{"float32", "&ffi.TypeFloat", 4},
		{"float64", "&ffi.TypeDouble", 8},
		{"bool", "&ffi.TypeUint8", 1},
		{"int16", "&ffi.TypeSint16", 2},
	}
	for i, w := range want {
		got, err := m.Map(fieldType(t, hdr, "Probe", i))
		require.NoError(t, err)
		require.Equal(t, w.goType, got.Go, "field %d", i)
		require.Equal(t, w.ffi, got.FFI, "field %d", i)
		require.Equal(t, w.size, got.Size, "field %d", i)
		require.Equal(t, 1, got.FFIRepeat, "field %d", i)
	}
}

func TestMapPointers(t *testing.T) {
	m, hdr := mapperFor(t, `
typedef struct Image { int width; } Image;
typedef struct Ctx Ctx;
typedef struct Probe {
    void *raw;
    char *text;
    unsigned char *bytes;
    float *samples;
    Image *img;
    Ctx *ctx;
} Probe;
`)
	want := []string{
		"unsafe.Pointer",
		"*byte",
		"*byte",
		"*float32",
		"*Image",
		"uintptr",
	}
	for i, w := range want {
		got, err := m.Map(fieldType(t, hdr, "Probe", i))
		require.NoError(t, err)
		require.Equal(t, w, got.Go, "field %d", i)
		require.Equal(t, "&ffi.TypePointer", got.FFI, "field %d", i)
		require.Equal(t, uintptr(8), got.Size, "field %d", i)
	}
}

func TestMapArrayRepeatsElementDescriptor(t *testing.T) {
	m, hdr := mapperFor(t, `
typedef struct Probe { float v[3]; } Probe;
`)
	got, err := m.Map(fieldType(t, hdr, "Probe", 0))
	require.NoError(t, err)
	require.Equal(t, "[3]float32", got.Go)
	require.Equal(t, "&ffi.TypeFloat", got.FFI)
	require.Equal(t, 3, got.FFIRepeat)
	require.Equal(t, uintptr(12), got.Size)
	require.Equal(t, uintptr(4), got.Align)
}

func TestMapEnumAndAlias(t *testing.T) {
	m, hdr := mapperFor(t, `
typedef enum { MODE_A, MODE_B } Mode;
typedef unsigned int GLuint;
typedef struct Probe { Mode mode; GLuint id; } Probe;
`)
	mode, err := m.Map(fieldType(t, hdr, "Probe", 0))
	require.NoError(t, err)
	require.Equal(t, "Mode", mode.Go)
	require.Equal(t, "&ffi.TypeSint32", mode.FFI)

	id, err := m.Map(fieldType(t, hdr, "Probe", 1))
	require.NoError(t, err)
	require.Equal(t, "uint32", id.Go)
}

func TestMapStructByValue(t *testing.T) {
	m, hdr := mapperFor(t, `
typedef struct Vector2 { float x; float y; } Vector2;
typedef struct Probe { Vector2 pos; } Probe;
`)
	got, err := m.Map(fieldType(t, hdr, "Probe", 0))
	require.NoError(t, err)
	require.Equal(t, "Vector2", got.Go)
	require.Equal(t, "&FFITypeVector2", got.FFI)
	require.Equal(t, uintptr(8), got.Size)
}

func TestStructLayoutPadding(t *testing.T) {
	m, hdr := mapperFor(t, `
typedef struct Padded {
    char tag;
    double value;
    int count;
} Padded;
`)
	d, _ := hdr.LookupType("Padded")
	layout, err := m.StructLayout(d.(*chdr.StructDecl))
	require.NoError(t, err)

	require.Equal(t, uintptr(0), layout.Fields[0].Offset)
	require.Equal(t, uintptr(8), layout.Fields[1].Offset)
	require.Equal(t, uintptr(16), layout.Fields[2].Offset)
	// Tail padding rounds the size up to the largest alignment.
	require.Equal(t, uintptr(24), layout.Size)
	require.Equal(t, uintptr(8), layout.Align)
}

func TestStructLayoutMatrix(t *testing.T) {
	m, hdr := mapperFor(t, `
typedef struct Matrix { float m[16]; } Matrix;
`)
	d, _ := hdr.LookupType("Matrix")
	layout, err := m.StructLayout(d.(*chdr.StructDecl))
	require.NoError(t, err)
	require.Equal(t, uintptr(64), layout.Size)
	require.Equal(t, uintptr(4), layout.Align)
}

func TestMapSelfReferentialStructByPointer(t *testing.T) {
	m, hdr := mapperFor(t, `
typedef struct Node { int value; struct Node *next; } Node;
`)
	d, _ := hdr.LookupType("Node")
	layout, err := m.StructLayout(d.(*chdr.StructDecl))
	require.NoError(t, err)
	require.Equal(t, uintptr(16), layout.Size)
	require.Equal(t, "*Node", layout.Fields[1].Mapped.Go)
}

func TestMapFloat16(t *testing.T) {
	m, hdr := mapperFor(t, `
typedef struct Half { _Float16 h; } Half;
`)
	got, err := m.Map(fieldType(t, hdr, "Half", 0))
	require.NoError(t, err)
	require.Equal(t, "float16.Float16", got.Go)
	require.Equal(t, "&ffi.TypeUint16", got.FFI)
	require.Equal(t, uintptr(2), got.Size)
}

func TestMapVoidReturn(t *testing.T) {
	m, hdr := mapperFor(t, `RLAPI void DoNothing(void);`)
	fn, ok := hdr.LookupFunc("DoNothing")
	require.True(t, ok)
	require.True(t, IsVoid(fn.Ret))
	got, err := m.Map(fn.Ret)
	require.NoError(t, err)
	require.Equal(t, "&ffi.TypeVoid", got.FFI)
}

func TestMapRenameAppliesToGoSideOnly(t *testing.T) {
	hdr, err := chdr.Parse(`
typedef struct audio_stream { int rate; } audio_stream;
typedef struct Probe { audio_stream s; audio_stream *p; } Probe;
`)
	require.NoError(t, err)
	hdr.Finalize()
	m := &Mapper{Header: hdr, Rename: func(s string) string { return "X" + s }}

	got, err := m.Map(fieldType(t, hdr, "Probe", 0))
	require.NoError(t, err)
	require.Equal(t, "Xaudio_stream", got.Go)
	require.Equal(t, "&FFITypeXaudio_stream", got.FFI)

	ptr, err := m.Map(fieldType(t, hdr, "Probe", 1))
	require.NoError(t, err)
	require.Equal(t, "*Xaudio_stream", ptr.Go)
}
