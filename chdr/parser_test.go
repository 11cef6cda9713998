package chdr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func isVoid(t Type) bool {
	p, ok := t.(*Primitive)
	return ok && p.Kind == PrimVoid
}

func parseHeader(t *testing.T, src string) *Header {
	hdr, err := Parse(src)
	require.NoError(t, err)
	return hdr
}

func findDecl[T Decl](t *testing.T, hdr *Header, name string) T {
	t.Helper()
	for _, d := range hdr.Decls {
		if d.DeclName() != name {
			continue
		}
		got, ok := d.(T)
		require.True(t, ok, "declaration %s has kind %s", name, d.DeclKind())
		return got
	}
	var zero T
	require.Failf(t, "declaration not found", "no declaration named %s", name)
	return zero
}

func TestParseDefineConstants(t *testing.T) {
	hdr := parseHeader(t, `
#define MAX_LIGHTS 8
#define VERSION "4.5"
#define SCALE 2.5f
`)
	require.Len(t, hdr.Decls, 3)
	c := findDecl[*ConstantDecl](t, hdr, "MAX_LIGHTS")
	require.Equal(t, DeclConstant, c.DeclKind())
	require.Empty(t, hdr.Diags)
}

func TestParseDefineFunctionLikeMacroSkipped(t *testing.T) {
	hdr := parseHeader(t, `
#define SQUARE(x) ((x)*(x))
#define SPACED (1+2)
`)
	// SQUARE is function-like ('(' glued to the name); SPACED is object-like.
	require.Len(t, hdr.Decls, 1)
	require.Equal(t, "SPACED", hdr.Decls[0].DeclName())
	require.Len(t, hdr.Diags, 1)
	require.Equal(t, DiagParseSkip, hdr.Diags[0].Kind)
	require.Equal(t, "SQUARE", hdr.Diags[0].Name)
}

func TestParseConstantsSurviveMacroSkip(t *testing.T) {
	hdr := parseHeader(t, `
#define C1 1
#define C2 2
#define C3 3
#define C4 4
#define BROKEN(a, b) ((a) > (b) ? (a) : (b))
#define C5 5
#define C6 6
#define C7 7
#define C8 8
#define C9 9
`)
	count := 0
	for _, d := range hdr.Decls {
		if d.DeclKind() == DeclConstant {
			count++
		}
	}
	require.Equal(t, 9, count)
	require.Len(t, hdr.Diags, 1)
	require.Equal(t, DiagParseSkip, hdr.Diags[0].Kind)
	require.Equal(t, "BROKEN", hdr.Diags[0].Name)
}

func TestParseIncludeGuardDropped(t *testing.T) {
	hdr := parseHeader(t, `
#ifndef MYLIB_H
#define MYLIB_H
#include <stdarg.h>
#define ANSWER 42
#endif
`)
	require.Len(t, hdr.Decls, 1)
	require.Equal(t, "ANSWER", hdr.Decls[0].DeclName())
	require.Empty(t, hdr.Diags)
}

func TestParseStruct(t *testing.T) {
	hdr := parseHeader(t, `
typedef struct Vector3 {
    float x;
    float y, z;
} Vector3;
`)
	s := findDecl[*StructDecl](t, hdr, "Vector3")
	require.Equal(t, "Vector3", s.Tag)
	require.False(t, s.Opaque)
	require.Len(t, s.Fields, 3)
	require.Equal(t, "x", s.Fields[0].Name)
	require.Equal(t, "y", s.Fields[1].Name)
	require.Equal(t, "z", s.Fields[2].Name)
	for _, f := range s.Fields {
		prim, ok := f.Type.(*Primitive)
		require.True(t, ok)
		require.Equal(t, PrimFloat, prim.Kind)
	}
}

func TestParseStructPointerAndArrayFields(t *testing.T) {
	hdr := parseHeader(t, `
#define MAX_NAME 32
typedef struct Entry {
    unsigned char *data;
    char name[MAX_NAME];
    float values[4];
} Entry;
`)
	s := findDecl[*StructDecl](t, hdr, "Entry")
	require.Len(t, s.Fields, 3)

	_, ok := s.Fields[0].Type.(*Pointer)
	require.True(t, ok)

	name, ok := s.Fields[1].Type.(*Array)
	require.True(t, ok)
	require.Equal(t, "MAX_NAME", name.LenName)
	require.Zero(t, name.Len) // resolved during Finalize

	values, ok := s.Fields[2].Type.(*Array)
	require.True(t, ok)
	require.Equal(t, 4, values.Len)
}

func TestParseOpaqueStruct(t *testing.T) {
	hdr := parseHeader(t, `
typedef struct AudioDevice AudioDevice;
typedef struct Window *WindowHandle;
`)
	dev := findDecl[*StructDecl](t, hdr, "AudioDevice")
	require.True(t, dev.Opaque)
	win := findDecl[*StructDecl](t, hdr, "WindowHandle")
	require.True(t, win.Opaque)
}

func TestParseStructWithUnionSkipped(t *testing.T) {
	hdr := parseHeader(t, `
typedef struct Mixed {
    int tag;
    union { int i; float f; } u;
} Mixed;
typedef struct Plain { int a; } Plain;
`)
	require.Len(t, hdr.Emittable(), 1)
	require.Equal(t, "Plain", hdr.Emittable()[0].DeclName())
	require.Len(t, hdr.Diags, 1)
	require.Equal(t, DiagParseSkip, hdr.Diags[0].Kind)
}

func TestParseStructWithBitFieldSkipped(t *testing.T) {
	hdr := parseHeader(t, `
typedef struct Flags {
    unsigned int a : 1;
    unsigned int b : 31;
} Flags;
`)
	require.Empty(t, hdr.Emittable())
	require.Len(t, hdr.Diags, 1)
	require.Contains(t, hdr.Diags[0].Message, "bit-field")
}

func TestParseNestedAnonymousStructLifted(t *testing.T) {
	hdr := parseHeader(t, `
typedef struct Outer {
    int id;
    struct { float x; float y; } point;
} Outer;
`)
	lifted := findDecl[*StructDecl](t, hdr, "Outer_point")
	require.Len(t, lifted.Fields, 2)
	outer := findDecl[*StructDecl](t, hdr, "Outer")
	require.Len(t, outer.Fields, 2)
	ref, ok := outer.Fields[1].Type.(*Named)
	require.True(t, ok)
	require.Equal(t, "Outer_point", ref.Name)
	// The synthesized struct precedes its user.
	require.Equal(t, "Outer_point", hdr.Decls[0].DeclName())
}

func TestParseEnum(t *testing.T) {
	hdr := parseHeader(t, `
typedef enum {
    MODE_A,
    MODE_B,
    MODE_C = 5,
    MODE_D
} Mode;
`)
	e := findDecl[*EnumDecl](t, hdr, "Mode")
	require.Len(t, e.Members, 4)
	require.Equal(t, "MODE_A", e.Members[0].Name)
	require.Nil(t, e.Members[0].Expr)
	require.NotNil(t, e.Members[2].Expr)
}

func TestParseTypeAliasAndCallback(t *testing.T) {
	hdr := parseHeader(t, `
typedef unsigned int RLuint;
typedef void (*TraceLogCallback)(int logLevel, const char *text);
`)
	alias := findDecl[*TypeAliasDecl](t, hdr, "RLuint")
	prim, ok := alias.Target.(*Primitive)
	require.True(t, ok)
	require.Equal(t, PrimUInt, prim.Kind)

	cb := findDecl[*CallbackDecl](t, hdr, "TraceLogCallback")
	require.True(t, isVoid(cb.Ret))
	require.Len(t, cb.Params, 2)
	require.Equal(t, "logLevel", cb.Params[0].Name)
	_, ok = cb.Params[1].Type.(*Pointer)
	require.True(t, ok)
}

func TestParsePrototypes(t *testing.T) {
	hdr := parseHeader(t, `
RLAPI void InitWindow(int width, int height, const char *title);
RLAPI bool WindowShouldClose(void);
RLAPI float GetFrameTime();
double Clamp(double value, double min, double max);
`)
	require.Len(t, hdr.Decls, 4)

	initWin := findDecl[*FunctionDecl](t, hdr, "InitWindow")
	require.True(t, isVoid(initWin.Ret))
	require.Len(t, initWin.Params, 3)
	require.Equal(t, "width", initWin.Params[0].Name)

	should := findDecl[*FunctionDecl](t, hdr, "WindowShouldClose")
	require.Empty(t, should.Params)

	frame := findDecl[*FunctionDecl](t, hdr, "GetFrameTime")
	require.Empty(t, frame.Params)

	clamp := findDecl[*FunctionDecl](t, hdr, "Clamp")
	require.Len(t, clamp.Params, 3)
}

func TestParseVariadicSkipped(t *testing.T) {
	hdr := parseHeader(t, `
RLAPI void TraceLog(int logLevel, const char *text, ...);
RLAPI void CloseWindow(void);
`)
	require.Len(t, hdr.Emittable(), 1)
	require.Equal(t, "CloseWindow", hdr.Emittable()[0].DeclName())
	require.Len(t, hdr.Diags, 1)
	require.Equal(t, DiagParseSkip, hdr.Diags[0].Kind)
	require.Equal(t, "TraceLog", hdr.Diags[0].Name)
}

func TestParseStaticInlineSkipped(t *testing.T) {
	hdr := parseHeader(t, `
static inline int helper(int x) { return x + 1; }
RLAPI int GetScreenWidth(void);
`)
	require.Len(t, hdr.Emittable(), 1)
	require.Equal(t, "GetScreenWidth", hdr.Emittable()[0].DeclName())
}

func TestParseFunctionPointerParam(t *testing.T) {
	hdr := parseHeader(t, `
RLAPI void SetCallback(void (*callback)(int code));
`)
	fn := findDecl[*FunctionDecl](t, hdr, "SetCallback")
	require.Len(t, fn.Params, 1)
	fp, ok := fn.Params[0].Type.(*FuncPtr)
	require.True(t, ok)
	require.Len(t, fp.Params, 1)
}

func TestParseUnbalancedBracesFatal(t *testing.T) {
	_, err := Parse("typedef struct Foo { int x; Foo;")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseSkippedDeclDoesNotPoisonNeighbours(t *testing.T) {
	hdr := parseHeader(t, `
typedef struct Good1 { int a; } Good1;
this is ! not a declaration at all;
typedef struct Good2 { int b; } Good2;
`)
	findDecl[*StructDecl](t, hdr, "Good1")
	findDecl[*StructDecl](t, hdr, "Good2")
	require.NotEmpty(t, hdr.Diags)
}
