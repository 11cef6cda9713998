// Package gogen emits the generated Go binding module. Given a resolved
// header it produces one self-contained source file: loader, constants,
// enums, type aliases, callback types, struct definitions with their libffi
// descriptors, and one wrapper per exported function.
//
// Output is deterministic: identical declarations produce byte-identical
// source on every run. Ordering inside each section is the declaration order
// of the header, never alphabetical.
package gogen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cgobind/cgobind/chdr"
	"github.com/cgobind/cgobind/ffimap"
)

// Options configure one emission run.
type Options struct {
	// Package is the package clause of the generated file.
	Package string

	// LibName is the base library name: "raylib" loads libraylib.so,
	// libraylib.dylib or raylib.dll depending on the host.
	LibName string

	// HeaderName is the header file name quoted in the generated banner.
	HeaderName string
}

// Emit renders the binding module for every emittable declaration of the
// header. The header must be finalized.
func Emit(h *chdr.Header, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "bindings"
	}
	g := &generator{
		hdr:  h,
		opts: opts,
		mapper: &ffimap.Mapper{
			Header: h,
			Rename: GoName,
		},
	}
	return g.run()
}

type generator struct {
	hdr    *chdr.Header
	opts   Options
	mapper *ffimap.Mapper
	body   bytes.Buffer
}

func (g *generator) run() ([]byte, error) {
	var consts []*chdr.ConstantDecl
	var enums []*chdr.EnumDecl
	var aliases []*chdr.TypeAliasDecl
	var callbacks []*chdr.CallbackDecl
	var structs []*chdr.StructDecl
	var funcs []*chdr.FunctionDecl
	for _, d := range g.hdr.Emittable() {
		switch d := d.(type) {
		case *chdr.ConstantDecl:
			consts = append(consts, d)
		case *chdr.EnumDecl:
			enums = append(enums, d)
		case *chdr.TypeAliasDecl:
			aliases = append(aliases, d)
		case *chdr.CallbackDecl:
			callbacks = append(callbacks, d)
		case *chdr.StructDecl:
			structs = append(structs, d)
		case *chdr.FunctionDecl:
			funcs = append(funcs, d)
		}
	}

	g.emitLoader()
	if err := g.emitConstants(consts); err != nil {
		return nil, err
	}
	g.emitEnums(enums)
	if err := g.emitAliases(aliases); err != nil {
		return nil, err
	}
	g.emitCallbacks(callbacks)
	if err := g.emitStructs(structs); err != nil {
		return nil, err
	}
	if err := g.emitFunctions(funcs); err != nil {
		return nil, err
	}

	return g.assemble(), nil
}

// assemble prepends the banner, package clause and the import block the body
// actually needs.
func (g *generator) assemble() []byte {
	body := g.body.String()

	var out bytes.Buffer
	fmt.Fprintf(&out, "// Code generated by cgobind from %s. DO NOT EDIT.\n\n", g.opts.HeaderName)
	fmt.Fprintf(&out, "package %s\n\n", g.opts.Package)

	std := []string{"fmt", "path/filepath", "runtime"}
	if strings.Contains(body, "unsafe.") {
		std = append(std, "unsafe")
	}
	third := []string{"github.com/jupiterrider/ffi"}
	if strings.Contains(body, "float16.") {
		third = append(third, "github.com/x448/float16")
	}

	out.WriteString("import (\n")
	for _, imp := range std {
		fmt.Fprintf(&out, "\t%q\n", imp)
	}
	out.WriteString("\n")
	for _, imp := range third {
		fmt.Fprintf(&out, "\t%q\n", imp)
	}
	out.WriteString(")\n\n")
	out.WriteString(body)
	return out.Bytes()
}

// emitLoader writes the library loader: the ffi.Lib handle, Load and the
// per-OS library file name.
func (g *generator) emitLoader() {
	lib := g.opts.LibName
	fmt.Fprintf(&g.body, `var lib ffi.Lib

// Load opens the native library found under path and prepares every bound
// function. It must be called once before any wrapper in this package.
func Load(path string) error {
	var err error
	lib, err = ffi.Load(getLibraryPath(path))
	if err != nil {
		return fmt.Errorf("failed to load library: %%w", err)
	}

	if err := loadFuncs(); err != nil {
		return err
	}

	return nil
}

func getLibraryPath(basePath string) string {
	var filename string
	switch runtime.GOOS {
	case "linux", "freebsd":
		filename = "lib%[1]s.so"
	case "darwin":
		filename = "lib%[1]s.dylib"
	case "windows":
		filename = "%[1]s.dll"
	default:
		filename = "lib%[1]s.so"
	}
	return filepath.Join(basePath, filename)
}

`, lib)
}

func (g *generator) emitConstants(consts []*chdr.ConstantDecl) error {
	var scalars, composites []*chdr.ConstantDecl
	for _, c := range consts {
		if c.Value == nil {
			return errors.Errorf("constant %s reached emission without a value", c.Name)
		}
		if c.Value.Kind == chdr.ConstComposite {
			composites = append(composites, c)
		} else {
			scalars = append(scalars, c)
		}
	}

	if len(scalars) > 0 {
		g.body.WriteString("const (\n")
		for _, c := range scalars {
			name := GoName(c.Name)
			v := c.Value
			switch v.Kind {
			case chdr.ConstInt:
				fmt.Fprintf(&g.body, "\t%s = %d\n", name, v.Int)
			case chdr.ConstFloat:
				if v.GoType == "float32" {
					fmt.Fprintf(&g.body, "\t%s float32 = %s\n", name,
						strconv.FormatFloat(float64(float32(v.Float)), 'g', -1, 32))
				} else {
					fmt.Fprintf(&g.body, "\t%s float64 = %s\n", name,
						strconv.FormatFloat(v.Float, 'g', -1, 64))
				}
			case chdr.ConstString:
				fmt.Fprintf(&g.body, "\t%s = %s\n", name, strconv.Quote(v.Str))
			}
		}
		g.body.WriteString(")\n\n")
	}

	// Struct-valued macros (`#define LIGHTGRAY CLITERAL(Color){ ... }`) are
	// not Go constants; they become package variables.
	if len(composites) > 0 {
		g.body.WriteString("var (\n")
		for _, c := range composites {
			v := c.Value
			elems := make([]string, len(v.Elems))
			for i, e := range v.Elems {
				if e.Kind == chdr.ConstFloat {
					elems[i] = strconv.FormatFloat(e.Float, 'g', -1, 64)
				} else {
					elems[i] = strconv.FormatInt(e.Int, 10)
				}
			}
			fmt.Fprintf(&g.body, "\t%s = %s{%s}\n", GoName(c.Name), GoName(v.Type), strings.Join(elems, ", "))
		}
		g.body.WriteString(")\n\n")
	}
	return nil
}

func (g *generator) emitEnums(enums []*chdr.EnumDecl) {
	for _, e := range enums {
		name := GoName(e.Name)
		fmt.Fprintf(&g.body, "// %s is the C enum %s.\n", name, e.Name)
		fmt.Fprintf(&g.body, "type %s int32\n\n", name)
		g.body.WriteString("const (\n")
		for _, m := range e.Members {
			fmt.Fprintf(&g.body, "\t%s %s = %d\n", GoName(m.Name), name, m.Value)
		}
		g.body.WriteString(")\n\n")
	}
}

func (g *generator) emitAliases(aliases []*chdr.TypeAliasDecl) error {
	for _, a := range aliases {
		m, err := g.mapper.Map(a.Target)
		if err != nil {
			return errors.WithMessagef(err, "alias %s", a.Name)
		}
		fmt.Fprintf(&g.body, "type %s = %s\n\n", GoName(a.Name), m.Go)
	}
	return nil
}

func (g *generator) emitCallbacks(callbacks []*chdr.CallbackDecl) {
	for _, cb := range callbacks {
		name := GoName(cb.Name)
		sig := &chdr.FuncPtr{Ret: cb.Ret}
		for _, p := range cb.Params {
			sig.Params = append(sig.Params, p.Type)
		}
		fmt.Fprintf(&g.body, "// %s is the C callback type %s. It carries a raw\n", name, chdr.TypeString(sig))
		g.body.WriteString("// native function pointer using the platform default calling convention.\n")
		fmt.Fprintf(&g.body, "type %s uintptr\n\n", name)
	}
}

func (g *generator) emitStructs(structs []*chdr.StructDecl) error {
	for _, s := range structs {
		name := GoName(s.Name)
		if s.Opaque {
			fmt.Fprintf(&g.body, "// %s is an opaque handle to the C struct %s.\n", name, s.Tag)
			fmt.Fprintf(&g.body, "type %s uintptr\n\n", name)
			continue
		}
		layout, err := g.mapper.StructLayout(s)
		if err != nil {
			return errors.WithMessagef(err, "struct %s", s.Name)
		}
		fmt.Fprintf(&g.body, "// %s is the C struct %s (%d bytes). Field order matches the\n", name, s.Name, layout.Size)
		g.body.WriteString("// header exactly; it determines the native memory layout.\n")
		fmt.Fprintf(&g.body, "type %s struct {\n", name)
		for _, f := range layout.Fields {
			fmt.Fprintf(&g.body, "\t%s %s\n", GoName(f.Name), f.Mapped.Go)
		}
		g.body.WriteString("}\n\n")

		fmt.Fprintf(&g.body, "var FFIType%s = ffi.NewType(\n", name)
		for _, f := range layout.Fields {
			for i := 0; i < f.Mapped.FFIRepeat; i++ {
				fmt.Fprintf(&g.body, "\t%s,\n", f.Mapped.FFI)
			}
		}
		g.body.WriteString(")\n\n")
	}
	return nil
}

func (g *generator) emitFunctions(funcs []*chdr.FunctionDecl) error {
	g.body.WriteString("var (\n")
	for _, fn := range funcs {
		fmt.Fprintf(&g.body, "\t%s ffi.Fun\n", funcVarName(fn.Name))
	}
	g.body.WriteString(")\n\n")

	g.body.WriteString("func loadFuncs() error {\n")
	if len(funcs) > 0 {
		g.body.WriteString("\tvar err error\n\n")
	}
	for _, fn := range funcs {
		retFFI, argFFIs, err := g.prepTypes(fn)
		if err != nil {
			return err
		}
		args := append([]string{retFFI}, argFFIs...)
		fmt.Fprintf(&g.body, "\tif %s, err = lib.Prep(%q, %s); err != nil {\n",
			funcVarName(fn.Name), fn.Name, strings.Join(args, ", "))
		fmt.Fprintf(&g.body, "\t\treturn fmt.Errorf(\"%s: %%w\", err)\n", fn.Name)
		g.body.WriteString("\t}\n\n")
	}
	g.body.WriteString("\treturn nil\n}\n\n")

	for _, fn := range funcs {
		if err := g.emitWrapper(fn); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) prepTypes(fn *chdr.FunctionDecl) (string, []string, error) {
	ret, err := g.mapper.Map(fn.Ret)
	if err != nil {
		return "", nil, errors.WithMessagef(err, "function %s", fn.Name)
	}
	var args []string
	for i, p := range fn.Params {
		m, err := g.mapper.Map(p.Type)
		if err != nil {
			return "", nil, errors.WithMessagef(err, "function %s parameter %d", fn.Name, i+1)
		}
		args = append(args, m.FFI)
	}
	return ret.FFI, args, nil
}

// emitWrapper writes the exported Go function for one prototype. The wrapper
// binds to the exact exported symbol name passed to Prep above; only its Go
// spelling is cosmetic.
func (g *generator) emitWrapper(fn *chdr.FunctionDecl) error {
	goName := GoName(fn.Name)
	varName := funcVarName(fn.Name)

	type paramInfo struct {
		name    string
		mapped  ffimap.Mapped
		byValue bool
	}
	var params []paramInfo
	for i, p := range fn.Params {
		m, err := g.mapper.Map(p.Type)
		if err != nil {
			return errors.WithMessagef(err, "function %s", fn.Name)
		}
		name := loweredName(p.Name)
		if name == "" {
			name = fmt.Sprintf("arg%d", i+1)
		}
		params = append(params, paramInfo{name: name, mapped: m, byValue: g.isStructByValue(p.Type)})
	}

	hasReturn := !ffimap.IsVoid(fn.Ret)
	var ret ffimap.Mapped
	if hasReturn {
		var err error
		ret, err = g.mapper.Map(fn.Ret)
		if err != nil {
			return errors.WithMessagef(err, "function %s return", fn.Name)
		}
	}

	var sig []string
	for _, p := range params {
		sig = append(sig, p.name+" "+p.mapped.Go)
	}
	if hasReturn {
		fmt.Fprintf(&g.body, "func %s(%s) %s {\n", goName, strings.Join(sig, ", "), ret.Go)
	} else {
		fmt.Fprintf(&g.body, "func %s(%s) {\n", goName, strings.Join(sig, ", "))
	}

	callArgs := []string{"nil"}
	if hasReturn {
		if needsFFIArg(ret) {
			g.body.WriteString("\tvar result ffi.Arg\n")
		} else {
			fmt.Fprintf(&g.body, "\tvar result %s\n", ret.Go)
		}
		callArgs[0] = "unsafe.Pointer(&result)"
	}
	for _, p := range params {
		if p.byValue {
			callArgs = append(callArgs, "&"+p.name)
		} else {
			callArgs = append(callArgs, fmt.Sprintf("unsafe.Pointer(&%s)", p.name))
		}
	}
	fmt.Fprintf(&g.body, "\t%s.Call(%s)\n", varName, strings.Join(callArgs, ", "))

	if hasReturn {
		switch {
		case needsFFIArg(ret) && ret.Go == "bool":
			g.body.WriteString("\treturn result.Bool()\n")
		case needsFFIArg(ret):
			fmt.Fprintf(&g.body, "\treturn %s(result)\n", ret.Go)
		default:
			g.body.WriteString("\treturn result\n")
		}
	}
	g.body.WriteString("}\n\n")
	return nil
}

// isStructByValue reports whether a parameter passes a non-opaque struct by
// value, which libffi receives as a pointer to the struct descriptor's data.
func (g *generator) isStructByValue(t chdr.Type) bool {
	named, ok := t.(*chdr.Named)
	if !ok || named.Ref == nil {
		return false
	}
	switch ref := named.Ref.(type) {
	case *chdr.StructDecl:
		return !ref.Opaque
	case *chdr.TypeAliasDecl:
		return g.isStructByValue(ref.Target)
	}
	return false
}

// needsFFIArg reports whether the return value lands in a promoted ffi.Arg
// cell rather than a correctly sized variable: libffi widens integer returns
// narrower than a machine word.
func needsFFIArg(m ffimap.Mapped) bool {
	switch m.FFI {
	case "&ffi.TypeSint8", "&ffi.TypeUint8", "&ffi.TypeSint16",
		"&ffi.TypeUint16", "&ffi.TypeSint32", "&ffi.TypeUint32":
		return true
	}
	return false
}

func funcVarName(name string) string {
	return loweredName(name) + "Func"
}
