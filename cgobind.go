// Package cgobind turns a C header into a Go binding module: it lexes and
// parses the header (chdr), resolves constants and type references, maps the
// type model to the foreign-function call idiom (ffimap) and emits one Go
// source file of loader, constants, enums, structs and function wrappers
// (gogen). The generated code depends on github.com/jupiterrider/ffi and the
// runtime loader in dynlib.
//
// Declarations the pipeline cannot bind are skipped with a diagnostic, never
// a failure: one exotic prototype must not cost the other several hundred.
package cgobind

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/cgobind/cgobind/chdr"
	"github.com/cgobind/cgobind/gogen"
)

// Options configure one generation run. The zero value generates from
// "library.h" into "library_bindings.go", package "bindings".
type Options struct {
	// HeaderPath is the C header to read. Default "library.h".
	HeaderPath string

	// OutputPath is the Go file to write. Default: header stem +
	// "_bindings.go" in the header's directory.
	OutputPath string

	// Package is the package clause of the generated file. Default
	// "bindings".
	Package string

	// LibName is the base name of the native library the generated loader
	// opens. Default: the header stem.
	LibName string
}

func (o *Options) setDefaults() {
	if o.HeaderPath == "" {
		o.HeaderPath = "library.h"
	}
	stem := strings.TrimSuffix(filepath.Base(o.HeaderPath), filepath.Ext(o.HeaderPath))
	if o.OutputPath == "" {
		o.OutputPath = filepath.Join(filepath.Dir(o.HeaderPath), stem+"_bindings.go")
	}
	if o.Package == "" {
		o.Package = "bindings"
	}
	if o.LibName == "" {
		o.LibName = stem
	}
}

// Result reports what one generation run did.
type Result struct {
	// Header is the parsed and resolved declaration set.
	Header *chdr.Header

	// Source is the generated Go source, exactly what OutputPath holds.
	Source []byte

	// OutputPath is the file the bindings were written to.
	OutputPath string

	// Written is false when the freshly generated source was byte-identical
	// to the existing output file, which was then left untouched.
	Written bool

	// Diagnostics lists every declaration that was skipped or shadowed, in
	// source order.
	Diagnostics []chdr.Diagnostic

	// Counts of emitted declarations, for reporting.
	Constants, Enums, Structs, Functions int
}

// Generate runs the full pipeline for one header file.
func Generate(opts Options) (Result, error) {
	opts.setDefaults()
	var res Result
	res.OutputPath = opts.OutputPath

	src, err := os.ReadFile(opts.HeaderPath)
	if err != nil {
		return res, errors.Wrapf(err, "reading header %q", opts.HeaderPath)
	}

	hdr, err := GenerateSource(src)
	if err != nil {
		return res, errors.WithMessagef(err, "header %q", opts.HeaderPath)
	}
	res.Header = hdr
	res.Diagnostics = hdr.Diags
	for _, d := range hdr.Emittable() {
		switch d.DeclKind() {
		case chdr.DeclConstant:
			res.Constants++
		case chdr.DeclEnum:
			res.Enums++
		case chdr.DeclStruct:
			res.Structs++
		case chdr.DeclFunction:
			res.Functions++
		}
	}

	out, err := gogen.Emit(hdr, gogen.Options{
		Package:    opts.Package,
		LibName:    opts.LibName,
		HeaderName: filepath.Base(opts.HeaderPath),
	})
	if err != nil {
		return res, errors.WithMessagef(err, "emitting bindings for %q", opts.HeaderPath)
	}
	res.Source = out

	written, err := writeIfChanged(opts.OutputPath, out)
	if err != nil {
		return res, err
	}
	res.Written = written
	klog.V(1).Infof("%s: %d constants, %d enums, %d structs, %d functions, %d diagnostics",
		opts.OutputPath, res.Constants, res.Enums, res.Structs, res.Functions, len(res.Diagnostics))
	return res, nil
}

// GenerateSource parses and resolves header source without touching the file
// system, for callers that already hold the bytes.
func GenerateSource(src []byte) (*chdr.Header, error) {
	hdr, err := chdr.Parse(string(src))
	if err != nil {
		return nil, err
	}
	hdr.Finalize()
	return hdr, nil
}

// writeIfChanged rewrites path only when the content differs, keeping file
// timestamps stable across no-op regeneration runs.
func writeIfChanged(path string, content []byte) (bool, error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, content) {
		klog.V(1).Infof("%s unchanged, not rewritten", path)
		return false, nil
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return false, errors.Wrapf(err, "writing %q", path)
	}
	return true, nil
}
