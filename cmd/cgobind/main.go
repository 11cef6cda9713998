// cgobind generates Go bindings for a native shared library from its C
// header. The generated file binds functions through libffi at run time, so
// it builds without cgo.
//
// Usage:
//
//	cgobind -header raylib.h -out raylib_bindings.go -package raylib -lib raylib
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/janpfeifer/gonb/common"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/cgobind/cgobind"
)

var (
	flagHeader = flag.String("header", "library.h", "C header file to generate bindings from.")
	flagOut = flag.String("out", "",
		"Output Go file. Defaults to the header name with a _bindings.go suffix, next to the header.")
	flagPackage = flag.String("package", "bindings", "Package clause of the generated file.")
	flagLib = flag.String("lib", "",
		"Base name of the native library the generated loader opens (e.g. \"raylib\" for libraylib.so). "+
			"Defaults to the header file name without extension.")
	flagQuiet = flag.Bool("quiet", false, "Suppress the per-declaration diagnostics on stderr.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	res := must.M1(cgobind.Generate(cgobind.Options{
		HeaderPath: common.ReplaceTildeInDir(*flagHeader),
		OutputPath: common.ReplaceTildeInDir(*flagOut),
		Package:    *flagPackage,
		LibName:    *flagLib,
	}))

	if !*flagQuiet {
		for _, diag := range res.Diagnostics {
			fmt.Fprintln(os.Stderr, diag.String())
		}
	}
	action := "wrote"
	if !res.Written {
		action = "unchanged"
	}
	fmt.Printf("%s %s: %d constants, %d enums, %d structs, %d functions (%d skipped declarations)\n",
		action, res.OutputPath, res.Constants, res.Enums, res.Structs, res.Functions, len(res.Diagnostics))
}
