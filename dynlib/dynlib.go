// Package dynlib opens native shared libraries at run time and prepares
// call interfaces for their exported functions. It is the runtime half of the
// generated bindings: the generator emits code against an explicit Library
// handle, never a process-global one, so one process can hold several
// libraries (or several versions of the same library) at once.
package dynlib

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jupiterrider/ffi"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// BindingError reports a symbol that could not be bound after its library
// loaded. It usually means the header and the installed library version
// disagree.
type BindingError struct {
	Library string
	Symbol  string
	Err     error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("binding symbol %q in library %q: %v", e.Symbol, e.Library, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// Library is an open handle to a native shared library.
type Library struct {
	// Name is the base name Open was given, e.g. "raylib".
	Name string

	// Path is the file the library was actually loaded from.
	Path string

	lib    ffi.Lib
	closed bool
}

// Open loads the shared library with the given base name: "raylib" finds
// libraylib.so on Linux, libraylib.dylib on macOS and raylib.dll on Windows.
// A name containing a path separator (or an absolute path) is used as-is.
//
// Candidate directories are tried in order: extraPaths first, then the
// platform library search path (LD_LIBRARY_PATH and /etc/ld.so.conf on
// Linux). The first candidate the loader accepts wins.
func Open(name string, extraPaths ...string) (*Library, error) {
	candidates := candidateFiles(name)

	var prefixes []string
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		prefixes = []string{""}
	} else {
		prefixes = append(prefixes, extraPaths...)
		prefixes = append(prefixes, systemLibraryPaths()...)
		// Last resort: bare file name, letting the system loader search.
		prefixes = append(prefixes, "")
	}

	var lastErr error
	for _, prefix := range prefixes {
		for _, candidate := range candidates {
			full := candidate
			if prefix != "" {
				full = filepath.Join(prefix, candidate)
				if !readable(full) {
					continue
				}
			}
			klog.V(2).Infof("trying to load library %s", full)
			lib, err := ffi.Load(full)
			if err != nil {
				lastErr = err
				continue
			}
			klog.V(1).Infof("loaded library %s", full)
			return &Library{Name: name, Path: full, lib: lib}, nil
		}
	}
	if lastErr != nil {
		return nil, errors.Wrapf(lastErr, "failed to load library %q", name)
	}
	return nil, errors.Errorf("failed to load library %q: no candidate found in search path", name)
}

// Prep binds one exported symbol with the given libffi signature. The
// returned ffi.Fun stays valid until Close.
func (l *Library) Prep(symbol string, ret *ffi.Type, args ...*ffi.Type) (ffi.Fun, error) {
	if l.closed {
		return ffi.Fun{}, errors.Errorf("library %q is closed", l.Name)
	}
	fun, err := l.lib.Prep(symbol, ret, args...)
	if err != nil {
		return ffi.Fun{}, &BindingError{Library: l.Name, Symbol: symbol, Err: err}
	}
	return fun, nil
}

// Close releases the library handle. Previously prepared functions must not
// be called afterwards.
func (l *Library) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.lib.Close()
}

// candidateFiles returns the file names to try for a base library name, most
// specific first.
func candidateFiles(name string) []string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return []string{name}
	}
	base := filepath.Base(name)
	switch runtime.GOOS {
	case "darwin":
		return []string{"lib" + base + ".dylib"}
	case "windows":
		return []string{base + ".dll"}
	default:
		return []string{"lib" + base + ".so"}
	}
}
