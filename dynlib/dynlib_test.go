package dynlib

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCandidateFiles(t *testing.T) {
	got := candidateFiles("raylib")
	require.Len(t, got, 1)
	switch runtime.GOOS {
	case "darwin":
		require.Equal(t, "libraylib.dylib", got[0])
	case "windows":
		require.Equal(t, "raylib.dll", got[0])
	default:
		require.Equal(t, "libraylib.so", got[0])
	}
}

func TestCandidateFilesExplicitPath(t *testing.T) {
	full := filepath.Join("/opt", "lib", "libfoo.so.4")
	require.Equal(t, []string{full}, candidateFiles(full))
}

func TestOpenMissingLibrary(t *testing.T) {
	_, err := Open("cgobind-test-no-such-library", t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "cgobind-test-no-such-library")
}

func TestBindingError(t *testing.T) {
	inner := &BindingError{Library: "raylib", Symbol: "InitWindow", Err: errSentinel}
	require.Contains(t, inner.Error(), "InitWindow")
	require.Contains(t, inner.Error(), "raylib")
	require.ErrorIs(t, inner, errSentinel)
}

var errSentinel = errForTest("sentinel")

type errForTest string

func (e errForTest) Error() string { return string(e) }
