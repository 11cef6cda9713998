//go:build !linux

package dynlib

import "os"

// systemLibraryPaths is empty outside Linux: the platform loader applies its
// own search order when given a bare file name.
func systemLibraryPaths() []string { return nil }

func readable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
