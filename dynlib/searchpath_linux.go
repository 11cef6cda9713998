//go:build linux

package dynlib

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

var (
	systemPathsOnce sync.Once
	systemPaths     []string

	reLdConfInclude = regexp.MustCompile(`^\s*include\s*(.*)$`)
	reLdConfComment = regexp.MustCompile(`^\s*#`)
	reLdConfPath    = regexp.MustCompile(`^\s*(.+?)\s*$`)
)

// systemLibraryPaths returns the directories the dynamic linker searches:
// LD_LIBRARY_PATH entries followed by the paths configured in
// /etc/ld.so.conf (recursively expanding include lines). Computed once per
// process.
func systemLibraryPaths() []string {
	systemPathsOnce.Do(func() {
		seen := make(map[string]bool)
		add := func(p string) {
			if p == "" || !filepath.IsAbs(p) || seen[p] {
				return
			}
			seen[p] = true
			systemPaths = append(systemPaths, p)
		}
		for _, ldPath := range strings.Split(os.Getenv("LD_LIBRARY_PATH"), ":") {
			add(ldPath)
		}
		loadLdConf("/etc/ld.so.conf", add)
		if klog.V(1).Enabled() {
			klog.Infof("Library paths: %v", systemPaths)
		}
	})
	return systemPaths
}

func loadLdConf(filePath string, add func(string)) {
	klog.V(2).Infof("Loading paths for libraries from %q", filePath)
	file, err := os.Open(filePath)
	if err != nil {
		klog.V(2).Infof("Failed to load paths for libraries from %q: %v", filePath, err)
		return
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if parts := reLdConfInclude.FindStringSubmatch(line); len(parts) > 0 {
			files, err := filepath.Glob(parts[1])
			if err != nil {
				klog.Errorf("Failed to expand ld.so.conf include entry %q: %v", parts[1], err)
				continue
			}
			for _, includeFile := range files {
				loadLdConf(includeFile, add)
			}

		} else if reLdConfComment.MatchString(line) {
			continue

		} else if parts := reLdConfPath.FindStringSubmatch(line); len(parts) > 0 {
			add(parts[1])
		}
	}
	if err := scanner.Err(); err != nil {
		klog.Errorf("Error while loading library paths from %q: %v", filePath, err)
	}
}

// readable reports whether the candidate file exists and can be read, so the
// loader is only invoked on plausible files.
func readable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
