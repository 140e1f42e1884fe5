package filesystem

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
)

// SourceFinder knows the source root directories of a project and resolves
// the file names recorded in coverage data against them.
type SourceFinder struct {
	fs   Filesystem
	dirs []string
}

// NewSourceFinder creates a SourceFinder. Directories are cleaned and
// deduplicated; their order is kept. Missing directories are kept as well,
// because the report lists the roots it was configured with.
func NewSourceFinder(fsys Filesystem, dirs []string) *SourceFinder {
	if fsys == nil {
		fsys = DefaultFS{}
	}
	sf := &SourceFinder{fs: fsys}
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		dir = filepath.Clean(dir)
		if slices.Contains(sf.dirs, dir) {
			continue
		}
		if info, err := fsys.Stat(dir); err != nil || !info.IsDir() {
			slog.Warn("Source directory does not exist.", "directory", dir)
		}
		sf.dirs = append(sf.dirs, dir)
	}
	return sf
}

// SourceDirectories returns the configured source roots in order.
func (sf *SourceFinder) SourceDirectories() []string {
	return slices.Clone(sf.dirs)
}

// FindFile locates a file recorded in coverage data. Absolute paths that
// exist are returned as is. Otherwise the path is joined with every source
// root, first in full and then with leading segments stripped, so that
// paths recorded on another machine still resolve.
func (sf *SourceFinder) FindFile(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := sf.fs.Stat(path); err == nil {
			return path, nil
		}
	}

	cleaned := filepath.Clean(filepath.FromSlash(path))
	parts := strings.Split(cleaned, string(filepath.Separator))
	for _, dir := range sf.dirs {
		for i := range parts {
			candidate := filepath.Join(dir, filepath.Join(parts[i:]...))
			if info, err := sf.fs.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("file %q not found in any source directory (%v) or as absolute path", path, sf.dirs)
}
