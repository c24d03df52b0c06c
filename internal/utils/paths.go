// Package utils holds small path helpers shared by the config loader, the
// quality runner and the CLI.
package utils

import (
	"path/filepath"
	"strings"
)

// ResolvePath joins a relative path onto baseDir. Absolute paths, and any
// path when baseDir is empty, are returned unchanged.
func ResolvePath(path, baseDir string) string {
	if baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResolvePaths applies ResolvePath to each entry.
func ResolvePaths(paths []string, baseDir string) []string {
	if len(paths) == 0 {
		return nil
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		resolved = append(resolved, ResolvePath(p, baseDir))
	}
	return resolved
}

// RelativeTo returns path relative to baseDir with forward slashes, the form
// header guard names are derived from. Paths outside baseDir, or that cannot
// be made relative, are returned unchanged.
func RelativeTo(path, baseDir string) string {
	if baseDir == "" {
		return path
	}
	rel, err := filepath.Rel(baseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}
