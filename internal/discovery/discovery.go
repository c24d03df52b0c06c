// Package discovery enumerates the files a check runs over.
//
// Explicit file arguments are used exactly as given. Tree discovery is only
// used when the caller asks for it (conform <check> --all, conform quality).
package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/karrick/godirwalk"
)

// DefaultExtensions are the C++ source and header suffixes discovered by default.
var DefaultExtensions = []string{".cpp", ".hpp", ".h"}

// Enumerate returns the explicit paths unchanged, in the order given.
// Paths are not checked for existence; read failures surface per file later.
func Enumerate(paths []string) []string {
	return slices.Clone(paths)
}

// Discover walks each root and returns every regular file whose extension is
// in extensions (case-sensitive), in lexical order within each root and in
// root order across roots. Missing roots are skipped. Hidden directories and
// build output are not descended into.
func Discover(roots []string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				slog.Debug("discovery root does not exist, skipping", "root", root)
				continue
			}
			return nil, fmt.Errorf("discovery root %s: %w", root, err)
		}
		if !info.IsDir() {
			if hasExtension(root, extensions) {
				files = append(files, root)
			}
			continue
		}

		err = godirwalk.Walk(root, &godirwalk.Options{
			Callback: func(name string, de *godirwalk.Dirent) error {
				if de.IsDir() {
					if name != root && skipDir(de.Name()) {
						return godirwalk.SkipThis
					}
					return nil
				}
				if de.IsRegular() && hasExtension(name, extensions) {
					files = append(files, name)
				}
				return nil
			},
			ErrorCallback: func(name string, err error) godirwalk.ErrorAction {
				slog.Debug("skipping unreadable entry", "path", name, "error", err)
				return godirwalk.SkipNode
			},
		})
		if err != nil {
			return nil, fmt.Errorf("walking directory %s: %w", root, err)
		}
	}
	return files, nil
}

func hasExtension(path string, extensions []string) bool {
	return slices.Contains(extensions, filepath.Ext(path))
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "build" || name == "node_modules"
}
