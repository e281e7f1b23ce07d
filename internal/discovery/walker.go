package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPaths turns path arguments into the concrete list of files to
// scan. Files are returned in walk order, which is lexicographic, so
// the scan order and therefore first-seen locations are reproducible.
//
// Rules:
//   - A file argument is kept if it passes the extension filter.
//   - A directory argument requires recursive mode; without it the
//     argument is an error.
//   - Recursive walks visit regular files only and skip .git trees.
//
// The extension filter accepts entries with or without a leading dot.
// An empty filter keeps everything.
func ExpandPaths(paths []string, recursive bool, includeExts []string) ([]string, error) {
	filter := newExtFilter(includeExts)

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}

		if !info.IsDir() {
			if filter.match(path) {
				files = append(files, path)
			}
			continue
		}

		if !recursive {
			return nil, fmt.Errorf("%s is a directory (use --recursive to scan directories)", path)
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if filter.match(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("cannot walk %s: %w", path, err)
		}
	}

	return files, nil
}

// extFilter matches file paths against a set of extensions.
type extFilter struct {
	exts map[string]bool
}

// newExtFilter builds a filter from extension names. Entries are
// normalized to a leading dot and lower case; an empty list produces a
// filter that matches everything.
func newExtFilter(exts []string) extFilter {
	if len(exts) == 0 {
		return extFilter{}
	}

	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m[ext] = true
	}
	return extFilter{exts: m}
}

// match reports whether the path passes the filter.
func (f extFilter) match(path string) bool {
	if f.exts == nil {
		return true
	}
	return f.exts[strings.ToLower(filepath.Ext(path))]
}
