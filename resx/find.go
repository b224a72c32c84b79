package resx

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs contains directory names never searched for resource files:
// version control metadata, IDE state and npm dependencies.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".vs":          true,
	".idea":        true,
	"node_modules": true,
}

// Find recursively collects .resx files below dir, sorted by path.
// A missing or unreadable dir is an error; unreadable entries below it are
// skipped.
func Find(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %s: not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if path != dir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

// BaseName returns the file name of path without the .resx extension
// (e.g. "Strings/Messages.fr.resx" -> "Messages.fr").
func BaseName(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); strings.EqualFold(ext, Extension) {
		name = name[:len(name)-len(ext)]
	}
	return name
}
