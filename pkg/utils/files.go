package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ListSources returns the files to translate for path: the file itself, or
// every file with extension ext directly inside the directory, sorted by
// name. isDir reports which case applied.
func ListSources(path, ext string) (files []string, isDir bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}

	if !info.IsDir() {
		if filepath.Ext(path) != ext {
			return nil, false, fmt.Errorf("%s: expected a %s file", path, ext)
		}
		return []string{path}, false, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, true, err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	if len(files) == 0 {
		return nil, true, fmt.Errorf("%s: no %s files", path, ext)
	}
	sort.Strings(files)
	return files, true, nil
}

// UnitName is the base name of path without its extension.
func UnitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DefaultOutputPath places the output for a file next to it with extension
// ext, and the output for a directory inside it, named after the directory.
func DefaultOutputPath(inPath string, isDir bool, ext string) string {
	if isDir {
		clean := filepath.Clean(inPath)
		return filepath.Join(clean, filepath.Base(clean)+ext)
	}
	old := filepath.Ext(inPath)
	if old == "" {
		return inPath + ext
	}
	return strings.TrimSuffix(inPath, old) + ext
}
