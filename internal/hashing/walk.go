package hashing

import (
	"io/fs"
	"path/filepath"
	"sort"

	"dupicheck/internal/engine"
)

// ListImages walks folder recursively and returns the absolute paths of
// all files whose extension satisfies isImage, sorted for deterministic
// processing order. A missing or unreadable root is a setup error.
func ListImages(folder string, isImage func(ext string) bool) ([]string, error) {
	root, err := filepath.Abs(folder)
	if err != nil {
		return nil, engine.Wrap(engine.ErrSetup, "hashing", "resolve folder", folder, err)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Unreadable subtrees are skipped, not fatal.
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if isImage(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, engine.Wrap(engine.ErrSetup, "hashing", "walk folder", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}
