// Package discover finds module zip files under a root directory.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Collect returns the paths of all .zip files under root, in lexical order.
// With recursive set, subdirectories are walked; otherwise only root's
// immediate children are considered. An invalid root is the only error:
// unreadable subdirectories are skipped rather than failing the scan.
func Collect(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("invalid directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var paths []string

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", root, err)
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".zip" {
				continue
			}
			paths = append(paths, filepath.Join(root, e.Name()))
		}
		return paths, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(d.Name()) != ".zip" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}
