// Package backup manages the .bak escape-hatch files a scan leaves beside
// updated module zips.
package backup

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/modtools/modup/internal/update"
)

// Info describes one backup file for listing.
type Info struct {
	Path      string    `json:"path" yaml:"path"`
	Module    string    `json:"module" yaml:"module"` // original container path
	Size      int64     `json:"size" yaml:"size"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Manager enumerates and removes backups under a modules directory.
type Manager struct {
	root      string
	recursive bool
}

// NewManager creates a manager for the given modules directory.
func NewManager(root string, recursive bool) *Manager {
	return &Manager{root: root, recursive: recursive}
}

// isBackup reports whether name is a module backup (foo.zip.bak).
func isBackup(name string) bool {
	return strings.HasSuffix(name, ".zip"+update.BackupSuffix)
}

// List returns all backups under the root, newest first.
func (m *Manager) List() ([]Info, error) {
	info, err := os.Stat(m.root)
	if err != nil {
		return nil, fmt.Errorf("invalid directory %s: %w", m.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", m.root)
	}

	var backups []Info
	add := func(path string, entry fs.DirEntry) {
		fi, err := entry.Info()
		if err != nil {
			return
		}
		backups = append(backups, Info{
			Path:      path,
			Module:    strings.TrimSuffix(path, update.BackupSuffix),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime(),
		})
	}

	if m.recursive {
		err = filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.IsDir() && isBackup(d.Name()) {
				add(path, d)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", m.root, err)
		}
	} else {
		entries, err := os.ReadDir(m.root)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", m.root, err)
		}
		for _, e := range entries {
			if !e.IsDir() && isBackup(e.Name()) {
				add(filepath.Join(m.root, e.Name()), e)
			}
		}
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}
