package backup

import (
	"fmt"
	"os"
)

// CleanResult contains information about what was removed.
type CleanResult struct {
	Deleted []Info `json:"deleted" yaml:"deleted"`
	Freed   int64  `json:"freed_bytes" yaml:"freed_bytes"`
}

// Clean removes all backup files under the root and reports what was
// deleted and how many bytes were freed.
func (m *Manager) Clean() (*CleanResult, error) {
	backups, err := m.List()
	if err != nil {
		return nil, err
	}

	result := &CleanResult{}
	for _, b := range backups {
		if err := os.Remove(b.Path); err != nil {
			return nil, fmt.Errorf("deleting %s: %w", b.Path, err)
		}
		result.Deleted = append(result.Deleted, b)
		result.Freed += b.Size
	}
	return result, nil
}
