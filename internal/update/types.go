// Package update implements the module update workflow: read the embedded
// manifest, check the remote descriptor, download, verify identity, and
// atomically replace the local zip.
package update

import (
	"context"
	"errors"
)

// Module-scoped failure reasons. Every failure is terminal for that module's
// attempt and never aborts the surrounding batch.
var (
	ErrManifestMissing         = errors.New("manifest missing")
	ErrManifestIncomplete      = errors.New("manifest incomplete")
	ErrRemoteUnreachable       = errors.New("remote unreachable")
	ErrRemoteDescriptorInvalid = errors.New("remote descriptor invalid")
	ErrVersionFormatInvalid    = errors.New("version format invalid")
	ErrDownloadFailed          = errors.New("download failed")
	ErrIdentityMismatch        = errors.New("module identity mismatch")
	ErrBackupFailed            = errors.New("backup failed")
	ErrReplaceFailed           = errors.New("replace failed")
)

// Status is the terminal state a module reached during one scan.
type Status string

const (
	StatusUpToDate        Status = "up-to-date"
	StatusUpdateAvailable Status = "update-available" // check-only mode
	StatusUpdated         Status = "updated"
	StatusSkipped         Status = "skipped" // declined by confirmation
	StatusFailed          Status = "failed"
)

// Outcome records how one module's update attempt ended.
type Outcome struct {
	Path          string `json:"path" yaml:"path" toml:"path"`
	ModuleID      string `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Status        Status `json:"status" yaml:"status" toml:"status"`
	LocalVersion  int64  `json:"localVersion,omitempty" yaml:"localVersion,omitempty" toml:"localVersion,omitempty"`
	RemoteVersion int64  `json:"remoteVersion,omitempty" yaml:"remoteVersion,omitempty" toml:"remoteVersion,omitempty"`
	RemoteLabel   string `json:"remoteLabel,omitempty" yaml:"remoteLabel,omitempty" toml:"remoteLabel,omitempty"`
	Changelog     string `json:"changelog,omitempty" yaml:"changelog,omitempty" toml:"changelog,omitempty"`
	Reason        string `json:"reason,omitempty" yaml:"reason,omitempty" toml:"reason,omitempty"`

	// Err is the underlying failure for StatusFailed outcomes. It is kept
	// out of serialized reports; Reason carries the human-readable cause.
	Err error `json:"-" yaml:"-" toml:"-"`
}

// DescriptorClient fetches the remote update descriptor for a module.
type DescriptorClient interface {
	Fetch(ctx context.Context, url string) (*Descriptor, error)
}

// Fetcher downloads candidate archives to a staging file and verifies that a
// staged archive belongs to the expected module.
type Fetcher interface {
	Fetch(ctx context.Context, url, dir string) (string, error)
	VerifyIdentity(stagedPath, expectedID string) bool
}

// Replacer swaps a staged archive into the target path, optionally creating
// a backup first. Implementations must remove the staged file on every exit
// path.
type Replacer interface {
	Apply(stagedPath, targetPath string, backup bool) error
}
