package update

import (
	"fmt"
	"io"
	"os"
)

// BackupSuffix is appended to a container path to form its backup path:
// foo.zip becomes foo.zip.bak.
const BackupSuffix = ".bak"

// BackupPath returns the sibling backup path for a container.
func BackupPath(target string) string {
	return target + BackupSuffix
}

// FileReplacer swaps staged archives into place with optional backup.
type FileReplacer struct{}

// NewFileReplacer creates a FileReplacer.
func NewFileReplacer() *FileReplacer {
	return &FileReplacer{}
}

// Apply replaces target with the staged file. When backup is set, the
// current target content is first copied to BackupPath(target); if that copy
// fails, target is left untouched. The swap itself is os.Rename, so either
// the old or the new content is visible at target at all times. The staged
// file is removed on every exit path: on success the rename consumes it, on
// failure it is deleted explicitly.
func (r *FileReplacer) Apply(stagedPath, targetPath string, backup bool) error {
	defer func() { _ = os.Remove(stagedPath) }()

	if backup {
		if err := copyFile(targetPath, BackupPath(targetPath)); err != nil {
			return fmt.Errorf("%w: %v", ErrBackupFailed, err)
		}
	}

	if err := os.Rename(stagedPath, targetPath); err != nil {
		return fmt.Errorf("%w: %v", ErrReplaceFailed, err)
	}

	return nil
}

// copyFile copies src to dst, preserving src's permissions. A partial dst is
// removed on failure.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("closing %s: %w", dst, err)
	}

	return nil
}
