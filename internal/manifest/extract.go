package manifest

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNotFound indicates the archive has no module.prop entry or could not be
// opened as a zip at all. Both conditions are reported the same way: the file
// is not a readable module container.
var ErrNotFound = errors.New("no module.prop found")

// maxManifestBytes bounds how much of a manifest entry is read. module.prop
// files are a few hundred bytes; the limit guards against hostile archives
// with oversized entries.
const maxManifestBytes = 1 << 20

// ExtractFromZip opens the zip at zipPath and parses its module.prop entry.
// Only entries whose base name is exactly "module.prop" qualify; an entry
// like "foo/not_module.prop" does not. When several entries qualify, the
// first in archive order wins. Returns ErrNotFound (possibly wrapped with the
// underlying cause) when the archive cannot be opened or has no manifest.
func ExtractFromZip(zipPath string) (Manifest, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if path.Base(f.Name) != FileName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", ErrNotFound, f.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxManifestBytes))
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrNotFound, f.Name, err)
		}
		// Invalid byte sequences are replaced rather than rejected.
		return Parse(strings.ToValidUTF8(string(data), "�")), nil
	}

	return nil, ErrNotFound
}
