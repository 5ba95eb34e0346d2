package update

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/modtools/modup/internal/manifest"
)

// downloadTimeout bounds the whole archive download.
const downloadTimeout = 30 * time.Second

// HTTPFetcher downloads candidate archives over HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with a bounded timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: downloadTimeout},
	}
}

// Fetch streams the archive at url into a uniquely named temporary file in
// dir and returns its path. Creating the staging file in the target's own
// directory keeps the eventual rename on a single filesystem. The body is
// copied in chunks, so memory use is independent of archive size. On any
// transport or write failure the partial file is removed and an error
// wrapping ErrDownloadFailed is returned; no partial artifact is ever left
// behind.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned status %d", ErrDownloadFailed, url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, "modup-*.zip")
	if err != nil {
		return "", fmt.Errorf("%w: creating staging file: %v", ErrDownloadFailed, err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: writing staging file: %v", ErrDownloadFailed, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: closing staging file: %v", ErrDownloadFailed, err)
	}

	return tmp.Name(), nil
}

// VerifyIdentity re-extracts the manifest from the staged archive and checks
// that its id equals expectedID exactly. This is the sole integrity gate
// before the staged archive is trusted; a false return must abort the
// attempt without touching the original container.
func (f *HTTPFetcher) VerifyIdentity(stagedPath, expectedID string) bool {
	m, err := manifest.ExtractFromZip(stagedPath)
	if err != nil {
		return false
	}
	return m.ID() == expectedID
}

// Checksum returns the hex SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
