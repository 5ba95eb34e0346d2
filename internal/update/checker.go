package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// descriptorTimeout bounds the remote descriptor fetch.
const descriptorTimeout = 10 * time.Second

// versionText decodes a versionCode field that publishers emit as either a
// JSON number or an integer-like string.
type versionText string

func (v *versionText) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = versionText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = versionText(n.String())
	return nil
}

// Descriptor is the remote update descriptor published at a module's
// updateJson URL. Extra fields in the JSON document are ignored.
type Descriptor struct {
	// VersionCode is the latest published version ordinal.
	VersionCode versionText `json:"versionCode"`
	// ZipURL is the download location of the replacement archive.
	ZipURL string `json:"zipUrl"`
	// VersionName and Changelog are informational; they are surfaced on the
	// outcome but never gate the update decision.
	VersionName string `json:"version"`
	Changelog   string `json:"changelog"`
}

// Version returns the descriptor's versionCode as an integer.
func (d *Descriptor) Version() (int64, error) {
	n, err := strconv.ParseInt(string(d.VersionCode), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: remote versionCode %q", ErrVersionFormatInvalid, d.VersionCode)
	}
	return n, nil
}

// HTTPDescriptorClient fetches update descriptors over HTTP.
type HTTPDescriptorClient struct {
	client *http.Client
}

// NewDescriptorClient creates a descriptor client with a bounded timeout.
func NewDescriptorClient() *HTTPDescriptorClient {
	return &HTTPDescriptorClient{
		client: &http.Client{Timeout: descriptorTimeout},
	}
}

// Fetch retrieves and decodes the descriptor at url. Transport errors and
// non-success statuses are reported as ErrRemoteUnreachable; decode failures
// and missing required fields as ErrRemoteDescriptorInvalid. The caller
// always receives a value or a wrapped error, never an uncaught fault.
func (c *HTTPDescriptorClient) Fetch(ctx context.Context, url string) (*Descriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnreachable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrRemoteUnreachable, url, resp.StatusCode)
	}

	var d Descriptor
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrRemoteDescriptorInvalid, url, err)
	}

	if d.VersionCode == "" || d.ZipURL == "" {
		return nil, fmt.Errorf("%w: %s missing versionCode or zipUrl", ErrRemoteDescriptorInvalid, url)
	}

	return &d, nil
}
