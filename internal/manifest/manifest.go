// Package manifest parses the module.prop descriptor embedded in module zips.
package manifest

import (
	"strconv"
	"strings"
)

// FileName is the reserved name of the manifest entry inside a module zip.
const FileName = "module.prop"

// Well-known manifest keys. Only ID, VersionCode and UpdateJSON drive the
// update workflow; the rest are standard module.prop fields that are parsed
// and preserved but otherwise unused.
const (
	KeyID          = "id"
	KeyName        = "name"
	KeyVersion     = "version"
	KeyVersionCode = "versionCode"
	KeyAuthor      = "author"
	KeyDescription = "description"
	KeyUpdateJSON  = "updateJson"
)

// Manifest is the key-value mapping parsed from a module.prop file.
type Manifest map[string]string

// Parse parses module.prop content into a Manifest. Blank lines and lines
// whose first non-space character is '#' are ignored. Remaining lines are
// split on the first '=' with surrounding whitespace trimmed from key and
// value; lines without '=' are skipped. Later duplicate keys overwrite
// earlier ones. Parse never fails: unrecognized input simply yields an empty
// or partial mapping.
func Parse(text string) Manifest {
	m := make(Manifest)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		m[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return m
}

// ID returns the module identity, or "" if absent.
func (m Manifest) ID() string {
	return m[KeyID]
}

// UpdateJSON returns the remote descriptor URL, or "" if absent.
func (m Manifest) UpdateJSON() string {
	return m[KeyUpdateJSON]
}

// VersionCode returns the versionCode field parsed as a base-10 integer.
// The second return value reports whether the key is present at all, so
// callers can distinguish a missing field from a malformed one.
func (m Manifest) VersionCode() (code int64, present bool, err error) {
	raw, ok := m[KeyVersionCode]
	if !ok || raw == "" {
		return 0, false, nil
	}
	code, err = strconv.ParseInt(raw, 10, 64)
	return code, true, err
}
