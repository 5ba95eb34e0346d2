package update

import (
	"fmt"
	"strconv"
)

// Decision is the result of comparing local and remote version codes.
type Decision int

const (
	DecisionUpToDate Decision = iota
	DecisionUpdateAvailable
)

// ParseVersionCode parses a versionCode string as a base-10 integer.
func ParseVersionCode(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: versionCode %q", ErrVersionFormatInvalid, s)
	}
	return n, nil
}

// Decide compares version codes: an update exists iff remote is strictly
// greater than local. Equal or lower remote versions are up to date.
func Decide(local, remote int64) Decision {
	if remote > local {
		return DecisionUpdateAvailable
	}
	return DecisionUpToDate
}
