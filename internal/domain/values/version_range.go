package values

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VersionRange is a semver constraint such as ">= 1.1.0" or "< 1.4.0".
// The empty range matches every version.
type VersionRange struct {
	raw string
	c   *semver.Constraints
}

// AnyVersion matches every version.
var AnyVersion = VersionRange{}

// NewVersionRange parses a constraint expression.
func NewVersionRange(s string) (VersionRange, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return AnyVersion, nil
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		return VersionRange{}, fmt.Errorf("invalid version range %q: %w", s, err)
	}
	return VersionRange{raw: s, c: c}, nil
}

// MustNewVersionRange parses a constraint expression or panics
func MustNewVersionRange(s string) VersionRange {
	r, err := NewVersionRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether v satisfies the range.
// The zero version is only contained in AnyVersion.
func (r VersionRange) Contains(v ProfileVersion) bool {
	if r.c == nil {
		return true
	}
	if v.IsZero() {
		return false
	}
	return r.c.Check(v.v)
}

// IsAny returns true for the unconstrained range
func (r VersionRange) IsAny() bool {
	return r.c == nil
}

// String returns the constraint expression, "*" for AnyVersion.
func (r VersionRange) String() string {
	if r.c == nil {
		return "*"
	}
	return r.raw
}
