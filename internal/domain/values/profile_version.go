package values

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var embeddedVersionPattern = regexp.MustCompile(`[0-9]{1,3}\.[0-9]+(\.[0-9]+)?`)

// ProfileVersion is a semantic profile version such as 1.1.0.
// Two-component inputs are normalized ("1.1" becomes "1.1.0").
type ProfileVersion struct {
	v *semver.Version
}

// NewProfileVersion parses a version string.
func NewProfileVersion(s string) (ProfileVersion, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ProfileVersion{}, fmt.Errorf("profile version cannot be empty")
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return ProfileVersion{}, fmt.Errorf("invalid profile version %q: %w", s, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return ProfileVersion{}, fmt.Errorf("invalid profile version %q: pre-release and metadata are not allowed", s)
	}
	return ProfileVersion{v: v}, nil
}

// MustNewProfileVersion parses a version string or panics
func MustNewProfileVersion(s string) ProfileVersion {
	v, err := NewProfileVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ExtractProfileVersion finds the first version embedded in a longer text,
// e.g. the version part of a canonical "https://example.org/Bundle|1.1.0".
func ExtractProfileVersion(s string) (ProfileVersion, error) {
	m := embeddedVersionPattern.FindString(s)
	if m == "" {
		return ProfileVersion{}, fmt.Errorf("no profile version found in %q", s)
	}
	return NewProfileVersion(m)
}

// String returns the canonical form (major.minor.patch)
func (p ProfileVersion) String() string {
	if p.v == nil {
		return ""
	}
	return p.v.String()
}

// IsZero returns true if this is the zero value
func (p ProfileVersion) IsZero() bool {
	return p.v == nil
}

// Compare returns -1, 0 or 1. The zero value sorts before every version.
func (p ProfileVersion) Compare(other ProfileVersion) int {
	switch {
	case p.v == nil && other.v == nil:
		return 0
	case p.v == nil:
		return -1
	case other.v == nil:
		return 1
	}
	return p.v.Compare(other.v)
}

// LessThan reports whether p sorts before other.
func (p ProfileVersion) LessThan(other ProfileVersion) bool {
	return p.Compare(other) < 0
}

// GreaterThan reports whether p sorts after other.
func (p ProfileVersion) GreaterThan(other ProfileVersion) bool {
	return p.Compare(other) > 0
}

// AtLeast reports whether p >= other.
func (p ProfileVersion) AtLeast(other ProfileVersion) bool {
	return p.Compare(other) >= 0
}

// Equals checks if two versions are equal
func (p ProfileVersion) Equals(other ProfileVersion) bool {
	return p.Compare(other) == 0
}

// Semver returns a copy of the underlying semantic version.
func (p ProfileVersion) Semver() *semver.Version {
	if p.v == nil {
		return nil
	}
	v := *p.v
	return &v
}

// Ptr returns a pointer to a copy of p, handy for optional arguments.
func (p ProfileVersion) Ptr() *ProfileVersion {
	return &p
}

// MarshalJSON implements json.Marshaler
func (p ProfileVersion) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
// null and "" leave the zero version.
func (p *ProfileVersion) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ProfileVersion{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("profile version must be a JSON string: %w", err)
	}
	if s == "" {
		*p = ProfileVersion{}
		return nil
	}

	v, err := NewProfileVersion(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
