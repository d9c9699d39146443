package values

import (
	"fmt"
	"net/url"
	"strings"
)

// ProfileID is a versioned profile canonical: "<structure-definition-url>|<version>".
type ProfileID struct {
	url     string
	version ProfileVersion
}

// NewProfileID creates a ProfileID from a canonical URL and a version.
func NewProfileID(canonical string, version ProfileVersion) (ProfileID, error) {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		return ProfileID{}, fmt.Errorf("profile url cannot be empty")
	}
	u, err := url.Parse(canonical)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ProfileID{}, fmt.Errorf("invalid profile url %q", canonical)
	}
	if version.IsZero() {
		return ProfileID{}, fmt.Errorf("profile %s has no version", canonical)
	}
	return ProfileID{url: canonical, version: version}, nil
}

// ParseProfileID parses "url|version". A canonical without a version part
// yields a ProfileID with a zero version.
func ParseProfileID(s string) (ProfileID, error) {
	base, ver, found := strings.Cut(strings.TrimSpace(s), "|")
	if !found {
		if base == "" {
			return ProfileID{}, fmt.Errorf("profile url cannot be empty")
		}
		return ProfileID{url: base}, nil
	}
	v, err := ExtractProfileVersion(ver)
	if err != nil {
		return ProfileID{}, fmt.Errorf("invalid profile %q: %w", s, err)
	}
	return NewProfileID(base, v)
}

// URL returns the unversioned canonical.
func (p ProfileID) URL() string {
	return p.url
}

// Version returns the profile version (zero when the canonical carried none).
func (p ProfileID) Version() ProfileVersion {
	return p.version
}

// IsZero returns true if this is the zero value
func (p ProfileID) IsZero() bool {
	return p.url == ""
}

// String returns the versioned canonical
func (p ProfileID) String() string {
	if p.version.IsZero() {
		return p.url
	}
	return p.url + "|" + p.version.String()
}

// Equals checks if two profile ids are equal
func (p ProfileID) Equals(other ProfileID) bool {
	return p.url == other.url && p.version.Equals(other.version)
}
