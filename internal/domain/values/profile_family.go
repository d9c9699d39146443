// Package values contains domain value objects that encapsulate
// primitive types with validation and such.
package values

import (
	"fmt"
	"regexp"
	"strings"
)

var familyPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ProfileFamily identifies the profile lineage a document kind belongs to.
// Enforces lower-case kebab names.
type ProfileFamily struct {
	value string
}

// Well-known families.
var (
	FamilyWorkflow     = ProfileFamily{"workflow"}
	FamilyPrescription = ProfileFamily{"prescription"}
	FamilyBaseData     = ProfileFamily{"base-data"}
	FamilyMedication   = ProfileFamily{"medication"}
)

// NewProfileFamily creates a ProfileFamily with validation
func NewProfileFamily(name string) (ProfileFamily, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProfileFamily{}, fmt.Errorf("profile family cannot be empty")
	}
	if !familyPattern.MatchString(name) {
		return ProfileFamily{}, fmt.Errorf("invalid profile family %q", name)
	}
	return ProfileFamily{value: name}, nil
}

// MustNewProfileFamily creates a ProfileFamily or panics
func MustNewProfileFamily(name string) ProfileFamily {
	f, err := NewProfileFamily(name)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns the string representation
func (f ProfileFamily) String() string {
	return f.value
}

// ToggleKey returns the configuration key that overrides this family's version.
func (f ProfileFamily) ToggleKey() string {
	return "profiles." + f.value
}

// IsEmpty returns true if this is the zero value
func (f ProfileFamily) IsEmpty() bool {
	return f.value == ""
}

// Equals checks if two families are equal
func (f ProfileFamily) Equals(other ProfileFamily) bool {
	return f.value == other.value
}

// MarshalJSON implements json.Marshaler
func (f ProfileFamily) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (f *ProfileFamily) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid profile family JSON")
	}
	s = s[1 : len(s)-1]

	family, err := NewProfileFamily(s)
	if err != nil {
		return err
	}
	*f = family
	return nil
}
