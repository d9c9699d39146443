package values

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const urnPrefix = "urn:uuid:"

// ResourceID uniquely identifies a document inside a bundle or dispense operation.
type ResourceID struct {
	value uuid.UUID
}

// NewResourceID creates a new random resource ID
func NewResourceID() ResourceID {
	return ResourceID{value: uuid.New()}
}

// ParseResourceID parses a plain uuid or a urn:uuid: reference.
func ParseResourceID(s string) (ResourceID, error) {
	id, err := uuid.Parse(strings.TrimPrefix(strings.TrimSpace(s), urnPrefix))
	if err != nil {
		return ResourceID{}, fmt.Errorf("invalid resource ID: %w", err)
	}
	return ResourceID{value: id}, nil
}

// MustParseResourceID parses a string or panics (for tests only)
func MustParseResourceID(s string) ResourceID {
	id, err := ParseResourceID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation
func (r ResourceID) String() string {
	return r.value.String()
}

// URN returns the urn:uuid: form used as a bundle entry fullUrl.
func (r ResourceID) URN() string {
	return urnPrefix + r.value.String()
}

// IsZero returns true if this is the zero value
func (r ResourceID) IsZero() bool {
	return r.value == uuid.Nil
}

// Equals checks if two ResourceIDs are equal
func (r ResourceID) Equals(other ResourceID) bool {
	return r.value == other.value
}

// MarshalJSON implements json.Marshaler
func (r ResourceID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.value.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (r *ResourceID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid resource ID JSON")
	}
	s = s[1 : len(s)-1]

	id, err := ParseResourceID(s)
	if err != nil {
		return err
	}
	*r = id
	return nil
}
