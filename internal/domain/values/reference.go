package values

import (
	"fmt"
	"strings"
)

// Reference points from one document to another. Internal references use the
// urn:uuid: form and must resolve inside the enclosing composite; external
// references name a document by identifier only and are never resolved.
type Reference struct {
	value    string
	external bool
}

// InternalReference references an embedded document by its resource id.
func InternalReference(id ResourceID) Reference {
	return Reference{value: id.URN()}
}

// NewExternalReference references a document that is not part of the composite,
// e.g. "Task/160.000.100.000.001.05".
func NewExternalReference(s string) (Reference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{}, fmt.Errorf("reference cannot be empty")
	}
	return Reference{value: s, external: true}, nil
}

// MustNewExternalReference creates an external reference or panics
func MustNewExternalReference(s string) Reference {
	r, err := NewExternalReference(s)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseReference interprets a serialized reference. urn:uuid: values become
// internal references, everything else external.
func ParseReference(s string) (Reference, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, urnPrefix) {
		id, err := ParseResourceID(s)
		if err != nil {
			return Reference{}, err
		}
		return InternalReference(id), nil
	}
	return NewExternalReference(s)
}

// String returns the serialized reference
func (r Reference) String() string {
	return r.value
}

// IsExternal reports whether the target lives outside the composite.
func (r Reference) IsExternal() bool {
	return r.external
}

// IsEmpty returns true if this is the zero value
func (r Reference) IsEmpty() bool {
	return r.value == ""
}

// Target returns the referenced resource id for internal references.
func (r Reference) Target() (ResourceID, bool) {
	if r.external || r.value == "" {
		return ResourceID{}, false
	}
	id, err := ParseResourceID(r.value)
	if err != nil {
		return ResourceID{}, false
	}
	return id, true
}

// Points reports whether r is an internal reference to id.
func (r Reference) Points(id ResourceID) bool {
	target, ok := r.Target()
	return ok && target.Equals(id)
}
