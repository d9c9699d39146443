package builder

import (
	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// Invariant is a named predicate over builder state, evaluated only at Build.
type Invariant[S any] struct {
	Name    string
	Fields  []string
	Message string
	// When limits the invariant to a version range; the zero value applies to all versions.
	When  values.VersionRange
	Holds func(s *S, v values.ProfileVersion) bool
	// Detail optionally adds state specific context to the message.
	Detail func(s *S) string
}

// FieldInvariant is a caller supplied invariant over a builder's field
// snapshot, the same view catalog rules see.
type FieldInvariant struct {
	Name    string
	Fields  []string
	Message string
	When    values.VersionRange
	Holds   func(fields map[string]any, v values.ProfileVersion) bool
}

// invariants is an ordered invariant list.
type invariants[S any] []Invariant[S]

// check returns the first violated invariant as a ConstructionError.
func (list invariants[S]) check(kind document.Kind, s *S, v values.ProfileVersion) error {
	for _, inv := range list {
		if !inv.When.Contains(v) {
			continue
		}
		if !inv.Holds(s, v) {
			msg := inv.Message
			if inv.Detail != nil {
				if d := inv.Detail(s); d != "" {
					msg += ": " + d
				}
			}
			return &ConstructionError{
				Kind:      kind,
				Version:   v,
				Invariant: inv.Name,
				Fields:    inv.Fields,
				Message:   msg,
			}
		}
	}
	return nil
}

// required builds the common "field must be set" invariant.
func required[S any](name, field, message string, isSet func(s *S) bool) Invariant[S] {
	return Invariant[S]{
		Name:    name,
		Fields:  []string{field},
		Message: message,
		Holds:   func(s *S, _ values.ProfileVersion) bool { return isSet(s) },
	}
}

// exactlyOne builds an exclusivity invariant over two alternatives.
func exactlyOne[S any](name string, fields [2]string, message string, a, b func(s *S) bool) Invariant[S] {
	return Invariant[S]{
		Name:    name,
		Fields:  fields[:],
		Message: message,
		Holds:   func(s *S, _ values.ProfileVersion) bool { return a(s) != b(s) },
	}
}
