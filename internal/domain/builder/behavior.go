package builder

import (
	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// Entry binds a behavior value to a version range.
type Entry[T any] struct {
	Range values.VersionRange
	Value T
}

// When creates an entry for a constraint such as "< 1.1.0". It panics on an
// invalid constraint; tables are declared with literals.
func When[T any](constraint string, value T) Entry[T] {
	return Entry[T]{Range: values.MustNewVersionRange(constraint), Value: value}
}

// Behavior is a version-range-to-value lookup table. The first entry whose
// range contains the version wins.
type Behavior[T any] struct {
	name    string
	entries []Entry[T]
}

// NewBehavior declares a behavior table.
func NewBehavior[T any](name string, entries ...Entry[T]) Behavior[T] {
	return Behavior[T]{name: name, entries: entries}
}

// Lookup returns the value for v.
func (b Behavior[T]) Lookup(v values.ProfileVersion) (T, bool) {
	for _, e := range b.entries {
		if e.Range.Contains(v) {
			return e.Value, true
		}
	}
	var zero T
	return zero, false
}

// Select returns the value for v or a ConstructionError naming the table.
func (b Behavior[T]) Select(kind document.Kind, v values.ProfileVersion) (T, error) {
	val, ok := b.Lookup(v)
	if !ok {
		return val, &ConstructionError{
			Kind:      kind,
			Version:   v,
			Invariant: b.name,
			Message:   "no behavior declared for this version",
		}
	}
	return val, nil
}

// Name returns the table name
func (b Behavior[T]) Name() string {
	return b.name
}
