package builder

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// ConstructionError reports the first build invariant a builder violated.
// The builder stays in its accumulating state.
type ConstructionError struct {
	Kind      document.Kind
	Version   values.ProfileVersion
	Invariant string
	Fields    []string
	Message   string
}

func (e *ConstructionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot build %s", e.Kind)
	if !e.Version.IsZero() {
		fmt.Fprintf(&b, " (%s %s)", e.Kind.Family(), e.Version)
	}
	fmt.Fprintf(&b, ": invariant %s violated", e.Invariant)
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " on [%s]", strings.Join(e.Fields, ", "))
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

// HasField reports whether field is one of the offending fields.
func (e *ConstructionError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// UsageError reports builder misuse: mutating or building a builder that
// already produced its document.
type UsageError struct {
	Kind document.Kind
	Op   string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s builder already built: %s is not allowed, use a fresh builder per document", e.Kind, e.Op)
}
