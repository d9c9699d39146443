package values

import (
	"fmt"
	"strings"
)

// Severity represents the severity of a validation message.
// Enforces valid severity values and provides ordering.
type Severity struct {
	value SeverityLevel
}

// SeverityLevel is the internal representation
type SeverityLevel int

const (
	SeverityUnknown     SeverityLevel = 0
	SeverityInformation SeverityLevel = 1
	SeverityWarning     SeverityLevel = 2
	SeverityError       SeverityLevel = 3
	SeverityFatal       SeverityLevel = 4
)

// Predefined severity values
var (
	SevUnknown     = Severity{SeverityUnknown}
	SevInformation = Severity{SeverityInformation}
	SevWarning     = Severity{SeverityWarning}
	SevError       = Severity{SeverityError}
	SevFatal       = Severity{SeverityFatal}
)

// AllSeverities lists the known severities from lowest to highest.
func AllSeverities() []Severity {
	return []Severity{SevInformation, SevWarning, SevError, SevFatal}
}

// NewSeverity creates a Severity from string
func NewSeverity(s string) (Severity, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "information", "info":
		return SevInformation, nil
	case "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	case "fatal":
		return SevFatal, nil
	case "":
		return SevUnknown, nil
	default:
		return Severity{}, fmt.Errorf("invalid severity: %s", s)
	}
}

// MustNewSeverity creates a Severity or panics
func MustNewSeverity(s string) Severity {
	sev, err := NewSeverity(s)
	if err != nil {
		panic(err)
	}
	return sev
}

// String returns the string representation
func (s Severity) String() string {
	switch s.value {
	case SeverityInformation:
		return "information"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return ""
	}
}

// Level returns the numeric severity level (for ordering)
func (s Severity) Level() int {
	return int(s.value)
}

// IsFailure reports whether a message of this severity fails validation.
func (s Severity) IsFailure() bool {
	return s.value >= SeverityError
}

// IsHigherThan returns true if this severity is higher than the other
func (s Severity) IsHigherThan(other Severity) bool {
	return s.value > other.value
}

// IsHigherOrEqual returns true if this severity is higher or equal to the other
func (s Severity) IsHigherOrEqual(other Severity) bool {
	return s.value >= other.value
}

// Equals checks if two severities are equal
func (s Severity) Equals(other Severity) bool {
	return s.value == other.value
}

// MarshalJSON implements json.Marshaler
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) < 2 {
		return fmt.Errorf("invalid severity JSON")
	}
	str = str[1 : len(str)-1]

	sev, err := NewSeverity(str)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}
