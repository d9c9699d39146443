// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/validation"
)

// DecodeError indicates a payload could not be decoded, even by the
// kind-inferring fallback.
type DecodeError struct {
	Cause    error
	Expected document.Kind
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Expected, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// NewDecodeError creates a new decode error.
func NewDecodeError(expected document.Kind, cause error) *DecodeError {
	return &DecodeError{
		Expected: expected,
		Cause:    cause,
	}
}

// UnexpectedPayloadTypeError indicates a response decoded to a different
// kind than requested. Actual is the zero Kind for an empty body.
type UnexpectedPayloadTypeError struct {
	Expected document.Kind
	Actual   document.Kind
}

func (e *UnexpectedPayloadTypeError) Error() string {
	actual := "empty body"
	if !e.Actual.IsZero() {
		actual = e.Actual.String()
	}
	return fmt.Sprintf("unexpected payload type: expected %s, got %s", e.Expected, actual)
}

// NewUnexpectedPayloadTypeError creates a new payload type error.
func NewUnexpectedPayloadTypeError(expected, actual document.Kind) *UnexpectedPayloadTypeError {
	return &UnexpectedPayloadTypeError{
		Expected: expected,
		Actual:   actual,
	}
}

// StructuralValidationError indicates the structural validator rejected a document.
type StructuralValidationError struct {
	Kind    document.Kind
	Counts  map[string]int
	Details string
}

func (e *StructuralValidationError) Error() string {
	severities := make([]string, 0, len(e.Counts))
	for sev := range e.Counts {
		severities = append(severities, sev)
	}
	sort.Strings(severities)
	parts := make([]string, len(severities))
	for i, sev := range severities {
		parts[i] = fmt.Sprintf("%d %s", e.Counts[sev], sev)
	}
	return fmt.Sprintf("structural validation of %s failed (%s):\n%s", e.Kind, strings.Join(parts, ", "), e.Details)
}

// NewStructuralValidationError creates a validation error from a result.
func NewStructuralValidationError(kind document.Kind, result validation.Result) *StructuralValidationError {
	return &StructuralValidationError{
		Kind:    kind,
		Counts:  result.Counts(),
		Details: result.Format(),
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
