// Package validation holds the immutable outcome of a structural validation run.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// Message is one finding of a validator.
type Message struct {
	Severity values.Severity `json:"severity" yaml:"severity"`
	Location string          `json:"location,omitempty" yaml:"location,omitempty"`
	Text     string          `json:"message" yaml:"message"`
}

// String formats the message as "[severity] location: text".
func (m Message) String() string {
	if m.Location == "" {
		return fmt.Sprintf("[%s] %s", m.Severity, m.Text)
	}
	return fmt.Sprintf("[%s] %s: %s", m.Severity, m.Location, m.Text)
}

// Result is the success flag plus ordered messages of one validation.
// It is not mutable after creation.
type Result struct {
	successful bool
	messages   []Message
}

// NewResult creates a result. The run is successful when no message has
// error or fatal severity.
func NewResult(messages ...Message) Result {
	successful := true
	for _, m := range messages {
		if m.Severity.IsFailure() {
			successful = false
			break
		}
	}
	return Result{successful: successful, messages: slices.Clone(messages)}
}

// Success is a result without any messages.
func Success() Result {
	return Result{successful: true}
}

// Failure is a result with a single error message.
func Failure(location, text string) Result {
	return NewResult(Message{Severity: values.SevError, Location: location, Text: text})
}

// IsSuccessful reports whether validation passed.
func (r Result) IsSuccessful() bool {
	return r.successful
}

// Messages returns a copy of the messages in validator order.
func (r Result) Messages() []Message {
	return slices.Clone(r.messages)
}

// Count returns the number of messages with severity s.
func (r Result) Count(s values.Severity) int {
	n := 0
	for _, m := range r.messages {
		if m.Severity.Equals(s) {
			n++
		}
	}
	return n
}

// Counts returns the message count per severity name, omitting zero counts.
func (r Result) Counts() map[string]int {
	counts := make(map[string]int)
	for _, m := range r.messages {
		counts[m.Severity.String()]++
	}
	return counts
}

// Merge appends the messages of other.
func (r Result) Merge(other Result) Result {
	return NewResult(append(r.Messages(), other.messages...)...)
}

// Format renders every message on its own line.
func (r Result) Format() string {
	lines := make([]string, len(r.messages))
	for i, m := range r.messages {
		lines[i] = m.String()
	}
	return strings.Join(lines, "\n")
}
