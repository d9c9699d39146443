// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"errors"
	"net/http"
	"time"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/services"
	"github.com/reglet-dev/rxforge/internal/domain/validation"
)

// Decoder failure classes. Codecs wrap one of them so callers can branch
// with errors.Is.
var (
	// ErrStructuralMismatch means the payload parsed but does not have the
	// shape of the requested kind.
	ErrStructuralMismatch = errors.New("payload does not match the expected document kind")
	// ErrUnparseable means the payload is not a document at all.
	ErrUnparseable = errors.New("payload is not parseable")
)

// Decoder turns serialized payloads into documents.
type Decoder interface {
	// Decode decodes raw as kind. It fails with ErrStructuralMismatch when the
	// payload is a different document.
	Decode(kind document.Kind, raw string) (document.Resource, error)
	// DecodeAny infers the kind from the payload.
	DecodeAny(raw string) (document.Resource, error)
}

// Encoder serializes documents.
type Encoder interface {
	Encode(r document.Resource) ([]byte, error)
}

// StructuralValidator checks documents against their profile schema.
// Implementations must be safe for concurrent use.
type StructuralValidator interface {
	Validate(r document.Resource) validation.Result
	// ValidateRaw validates a payload that has not been decoded.
	ValidateRaw(raw string) validation.Result
}

// ToggleSource reads process-wide configuration toggles.
type ToggleSource = services.ToggleSource

// PayloadRecord is a raw response kept for offline analysis.
type PayloadRecord struct {
	StatusCode   int
	Duration     time.Duration
	Headers      http.Header
	CredentialID string
	ExpectedKind document.Kind
	Body         string
	ReceivedAt   time.Time
}

// PayloadRecorder stores payloads of failed server responses.
type PayloadRecorder interface {
	Record(rec PayloadRecord) error
}

// DecodeOutcome classifies how a response was decoded.
type DecodeOutcome string

const (
	DecodeOK       DecodeOutcome = "ok"
	DecodeFallback DecodeOutcome = "fallback"
	DecodeEmpty    DecodeOutcome = "empty"
	DecodeFailed   DecodeOutcome = "failed"
)

// DecodeObserver is notified about every decode.
type DecodeObserver interface {
	ObserveDecode(expected, actual document.Kind, outcome DecodeOutcome)
}
