// Package fhirjson serializes documents in their FHIR JSON form.
package fhirjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/domain/document"
)

// Codec decodes and encodes documents as FHIR JSON.
type Codec struct {
	indent string
}

var (
	_ ports.Decoder = (*Codec)(nil)
	_ ports.Encoder = (*Codec)(nil)
)

// Option configures a Codec.
type Option func(*Codec)

// WithIndent makes Encode pretty-print with the given indent.
func WithIndent(indent string) Option {
	return func(c *Codec) { c.indent = indent }
}

// NewCodec creates a codec.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode decodes raw as kind. A payload of another resource type or profile
// fails with ports.ErrStructuralMismatch, a payload that is no JSON object
// with ports.ErrUnparseable.
func (c *Codec) Decode(kind document.Kind, raw string) (document.Resource, error) {
	if kind.IsAny() {
		return c.DecodeAny(raw)
	}

	env, err := envelope(raw)
	if err != nil {
		return nil, err
	}
	if env.ResourceType != kind.ResourceType() {
		return nil, fmt.Errorf("%w: expected resourceType %s, got %q", ports.ErrStructuralMismatch, kind.ResourceType(), env.ResourceType)
	}
	if base, _, _ := strings.Cut(env.Profile(), "|"); base != "" && base != kind.ProfileURL() {
		if _, known := document.KindFor(env.ResourceType, env.Profile()); known {
			return nil, fmt.Errorf("%w: expected profile %s, got %s", ports.ErrStructuralMismatch, kind.ProfileURL(), base)
		}
	}

	res, err := document.New(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrStructuralMismatch, err)
	}
	if err := json.Unmarshal([]byte(raw), res); err != nil {
		return nil, classify(err)
	}
	if res.Kind() != kind {
		return nil, fmt.Errorf("%w: payload does not identify as %s", ports.ErrStructuralMismatch, kind)
	}
	return res, nil
}

// DecodeAny decodes raw with the kind inferred from resourceType and profile.
func (c *Codec) DecodeAny(raw string) (document.Resource, error) {
	if _, err := envelope(raw); err != nil {
		return nil, err
	}
	res, err := document.DecodeResource([]byte(raw))
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

// Encode serializes res.
func (c *Codec) Encode(res document.Resource) ([]byte, error) {
	if res == nil {
		return nil, errors.New("cannot encode a nil document")
	}
	if c.indent != "" {
		return json.MarshalIndent(res, "", c.indent)
	}
	return json.Marshal(res)
}

func envelope(raw string) (document.Envelope, error) {
	var env document.Envelope
	if strings.TrimSpace(raw) == "" {
		return env, fmt.Errorf("%w: empty payload", ports.ErrUnparseable)
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return env, fmt.Errorf("%w: %v", ports.ErrUnparseable, err)
	}
	return env, nil
}

// classify maps decode failures of a well-formed payload: unknown resources
// and fields of the wrong JSON type mean the payload has another shape.
func classify(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.Is(err, document.ErrUnknownResource) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", ports.ErrStructuralMismatch, err)
	}
	return fmt.Errorf("%w: %v", ports.ErrUnparseable, err)
}
