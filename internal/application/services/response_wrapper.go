package services

import (
	"net/http"
	"sync"
	"time"

	apperrors "github.com/reglet-dev/rxforge/internal/application/errors"
	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/validation"
)

// ResponseWrapper is an immutable decoded response. The resource is
// validated on first access and the result is cached; concurrent readers
// are safe.
type ResponseWrapper struct {
	statusCode   int
	duration     time.Duration
	headers      http.Header
	credentialID string
	body         string
	expected     document.Kind
	resource     document.Resource
	validation   func() validation.Result
}

func newResponseWrapper(in RawResponse, expected document.Kind, res document.Resource, validator ports.StructuralValidator) *ResponseWrapper {
	headers := make(http.Header, len(in.Headers))
	for name, vals := range in.Headers {
		for _, v := range vals {
			headers.Add(name, v)
		}
	}
	w := &ResponseWrapper{
		statusCode:   in.StatusCode,
		duration:     in.Duration,
		headers:      headers,
		credentialID: in.CredentialID,
		body:         in.Body,
		expected:     expected,
		resource:     res,
	}
	w.validation = sync.OnceValue(func() validation.Result {
		if w.resource == nil {
			return validation.Success()
		}
		return validator.Validate(w.resource)
	})
	return w
}

// Resource returns the decoded resource of whatever kind, nil for an empty body.
func (w *ResponseWrapper) Resource() document.Resource {
	return w.resource
}

// ResourceKind returns the kind of the decoded resource, the zero Kind for an empty body.
func (w *ResponseWrapper) ResourceKind() document.Kind {
	if w.resource == nil {
		return document.Kind{}
	}
	return w.resource.Kind()
}

// ExpectedKind returns the kind the caller asked for.
func (w *ResponseWrapper) ExpectedKind() document.Kind {
	return w.expected
}

// IsEmptyBody reports whether the response carried no payload.
func (w *ResponseWrapper) IsEmptyBody() bool {
	return w.resource == nil
}

// IsResourceOfKind reports whether the decoded resource satisfies k.
func (w *ResponseWrapper) IsResourceOfKind(k document.Kind) bool {
	return w.resource != nil && k.Accepts(w.resource.Kind())
}

// Header returns the first value of the named header, case-insensitively.
func (w *ResponseWrapper) Header(name string) (string, bool) {
	vals := w.headers.Values(name)
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Headers returns a copy of all headers with canonical names.
func (w *ResponseWrapper) Headers() http.Header {
	return w.headers.Clone()
}

func (w *ResponseWrapper) StatusCode() int { return w.statusCode }

func (w *ResponseWrapper) Duration() time.Duration { return w.duration }

func (w *ResponseWrapper) CredentialID() string { return w.credentialID }

// Body returns the raw payload.
func (w *ResponseWrapper) Body() string { return w.body }

// Validation validates the resource once and returns the cached result.
func (w *ResponseWrapper) Validation() validation.Result {
	return w.validation()
}

// EnsureValid fails with a StructuralValidationError when validation failed.
func (w *ResponseWrapper) EnsureValid() error {
	result := w.Validation()
	if result.IsSuccessful() {
		return nil
	}
	return apperrors.NewStructuralValidationError(w.ResourceKind(), result)
}

// Payload returns the resource when it is of the expected kind and valid.
// A kind mismatch fails with UnexpectedPayloadTypeError before validation
// runs; an invalid resource fails with StructuralValidationError. Use
// Resource or ResourceAs to read a payload regardless of validity.
func (w *ResponseWrapper) Payload() (document.Resource, error) {
	if w.resource == nil {
		return nil, apperrors.NewUnexpectedPayloadTypeError(w.expected, document.Kind{})
	}
	if !w.expected.Accepts(w.resource.Kind()) {
		return nil, apperrors.NewUnexpectedPayloadTypeError(w.expected, w.resource.Kind())
	}
	if err := w.EnsureValid(); err != nil {
		return nil, err
	}
	return w.resource, nil
}

// PayloadAs returns the payload as T.
func PayloadAs[T document.Resource](w *ResponseWrapper) (T, error) {
	var zero T
	res, err := w.Payload()
	if err != nil {
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		return zero, apperrors.NewUnexpectedPayloadTypeError(w.expected, res.Kind())
	}
	return typed, nil
}

// ResourceAs returns the decoded resource as T regardless of the expected
// kind; ok is false when it is absent or of another type.
func ResourceAs[T document.Resource](w *ResponseWrapper) (T, bool) {
	typed, ok := w.resource.(T)
	return typed, ok
}
