// Package services contains application use cases.
package services

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/reglet-dev/rxforge/internal/application/errors"
	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/domain/document"
)

// RawResponse is a transport response as handed over by the HTTP layer.
type RawResponse struct {
	StatusCode   int
	Duration     time.Duration
	Headers      map[string][]string
	CredentialID string
	Body         string
}

// ServerFailure reports whether the status belongs to the 5xx class.
func (r RawResponse) ServerFailure() bool {
	return r.StatusCode >= 500 && r.StatusCode <= 599
}

// ResponseDecoder turns raw responses into lazily validated wrappers.
// It is safe for concurrent use when its collaborators are.
type ResponseDecoder struct {
	decoder   ports.Decoder
	validator ports.StructuralValidator
	recorder  ports.PayloadRecorder
	observer  ports.DecodeObserver
	now       func() time.Time
	logger    *slog.Logger
}

// DecoderOption configures a ResponseDecoder.
type DecoderOption func(*ResponseDecoder)

// WithPayloadRecorder keeps payloads of 5xx responses.
func WithPayloadRecorder(r ports.PayloadRecorder) DecoderOption {
	return func(d *ResponseDecoder) { d.recorder = r }
}

// WithDecodeObserver registers a decode observer.
func WithDecodeObserver(o ports.DecodeObserver) DecoderOption {
	return func(d *ResponseDecoder) { d.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DecoderOption {
	return func(d *ResponseDecoder) { d.logger = l }
}

// WithDecoderClock overrides the clock used to timestamp payload records.
func WithDecoderClock(now func() time.Time) DecoderOption {
	return func(d *ResponseDecoder) { d.now = now }
}

// NewResponseDecoder creates a response decoder.
func NewResponseDecoder(decoder ports.Decoder, validator ports.StructuralValidator, opts ...DecoderOption) *ResponseDecoder {
	d := &ResponseDecoder{
		decoder:   decoder,
		validator: validator,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Decode decodes in as expected. An empty body yields a wrapper without a
// resource. A body that parses but has the shape of another kind is decoded
// again with the kind inferred from the payload; the wrapper then carries
// that kind and typed access fails. Validation is deferred to the wrapper.
func (d *ResponseDecoder) Decode(in RawResponse, expected document.Kind) (*ResponseWrapper, error) {
	if in.ServerFailure() {
		d.record(in, expected)
	}

	if strings.TrimSpace(in.Body) == "" {
		d.observe(expected, document.Kind{}, ports.DecodeEmpty)
		return newResponseWrapper(in, expected, nil, d.validator), nil
	}

	res, outcome, err := d.decode(in.Body, expected)
	if err != nil {
		d.observe(expected, document.Kind{}, ports.DecodeFailed)
		return nil, apperrors.NewDecodeError(expected, err)
	}
	d.observe(expected, res.Kind(), outcome)
	return newResponseWrapper(in, expected, res, d.validator), nil
}

func (d *ResponseDecoder) decode(body string, expected document.Kind) (document.Resource, ports.DecodeOutcome, error) {
	if expected.IsAny() {
		res, err := d.decoder.DecodeAny(body)
		return res, ports.DecodeOK, err
	}

	res, err := d.decoder.Decode(expected, body)
	if err == nil {
		return res, ports.DecodeOK, nil
	}
	if !errors.Is(err, ports.ErrStructuralMismatch) {
		return nil, ports.DecodeFailed, err
	}
	return d.fallback(body, expected, err)
}

// fallback decodes a structurally mismatching payload without a kind hint,
// typically an operation outcome sent instead of the requested document.
// When it fails too, the original error is returned.
func (d *ResponseDecoder) fallback(body string, expected document.Kind, original error) (document.Resource, ports.DecodeOutcome, error) {
	res, err := d.decoder.DecodeAny(body)
	if err != nil {
		d.logger.Debug("fallback decode failed", "expected", expected.String(), "error", err)
		return nil, ports.DecodeFailed, original
	}
	d.logger.Debug("decoded response with inferred kind", "expected", expected.String(), "actual", res.Kind().String())
	return res, ports.DecodeFallback, nil
}

func (d *ResponseDecoder) record(in RawResponse, expected document.Kind) {
	if d.recorder == nil {
		d.logger.Debug("server failure response not recorded", "status", in.StatusCode)
		return
	}
	rec := ports.PayloadRecord{
		StatusCode:   in.StatusCode,
		Duration:     in.Duration,
		Headers:      http.Header(in.Headers).Clone(),
		CredentialID: in.CredentialID,
		ExpectedKind: expected,
		Body:         in.Body,
		ReceivedAt:   d.now(),
	}
	if err := d.recorder.Record(rec); err != nil {
		d.logger.Warn("failed to record server failure payload", "status", in.StatusCode, "error", err)
	}
}

func (d *ResponseDecoder) observe(expected, actual document.Kind, outcome ports.DecodeOutcome) {
	if d.observer != nil {
		d.observer.ObserveDecode(expected, actual, outcome)
	}
}
