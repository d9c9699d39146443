package services

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reglet-dev/rxforge/internal/application/errors"
	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/validation"
)

const medicationJSON = `{"resourceType":"Medication","id":"5fe6e06c-8725-46d5-aecd-e65e041ca3de",` +
	`"meta":{"profile":["https://gematik.de/fhir/epa-medication/StructureDefinition/epa-medication|1.1.0"]},` +
	`"code":{"coding":[{"system":"http://fhir.de/CodeSystem/ifa/pzn","code":"04773414"}]}}`

const outcomeJSON = `{"resourceType":"OperationOutcome","issue":[{"severity":"error","code":"not-found","diagnostics":"Task not found"}]}`

// fakeDecoder decodes with the document package and reports kind mismatches
// the way a real codec does.
type fakeDecoder struct {
	anyCalls atomic.Int32
	failAny  bool
}

func (d *fakeDecoder) Decode(kind document.Kind, raw string) (document.Resource, error) {
	res, err := document.DecodeResource([]byte(raw))
	if err != nil {
		if errors.Is(err, document.ErrUnknownResource) {
			return nil, fmt.Errorf("%w: %v", ports.ErrStructuralMismatch, err)
		}
		return nil, fmt.Errorf("%w: %v", ports.ErrUnparseable, err)
	}
	if !kind.Accepts(res.Kind()) {
		return nil, fmt.Errorf("%w: got %s", ports.ErrStructuralMismatch, res.Kind())
	}
	return res, nil
}

func (d *fakeDecoder) DecodeAny(raw string) (document.Resource, error) {
	d.anyCalls.Add(1)
	if d.failAny {
		return nil, errors.New("no shape matches")
	}
	return document.DecodeResource([]byte(raw))
}

type fakeValidator struct {
	calls  atomic.Int32
	result validation.Result
}

func (v *fakeValidator) Validate(document.Resource) validation.Result {
	v.calls.Add(1)
	return v.result
}

func (v *fakeValidator) ValidateRaw(string) validation.Result {
	return v.result
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []ports.PayloadRecord
	err     error
}

func (r *fakeRecorder) Record(rec ports.PayloadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return r.err
}

type fakeObserver struct {
	outcomes []ports.DecodeOutcome
}

func (o *fakeObserver) ObserveDecode(_, _ document.Kind, outcome ports.DecodeOutcome) {
	o.outcomes = append(o.outcomes, outcome)
}

func newTestDecoder(opts ...DecoderOption) (*ResponseDecoder, *fakeDecoder, *fakeValidator) {
	dec := &fakeDecoder{}
	val := &fakeValidator{result: validation.Success()}
	return NewResponseDecoder(dec, val, opts...), dec, val
}

func Test_ResponseDecoder_Decode_ExpectedKind(t *testing.T) {
	d, _, _ := newTestDecoder()

	w, err := d.Decode(RawResponse{StatusCode: 200, Body: medicationJSON}, document.KindMedication)
	require.NoError(t, err)

	assert.False(t, w.IsEmptyBody())
	assert.Equal(t, document.KindMedication, w.ResourceKind())
	assert.True(t, w.IsResourceOfKind(document.KindMedication))
	assert.True(t, w.IsResourceOfKind(document.KindAny))

	med, err := PayloadAs[*document.Medication](w)
	require.NoError(t, err)
	pzn, _ := med.PZN()
	assert.Equal(t, "04773414", pzn)
	assert.NoError(t, w.EnsureValid())
}

func Test_ResponseDecoder_Decode_EmptyBody(t *testing.T) {
	obs := &fakeObserver{}
	d, _, _ := newTestDecoder(WithDecodeObserver(obs))

	w, err := d.Decode(RawResponse{StatusCode: 200, Body: ""}, document.KindMedication)
	require.NoError(t, err)
	assert.True(t, w.IsEmptyBody())
	assert.Nil(t, w.Resource())
	assert.True(t, w.ResourceKind().IsZero())

	_, err = w.Payload()
	var upe *apperrors.UnexpectedPayloadTypeError
	require.ErrorAs(t, err, &upe)
	assert.True(t, upe.Actual.IsZero())
	assert.Equal(t, []ports.DecodeOutcome{ports.DecodeEmpty}, obs.outcomes)
}

func Test_ResponseDecoder_Decode_FallbackToInferredKind(t *testing.T) {
	obs := &fakeObserver{}
	d, dec, _ := newTestDecoder(WithDecodeObserver(obs))

	w, err := d.Decode(RawResponse{StatusCode: 404, Body: outcomeJSON}, document.KindMedication)
	require.NoError(t, err)
	assert.Equal(t, int32(1), dec.anyCalls.Load())
	assert.Equal(t, document.KindOperationOutcome, w.ResourceKind())
	assert.Equal(t, document.KindMedication, w.ExpectedKind())

	_, err = PayloadAs[*document.Medication](w)
	var upe *apperrors.UnexpectedPayloadTypeError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, document.KindMedication, upe.Expected)
	assert.Equal(t, document.KindOperationOutcome, upe.Actual)

	oo, ok := ResourceAs[*document.OperationOutcome](w)
	require.True(t, ok)
	assert.Equal(t, "not-found", oo.Issue[0].Code)
	assert.Equal(t, []ports.DecodeOutcome{ports.DecodeFallback}, obs.outcomes)
}

func Test_ResponseDecoder_Decode_BaseKindAcceptsAnything(t *testing.T) {
	d, _, _ := newTestDecoder()

	w, err := d.Decode(RawResponse{StatusCode: 400, Body: outcomeJSON}, document.KindAny)
	require.NoError(t, err)

	res, err := w.Payload()
	require.NoError(t, err)
	assert.Equal(t, document.KindOperationOutcome, res.Kind())
}

func Test_ResponseDecoder_Decode_FallbackFailureSurfacesOriginal(t *testing.T) {
	d, dec, _ := newTestDecoder()
	dec.failAny = true

	_, err := d.Decode(RawResponse{StatusCode: 200, Body: outcomeJSON}, document.KindMedication)
	var de *apperrors.DecodeError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ports.ErrStructuralMismatch)
	assert.Equal(t, document.KindMedication, de.Expected)
}

func Test_ResponseDecoder_Decode_UnparseableHasNoFallback(t *testing.T) {
	d, dec, _ := newTestDecoder()

	_, err := d.Decode(RawResponse{StatusCode: 200, Body: "<html>"}, document.KindMedication)
	var de *apperrors.DecodeError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ports.ErrUnparseable)
	assert.Equal(t, int32(0), dec.anyCalls.Load())
}

func Test_ResponseWrapper_HeadersCaseInsensitive(t *testing.T) {
	d, _, _ := newTestDecoder()

	w, err := d.Decode(RawResponse{
		StatusCode: 200,
		Body:       medicationJSON,
		Headers:    map[string][]string{"Content-Type": {"application/fhir+json"}, "x-request-id": {"abc"}},
	}, document.KindMedication)
	require.NoError(t, err)

	for _, name := range []string{"Content-Type", "content-type", "CONTENT-TYPE"} {
		got, ok := w.Header(name)
		require.True(t, ok, name)
		assert.Equal(t, "application/fhir+json", got)
	}
	got, ok := w.Header("X-Request-Id")
	require.True(t, ok)
	assert.Equal(t, "abc", got)

	_, ok = w.Header("Accept")
	assert.False(t, ok)
}

func Test_ResponseWrapper_ValidationIsLazyAndCached(t *testing.T) {
	d, _, val := newTestDecoder()
	val.result = validation.Failure("Medication.code", "missing coding")

	w, err := d.Decode(RawResponse{StatusCode: 200, Body: medicationJSON}, document.KindMedication)
	require.NoError(t, err)
	assert.Equal(t, int32(0), val.calls.Load())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.Payload()
			_ = w.Validation()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), val.calls.Load())

	err = w.EnsureValid()
	var sve *apperrors.StructuralValidationError
	require.ErrorAs(t, err, &sve)
	assert.Equal(t, document.KindMedication, sve.Kind)
	assert.Equal(t, 1, sve.Counts["error"])
	assert.Contains(t, sve.Details, "Medication.code: missing coding")
}

func Test_ResponseWrapper_PayloadRequiresValidResource(t *testing.T) {
	d, _, val := newTestDecoder()
	val.result = validation.Failure("Medication.code", "missing coding")

	w, err := d.Decode(RawResponse{StatusCode: 200, Body: medicationJSON}, document.KindMedication)
	require.NoError(t, err)

	res, err := w.Payload()
	assert.Nil(t, res)
	var sve *apperrors.StructuralValidationError
	require.ErrorAs(t, err, &sve)
	assert.Equal(t, document.KindMedication, sve.Kind)

	_, err = PayloadAs[*document.Medication](w)
	require.ErrorAs(t, err, &sve)

	med, ok := ResourceAs[*document.Medication](w)
	require.True(t, ok)
	assert.NotNil(t, med)
	assert.NotNil(t, w.Resource())
	assert.Equal(t, int32(1), val.calls.Load())
}

func Test_ResponseWrapper_KindMismatchSkipsValidation(t *testing.T) {
	d, _, val := newTestDecoder()
	val.result = validation.Failure("OperationOutcome.issue", "bad")

	w, err := d.Decode(RawResponse{StatusCode: 404, Body: outcomeJSON}, document.KindMedication)
	require.NoError(t, err)

	_, err = w.Payload()
	var upe *apperrors.UnexpectedPayloadTypeError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, int32(0), val.calls.Load())
}

func Test_ResponseDecoder_RecordsServerFailures(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	d, _, _ := newTestDecoder(WithPayloadRecorder(rec), WithDecoderClock(func() time.Time { return now }))

	w, err := d.Decode(RawResponse{StatusCode: 503, Duration: time.Second, CredentialID: "smcb-1", Body: outcomeJSON}, document.KindMedication)
	require.NoError(t, err)
	assert.Equal(t, 503, w.StatusCode())
	assert.Equal(t, time.Second, w.Duration())
	assert.Equal(t, "smcb-1", w.CredentialID())

	_, err = d.Decode(RawResponse{StatusCode: 200, Body: medicationJSON}, document.KindMedication)
	require.NoError(t, err)
	_, err = d.Decode(RawResponse{StatusCode: 500, Body: ""}, document.KindMedication)
	require.NoError(t, err)

	require.Len(t, rec.records, 2)
	assert.Equal(t, 503, rec.records[0].StatusCode)
	assert.Equal(t, now, rec.records[0].ReceivedAt)
	assert.Equal(t, document.KindMedication, rec.records[0].ExpectedKind)
	assert.Equal(t, 500, rec.records[1].StatusCode)
}

func FuzzResponseDecoder_Decode(f *testing.F) {
	seeds := []string{"", medicationJSON, outcomeJSON, "{}", "null", "[1,2]", `{"resourceType":42}`, "<xml/>"}
	for _, s := range seeds {
		f.Add(s)
	}
	d, _, _ := newTestDecoder()
	f.Fuzz(func(t *testing.T, body string) {
		w, err := d.Decode(RawResponse{StatusCode: 200, Body: body}, document.KindMedication)
		if err != nil {
			var de *apperrors.DecodeError
			require.ErrorAs(t, err, &de)
			return
		}
		_, _ = w.Payload()
		_ = w.Validation()
	})
}
