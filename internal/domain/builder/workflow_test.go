package builder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

func infoRequest(f *Factory) *CommunicationBuilder {
	med, _ := validMedication(f).Build()
	return f.ForCommunication(CommunicationInfoReq).
		Task("Task/160.000.100.000.001.05").
		RecipientTelematikID(values.MustNewTelematikID("3-SMC-B-Testkarte-883110000123465")).
		Message("Ist das Medikament vorrätig?").
		Medication(med).
		Insurance(values.MustNewIKNR("109500969")).
		FlowType("160")
}

func Test_Communication_InfoRequestByVersion(t *testing.T) {
	f := newTestFactory(t, nil)

	c, err := infoRequest(f).Version(ver("1.3.0")).Build()
	require.NoError(t, err)
	assert.Equal(t, document.KindCommunicationInfoReq, c.Kind())
	require.Len(t, c.Contained, 1)
	assert.Equal(t, "#"+c.Contained[0].ID, c.About[0].Reference)
	task, ok := c.Task()
	require.True(t, ok)
	assert.Equal(t, "Task/160.000.100.000.001.05", task)

	_, err = infoRequest(f).Build()
	requireConstructionError(t, err, "type-supported")
}

func Test_Communication_InfoRequestNeedsMedicationAndInsurance(t *testing.T) {
	f := newTestFactory(t, nil)

	b := f.ForCommunication(CommunicationInfoReq).Version(ver("1.2.0")).
		Task("Task/160.000.100.000.001.05").
		RecipientTelematikID(values.MustNewTelematikID("3-SMC-B-Testkarte-883110000123465")).
		Message("Vorrätig?")
	_, err := b.Build()
	requireConstructionError(t, err, "info-request-medication")

	med, err := validMedication(f).Build()
	require.NoError(t, err)
	_, err = b.Medication(med).Build()
	requireConstructionError(t, err, "info-request-insurance")

	_, err = b.Insurance(values.MustNewIKNR("109500969")).Build()
	requireConstructionError(t, err, "flow-type-required")

	_, err = b.FlowType("160").Build()
	require.NoError(t, err)
}

func Test_Communication_ReplyDefaultsSupplyOptions(t *testing.T) {
	f := newTestFactory(t, nil)

	c, err := f.ForCommunication(CommunicationReply).
		Task("Task/160.000.100.000.001.05").
		RecipientKVNR(values.MustNewKVNR("X234567890")).
		Message("Abholbereit").
		Build()
	require.NoError(t, err)

	opts, ok := document.FindExtension(c.Payload[0].Extension, document.ExtSupplyOptions)
	require.True(t, ok)
	onPremise, ok := document.FindExtension(opts.Extension, "onPremise")
	require.True(t, ok)
	assert.True(t, *onPremise.ValueBoolean)
	assert.Equal(t, "X234567890", c.Recipient[0].Identifier.Value)
}

func Test_Communication_RequiredFields(t *testing.T) {
	f := newTestFactory(t, nil)

	_, err := f.ForCommunication("gossip").Build()
	requireConstructionError(t, err, "type-required")

	_, err = f.ForCommunication(CommunicationDispReq).Build()
	requireConstructionError(t, err, "task-required")

	_, err = f.ForCommunication(CommunicationDispReq).Task("Task/1").Build()
	requireConstructionError(t, err, "payload-required")

	_, err = f.ForCommunication(CommunicationDispReq).Task("Task/1").Message("bitte liefern").Build()
	requireConstructionError(t, err, "recipient-required")

	_, err = f.ForCommunication(CommunicationRepresentative).Task("Task/1").Message("für dich").
		RecipientKVNR(values.MustNewKVNR("X234567890")).Build()
	requireConstructionError(t, err, "flow-type-required")
}

func Test_Dispense_Invariants(t *testing.T) {
	f := newTestFactory(t, nil)

	_, err := f.ForMedicationDispense().Build()
	requireConstructionError(t, err, "prescription-id-required")

	_, err = validDispense(f).WhenPrepared(fixedNow.Add(1)).Build()
	requireConstructionError(t, err, "prepared-before-handed-over")

	_, err = validDispense(f).Build()
	requireConstructionError(t, err, "medication-required")
}

func Test_Dispense_MedicationEmbeddingByVersion(t *testing.T) {
	f := newTestFactory(t, nil)

	contained, err := validDispense(f).Version(ver("1.3.0")).Medication(validMedication(f)).Build()
	require.NoError(t, err)
	require.Len(t, contained.Contained, 1)
	assert.Equal(t, "#"+contained.Contained[0].ID, contained.Medication.Reference)

	med := validMedication(f)
	referenced, err := validDispense(f).Version(ver("1.4.0")).Medication(med).Build()
	require.NoError(t, err)
	assert.Empty(t, referenced.Contained)
	assert.True(t, strings.HasPrefix(referenced.Medication.Reference, "urn:uuid:"))
	assert.Equal(t, StateBuilt, med.State())
	assert.Equal(t, "160.000.100.000.001.05", referenced.PrescriptionID())
	assert.Equal(t, "X234567890", referenced.SubjectKVNR())
}

func Test_DispenseOperation_ReferencedMedications(t *testing.T) {
	f := newTestFactory(t, nil)

	params, err := f.ForDispenseOperation().
		Add(validDispense(f), validMedication(f)).
		Add(validDispense(f), validMedication(f)).
		Build()
	require.NoError(t, err)

	assert.Equal(t, document.KindDispenseOperation, params.Kind())
	require.Len(t, params.Parameter, 2)
	for _, p := range params.Parameter {
		assert.Equal(t, "rxDispensation", p.Name)
		require.Len(t, p.Part, 2)
		md, ok := p.Part[0].Resource.(*document.MedicationDispense)
		require.True(t, ok)
		med, ok := p.Part[1].Resource.(*document.Medication)
		require.True(t, ok)
		assert.Equal(t, "urn:uuid:"+med.ID, md.Medication.Reference)
	}
	assert.Len(t, params.Dispenses(), 2)
}

func Test_DispenseOperation_ContainedMedications(t *testing.T) {
	f := newTestFactory(t, nil)

	params, err := f.ForDispenseOperation().Version(ver("1.3.0")).
		Add(validDispense(f).Version(ver("1.3.0")), validMedication(f)).
		Build()
	require.NoError(t, err)

	require.Len(t, params.Parameter, 1)
	require.Len(t, params.Parameter[0].Part, 1)
	md := params.Dispenses()[0]
	require.Len(t, md.Contained, 1)
}

func Test_DispenseOperation_PicksUpDispenseMedication(t *testing.T) {
	f := newTestFactory(t, nil)

	params, err := f.ForDispenseOperation().
		Add(validDispense(f).Medication(validMedication(f)), nil).
		Build()
	require.NoError(t, err)
	require.Len(t, params.Parameter[0].Part, 2)
}

func Test_DispenseOperation_Consistency(t *testing.T) {
	f := newTestFactory(t, nil)

	_, err := f.ForDispenseOperation().Build()
	requireConstructionError(t, err, "dispense-required")

	other := validDispense(f).PrescriptionID(values.MustNewPrescriptionID("160.000.100.000.002.02"))
	_, err = f.ForDispenseOperation().
		Add(validDispense(f), validMedication(f)).
		Add(other, validMedication(f)).
		Build()
	requireConstructionError(t, err, "same-prescription")

	otherPatient := validDispense(f).Subject(values.MustNewKVNR("X110407071"))
	_, err = f.ForDispenseOperation().
		Add(validDispense(f), validMedication(f)).
		Add(otherPatient, validMedication(f)).
		Build()
	requireConstructionError(t, err, "same-subject")

	dangling := validDispense(f).MedicationRef(values.InternalReference(values.NewResourceID()))
	_, err = f.ForDispenseOperation().Add(dangling, nil).Build()
	requireConstructionError(t, err, "references-resolved")
}
