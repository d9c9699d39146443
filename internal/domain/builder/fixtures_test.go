package builder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/profiles"
	"github.com/reglet-dev/rxforge/internal/domain/services"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

var fixedNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

type toggles map[string]string

func (m toggles) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func testRegistry(t *testing.T) *profiles.Registry {
	t.Helper()
	mk := func(family values.ProfileFamily, def string, versions ...string) profiles.FamilyDefinition {
		d := profiles.FamilyDefinition{Family: family, Default: values.MustNewProfileVersion(def)}
		for _, v := range versions {
			d.Versions = append(d.Versions, profiles.VersionDefinition{Version: values.MustNewProfileVersion(v)})
		}
		return d
	}
	reg, err := profiles.NewRegistry(
		mk(values.FamilyWorkflow, "1.4.0", "1.2.0", "1.3.0", "1.4.0", "1.5.0"),
		mk(values.FamilyPrescription, "1.1.0", "1.0.2", "1.1.0", "1.2.0"),
		mk(values.FamilyBaseData, "1.1.0", "1.0.3", "1.1.0", "1.2.0"),
		mk(values.FamilyMedication, "1.1.0", "1.0.0", "1.1.0"),
	)
	require.NoError(t, err)
	return reg
}

func newTestFactory(t *testing.T, tg toggles, opts ...Option) *Factory {
	t.Helper()
	resolver := services.NewProfileResolver(testRegistry(t), tg)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewFactory(resolver, opts...)
}

func ver(s string) values.ProfileVersion {
	return values.MustNewProfileVersion(s)
}

func validMedication(f *Factory) *MedicationBuilder {
	return f.ForMedication().
		PZN(values.MustNewPZN("04773414"), "Ibuprofen 400 mg").
		Form("FTA", "Filmtabletten").
		Amount(20, "St")
}

func validPatient(f *Factory) *PatientBuilder {
	return f.ForPatient().
		KVNR(values.MustNewKVNR("X110407071"), false).
		Name("Ludger", "Ludger", "Königsstein").
		BirthDate(time.Date(1935, 6, 22, 0, 0, 0, 0, time.UTC))
}

func validCoverage(f *Factory) *CoverageBuilder {
	return f.ForCoverage().
		Type(document.CoverageGKV).
		Payor(values.MustNewIKNR("109500969"), "Test GKV-SV")
}

func validPractitioner(f *Factory) *PractitionerBuilder {
	return f.ForPractitioner().
		ANR(values.MustNewLANR("838382202")).
		Name("Dr.", "Topp-Glücklich", "Hans")
}

func validOrganization(f *Factory) *OrganizationBuilder {
	return f.ForOrganization().
		Name("Hausarztpraxis Dr. Topp-Glücklich").
		BSNR(values.MustNewBSNR("031234567"))
}

func validRequest(f *Factory) *MedicationRequestBuilder {
	return f.ForMedicationRequest().
		AuthoredOn(fixedNow).
		DosageText("1-0-1").
		Quantity(1)
}

func validBundle(f *Factory) *PrescriptionBundleBuilder {
	return f.ForPrescriptionBundle().
		PrescriptionID(values.MustNewPrescriptionID("160.100.000.000.001.05")).
		Patient(validPatient(f)).
		Coverage(validCoverage(f)).
		Practitioner(validPractitioner(f)).
		Organization(validOrganization(f)).
		Medication(validMedication(f)).
		MedicationRequest(validRequest(f))
}

func validDispense(f *Factory) *MedicationDispenseBuilder {
	return f.ForMedicationDispense().
		PrescriptionID(values.MustNewPrescriptionID("160.000.100.000.001.05")).
		Subject(values.MustNewKVNR("X234567890")).
		Performer(values.MustNewTelematikID("3-SMC-B-Testkarte-883110000123465")).
		WhenPrepared(fixedNow.Add(-time.Hour)).
		WhenHandedOver(fixedNow)
}

func requireConstructionError(t *testing.T, err error, invariant string) *ConstructionError {
	t.Helper()
	require.Error(t, err)
	var ce *ConstructionError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, invariant, ce.Invariant, ce.Error())
	return ce
}
