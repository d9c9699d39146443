package services

import (
	"fmt"
	"time"

	"github.com/reglet-dev/rxforge/internal/application/dto"
	"github.com/reglet-dev/rxforge/internal/domain/builder"
	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// SampleService builds complete example documents.
type SampleService struct {
	factory *builder.Factory
	now     func() time.Time
}

// NewSampleService creates a sample service.
func NewSampleService(factory *builder.Factory) *SampleService {
	return &SampleService{factory: factory, now: time.Now}
}

type pinnedVersions map[values.ProfileFamily]values.ProfileVersion

func parsePins(raw map[string]string) (pinnedVersions, error) {
	pins := make(pinnedVersions, len(raw))
	for family, version := range raw {
		f, err := values.NewProfileFamily(family)
		if err != nil {
			return nil, err
		}
		v, err := values.NewProfileVersion(version)
		if err != nil {
			return nil, fmt.Errorf("version for %s: %w", family, err)
		}
		pins[f] = v
	}
	return pins, nil
}

// BuildPrescription builds a prescription bundle for a statutory insured
// patient with either a medication request or a practice supply request.
func (s *SampleService) BuildPrescription(req dto.SampleRequest) (*document.Bundle, error) {
	pins, err := parsePins(req.Versions)
	if err != nil {
		return nil, err
	}
	f := s.factory
	today := s.now()

	patient := f.ForPatient().
		KVNR(values.MustNewKVNR("X110407071"), false).
		Name("Königsstein", "Ludger").
		BirthDate(time.Date(1935, 6, 22, 0, 0, 0, 0, time.UTC))
	coverage := f.ForCoverage().
		Type(document.CoverageGKV).
		Payor(values.MustNewIKNR("109500969"), "Test GKV-SV")
	practitioner := f.ForPractitioner().
		ANR(values.MustNewLANR("838382202")).
		Name("Dr. med.", "Topp-Glücklich", "Hans")
	organization := f.ForOrganization().
		Name("Hausarztpraxis Dr. Topp-Glücklich").
		BSNR(values.MustNewBSNR("031234567"))
	medication := f.ForMedication().
		PZN(values.MustNewPZN("04773414"), "Ibuprofen AL 400 mg Filmtabletten").
		Form("FTA", "Filmtabletten").
		Amount(20, "St").
		PackagingSize("20")
	bundle := f.ForPrescriptionBundle().
		PrescriptionID(values.MustNewPrescriptionID("160.100.000.000.001.05")).
		Timestamp(today)

	if v, ok := pins[values.FamilyBaseData]; ok {
		patient.Version(v)
		coverage.Version(v)
		practitioner.Version(v)
		organization.Version(v)
	}
	if v, ok := pins[values.FamilyMedication]; ok {
		medication.Version(v)
	}
	if v, ok := pins[values.FamilyPrescription]; ok {
		bundle.Version(v)
	}

	bundle.Patient(patient).
		Coverage(coverage).
		Practitioner(practitioner).
		Organization(organization).
		Medication(medication)

	if req.SupplyRequest {
		supply := f.ForSupplyRequest().Quantity(1).AuthoredOn(today)
		if v, ok := pins[values.FamilyPrescription]; ok {
			supply.Version(v)
		}
		bundle.SupplyRequest(supply)
	} else {
		request := f.ForMedicationRequest().
			AuthoredOn(today).
			DosageText("1-0-1").
			Quantity(1).
			SubstitutionAllowed(true)
		if v, ok := pins[values.FamilyPrescription]; ok {
			request.Version(v)
		}
		bundle.MedicationRequest(request)
	}

	return bundle.Build()
}
