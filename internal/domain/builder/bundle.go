package builder

import (
	"time"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// Part roles of a prescription bundle.
const (
	RolePatient           = "patient"
	RoleAssigner          = "assigner"
	RoleCoverage          = "coverage"
	RolePractitioner      = "practitioner"
	RoleOrganization      = "organization"
	RoleMedication        = "medication"
	RoleMedicationRequest = "medication-request"
	RoleSupplyRequest     = "supply-request"
)

var prescriptionIDSystem = NewBehavior("prescription-id-system",
	When("< 1.1.0", document.SystemPrescriptionLegacy),
	When(">= 1.1.0", document.SystemPrescriptionID),
)

type bundleState struct {
	parts          PartSet
	prescriptionID values.PrescriptionID
}

func bundlePart[T document.Resource](s *bundleState, role string) (T, bool) {
	var zero T
	p, ok := s.parts.First(role)
	if !ok {
		return zero, false
	}
	doc, ok := p.Resource.(T)
	return doc, ok
}

func partRequired(name, role string) Invariant[bundleState] {
	return required(name, role, "the bundle needs a "+role, func(s *bundleState) bool { return s.parts.Has(role) })
}

var bundleInvariants = invariants[bundleState]{
	required("prescription-id-required", "prescriptionId", "the bundle needs a prescription id", func(s *bundleState) bool {
		return !s.prescriptionID.IsEmpty()
	}),
	partRequired("patient-required", RolePatient),
	partRequired("coverage-required", RoleCoverage),
	partRequired("practitioner-required", RolePractitioner),
	partRequired("organization-required", RoleOrganization),
	exactlyOne("request-alternative-exclusive", [2]string{RoleMedicationRequest, RoleSupplyRequest},
		"a bundle holds exactly one of a medication request and a supply request",
		func(s *bundleState) bool { return s.parts.Has(RoleMedicationRequest) },
		func(s *bundleState) bool { return s.parts.Has(RoleSupplyRequest) },
	),
	partRequired("medication-required", RoleMedication),
	{
		Name:    "references-resolved",
		Fields:  []string{"references"},
		Message: "references must point to included or declared external parts",
		Holds:   func(s *bundleState, _ values.ProfileVersion) bool { return referencesResolved(&s.parts) },
		Detail:  func(s *bundleState) string { return unresolvedDetail(&s.parts) },
	},
	{
		Name:    "beneficiary-matches-patient",
		Fields:  []string{RoleCoverage, RolePatient},
		Message: "the coverage beneficiary must be the included patient",
		Holds: func(s *bundleState, _ values.ProfileVersion) bool {
			cov, ok := bundlePart[*document.Coverage](s, RoleCoverage)
			if !ok {
				return true
			}
			patient, ok := s.parts.First(RolePatient)
			return ok && cov.Beneficiary.Reference == patient.FullURL
		},
	},
	{
		Name:    "self-payer-no-accident",
		Fields:  []string{RoleCoverage, "accident"},
		Message: "self payer coverages exclude an accident context",
		Holds: func(s *bundleState, _ values.ProfileVersion) bool {
			cov, ok := bundlePart[*document.Coverage](s, RoleCoverage)
			if !ok || cov.CoverageType() != document.CoverageSEL {
				return true
			}
			mr, ok := bundlePart[*document.MedicationRequest](s, RoleMedicationRequest)
			if !ok {
				return true
			}
			_, hasAccident := mr.AccidentKind()
			return !hasAccident
		},
	},
	{
		Name:    "workplace-accident-requires-bg",
		Fields:  []string{"accident", RoleCoverage},
		Message: "workplace accidents and occupational diseases are paid by a BG coverage",
		Holds: func(s *bundleState, _ values.ProfileVersion) bool {
			mr, ok := bundlePart[*document.MedicationRequest](s, RoleMedicationRequest)
			if !ok {
				return true
			}
			kind, _ := mr.AccidentKind()
			if kind != document.AccidentWorkplace && kind != document.AccidentOccupationalDiseases {
				return true
			}
			cov, ok := bundlePart[*document.Coverage](s, RoleCoverage)
			return ok && cov.CoverageType() == document.CoverageBG
		},
	},
	{
		Name:    "pkv-assigner-included",
		Fields:  []string{RoleAssigner},
		Message: "privately insured patients need the assigning insurer in the bundle",
		When:    values.MustNewVersionRange("< 1.1.0"),
		Holds: func(s *bundleState, _ values.ProfileVersion) bool {
			patient, ok := bundlePart[*document.Patient](s, RolePatient)
			if !ok {
				return true
			}
			if _, private, _ := patient.KVNR(); !private {
				return true
			}
			assigner, ok := s.parts.First(RoleAssigner)
			ref, hasRef := patient.Assigner()
			return ok && hasRef && ref.Reference == assigner.FullURL
		},
	},
}

// PrescriptionBundleBuilder assembles a prescription bundle from its parts.
// Parts are supplied as builders or, through Built, as finished documents.
// References between embedded parts are generated.
type PrescriptionBundleBuilder struct {
	core[bundleState]
	timestamp         time.Time
	patient           slot[*document.Patient]
	assigner          slot[*document.Organization]
	coverage          slot[*document.Coverage]
	practitioner      slot[*document.Practitioner]
	practitionerRef   values.Reference
	organization      slot[*document.Organization]
	organizationRef   values.Reference
	medication        slot[*document.Medication]
	medicationRequest slot[*document.MedicationRequest]
	supplyRequest     slot[*document.SupplyRequest]
}

func newPrescriptionBundleBuilder(f *Factory) *PrescriptionBundleBuilder {
	return &PrescriptionBundleBuilder{core: newCore(f, document.KindPrescriptionBundle, bundleInvariants, bundleSnapshot)}
}

func bundleSnapshot(s *bundleState) map[string]any {
	fields := s.parts.roleCounts()
	fields["prescriptionId"] = s.prescriptionID.String()
	fields["flowType"] = s.prescriptionID.FlowType()
	return fields
}

// Version selects the prescription profile version of the bundle only;
// parts resolve their own families.
func (b *PrescriptionBundleBuilder) Version(v values.ProfileVersion) *PrescriptionBundleBuilder {
	b.setVersion(v)
	return b
}

// ID sets the bundle id instead of a generated one.
func (b *PrescriptionBundleBuilder) ID(id values.ResourceID) *PrescriptionBundleBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant over the part role counts.
func (b *PrescriptionBundleBuilder) WithInvariant(inv FieldInvariant) *PrescriptionBundleBuilder {
	b.addInvariant(inv)
	return b
}

// PrescriptionID sets the prescription id.
func (b *PrescriptionBundleBuilder) PrescriptionID(id values.PrescriptionID) *PrescriptionBundleBuilder {
	b.set("PrescriptionID", func(s *bundleState) { s.prescriptionID = id })
	return b
}

// Timestamp sets the signature time; defaults to now.
func (b *PrescriptionBundleBuilder) Timestamp(t time.Time) *PrescriptionBundleBuilder {
	b.mutate("Timestamp")
	b.timestamp = t
	return b
}

// Patient sets the patient part.
func (b *PrescriptionBundleBuilder) Patient(src Source[*document.Patient]) *PrescriptionBundleBuilder {
	b.mutate("Patient")
	b.patient.set(src)
	return b
}

// Assigner sets the insurer organization that assigned a PKV insurance number.
func (b *PrescriptionBundleBuilder) Assigner(src Source[*document.Organization]) *PrescriptionBundleBuilder {
	b.mutate("Assigner")
	b.assigner.set(src)
	return b
}

// Coverage sets the coverage part.
func (b *PrescriptionBundleBuilder) Coverage(src Source[*document.Coverage]) *PrescriptionBundleBuilder {
	b.mutate("Coverage")
	b.coverage.set(src)
	return b
}

// Practitioner sets the prescriber part.
func (b *PrescriptionBundleBuilder) Practitioner(src Source[*document.Practitioner]) *PrescriptionBundleBuilder {
	b.mutate("Practitioner")
	b.practitioner.set(src)
	return b
}

// PractitionerRef references a prescriber that is not embedded.
func (b *PrescriptionBundleBuilder) PractitionerRef(ref values.Reference) *PrescriptionBundleBuilder {
	b.mutate("PractitionerRef")
	b.practitionerRef = ref
	return b
}

// Organization sets the practice part.
func (b *PrescriptionBundleBuilder) Organization(src Source[*document.Organization]) *PrescriptionBundleBuilder {
	b.mutate("Organization")
	b.organization.set(src)
	return b
}

// OrganizationRef references a practice that is not embedded.
func (b *PrescriptionBundleBuilder) OrganizationRef(ref values.Reference) *PrescriptionBundleBuilder {
	b.mutate("OrganizationRef")
	b.organizationRef = ref
	return b
}

// Medication sets the medication part.
func (b *PrescriptionBundleBuilder) Medication(src Source[*document.Medication]) *PrescriptionBundleBuilder {
	b.mutate("Medication")
	b.medication.set(src)
	return b
}

// MedicationRequest sets the prescription request part.
func (b *PrescriptionBundleBuilder) MedicationRequest(src Source[*document.MedicationRequest]) *PrescriptionBundleBuilder {
	b.mutate("MedicationRequest")
	b.medicationRequest.set(src)
	return b
}

// SupplyRequest sets the practice supply part.
func (b *PrescriptionBundleBuilder) SupplyRequest(src Source[*document.SupplyRequest]) *PrescriptionBundleBuilder {
	b.mutate("SupplyRequest")
	b.supplyRequest.set(src)
	return b
}

// Build builds all parts, checks the bundle invariants and returns the stamped bundle.
// A part failure is returned before any bundle invariant is evaluated.
func (b *PrescriptionBundleBuilder) Build() (*document.Bundle, error) {
	bundle, err := b.build()
	return bundle, b.observe(err)
}

func (b *PrescriptionBundleBuilder) build() (*document.Bundle, error) {
	v, err := b.begin()
	if err != nil {
		return nil, err
	}
	if err := b.assemble(); err != nil {
		return nil, err
	}
	if err := b.evaluate(v); err != nil {
		return nil, err
	}
	system, err := prescriptionIDSystem.Select(b.kind, v)
	if err != nil {
		return nil, err
	}

	composition, err := b.composition(v)
	if err != nil {
		return nil, err
	}
	compID, _ := values.ParseResourceID(composition.LogicalID())

	ts := b.timestamp
	if ts.IsZero() {
		ts = b.factory.now()
	}
	bundle := &document.Bundle{
		Identifier: document.Identifier{System: system, Value: b.state.prescriptionID.String()},
		Type:       "document",
		Timestamp:  dateTime(ts),
		Entry:      []document.BundleEntry{{FullURL: compID.URN(), Resource: composition}},
	}
	for _, p := range b.state.parts.Parts() {
		bundle.Entry = append(bundle.Entry, document.BundleEntry{FullURL: p.FullURL, Resource: p.Resource})
	}

	if err := b.complete(bundle, v); err != nil {
		return nil, err
	}
	return bundle, nil
}

// assemble builds the parts in dependency order, injecting generated
// references into sub-builders that do not set them.
func (b *PrescriptionBundleBuilder) assemble() error {
	s := &b.state
	s.parts = PartSet{}

	var assignerRef, patientRef, coverageRef, practitionerRef, medicationRef values.Reference

	if org, ok, err := b.assigner.resolve(); err != nil {
		return err
	} else if ok {
		if assignerRef, err = s.parts.Embed(RoleAssigner, org); err != nil {
			return err
		}
	}

	if pb, ok := b.patient.src.(*PatientBuilder); ok && !b.patient.done && !pb.hasAssigner() && !assignerRef.IsEmpty() {
		pb.Assigner(assignerRef)
	}
	if patient, ok, err := b.patient.resolve(); err != nil {
		return err
	} else if ok {
		if patientRef, err = s.parts.Embed(RolePatient, patient); err != nil {
			return err
		}
	}

	if cb, ok := b.coverage.src.(*CoverageBuilder); ok && !b.coverage.done && !cb.hasBeneficiary() && !patientRef.IsEmpty() {
		cb.Beneficiary(patientRef)
	}
	if cov, ok, err := b.coverage.resolve(); err != nil {
		return err
	} else if ok {
		if coverageRef, err = s.parts.Embed(RoleCoverage, cov); err != nil {
			return err
		}
	}

	if pr, ok, err := b.practitioner.resolve(); err != nil {
		return err
	} else if ok {
		if practitionerRef, err = s.parts.Embed(RolePractitioner, pr); err != nil {
			return err
		}
	} else if !b.practitionerRef.IsEmpty() {
		practitionerRef = b.practitionerRef
		s.parts.Refer(RolePractitioner, b.practitionerRef)
	}

	if org, ok, err := b.organization.resolve(); err != nil {
		return err
	} else if ok {
		if _, err = s.parts.Embed(RoleOrganization, org); err != nil {
			return err
		}
	} else if !b.organizationRef.IsEmpty() {
		s.parts.Refer(RoleOrganization, b.organizationRef)
	}

	if med, ok, err := b.medication.resolve(); err != nil {
		return err
	} else if ok {
		if medicationRef, err = s.parts.Embed(RoleMedication, med); err != nil {
			return err
		}
	}

	if mb, ok := b.medicationRequest.src.(*MedicationRequestBuilder); ok && !b.medicationRequest.done {
		mb.fill(patientRef, medicationRef, practitionerRef, coverageRef)
	}
	if mr, ok, err := b.medicationRequest.resolve(); err != nil {
		return err
	} else if ok {
		if _, err = s.parts.Embed(RoleMedicationRequest, mr); err != nil {
			return err
		}
	}

	if sb, ok := b.supplyRequest.src.(*SupplyRequestBuilder); ok && !b.supplyRequest.done {
		sb.fill(medicationRef, practitionerRef, coverageRef)
	}
	if sr, ok, err := b.supplyRequest.resolve(); err != nil {
		return err
	} else if ok {
		if _, err = s.parts.Embed(RoleSupplyRequest, sr); err != nil {
			return err
		}
	}
	return nil
}

// composition generates the table of contents of the bundle.
func (b *PrescriptionBundleBuilder) composition(v values.ProfileVersion) (*document.Composition, error) {
	s := &b.state
	ref := func(role string) document.Reference {
		if p, ok := s.parts.First(role); ok {
			return document.Reference{Reference: p.FullURL}
		}
		if r, ok := s.parts.External(role); ok {
			return document.Reference{Reference: r.String()}
		}
		return document.Reference{}
	}

	comp := &document.Composition{
		Status: "final",
		Type: document.CodeableConcept{Coding: []document.Coding{
			{System: document.SystemCompositionType, Code: "e16A"},
		}},
		Subject: ref(RolePatient),
		Date:    dateTime(b.factory.now()),
		Author:  []document.Reference{ref(RolePractitioner)},
		Title:   "elektronische Arzneimittelverordnung",
	}
	if s.parts.Has(RoleMedicationRequest) {
		comp.Section = append(comp.Section, document.CompositionSection{Entry: []document.Reference{ref(RoleMedicationRequest)}})
	}
	if s.parts.Has(RoleSupplyRequest) {
		comp.Section = append(comp.Section, document.CompositionSection{Entry: []document.Reference{ref(RoleSupplyRequest)}})
	}
	comp.Section = append(comp.Section, document.CompositionSection{Entry: []document.Reference{ref(RoleCoverage)}})

	if err := document.Stamp(comp, document.KindComposition, b.factory.newID().String(), v); err != nil {
		return nil, err
	}
	return comp, nil
}
