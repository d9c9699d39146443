package builder

import (
	"strings"
	"time"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

func humanName(family string, given []string) []document.HumanName {
	if family == "" {
		return nil
	}
	return []document.HumanName{{Use: "official", Family: family, Given: append([]string(nil), given...)}}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Patient

type patientState struct {
	kvnr      values.KVNR
	private   bool
	family    string
	given     []string
	birthDate time.Time
	assigner  values.Reference
	now       func() time.Time
}

var patientInvariants = invariants[patientState]{
	required("kvnr-required", "kvnr", "a patient needs a KVNR", func(s *patientState) bool { return !s.kvnr.IsEmpty() }),
	required("name-required", "name", "a patient needs a family name", func(s *patientState) bool { return s.family != "" }),
	required("birth-date-required", "birthDate", "a patient needs a birth date", func(s *patientState) bool { return !s.birthDate.IsZero() }),
	required("birth-date-not-in-future", "birthDate", "the birth date lies in the future", func(s *patientState) bool {
		return !s.birthDate.After(s.now())
	}),
	{
		Name:    "pkv-assigner-required",
		Fields:  []string{"assigner"},
		Message: "privately insured patients need the assigning insurer",
		When:    values.MustNewVersionRange("< 1.1.0"),
		Holds: func(s *patientState, _ values.ProfileVersion) bool {
			return !s.private || !s.assigner.IsEmpty()
		},
	},
}

// PatientBuilder builds a Patient.
type PatientBuilder struct {
	core[patientState]
}

func newPatientBuilder(f *Factory) *PatientBuilder {
	b := &PatientBuilder{core: newCore(f, document.KindPatient, patientInvariants, patientSnapshot)}
	b.state.now = f.now
	return b
}

func patientSnapshot(s *patientState) map[string]any {
	return map[string]any{
		"kvnr":      s.kvnr.String(),
		"private":   s.private,
		"family":    s.family,
		"given":     len(s.given),
		"birthDate": date(s.birthDate),
		"assigner":  s.assigner.String(),
	}
}

// Version selects the base data profile version for this builder only.
func (b *PatientBuilder) Version(v values.ProfileVersion) *PatientBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *PatientBuilder) ID(id values.ResourceID) *PatientBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant evaluated after the built-in ones.
func (b *PatientBuilder) WithInvariant(inv FieldInvariant) *PatientBuilder {
	b.addInvariant(inv)
	return b
}

// KVNR sets the insurance number; private marks a PKV insurant.
func (b *PatientBuilder) KVNR(kvnr values.KVNR, private bool) *PatientBuilder {
	b.set("KVNR", func(s *patientState) {
		s.kvnr = kvnr
		s.private = private
	})
	return b
}

// Name sets the official name.
func (b *PatientBuilder) Name(family string, given ...string) *PatientBuilder {
	b.set("Name", func(s *patientState) {
		s.family = strings.TrimSpace(family)
		s.given = trimAll(given)
	})
	return b
}

// BirthDate sets the birth date.
func (b *PatientBuilder) BirthDate(t time.Time) *PatientBuilder {
	b.set("BirthDate", func(s *patientState) { s.birthDate = t })
	return b
}

// Assigner references the insurer that assigned a PKV insurance number.
func (b *PatientBuilder) Assigner(ref values.Reference) *PatientBuilder {
	b.set("Assigner", func(s *patientState) { s.assigner = ref })
	return b
}

func (b *PatientBuilder) hasAssigner() bool {
	return !b.state.assigner.IsEmpty()
}

// Build checks the invariants and returns the stamped patient.
func (b *PatientBuilder) Build() (*document.Patient, error) {
	p, err := b.build()
	return p, b.observe(err)
}

func (b *PatientBuilder) build() (*document.Patient, error) {
	v, err := b.check()
	if err != nil {
		return nil, err
	}

	s := &b.state
	id := document.Identifier{System: document.SystemKVNRGKV, Value: s.kvnr.String()}
	if s.private {
		id.System = document.SystemKVNRPKV
	}
	if !s.assigner.IsEmpty() {
		id.Assigner = &document.Reference{Reference: s.assigner.String()}
	}
	p := &document.Patient{
		Identifier: []document.Identifier{id},
		Name:       humanName(s.family, s.given),
		BirthDate:  date(s.birthDate),
	}

	if err := b.complete(p, v); err != nil {
		return nil, err
	}
	return p, nil
}

// Coverage

var coverageIKNRSystem = NewBehavior("iknr-system",
	When("< 1.1.0", document.SystemIKNRLegacy),
	When(">= 1.1.0", document.SystemIKNR),
)

type coverageState struct {
	coverageType  document.CoverageType
	iknr          values.IKNR
	payorName     string
	alternativeIK values.IKNR
	beneficiary   values.Reference
	personGroup   string
}

var coverageInvariants = invariants[coverageState]{
	required("type-required", "type", "a coverage needs a known insurance type", func(s *coverageState) bool {
		return s.coverageType.Valid()
	}),
	required("iknr-required", "iknr", "a coverage needs the payor IKNR", func(s *coverageState) bool { return !s.iknr.IsEmpty() }),
	required("payor-name-required", "payorName", "a coverage needs the payor name", func(s *coverageState) bool { return s.payorName != "" }),
	required("beneficiary-required", "beneficiary", "a coverage needs a beneficiary", func(s *coverageState) bool {
		return !s.beneficiary.IsEmpty()
	}),
	{
		Name:    "alternative-iknr-required",
		Fields:  []string{"alternativeIknr"},
		Message: "accident insurance coverages need an alternative IKNR",
		When:    values.MustNewVersionRange(">= 1.1.0"),
		Holds: func(s *coverageState, _ values.ProfileVersion) bool {
			if s.coverageType != document.CoverageBG && s.coverageType != document.CoverageUK {
				return true
			}
			return !s.alternativeIK.IsEmpty()
		},
	},
}

// CoverageBuilder builds a Coverage.
type CoverageBuilder struct {
	core[coverageState]
}

func newCoverageBuilder(f *Factory) *CoverageBuilder {
	return &CoverageBuilder{core: newCore(f, document.KindCoverage, coverageInvariants, coverageSnapshot)}
}

func coverageSnapshot(s *coverageState) map[string]any {
	return map[string]any{
		"type":            string(s.coverageType),
		"iknr":            s.iknr.String(),
		"payorName":       s.payorName,
		"alternativeIknr": s.alternativeIK.String(),
		"beneficiary":     s.beneficiary.String(),
		"personGroup":     s.personGroup,
	}
}

// Version selects the base data profile version for this builder only.
func (b *CoverageBuilder) Version(v values.ProfileVersion) *CoverageBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *CoverageBuilder) ID(id values.ResourceID) *CoverageBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant evaluated after the built-in ones.
func (b *CoverageBuilder) WithInvariant(inv FieldInvariant) *CoverageBuilder {
	b.addInvariant(inv)
	return b
}

// Type sets the insurance type.
func (b *CoverageBuilder) Type(t document.CoverageType) *CoverageBuilder {
	b.set("Type", func(s *coverageState) { s.coverageType = t })
	return b
}

// Payor sets the paying insurer.
func (b *CoverageBuilder) Payor(iknr values.IKNR, name string) *CoverageBuilder {
	b.set("Payor", func(s *coverageState) {
		s.iknr = iknr
		s.payorName = strings.TrimSpace(name)
	})
	return b
}

// AlternativeIKNR sets the IKNR of the accident insurer.
func (b *CoverageBuilder) AlternativeIKNR(iknr values.IKNR) *CoverageBuilder {
	b.set("AlternativeIKNR", func(s *coverageState) { s.alternativeIK = iknr })
	return b
}

// Beneficiary references the insured patient.
func (b *CoverageBuilder) Beneficiary(ref values.Reference) *CoverageBuilder {
	b.set("Beneficiary", func(s *coverageState) { s.beneficiary = ref })
	return b
}

// PersonGroup sets the special person group code (besondere Personengruppe).
func (b *CoverageBuilder) PersonGroup(code string) *CoverageBuilder {
	b.set("PersonGroup", func(s *coverageState) { s.personGroup = strings.TrimSpace(code) })
	return b
}

func (b *CoverageBuilder) hasBeneficiary() bool {
	return !b.state.beneficiary.IsEmpty()
}

// Build checks the invariants and returns the stamped coverage.
func (b *CoverageBuilder) Build() (*document.Coverage, error) {
	c, err := b.build()
	return c, b.observe(err)
}

func (b *CoverageBuilder) build() (*document.Coverage, error) {
	v, err := b.check()
	if err != nil {
		return nil, err
	}
	system, err := coverageIKNRSystem.Select(b.kind, v)
	if err != nil {
		return nil, err
	}

	s := &b.state
	payor := document.Reference{
		Identifier: &document.Identifier{System: system, Value: s.iknr.String()},
		Display:    s.payorName,
	}
	c := &document.Coverage{
		Status: "active",
		Type: document.CodeableConcept{Coding: []document.Coding{
			{System: document.SystemCoverageType, Code: string(s.coverageType)},
		}},
		Beneficiary: document.Reference{Reference: s.beneficiary.String()},
		Payor:       []document.Reference{payor},
	}
	if s.personGroup != "" {
		c.Extension = append(c.Extension, document.Extension{URL: document.ExtCoverageKind, ValueCode: s.personGroup})
	}
	if !s.alternativeIK.IsEmpty() {
		c.Extension = append(c.Extension, document.Extension{
			URL:             document.ExtAlternativeIK,
			ValueIdentifier: &document.Identifier{System: system, Value: s.alternativeIK.String()},
		})
	}

	if err := b.complete(c, v); err != nil {
		return nil, err
	}
	return c, nil
}

// Practitioner

type practitionerState struct {
	anr    values.LANR
	zanr   values.LANR
	family string
	given  []string
	prefix string
}

var practitionerInvariants = invariants[practitionerState]{
	required("name-required", "name", "a practitioner needs a family name", func(s *practitionerState) bool { return s.family != "" }),
	exactlyOne("anr-or-zanr-exclusive", [2]string{"anr", "zanr"}, "a practitioner needs exactly one of ANR and ZANR",
		func(s *practitionerState) bool { return !s.anr.IsEmpty() },
		func(s *practitionerState) bool { return !s.zanr.IsEmpty() },
	),
}

// PractitionerBuilder builds a Practitioner.
type PractitionerBuilder struct {
	core[practitionerState]
}

func newPractitionerBuilder(f *Factory) *PractitionerBuilder {
	return &PractitionerBuilder{core: newCore(f, document.KindPractitioner, practitionerInvariants, practitionerSnapshot)}
}

func practitionerSnapshot(s *practitionerState) map[string]any {
	return map[string]any{
		"anr":    s.anr.String(),
		"zanr":   s.zanr.String(),
		"family": s.family,
		"prefix": s.prefix,
	}
}

// Version selects the base data profile version for this builder only.
func (b *PractitionerBuilder) Version(v values.ProfileVersion) *PractitionerBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *PractitionerBuilder) ID(id values.ResourceID) *PractitionerBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant evaluated after the built-in ones.
func (b *PractitionerBuilder) WithInvariant(inv FieldInvariant) *PractitionerBuilder {
	b.addInvariant(inv)
	return b
}

// ANR sets the physician number.
func (b *PractitionerBuilder) ANR(anr values.LANR) *PractitionerBuilder {
	b.set("ANR", func(s *practitionerState) { s.anr = anr })
	return b
}

// ZANR sets the dentist number.
func (b *PractitionerBuilder) ZANR(zanr values.LANR) *PractitionerBuilder {
	b.set("ZANR", func(s *practitionerState) { s.zanr = zanr })
	return b
}

// Name sets the official name and an optional academic prefix.
func (b *PractitionerBuilder) Name(prefix, family string, given ...string) *PractitionerBuilder {
	b.set("Name", func(s *practitionerState) {
		s.prefix = strings.TrimSpace(prefix)
		s.family = strings.TrimSpace(family)
		s.given = trimAll(given)
	})
	return b
}

// Build checks the invariants and returns the stamped practitioner.
func (b *PractitionerBuilder) Build() (*document.Practitioner, error) {
	p, err := b.build()
	return p, b.observe(err)
}

func (b *PractitionerBuilder) build() (*document.Practitioner, error) {
	v, err := b.check()
	if err != nil {
		return nil, err
	}

	s := &b.state
	id := document.Identifier{System: document.SystemANR, Value: s.anr.String()}
	if !s.zanr.IsEmpty() {
		id = document.Identifier{System: document.SystemZANR, Value: s.zanr.String()}
	}
	names := humanName(s.family, s.given)
	if s.prefix != "" {
		names[0].Prefix = []string{s.prefix}
	}
	p := &document.Practitioner{Identifier: []document.Identifier{id}, Name: names}

	if err := b.complete(p, v); err != nil {
		return nil, err
	}
	return p, nil
}

// Organization

type organizationState struct {
	name        string
	bsnr        values.BSNR
	telematikID values.TelematikID
	iknr        values.IKNR
}

var organizationInvariants = invariants[organizationState]{
	required("name-required", "name", "an organization needs a name", func(s *organizationState) bool { return s.name != "" }),
	{
		Name:    "identifier-required",
		Fields:  []string{"bsnr", "telematikId", "iknr"},
		Message: "an organization needs a BSNR, telematik id or IKNR",
		Holds: func(s *organizationState, _ values.ProfileVersion) bool {
			return !s.bsnr.IsEmpty() || !s.telematikID.IsEmpty() || !s.iknr.IsEmpty()
		},
	},
}

// OrganizationBuilder builds an Organization.
type OrganizationBuilder struct {
	core[organizationState]
}

func newOrganizationBuilder(f *Factory) *OrganizationBuilder {
	return &OrganizationBuilder{core: newCore(f, document.KindOrganization, organizationInvariants, organizationSnapshot)}
}

func organizationSnapshot(s *organizationState) map[string]any {
	return map[string]any{
		"name":        s.name,
		"bsnr":        s.bsnr.String(),
		"telematikId": s.telematikID.String(),
		"iknr":        s.iknr.String(),
	}
}

// Version selects the base data profile version for this builder only.
func (b *OrganizationBuilder) Version(v values.ProfileVersion) *OrganizationBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *OrganizationBuilder) ID(id values.ResourceID) *OrganizationBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant evaluated after the built-in ones.
func (b *OrganizationBuilder) WithInvariant(inv FieldInvariant) *OrganizationBuilder {
	b.addInvariant(inv)
	return b
}

// Name sets the organization name.
func (b *OrganizationBuilder) Name(name string) *OrganizationBuilder {
	b.set("Name", func(s *organizationState) { s.name = strings.TrimSpace(name) })
	return b
}

// BSNR sets the practice site number.
func (b *OrganizationBuilder) BSNR(bsnr values.BSNR) *OrganizationBuilder {
	b.set("BSNR", func(s *organizationState) { s.bsnr = bsnr })
	return b
}

// TelematikID sets the telematik id.
func (b *OrganizationBuilder) TelematikID(id values.TelematikID) *OrganizationBuilder {
	b.set("TelematikID", func(s *organizationState) { s.telematikID = id })
	return b
}

// IKNR identifies an insurer organization.
func (b *OrganizationBuilder) IKNR(iknr values.IKNR) *OrganizationBuilder {
	b.set("IKNR", func(s *organizationState) { s.iknr = iknr })
	return b
}

// Build checks the invariants and returns the stamped organization.
func (b *OrganizationBuilder) Build() (*document.Organization, error) {
	o, err := b.build()
	return o, b.observe(err)
}

func (b *OrganizationBuilder) build() (*document.Organization, error) {
	v, err := b.check()
	if err != nil {
		return nil, err
	}

	s := &b.state
	o := &document.Organization{Name: s.name}
	if !s.bsnr.IsEmpty() {
		o.Identifier = append(o.Identifier, document.Identifier{System: document.SystemBSNR, Value: s.bsnr.String()})
	}
	if !s.telematikID.IsEmpty() {
		o.Identifier = append(o.Identifier, document.Identifier{System: document.SystemTelematikID, Value: s.telematikID.String()})
	}
	if !s.iknr.IsEmpty() {
		o.Identifier = append(o.Identifier, document.Identifier{System: document.SystemIKNR, Value: s.iknr.String()})
	}

	if err := b.complete(o, v); err != nil {
		return nil, err
	}
	return o, nil
}
