package builder

import (
	"strings"
	"time"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// MedicationRequest

type multiplePrescription struct {
	numerator   int
	denominator int
	start       time.Time
	end         time.Time
}

type medicationRequestState struct {
	medication   values.Reference
	subject      values.Reference
	requester    values.Reference
	insurance    values.Reference
	authoredOn   time.Time
	dosageText   string
	noDosage     bool
	quantity     int
	substitution *bool
	accidentKind string
	accidentDate time.Time
	multiple     *multiplePrescription
	note         string
}

func validAccidentKind(kind string) bool {
	switch kind {
	case document.AccidentGeneral, document.AccidentWorkplace, document.AccidentOccupationalDiseases:
		return true
	}
	return false
}

var medicationRequestInvariants = invariants[medicationRequestState]{
	required("subject-required", "subject", "a prescription needs a patient", func(s *medicationRequestState) bool {
		return !s.subject.IsEmpty()
	}),
	required("medication-required", "medication", "a prescription needs a medication", func(s *medicationRequestState) bool {
		return !s.medication.IsEmpty()
	}),
	required("requester-required", "requester", "a prescription needs a prescriber", func(s *medicationRequestState) bool {
		return !s.requester.IsEmpty()
	}),
	required("insurance-required", "insurance", "a prescription needs a coverage", func(s *medicationRequestState) bool {
		return !s.insurance.IsEmpty()
	}),
	required("authored-on-required", "authoredOn", "a prescription needs an issue date", func(s *medicationRequestState) bool {
		return !s.authoredOn.IsZero()
	}),
	exactlyOne("dosage-exclusive", [2]string{"dosageText", "noDosageInstruction"},
		"set either a dosage instruction or mark the prescription as without dosage instruction",
		func(s *medicationRequestState) bool { return s.dosageText != "" },
		func(s *medicationRequestState) bool { return s.noDosage },
	),
	required("accident-kind-valid", "accident", "unknown accident kind", func(s *medicationRequestState) bool {
		return s.accidentKind == "" || validAccidentKind(s.accidentKind)
	}),
	required("multiple-prescription-consistent", "multiplePrescription",
		"a multiple prescription needs 1 <= number <= total <= 4", func(s *medicationRequestState) bool {
			m := s.multiple
			return m == nil || (m.numerator >= 1 && m.numerator <= m.denominator && m.denominator <= 4)
		}),
	{
		Name:    "multiple-prescription-period",
		Fields:  []string{"multiplePrescription"},
		Message: "a multiple prescription needs the start of its redemption period",
		When:    values.MustNewVersionRange(">= 1.1.0"),
		Holds: func(s *medicationRequestState, _ values.ProfileVersion) bool {
			return s.multiple == nil || !s.multiple.start.IsZero()
		},
	},
}

// MedicationRequestBuilder builds a MedicationRequest.
type MedicationRequestBuilder struct {
	core[medicationRequestState]
}

func newMedicationRequestBuilder(f *Factory) *MedicationRequestBuilder {
	return &MedicationRequestBuilder{core: newCore(f, document.KindMedicationRequest, medicationRequestInvariants, medicationRequestSnapshot)}
}

func medicationRequestSnapshot(s *medicationRequestState) map[string]any {
	fields := map[string]any{
		"medication":   s.medication.String(),
		"subject":      s.subject.String(),
		"requester":    s.requester.String(),
		"insurance":    s.insurance.String(),
		"authoredOn":   date(s.authoredOn),
		"dosageText":   s.dosageText,
		"noDosage":     s.noDosage,
		"quantity":     s.quantity,
		"accident":     s.accidentKind,
		"multiple":     s.multiple != nil,
		"note":         s.note,
		"substitution": s.substitution != nil && *s.substitution,
	}
	return fields
}

// Version selects the prescription profile version for this builder only.
func (b *MedicationRequestBuilder) Version(v values.ProfileVersion) *MedicationRequestBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *MedicationRequestBuilder) ID(id values.ResourceID) *MedicationRequestBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant evaluated after the built-in ones.
func (b *MedicationRequestBuilder) WithInvariant(inv FieldInvariant) *MedicationRequestBuilder {
	b.addInvariant(inv)
	return b
}

// Medication references the prescribed medication.
func (b *MedicationRequestBuilder) Medication(ref values.Reference) *MedicationRequestBuilder {
	b.set("Medication", func(s *medicationRequestState) { s.medication = ref })
	return b
}

// Subject references the patient.
func (b *MedicationRequestBuilder) Subject(ref values.Reference) *MedicationRequestBuilder {
	b.set("Subject", func(s *medicationRequestState) { s.subject = ref })
	return b
}

// Requester references the prescribing practitioner.
func (b *MedicationRequestBuilder) Requester(ref values.Reference) *MedicationRequestBuilder {
	b.set("Requester", func(s *medicationRequestState) { s.requester = ref })
	return b
}

// Insurance references the coverage.
func (b *MedicationRequestBuilder) Insurance(ref values.Reference) *MedicationRequestBuilder {
	b.set("Insurance", func(s *medicationRequestState) { s.insurance = ref })
	return b
}

// AuthoredOn sets the issue date.
func (b *MedicationRequestBuilder) AuthoredOn(t time.Time) *MedicationRequestBuilder {
	b.set("AuthoredOn", func(s *medicationRequestState) { s.authoredOn = t })
	return b
}

// DosageText sets the dosage instruction.
func (b *MedicationRequestBuilder) DosageText(text string) *MedicationRequestBuilder {
	b.set("DosageText", func(s *medicationRequestState) { s.dosageText = strings.TrimSpace(text) })
	return b
}

// NoDosageInstruction marks the prescription as issued without a dosage instruction.
func (b *MedicationRequestBuilder) NoDosageInstruction() *MedicationRequestBuilder {
	b.set("NoDosageInstruction", func(s *medicationRequestState) { s.noDosage = true })
	return b
}

// Quantity sets the number of packages to dispense.
func (b *MedicationRequestBuilder) Quantity(packages int) *MedicationRequestBuilder {
	b.set("Quantity", func(s *medicationRequestState) { s.quantity = packages })
	return b
}

// SubstitutionAllowed states whether the pharmacy may substitute.
func (b *MedicationRequestBuilder) SubstitutionAllowed(allowed bool) *MedicationRequestBuilder {
	b.set("SubstitutionAllowed", func(s *medicationRequestState) { s.substitution = &allowed })
	return b
}

// Accident records the accident context of the prescription.
func (b *MedicationRequestBuilder) Accident(kind string, day time.Time) *MedicationRequestBuilder {
	b.set("Accident", func(s *medicationRequestState) {
		s.accidentKind = strings.TrimSpace(kind)
		s.accidentDate = day
	})
	return b
}

// MultiplePrescription marks the prescription as part number of total.
// A zero end leaves the redemption period open.
func (b *MedicationRequestBuilder) MultiplePrescription(number, total int, start, end time.Time) *MedicationRequestBuilder {
	b.set("MultiplePrescription", func(s *medicationRequestState) {
		s.multiple = &multiplePrescription{numerator: number, denominator: total, start: start, end: end}
	})
	return b
}

// Note adds a free text note.
func (b *MedicationRequestBuilder) Note(text string) *MedicationRequestBuilder {
	b.set("Note", func(s *medicationRequestState) { s.note = strings.TrimSpace(text) })
	return b
}

// Build checks the invariants and returns the stamped request.
func (b *MedicationRequestBuilder) Build() (*document.MedicationRequest, error) {
	mr, err := b.build()
	return mr, b.observe(err)
}

func (b *MedicationRequestBuilder) build() (*document.MedicationRequest, error) {
	v, err := b.check()
	if err != nil {
		return nil, err
	}

	s := &b.state
	mr := &document.MedicationRequest{
		Status:     "active",
		Intent:     "order",
		Medication: document.Reference{Reference: s.medication.String()},
		Subject:    document.Reference{Reference: s.subject.String()},
		AuthoredOn: date(s.authoredOn),
		Requester:  document.Reference{Reference: s.requester.String()},
		Insurance:  []document.Reference{{Reference: s.insurance.String()}},
	}

	dosage := document.Extension{URL: document.ExtDosageFlag, ValueBoolean: document.Bool(s.dosageText != "")}
	if s.dosageText != "" {
		mr.DosageInstruction = []document.Dosage{{Text: s.dosageText}}
	}
	mr.Extension = append(mr.Extension, dosage)

	if s.quantity > 0 {
		mr.DispenseRequest.Quantity = &document.Quantity{
			Value:  document.Decimal(float64(s.quantity)),
			System: "http://unitsofmeasure.org",
			Code:   "{Package}",
		}
	}
	if s.substitution != nil {
		mr.Substitution = &document.Substitution{AllowedBoolean: *s.substitution}
	}
	if s.note != "" {
		mr.Note = []document.Annotation{{Text: s.note}}
	}
	if s.accidentKind != "" {
		accident := document.Extension{URL: document.ExtAccident, Extension: []document.Extension{{
			URL:         "Unfallkennzeichen",
			ValueCoding: &document.Coding{System: document.SystemAccidentType, Code: s.accidentKind},
		}}}
		if !s.accidentDate.IsZero() {
			accident.Extension = append(accident.Extension, document.Extension{URL: "Unfalltag", ValueDate: date(s.accidentDate)})
		}
		mr.Extension = append(mr.Extension, accident)
	}
	if m := s.multiple; m != nil {
		ext := document.Extension{URL: document.ExtMultiplePrescription, Extension: []document.Extension{
			{URL: "Kennzeichen", ValueBoolean: document.Bool(true)},
			{URL: "Nummerierung", ValueRatio: &document.Ratio{
				Numerator:   &document.Quantity{Value: document.Decimal(float64(m.numerator))},
				Denominator: &document.Quantity{Value: document.Decimal(float64(m.denominator))},
			}},
		}}
		if !m.start.IsZero() {
			ext.Extension = append(ext.Extension, document.Extension{
				URL:         "Zeitraum",
				ValuePeriod: &document.Period{Start: date(m.start), End: date(m.end)},
			})
		}
		mr.Extension = append(mr.Extension, ext)
	}

	if err := b.complete(mr, v); err != nil {
		return nil, err
	}
	return mr, nil
}

func (b *MedicationRequestBuilder) fill(subject, medication, requester, insurance values.Reference) {
	s := &b.state
	if s.subject.IsEmpty() && !subject.IsEmpty() {
		b.Subject(subject)
	}
	if s.medication.IsEmpty() && !medication.IsEmpty() {
		b.Medication(medication)
	}
	if s.requester.IsEmpty() && !requester.IsEmpty() {
		b.Requester(requester)
	}
	if s.insurance.IsEmpty() && !insurance.IsEmpty() {
		b.Insurance(insurance)
	}
}

// SupplyRequest

type supplyRequestState struct {
	item       values.Reference
	requester  values.Reference
	coverage   values.Reference
	quantity   int
	authoredOn time.Time
}

var supplyRequestInvariants = invariants[supplyRequestState]{
	required("medication-required", "medication", "a supply request needs a medication", func(s *supplyRequestState) bool {
		return !s.item.IsEmpty()
	}),
	required("requester-required", "requester", "a supply request needs a requester", func(s *supplyRequestState) bool {
		return !s.requester.IsEmpty()
	}),
	required("coverage-required", "coverage", "a supply request needs a coverage", func(s *supplyRequestState) bool {
		return !s.coverage.IsEmpty()
	}),
}

// SupplyRequestBuilder builds a practice supply SupplyRequest.
type SupplyRequestBuilder struct {
	core[supplyRequestState]
}

func newSupplyRequestBuilder(f *Factory) *SupplyRequestBuilder {
	return &SupplyRequestBuilder{core: newCore(f, document.KindSupplyRequest, supplyRequestInvariants, supplyRequestSnapshot)}
}

func supplyRequestSnapshot(s *supplyRequestState) map[string]any {
	return map[string]any{
		"medication": s.item.String(),
		"requester":  s.requester.String(),
		"coverage":   s.coverage.String(),
		"quantity":   s.quantity,
		"authoredOn": date(s.authoredOn),
	}
}

// Version selects the prescription profile version for this builder only.
func (b *SupplyRequestBuilder) Version(v values.ProfileVersion) *SupplyRequestBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *SupplyRequestBuilder) ID(id values.ResourceID) *SupplyRequestBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant evaluated after the built-in ones.
func (b *SupplyRequestBuilder) WithInvariant(inv FieldInvariant) *SupplyRequestBuilder {
	b.addInvariant(inv)
	return b
}

// Medication references the supplied medication.
func (b *SupplyRequestBuilder) Medication(ref values.Reference) *SupplyRequestBuilder {
	b.set("Medication", func(s *supplyRequestState) { s.item = ref })
	return b
}

// Requester references the ordering practitioner.
func (b *SupplyRequestBuilder) Requester(ref values.Reference) *SupplyRequestBuilder {
	b.set("Requester", func(s *supplyRequestState) { s.requester = ref })
	return b
}

// Coverage references the paying coverage.
func (b *SupplyRequestBuilder) Coverage(ref values.Reference) *SupplyRequestBuilder {
	b.set("Coverage", func(s *supplyRequestState) { s.coverage = ref })
	return b
}

// Quantity sets the number of packages.
func (b *SupplyRequestBuilder) Quantity(packages int) *SupplyRequestBuilder {
	b.set("Quantity", func(s *supplyRequestState) { s.quantity = packages })
	return b
}

// AuthoredOn sets the order date.
func (b *SupplyRequestBuilder) AuthoredOn(t time.Time) *SupplyRequestBuilder {
	b.set("AuthoredOn", func(s *supplyRequestState) { s.authoredOn = t })
	return b
}

// Build checks the invariants and returns the stamped supply request.
func (b *SupplyRequestBuilder) Build() (*document.SupplyRequest, error) {
	sr, err := b.build()
	return sr, b.observe(err)
}

func (b *SupplyRequestBuilder) build() (*document.SupplyRequest, error) {
	v, err := b.check()
	if err != nil {
		return nil, err
	}

	s := &b.state
	quantity := s.quantity
	if quantity <= 0 {
		quantity = 1
	}
	sr := &document.SupplyRequest{
		Extension: []document.Extension{{
			URL:            document.ExtPracticeSupplyPayor,
			ValueReference: &document.Reference{Reference: s.coverage.String()},
		}},
		AuthoredOn: date(s.authoredOn),
		Quantity:   document.Quantity{Value: document.Decimal(float64(quantity)), Code: "{Package}"},
		Item:       document.Reference{Reference: s.item.String()},
		Requester:  document.Reference{Reference: s.requester.String()},
	}

	if err := b.complete(sr, v); err != nil {
		return nil, err
	}
	return sr, nil
}

func (b *SupplyRequestBuilder) fill(medication, requester, coverage values.Reference) {
	s := &b.state
	if s.item.IsEmpty() && !medication.IsEmpty() {
		b.Medication(medication)
	}
	if s.requester.IsEmpty() && !requester.IsEmpty() {
		b.Requester(requester)
	}
	if s.coverage.IsEmpty() && !coverage.IsEmpty() {
		b.Coverage(coverage)
	}
}
