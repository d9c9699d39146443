package builder

import (
	"strings"
	"time"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

type embedding int

const (
	embedContained embedding = iota
	embedReferenced
)

var medicationEmbedding = NewBehavior("medication-embedding",
	When("< 1.4.0", embedContained),
	When(">= 1.4.0", embedReferenced),
)

type dispenseState struct {
	prescriptionID values.PrescriptionID
	subject        values.KVNR
	performer      values.TelematikID
	whenPrepared   time.Time
	whenHandedOver time.Time
	medication     bool
	medicationRef  values.Reference
	dosage         string
	note           string
}

var dispenseInvariants = invariants[dispenseState]{
	required("prescription-id-required", "prescriptionId", "a dispense belongs to a prescription", func(s *dispenseState) bool {
		return !s.prescriptionID.IsEmpty()
	}),
	required("subject-required", "subject", "a dispense needs the KVNR of the patient", func(s *dispenseState) bool { return !s.subject.IsEmpty() }),
	required("performer-required", "performer", "a dispense needs the telematik id of the pharmacy", func(s *dispenseState) bool {
		return !s.performer.IsEmpty()
	}),
	required("handed-over-required", "whenHandedOver", "a dispense needs the hand-over time", func(s *dispenseState) bool {
		return !s.whenHandedOver.IsZero()
	}),
	required("prepared-before-handed-over", "whenPrepared", "a medication cannot be handed over before it was prepared", func(s *dispenseState) bool {
		return s.whenPrepared.IsZero() || !s.whenPrepared.After(s.whenHandedOver)
	}),
	required("medication-required", "medication", "a dispense needs the dispensed medication", func(s *dispenseState) bool {
		return s.medication || !s.medicationRef.IsEmpty()
	}),
}

// MedicationDispenseBuilder builds the record of a medication hand-over.
// Depending on the workflow version the medication is contained in the
// dispense or referenced as a separate part of the dispense operation.
type MedicationDispenseBuilder struct {
	core[dispenseState]
	medication slot[*document.Medication]
}

func newMedicationDispenseBuilder(f *Factory) *MedicationDispenseBuilder {
	return &MedicationDispenseBuilder{core: newCore(f, document.KindMedicationDispense, dispenseInvariants, dispenseSnapshot)}
}

func dispenseSnapshot(s *dispenseState) map[string]any {
	return map[string]any{
		"prescriptionId": s.prescriptionID.String(),
		"subject":        s.subject.String(),
		"performer":      s.performer.String(),
		"whenPrepared":   dateTime(s.whenPrepared),
		"whenHandedOver": dateTime(s.whenHandedOver),
		"medication":     s.medication || !s.medicationRef.IsEmpty(),
		"dosage":         s.dosage,
	}
}

// Version selects the workflow profile version for this builder only.
func (b *MedicationDispenseBuilder) Version(v values.ProfileVersion) *MedicationDispenseBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *MedicationDispenseBuilder) ID(id values.ResourceID) *MedicationDispenseBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant evaluated after the built-in ones.
func (b *MedicationDispenseBuilder) WithInvariant(inv FieldInvariant) *MedicationDispenseBuilder {
	b.addInvariant(inv)
	return b
}

// PrescriptionID sets the dispensed prescription.
func (b *MedicationDispenseBuilder) PrescriptionID(id values.PrescriptionID) *MedicationDispenseBuilder {
	b.set("PrescriptionID", func(s *dispenseState) { s.prescriptionID = id })
	return b
}

// Subject sets the KVNR of the patient.
func (b *MedicationDispenseBuilder) Subject(kvnr values.KVNR) *MedicationDispenseBuilder {
	b.set("Subject", func(s *dispenseState) { s.subject = kvnr })
	return b
}

// Performer sets the dispensing pharmacy.
func (b *MedicationDispenseBuilder) Performer(id values.TelematikID) *MedicationDispenseBuilder {
	b.set("Performer", func(s *dispenseState) { s.performer = id })
	return b
}

// WhenPrepared sets the preparation time.
func (b *MedicationDispenseBuilder) WhenPrepared(t time.Time) *MedicationDispenseBuilder {
	b.set("WhenPrepared", func(s *dispenseState) { s.whenPrepared = t })
	return b
}

// WhenHandedOver sets the hand-over time.
func (b *MedicationDispenseBuilder) WhenHandedOver(t time.Time) *MedicationDispenseBuilder {
	b.set("WhenHandedOver", func(s *dispenseState) { s.whenHandedOver = t })
	return b
}

// Medication sets the dispensed medication.
func (b *MedicationDispenseBuilder) Medication(src Source[*document.Medication]) *MedicationDispenseBuilder {
	b.set("Medication", func(s *dispenseState) { s.medication = src != nil })
	b.medication.set(src)
	return b
}

// MedicationRef references the dispensed medication without embedding it.
func (b *MedicationDispenseBuilder) MedicationRef(ref values.Reference) *MedicationDispenseBuilder {
	b.set("MedicationRef", func(s *dispenseState) { s.medicationRef = ref })
	return b
}

// DosageText sets the dosage printed on the package.
func (b *MedicationDispenseBuilder) DosageText(text string) *MedicationDispenseBuilder {
	b.set("DosageText", func(s *dispenseState) { s.dosage = strings.TrimSpace(text) })
	return b
}

// Note adds a free text note.
func (b *MedicationDispenseBuilder) Note(text string) *MedicationDispenseBuilder {
	b.set("Note", func(s *dispenseState) { s.note = strings.TrimSpace(text) })
	return b
}

func (b *MedicationDispenseBuilder) hasMedication() bool {
	return b.state.medication || !b.state.medicationRef.IsEmpty()
}

// Build checks the invariants and returns the stamped dispense.
func (b *MedicationDispenseBuilder) Build() (*document.MedicationDispense, error) {
	md, err := b.build()
	return md, b.observe(err)
}

func (b *MedicationDispenseBuilder) build() (*document.MedicationDispense, error) {
	v, err := b.check()
	if err != nil {
		return nil, err
	}
	style, err := medicationEmbedding.Select(b.kind, v)
	if err != nil {
		return nil, err
	}

	s := &b.state
	md := &document.MedicationDispense{
		Identifier: []document.Identifier{{System: document.SystemPrescriptionID, Value: s.prescriptionID.String()}},
		Status:     "completed",
		Subject:    document.Reference{Identifier: &document.Identifier{System: document.SystemKVNRGKV, Value: s.subject.String()}},
		Performer: []document.DispensePerformer{{
			Actor: document.Reference{Identifier: &document.Identifier{System: document.SystemTelematikID, Value: s.performer.String()}},
		}},
		WhenPrepared:   dateTime(s.whenPrepared),
		WhenHandedOver: dateTime(s.whenHandedOver),
	}
	if s.dosage != "" {
		md.DosageInstruction = []document.Dosage{{Text: s.dosage}}
	}
	if s.note != "" {
		md.Note = []document.Annotation{{Text: s.note}}
	}

	med, ok, err := b.medication.resolve()
	if err != nil {
		return nil, err
	}
	switch {
	case ok && style == embedContained:
		contained := *med
		md.Contained = []*document.Medication{&contained}
		md.Medication = document.Reference{Reference: "#" + contained.ID}
	case ok:
		id, err := values.ParseResourceID(med.LogicalID())
		if err != nil {
			return nil, &ConstructionError{
				Kind: b.kind, Version: v, Invariant: medicationEmbedding.Name(), Fields: []string{"medication"},
				Message: "a referenced medication needs a uuid id",
			}
		}
		md.Medication = document.Reference{Reference: id.URN()}
	default:
		md.Medication = document.Reference{Reference: s.medicationRef.String()}
	}

	if err := b.complete(md, v); err != nil {
		return nil, err
	}
	return md, nil
}

// Part roles of a dispense operation.
const (
	RoleDispense = "medicationDispense"
)

type dispensation struct {
	dispense   slot[*document.MedicationDispense]
	medication slot[*document.Medication]
}

type operationState struct {
	parts PartSet
}

func dispenses(s *operationState) []*document.MedicationDispense {
	var out []*document.MedicationDispense
	for _, p := range s.parts.All(RoleDispense) {
		if md, ok := p.Resource.(*document.MedicationDispense); ok {
			out = append(out, md)
		}
	}
	return out
}

func allEqual(list []*document.MedicationDispense, key func(*document.MedicationDispense) string) bool {
	for _, md := range list {
		if key(md) != key(list[0]) {
			return false
		}
	}
	return true
}

var operationInvariants = invariants[operationState]{
	required("dispense-required", RoleDispense, "a dispense operation needs at least one dispense", func(s *operationState) bool {
		return s.parts.Has(RoleDispense)
	}),
	required("same-prescription", "prescriptionId", "all dispenses must belong to the same prescription", func(s *operationState) bool {
		return allEqual(dispenses(s), (*document.MedicationDispense).PrescriptionID)
	}),
	required("same-subject", "subject", "all dispenses must be handed to the same patient", func(s *operationState) bool {
		return allEqual(dispenses(s), (*document.MedicationDispense).SubjectKVNR)
	}),
	{
		Name:    "references-resolved",
		Fields:  []string{"references"},
		Message: "dispensed medications must be parts of the operation",
		Holds:   func(s *operationState, _ values.ProfileVersion) bool { return referencesResolved(&s.parts) },
		Detail:  func(s *operationState) string { return unresolvedDetail(&s.parts) },
	},
}

// DispenseOperationBuilder builds the input of the close operation: one or
// more dispenses with their medications.
type DispenseOperationBuilder struct {
	core[operationState]
	items  []*dispensation
	groups [][]Part
}

func newDispenseOperationBuilder(f *Factory) *DispenseOperationBuilder {
	return &DispenseOperationBuilder{core: newCore(f, document.KindDispenseOperation, operationInvariants, operationSnapshot)}
}

func operationSnapshot(s *operationState) map[string]any {
	fields := s.parts.roleCounts()
	var ids []any
	for _, md := range dispenses(s) {
		ids = append(ids, md.PrescriptionID())
	}
	fields["prescriptionIds"] = ids
	return fields
}

// Version selects the workflow profile version for this builder only.
func (b *DispenseOperationBuilder) Version(v values.ProfileVersion) *DispenseOperationBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *DispenseOperationBuilder) ID(id values.ResourceID) *DispenseOperationBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant over the part role counts.
func (b *DispenseOperationBuilder) WithInvariant(inv FieldInvariant) *DispenseOperationBuilder {
	b.addInvariant(inv)
	return b
}

// Add appends a dispense and, optionally, its medication. A medication given
// here is handed to a dispense builder that has none.
func (b *DispenseOperationBuilder) Add(dispense Source[*document.MedicationDispense], medication Source[*document.Medication]) *DispenseOperationBuilder {
	b.mutate("Add")
	item := &dispensation{}
	item.dispense.set(dispense)
	if medication != nil {
		item.medication.set(medication)
	}
	b.items = append(b.items, item)
	return b
}

// Build builds all dispenses, checks the operation invariants and returns
// the stamped parameters.
func (b *DispenseOperationBuilder) Build() (*document.Parameters, error) {
	p, err := b.build()
	return p, b.observe(err)
}

func (b *DispenseOperationBuilder) build() (*document.Parameters, error) {
	v, err := b.begin()
	if err != nil {
		return nil, err
	}
	style, err := medicationEmbedding.Select(b.kind, v)
	if err != nil {
		return nil, err
	}
	if err := b.assemble(style); err != nil {
		return nil, err
	}
	if err := b.evaluate(v); err != nil {
		return nil, err
	}

	params := &document.Parameters{}
	for _, group := range b.groups {
		param := document.Parameter{Name: "rxDispensation"}
		for _, p := range group {
			param.Part = append(param.Part, document.ParameterPart{Name: p.Role, Resource: p.Resource})
		}
		params.Parameter = append(params.Parameter, param)
	}

	if err := b.complete(params, v); err != nil {
		return nil, err
	}
	return params, nil
}

func (b *DispenseOperationBuilder) assemble(style embedding) error {
	s := &b.state
	s.parts = PartSet{}
	b.groups = nil

	for _, item := range b.items {
		med, hasMed, err := item.medication.resolve()
		if err != nil {
			return err
		}
		var medRef values.Reference
		if hasMed && style == embedReferenced {
			id, err := values.ParseResourceID(med.LogicalID())
			if err != nil {
				return err
			}
			medRef = values.InternalReference(id)
		}

		if db, ok := item.dispense.src.(*MedicationDispenseBuilder); ok && !item.dispense.done && !db.hasMedication() && hasMed {
			if style == embedContained {
				db.Medication(Built(med))
			} else {
				db.MedicationRef(medRef)
			}
		}
		md, ok, err := item.dispense.resolve()
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		ref, err := s.parts.Embed(RoleDispense, md)
		if err != nil {
			return err
		}
		group := []Part{{Role: RoleDispense, Resource: md, FullURL: ref.String()}}
		if db, ok := item.dispense.src.(*MedicationDispenseBuilder); ok && medRef.IsEmpty() && style == embedReferenced && db.medication.done {
			med = db.medication.doc
			if id, err := values.ParseResourceID(med.LogicalID()); err == nil {
				medRef = values.InternalReference(id)
			}
		}
		if !medRef.IsEmpty() {
			if _, err := s.parts.Embed(RoleMedication, med); err != nil {
				return err
			}
			group = append(group, Part{Role: RoleMedication, Resource: med, FullURL: medRef.String()})
		}
		b.groups = append(b.groups, group)
	}
	return nil
}
