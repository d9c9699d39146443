package builder

import (
	"strconv"
	"strings"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

type packagingStyle int

const (
	packagingPlainValue packagingStyle = iota
	packagingExtension
)

var medicationPackaging = NewBehavior("packaging-size-style",
	When("< 1.1.0", packagingPlainValue),
	When(">= 1.1.0", packagingExtension),
)

type medicationState struct {
	code          []document.Coding
	text          string
	form          *document.Coding
	amount        float64
	amountUnit    string
	packagingSize string
	ingredients   []document.MedicationIngredient
}

var medicationInvariants = invariants[medicationState]{
	required("code-required", "code", "a medication needs a code", func(s *medicationState) bool {
		return len(s.code) > 0
	}),
	{
		Name:    "amount-unit-requires-value",
		Fields:  []string{"amount"},
		Message: "an amount unit needs a positive amount",
		Holds: func(s *medicationState, _ values.ProfileVersion) bool {
			return s.amountUnit == "" || s.amount > 0
		},
	},
	{
		Name:    "packaging-size-numeric",
		Fields:  []string{"packagingSize"},
		Message: "packaging size must be numeric before 1.1.0",
		When:    values.MustNewVersionRange("< 1.1.0"),
		Holds: func(s *medicationState, _ values.ProfileVersion) bool {
			if s.packagingSize == "" {
				return true
			}
			_, err := strconv.ParseFloat(s.packagingSize, 64)
			return err == nil
		},
	},
}

// MedicationBuilder builds a Medication. Code is the only required field.
type MedicationBuilder struct {
	core[medicationState]
}

func newMedicationBuilder(f *Factory) *MedicationBuilder {
	return &MedicationBuilder{core: newCore(f, document.KindMedication, medicationInvariants, medicationSnapshot)}
}

func medicationSnapshot(s *medicationState) map[string]any {
	codes := make([]any, len(s.code))
	for i, c := range s.code {
		codes[i] = c.Code
	}
	return map[string]any{
		"code":          codes,
		"text":          s.text,
		"amount":        s.amount,
		"amountUnit":    s.amountUnit,
		"packagingSize": s.packagingSize,
		"ingredients":   len(s.ingredients),
	}
}

// Version selects the medication profile version for this builder only.
func (b *MedicationBuilder) Version(v values.ProfileVersion) *MedicationBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *MedicationBuilder) ID(id values.ResourceID) *MedicationBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant evaluated after the built-in ones.
func (b *MedicationBuilder) WithInvariant(inv FieldInvariant) *MedicationBuilder {
	b.addInvariant(inv)
	return b
}

// PZN codes the medication by its pharmaceutical product number.
func (b *MedicationBuilder) PZN(pzn values.PZN, display string) *MedicationBuilder {
	b.set("PZN", func(s *medicationState) {
		s.code = []document.Coding{{System: document.SystemPZN, Code: pzn.String(), Display: strings.TrimSpace(display)}}
	})
	return b
}

// Code codes the medication by an arbitrary coding.
func (b *MedicationBuilder) Code(c document.Coding) *MedicationBuilder {
	b.set("Code", func(s *medicationState) { s.code = []document.Coding{c} })
	return b
}

// WithoutCode clears the code.
func (b *MedicationBuilder) WithoutCode() *MedicationBuilder {
	b.set("WithoutCode", func(s *medicationState) { s.code = nil })
	return b
}

// Text sets the product name.
func (b *MedicationBuilder) Text(text string) *MedicationBuilder {
	b.set("Text", func(s *medicationState) { s.text = strings.TrimSpace(text) })
	return b
}

// Form sets the dose form (e.g. TAB).
func (b *MedicationBuilder) Form(code, display string) *MedicationBuilder {
	b.set("Form", func(s *medicationState) {
		s.form = &document.Coding{System: document.SystemDoseForm, Code: strings.TrimSpace(code), Display: display}
	})
	return b
}

// Amount sets the package amount.
func (b *MedicationBuilder) Amount(value float64, unit string) *MedicationBuilder {
	b.set("Amount", func(s *medicationState) {
		s.amount = value
		s.amountUnit = strings.TrimSpace(unit)
	})
	return b
}

// PackagingSize sets the package size.
func (b *MedicationBuilder) PackagingSize(size string) *MedicationBuilder {
	b.set("PackagingSize", func(s *medicationState) { s.packagingSize = strings.TrimSpace(size) })
	return b
}

// Ingredient adds an active ingredient with optional strength.
func (b *MedicationBuilder) Ingredient(item document.Coding, strength *document.Ratio) *MedicationBuilder {
	b.set("Ingredient", func(s *medicationState) {
		s.ingredients = append(s.ingredients, document.MedicationIngredient{
			ItemCodeableConcept: document.CodeableConcept{Coding: []document.Coding{item}},
			Strength:            strength,
		})
	})
	return b
}

// Build checks the invariants and returns the stamped medication.
func (b *MedicationBuilder) Build() (*document.Medication, error) {
	med, err := b.build()
	return med, b.observe(err)
}

func (b *MedicationBuilder) build() (*document.Medication, error) {
	v, err := b.check()
	if err != nil {
		return nil, err
	}
	style, err := medicationPackaging.Select(b.kind, v)
	if err != nil {
		return nil, err
	}

	s := &b.state
	med := &document.Medication{
		Code:       document.CodeableConcept{Coding: append([]document.Coding(nil), s.code...), Text: s.text},
		Ingredient: append([]document.MedicationIngredient(nil), s.ingredients...),
	}
	if s.form != nil {
		form := *s.form
		med.Form = &document.CodeableConcept{Coding: []document.Coding{form}}
	}
	if s.amountUnit != "" || s.packagingSize != "" {
		numerator := &document.Quantity{Unit: s.amountUnit}
		if s.amount > 0 {
			numerator.Value = document.Decimal(s.amount)
		}
		if s.packagingSize != "" {
			switch style {
			case packagingExtension:
				numerator.Extension = []document.Extension{{URL: document.ExtPackagingSize, ValueString: s.packagingSize}}
			case packagingPlainValue:
				size, _ := strconv.ParseFloat(s.packagingSize, 64)
				numerator.Value = document.Decimal(size)
			}
		}
		med.Amount = &document.Ratio{Numerator: numerator, Denominator: &document.Quantity{Value: document.Decimal(1)}}
	}

	if err := b.complete(med, v); err != nil {
		return nil, err
	}
	return med, nil
}
