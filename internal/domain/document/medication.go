package document

import "strconv"

// Medication describes a medicinal product, identified by its code (usually a PZN).
type Medication struct {
	Base
	Extension  []Extension            `json:"extension,omitempty"`
	Code       CodeableConcept        `json:"code"`
	Form       *CodeableConcept       `json:"form,omitempty"`
	Amount     *Ratio                 `json:"amount,omitempty"`
	Ingredient []MedicationIngredient `json:"ingredient,omitempty"`
}

// MedicationIngredient is one active ingredient and its strength.
type MedicationIngredient struct {
	ItemCodeableConcept CodeableConcept `json:"itemCodeableConcept"`
	Strength            *Ratio          `json:"strength,omitempty"`
}

// PZN returns the pharmaceutical product number, if coded.
func (m *Medication) PZN() (string, bool) {
	return m.Code.Code(SystemPZN)
}

// PackagingSize returns the package size from either the packaging size
// extension on the amount numerator or its plain value.
func (m *Medication) PackagingSize() (string, bool) {
	if m.Amount == nil || m.Amount.Numerator == nil {
		return "", false
	}
	if ext, ok := FindExtension(m.Amount.Numerator.Extension, ExtPackagingSize); ok {
		return ext.ValueString, true
	}
	if v := m.Amount.Numerator.Value; v != nil {
		return strconv.FormatFloat(*v, 'f', -1, 64), true
	}
	return "", false
}
