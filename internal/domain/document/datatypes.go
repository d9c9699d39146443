package document

import (
	"fmt"
	"strings"
)

// Meta carries the claimed profiles of a resource.
type Meta struct {
	Profile     []string `json:"profile,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty"`
}

// Coding is a code from a code system.
type Coding struct {
	System  string `json:"system,omitempty"`
	Version string `json:"version,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// NewCoding validates that system and code are not blank.
func NewCoding(system, code, display string) (Coding, error) {
	system, code = strings.TrimSpace(system), strings.TrimSpace(code)
	if system == "" {
		return Coding{}, fmt.Errorf("coding system cannot be empty")
	}
	if code == "" {
		return Coding{}, fmt.Errorf("coding code cannot be empty")
	}
	return Coding{System: system, Code: code, Display: strings.TrimSpace(display)}, nil
}

// MustNewCoding creates a Coding or panics
func MustNewCoding(system, code, display string) Coding {
	c, err := NewCoding(system, code, display)
	if err != nil {
		panic(err)
	}
	return c
}

// CodeableConcept is a set of codings plus free text.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Code returns the first code of the given system.
func (c CodeableConcept) Code(system string) (string, bool) {
	for _, cd := range c.Coding {
		if cd.System == system {
			return cd.Code, true
		}
	}
	return "", false
}

// IsEmpty reports whether neither codings nor text are set.
func (c CodeableConcept) IsEmpty() bool {
	return len(c.Coding) == 0 && c.Text == ""
}

// Identifier is a business identifier with its naming system.
type Identifier struct {
	Use      string           `json:"use,omitempty"`
	Type     *CodeableConcept `json:"type,omitempty"`
	System   string           `json:"system,omitempty"`
	Value    string           `json:"value,omitempty"`
	Assigner *Reference       `json:"assigner,omitempty"`
}

// Reference points to another resource, either by literal reference or by identifier.
type Reference struct {
	Reference  string      `json:"reference,omitempty"`
	Identifier *Identifier `json:"identifier,omitempty"`
	Display    string      `json:"display,omitempty"`
}

// IsEmpty reports whether the reference points anywhere.
func (r Reference) IsEmpty() bool {
	return r.Reference == "" && r.Identifier == nil
}

// Quantity is a measured amount.
type Quantity struct {
	Extension []Extension `json:"extension,omitempty"`
	Value     *float64    `json:"value,omitempty"`
	Unit      string      `json:"unit,omitempty"`
	System    string      `json:"system,omitempty"`
	Code      string      `json:"code,omitempty"`
}

// Ratio relates two quantities.
type Ratio struct {
	Numerator   *Quantity `json:"numerator,omitempty"`
	Denominator *Quantity `json:"denominator,omitempty"`
}

// Period is a date range; both bounds are optional.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// HumanName is the name of a person.
type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Text   string   `json:"text,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
	Prefix []string `json:"prefix,omitempty"`
}

// Extension is a FHIR extension. Exactly one value field is set on simple
// extensions; complex extensions nest further extensions.
type Extension struct {
	URL             string      `json:"url"`
	Extension       []Extension `json:"extension,omitempty"`
	ValueString     string      `json:"valueString,omitempty"`
	ValueCode       string      `json:"valueCode,omitempty"`
	ValueBoolean    *bool       `json:"valueBoolean,omitempty"`
	ValueCoding     *Coding     `json:"valueCoding,omitempty"`
	ValueIdentifier *Identifier `json:"valueIdentifier,omitempty"`
	ValueReference  *Reference  `json:"valueReference,omitempty"`
	ValueRatio      *Ratio      `json:"valueRatio,omitempty"`
	ValuePeriod     *Period     `json:"valuePeriod,omitempty"`
	ValueDate       string      `json:"valueDate,omitempty"`
}

// FindExtension returns the first extension with the given url.
func FindExtension(exts []Extension, url string) (Extension, bool) {
	for _, e := range exts {
		if e.URL == url {
			return e, true
		}
	}
	return Extension{}, false
}

// Bool returns a pointer to b, for optional boolean fields.
func Bool(b bool) *bool {
	return &b
}

// Decimal returns a pointer to f, for optional decimal fields.
func Decimal(f float64) *float64 {
	return &f
}
