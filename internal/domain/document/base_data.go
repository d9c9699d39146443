package document

// Patient is the insured person a prescription is issued for.
type Patient struct {
	Base
	Identifier []Identifier `json:"identifier,omitempty"`
	Name       []HumanName  `json:"name,omitempty"`
	BirthDate  string       `json:"birthDate,omitempty"`
}

// KVNR returns the insurance number and whether the patient is privately insured.
func (p *Patient) KVNR() (kvnr string, private bool, ok bool) {
	for _, id := range p.Identifier {
		switch id.System {
		case SystemKVNRGKV:
			return id.Value, false, true
		case SystemKVNRPKV:
			return id.Value, true, true
		}
	}
	return "", false, false
}

// Assigner returns the assigning organization reference of the insurance number.
func (p *Patient) Assigner() (Reference, bool) {
	for _, id := range p.Identifier {
		if id.Assigner != nil && !id.Assigner.IsEmpty() {
			return *id.Assigner, true
		}
	}
	return Reference{}, false
}

// Coverage is the insurance relation paying for a prescription.
type Coverage struct {
	Base
	Extension   []Extension     `json:"extension,omitempty"`
	Status      string          `json:"status"`
	Type        CodeableConcept `json:"type"`
	Beneficiary Reference       `json:"beneficiary"`
	Payor       []Reference     `json:"payor"`
}

// CoverageType returns the insurance kind (GKV, PKV, BG, ...).
func (c *Coverage) CoverageType() CoverageType {
	code, _ := c.Type.Code(SystemCoverageType)
	return CoverageType(code)
}

// Practitioner is the prescribing physician or dentist.
type Practitioner struct {
	Base
	Identifier []Identifier `json:"identifier,omitempty"`
	Name       []HumanName  `json:"name,omitempty"`
}

// Organization is a practice, pharmacy, insurer or hospital.
type Organization struct {
	Base
	Identifier []Identifier `json:"identifier,omitempty"`
	Name       string       `json:"name,omitempty"`
}
