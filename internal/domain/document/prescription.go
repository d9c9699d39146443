package document

// MedicationRequest is a prescription of a medication for a patient.
type MedicationRequest struct {
	Base
	Extension         []Extension     `json:"extension,omitempty"`
	Status            string          `json:"status"`
	Intent            string          `json:"intent"`
	Medication        Reference       `json:"medicationReference"`
	Subject           Reference       `json:"subject"`
	AuthoredOn        string          `json:"authoredOn,omitempty"`
	Requester         Reference       `json:"requester"`
	Insurance         []Reference     `json:"insurance,omitempty"`
	Note              []Annotation    `json:"note,omitempty"`
	DosageInstruction []Dosage        `json:"dosageInstruction,omitempty"`
	DispenseRequest   DispenseRequest `json:"dispenseRequest"`
	Substitution      *Substitution   `json:"substitution,omitempty"`
}

// Annotation is a free text note.
type Annotation struct {
	Text string `json:"text"`
}

// Dosage is a dosage instruction.
type Dosage struct {
	Extension []Extension `json:"extension,omitempty"`
	Text      string      `json:"text,omitempty"`
}

// DispenseRequest carries the amount to dispense.
type DispenseRequest struct {
	Quantity *Quantity `json:"quantity,omitempty"`
}

// Substitution states whether an equivalent product may be dispensed.
type Substitution struct {
	AllowedBoolean bool `json:"allowedBoolean"`
}

// AccidentKind returns the accident kind code when the request carries accident context.
func (m *MedicationRequest) AccidentKind() (string, bool) {
	ext, ok := FindExtension(m.Extension, ExtAccident)
	if !ok {
		return "", false
	}
	for _, sub := range ext.Extension {
		if sub.ValueCoding != nil {
			return sub.ValueCoding.Code, true
		}
	}
	return "", true
}

// References lists every literal reference the request holds.
func (m *MedicationRequest) References() []string {
	refs := []string{m.Medication.Reference, m.Subject.Reference, m.Requester.Reference}
	for _, ins := range m.Insurance {
		refs = append(refs, ins.Reference)
	}
	return refs
}

// SupplyRequest is a practice supply order (Sprechstundenbedarf).
type SupplyRequest struct {
	Base
	Extension  []Extension `json:"extension,omitempty"`
	AuthoredOn string      `json:"authoredOn,omitempty"`
	Quantity   Quantity    `json:"quantity"`
	Item       Reference   `json:"itemReference"`
	Requester  Reference   `json:"requester"`
}

// Coverage returns the paying coverage reference.
func (s *SupplyRequest) Coverage() (Reference, bool) {
	ext, ok := FindExtension(s.Extension, ExtPracticeSupplyPayor)
	if !ok || ext.ValueReference == nil {
		return Reference{}, false
	}
	return *ext.ValueReference, true
}

// References lists every literal reference the supply request holds.
func (s *SupplyRequest) References() []string {
	refs := []string{s.Item.Reference, s.Requester.Reference}
	if cov, ok := s.Coverage(); ok {
		refs = append(refs, cov.Reference)
	}
	return refs
}

// Composition is the table of contents of a prescription bundle.
type Composition struct {
	Base
	Status  string               `json:"status"`
	Type    CodeableConcept      `json:"type"`
	Subject Reference            `json:"subject"`
	Date    string               `json:"date,omitempty"`
	Author  []Reference          `json:"author,omitempty"`
	Title   string               `json:"title,omitempty"`
	Section []CompositionSection `json:"section,omitempty"`
}

// CompositionSection lists the entries of one bundle section.
type CompositionSection struct {
	Code  *CodeableConcept `json:"code,omitempty"`
	Entry []Reference      `json:"entry,omitempty"`
}

// Bundle is the signed prescription document.
type Bundle struct {
	Base
	Identifier Identifier    `json:"identifier"`
	Type       string        `json:"type"`
	Timestamp  string        `json:"timestamp,omitempty"`
	Entry      []BundleEntry `json:"entry,omitempty"`
}

// PrescriptionID returns the prescription id of the bundle.
func (b *Bundle) PrescriptionID() string {
	return b.Identifier.Value
}

// Resources returns the entry resources of kind k (KindAny for all).
func (b *Bundle) Resources(k Kind) []Resource {
	var out []Resource
	for _, e := range b.Entry {
		if e.Resource != nil && k.Accepts(e.Resource.Kind()) {
			out = append(out, e.Resource)
		}
	}
	return out
}

// EntryByURL returns the entry whose fullUrl equals url.
func (b *Bundle) EntryByURL(url string) (BundleEntry, bool) {
	for _, e := range b.Entry {
		if e.FullURL == url {
			return e, true
		}
	}
	return BundleEntry{}, false
}
