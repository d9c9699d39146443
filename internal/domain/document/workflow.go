package document

// Communication is a message between insurant, pharmacy and representative.
// The concrete kind follows from the claimed profile.
type Communication struct {
	Base
	Contained []*Medication          `json:"contained,omitempty"`
	Extension []Extension            `json:"extension,omitempty"`
	BasedOn   []Reference            `json:"basedOn,omitempty"`
	Status    string                 `json:"status"`
	About     []Reference            `json:"about,omitempty"`
	Sent      string                 `json:"sent,omitempty"`
	Recipient []Reference            `json:"recipient,omitempty"`
	Sender    *Reference             `json:"sender,omitempty"`
	Payload   []CommunicationPayload `json:"payload,omitempty"`
}

// CommunicationPayload is the message content.
type CommunicationPayload struct {
	Extension     []Extension `json:"extension,omitempty"`
	ContentString string      `json:"contentString"`
}

// Task returns the referenced task.
func (c *Communication) Task() (string, bool) {
	if len(c.BasedOn) == 0 || c.BasedOn[0].Reference == "" {
		return "", false
	}
	return c.BasedOn[0].Reference, true
}

// MedicationDispense records the hand-over of a medication.
type MedicationDispense struct {
	Base
	Contained         []*Medication       `json:"contained,omitempty"`
	Identifier        []Identifier        `json:"identifier,omitempty"`
	Status            string              `json:"status"`
	Medication        Reference           `json:"medicationReference"`
	Subject           Reference           `json:"subject"`
	Performer         []DispensePerformer `json:"performer,omitempty"`
	WhenPrepared      string              `json:"whenPrepared,omitempty"`
	WhenHandedOver    string              `json:"whenHandedOver,omitempty"`
	Note              []Annotation        `json:"note,omitempty"`
	DosageInstruction []Dosage            `json:"dosageInstruction,omitempty"`
}

// DispensePerformer is the pharmacy that dispensed.
type DispensePerformer struct {
	Actor Reference `json:"actor"`
}

// PrescriptionID returns the prescription id the dispense belongs to.
func (m *MedicationDispense) PrescriptionID() string {
	for _, id := range m.Identifier {
		if id.System == SystemPrescriptionID || id.System == SystemPrescriptionLegacy {
			return id.Value
		}
	}
	return ""
}

// SubjectKVNR returns the KVNR of the patient the medication was handed to.
func (m *MedicationDispense) SubjectKVNR() string {
	if m.Subject.Identifier == nil {
		return ""
	}
	return m.Subject.Identifier.Value
}

// Parameters is the input of the dispense close operation.
type Parameters struct {
	Base
	Parameter []Parameter `json:"parameter,omitempty"`
}

// Parameter is a named group of parts.
type Parameter struct {
	Name string          `json:"name"`
	Part []ParameterPart `json:"part,omitempty"`
}

// Dispenses returns every medication dispense of the operation.
func (p *Parameters) Dispenses() []*MedicationDispense {
	var out []*MedicationDispense
	for _, param := range p.Parameter {
		for _, part := range param.Part {
			if md, ok := part.Resource.(*MedicationDispense); ok {
				out = append(out, md)
			}
		}
	}
	return out
}

// OperationOutcome reports the outcome of a server operation, usually an error.
type OperationOutcome struct {
	Base
	Issue []OutcomeIssue `json:"issue"`
}

// OutcomeIssue is one problem of an operation outcome.
type OutcomeIssue struct {
	Severity    string           `json:"severity"`
	Code        string           `json:"code"`
	Details     *CodeableConcept `json:"details,omitempty"`
	Diagnostics string           `json:"diagnostics,omitempty"`
	Expression  []string         `json:"expression,omitempty"`
}
