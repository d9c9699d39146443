package builder

import (
	"slices"
	"strings"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// CommunicationType selects the message kind of a communication.
type CommunicationType string

const (
	CommunicationInfoReq        CommunicationType = "info-request"
	CommunicationReply          CommunicationType = "reply"
	CommunicationDispReq        CommunicationType = "dispense-request"
	CommunicationRepresentative CommunicationType = "representative"
)

// Kind returns the document kind of the message type.
func (t CommunicationType) Kind() (document.Kind, bool) {
	switch t {
	case CommunicationInfoReq:
		return document.KindCommunicationInfoReq, true
	case CommunicationReply:
		return document.KindCommunicationReply, true
	case CommunicationDispReq:
		return document.KindCommunicationDispReq, true
	case CommunicationRepresentative:
		return document.KindCommunicationRepresentative, true
	}
	return document.Kind{}, false
}

var supportedCommunications = NewBehavior("communication-types",
	When("< 1.4.0", []CommunicationType{CommunicationInfoReq, CommunicationReply, CommunicationDispReq, CommunicationRepresentative}),
	When(">= 1.4.0", []CommunicationType{CommunicationReply, CommunicationDispReq, CommunicationRepresentative}),
)

// SupplyOptions are the delivery options a pharmacy offers in a reply.
type SupplyOptions struct {
	OnPremise bool
	Delivery  bool
	Shipment  bool
}

type communicationState struct {
	typ           CommunicationType
	task          string
	recipient     *document.Identifier
	message       string
	medication    *document.Medication
	insurance     values.IKNR
	flowType      string
	supplyOptions *SupplyOptions
}

func (s *communicationState) is(types ...CommunicationType) bool {
	return slices.Contains(types, s.typ)
}

var communicationInvariants = invariants[communicationState]{
	required("type-required", "type", "unknown communication type", func(s *communicationState) bool {
		_, ok := s.typ.Kind()
		return ok
	}),
	required("task-required", "task", "a communication refers to a task", func(s *communicationState) bool { return s.task != "" }),
	required("payload-required", "payload", "a communication needs a message", func(s *communicationState) bool { return s.message != "" }),
	{
		Name:    "type-supported",
		Fields:  []string{"type"},
		Message: "communication type is not supported by this workflow version",
		Holds: func(s *communicationState, v values.ProfileVersion) bool {
			types, ok := supportedCommunications.Lookup(v)
			return ok && slices.Contains(types, s.typ)
		},
	},
	{
		Name:    "info-request-medication",
		Fields:  []string{"medication"},
		Message: "an info request names the requested medication",
		Holds: func(s *communicationState, _ values.ProfileVersion) bool {
			return !s.is(CommunicationInfoReq) || s.medication != nil
		},
	},
	{
		Name:    "info-request-insurance",
		Fields:  []string{"insurance"},
		Message: "an info request names the insurer of the patient",
		Holds: func(s *communicationState, _ values.ProfileVersion) bool {
			return !s.is(CommunicationInfoReq) || !s.insurance.IsEmpty()
		},
	},
	{
		Name:    "flow-type-required",
		Fields:  []string{"flowType"},
		Message: "info requests and representative messages carry the flow type",
		Holds: func(s *communicationState, _ values.ProfileVersion) bool {
			return !s.is(CommunicationInfoReq, CommunicationRepresentative) || s.flowType != ""
		},
	},
	required("recipient-required", "recipient", "a communication needs a recipient", func(s *communicationState) bool {
		return s.recipient != nil
	}),
}

// CommunicationBuilder builds one of the workflow messages between insurant,
// pharmacy and representative.
type CommunicationBuilder struct {
	core[communicationState]
}

func newCommunicationBuilder(f *Factory, t CommunicationType) *CommunicationBuilder {
	kind, ok := t.Kind()
	if !ok {
		// all message kinds share the workflow family; type-required reports the error
		kind = document.KindCommunicationReply
	}
	b := &CommunicationBuilder{core: newCore(f, kind, communicationInvariants, communicationSnapshot)}
	b.state.typ = t
	if t == CommunicationReply {
		b.state.supplyOptions = &SupplyOptions{OnPremise: true}
	}
	return b
}

func communicationSnapshot(s *communicationState) map[string]any {
	fields := map[string]any{
		"type":       string(s.typ),
		"task":       s.task,
		"message":    s.message,
		"medication": s.medication != nil,
		"insurance":  s.insurance.String(),
		"flowType":   s.flowType,
	}
	if s.recipient != nil {
		fields["recipient"] = s.recipient.Value
	}
	return fields
}

// Version selects the workflow profile version for this builder only.
func (b *CommunicationBuilder) Version(v values.ProfileVersion) *CommunicationBuilder {
	b.setVersion(v)
	return b
}

// ID sets the resource id instead of a generated one.
func (b *CommunicationBuilder) ID(id values.ResourceID) *CommunicationBuilder {
	b.setID(id)
	return b
}

// WithInvariant registers an extra invariant evaluated after the built-in ones.
func (b *CommunicationBuilder) WithInvariant(inv FieldInvariant) *CommunicationBuilder {
	b.addInvariant(inv)
	return b
}

// Task sets the task the message is about, e.g. "Task/160.000.100.000.001.05".
func (b *CommunicationBuilder) Task(task string) *CommunicationBuilder {
	b.set("Task", func(s *communicationState) { s.task = strings.TrimSpace(task) })
	return b
}

// RecipientTelematikID addresses a pharmacy.
func (b *CommunicationBuilder) RecipientTelematikID(id values.TelematikID) *CommunicationBuilder {
	b.set("RecipientTelematikID", func(s *communicationState) {
		s.recipient = &document.Identifier{System: document.SystemTelematikID, Value: id.String()}
	})
	return b
}

// RecipientKVNR addresses an insurant.
func (b *CommunicationBuilder) RecipientKVNR(kvnr values.KVNR) *CommunicationBuilder {
	b.set("RecipientKVNR", func(s *communicationState) {
		s.recipient = &document.Identifier{System: document.SystemKVNRGKV, Value: kvnr.String()}
	})
	return b
}

// Message sets the free text payload.
func (b *CommunicationBuilder) Message(text string) *CommunicationBuilder {
	b.set("Message", func(s *communicationState) { s.message = strings.TrimSpace(text) })
	return b
}

// Medication names the medication an info request asks about. It is
// contained in the message.
func (b *CommunicationBuilder) Medication(med *document.Medication) *CommunicationBuilder {
	b.set("Medication", func(s *communicationState) { s.medication = med })
	return b
}

// Insurance sets the IKNR of the insurer of the asking patient.
func (b *CommunicationBuilder) Insurance(iknr values.IKNR) *CommunicationBuilder {
	b.set("Insurance", func(s *communicationState) { s.insurance = iknr })
	return b
}

// FlowType sets the flow type of the prescription (160, 169, 200, 209).
func (b *CommunicationBuilder) FlowType(code string) *CommunicationBuilder {
	b.set("FlowType", func(s *communicationState) { s.flowType = strings.TrimSpace(code) })
	return b
}

// SupplyOptions overrides the supply options of a reply or info request.
func (b *CommunicationBuilder) SupplyOptions(opts SupplyOptions) *CommunicationBuilder {
	b.set("SupplyOptions", func(s *communicationState) { s.supplyOptions = &opts })
	return b
}

// Build checks the invariants and returns the stamped communication.
func (b *CommunicationBuilder) Build() (*document.Communication, error) {
	c, err := b.build()
	return c, b.observe(err)
}

func (b *CommunicationBuilder) build() (*document.Communication, error) {
	v, err := b.check()
	if err != nil {
		return nil, err
	}

	s := &b.state
	recipient := *s.recipient
	c := &document.Communication{
		BasedOn:   []document.Reference{{Reference: s.task}},
		Status:    "unknown",
		Sent:      dateTime(b.factory.now()),
		Recipient: []document.Reference{{Identifier: &recipient}},
		Payload:   []document.CommunicationPayload{{ContentString: s.message}},
	}
	if s.medication != nil {
		med := *s.medication
		if med.ID == "" {
			med.ID = b.factory.newID().String()
		}
		c.Contained = []*document.Medication{&med}
		c.About = []document.Reference{{Reference: "#" + med.ID}}
	}
	if !s.insurance.IsEmpty() {
		c.Extension = append(c.Extension, document.Extension{
			URL:             document.ExtInsuranceProvider,
			ValueIdentifier: &document.Identifier{System: document.SystemIKNR, Value: s.insurance.String()},
		})
	}
	if s.flowType != "" {
		c.Extension = append(c.Extension, document.Extension{
			URL:         document.ExtFlowType,
			ValueCoding: &document.Coding{System: document.SystemFlowType, Code: s.flowType},
		})
	}
	if s.supplyOptions != nil && s.is(CommunicationReply, CommunicationInfoReq) {
		c.Payload[0].Extension = []document.Extension{{
			URL: document.ExtSupplyOptions,
			Extension: []document.Extension{
				{URL: "onPremise", ValueBoolean: document.Bool(s.supplyOptions.OnPremise)},
				{URL: "delivery", ValueBoolean: document.Bool(s.supplyOptions.Delivery)},
				{URL: "shipment", ValueBoolean: document.Bool(s.supplyOptions.Shipment)},
			},
		}}
	}

	if err := b.complete(c, v); err != nil {
		return nil, err
	}
	return c, nil
}
