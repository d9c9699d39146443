package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// ErrUnknownResource is returned when a payload names no known document kind.
var ErrUnknownResource = errors.New("unknown resource")

// Resource is implemented by every document.
type Resource interface {
	// Kind is inferred from the resource type and the claimed profile.
	Kind() Kind
	// LogicalID is the id of the resource.
	LogicalID() string
	// Profile is the first claimed profile, zero when none is claimed.
	Profile() values.ProfileID
	base() *Base
}

// Base holds the fields shared by all documents.
type Base struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id,omitempty"`
	Meta         *Meta  `json:"meta,omitempty"`
}

func (b *Base) base() *Base { return b }

// LogicalID returns the resource id
func (b *Base) LogicalID() string { return b.ID }

// Kind infers the document kind, the zero Kind when unknown.
func (b *Base) Kind() Kind {
	k, ok := KindFor(b.ResourceType, b.profile())
	if !ok {
		return Kind{}
	}
	return k
}

// Profile parses the claimed profile.
func (b *Base) Profile() values.ProfileID {
	p, err := values.ParseProfileID(b.profile())
	if err != nil {
		return values.ProfileID{}
	}
	return p
}

func (b *Base) profile() string {
	if b.Meta == nil || len(b.Meta.Profile) == 0 {
		return ""
	}
	return b.Meta.Profile[0]
}

// Stamp sets resource type, id and the versioned profile of kind k.
func Stamp(r Resource, k Kind, id string, v values.ProfileVersion) error {
	profile, err := k.ProfileID(v)
	if err != nil {
		return fmt.Errorf("stamp %s: %w", k, err)
	}
	b := r.base()
	b.ResourceType = k.ResourceType()
	b.ID = id
	b.Meta = &Meta{Profile: []string{profile.String()}}
	return nil
}

// New returns an empty document of kind k.
func New(k Kind) (Resource, error) {
	switch k {
	case KindMedication:
		return &Medication{}, nil
	case KindPatient:
		return &Patient{}, nil
	case KindCoverage:
		return &Coverage{}, nil
	case KindPractitioner:
		return &Practitioner{}, nil
	case KindOrganization:
		return &Organization{}, nil
	case KindMedicationRequest:
		return &MedicationRequest{}, nil
	case KindSupplyRequest:
		return &SupplyRequest{}, nil
	case KindComposition:
		return &Composition{}, nil
	case KindPrescriptionBundle:
		return &Bundle{}, nil
	case KindCommunicationInfoReq, KindCommunicationReply, KindCommunicationDispReq, KindCommunicationRepresentative:
		return &Communication{}, nil
	case KindMedicationDispense:
		return &MedicationDispense{}, nil
	case KindDispenseOperation:
		return &Parameters{}, nil
	case KindOperationOutcome:
		return &OperationOutcome{}, nil
	}
	return nil, fmt.Errorf("%w: no document type for kind %q", ErrUnknownResource, k.Name())
}

// Envelope is the part of a serialized resource needed to infer its kind.
type Envelope struct {
	ResourceType string `json:"resourceType"`
	Meta         *Meta  `json:"meta,omitempty"`
}

// Profile returns the first claimed profile or "".
func (e Envelope) Profile() string {
	if e.Meta == nil || len(e.Meta.Profile) == 0 {
		return ""
	}
	return e.Meta.Profile[0]
}

// Kind infers the kind of the enveloped resource.
func (e Envelope) Kind() (Kind, bool) {
	return KindFor(e.ResourceType, e.Profile())
}

// DecodeResource decodes a single serialized resource, inferring its kind.
func DecodeResource(data []byte) (Resource, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	kind, ok := env.Kind()
	if !ok {
		return nil, fmt.Errorf("%w: resourceType %q, profile %q", ErrUnknownResource, env.ResourceType, env.Profile())
	}
	r, err := New(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}
