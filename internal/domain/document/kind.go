// Package document defines the typed documents the builders produce and the
// decoder returns, shaped after their FHIR JSON representation.
package document

import (
	"slices"
	"strings"

	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// Kind identifies a document kind: its FHIR resource type, the profile family
// it is versioned by and the StructureDefinition it claims.
type Kind struct {
	name         string
	resourceType string
	family       values.ProfileFamily
	profileURL   string
}

const (
	kbvSD     = "https://fhir.kbv.de/StructureDefinition/"
	gematikSD = "https://gematik.de/fhir/erp/StructureDefinition/"
	epaSD     = "https://gematik.de/fhir/epa-medication/StructureDefinition/"
)

// Document kinds.
var (
	// KindAny is the universal base kind; every document matches it.
	KindAny = Kind{name: "Resource"}

	KindMedication   = Kind{"Medication", "Medication", values.FamilyMedication, epaSD + "epa-medication"}
	KindPatient      = Kind{"Patient", "Patient", values.FamilyBaseData, kbvSD + "KBV_PR_FOR_Patient"}
	KindCoverage     = Kind{"Coverage", "Coverage", values.FamilyBaseData, kbvSD + "KBV_PR_FOR_Coverage"}
	KindPractitioner = Kind{"Practitioner", "Practitioner", values.FamilyBaseData, kbvSD + "KBV_PR_FOR_Practitioner"}
	KindOrganization = Kind{"Organization", "Organization", values.FamilyBaseData, kbvSD + "KBV_PR_FOR_Organization"}

	KindMedicationRequest  = Kind{"MedicationRequest", "MedicationRequest", values.FamilyPrescription, kbvSD + "KBV_PR_ERP_Prescription"}
	KindSupplyRequest      = Kind{"SupplyRequest", "SupplyRequest", values.FamilyPrescription, kbvSD + "KBV_PR_ERP_PracticeSupply"}
	KindComposition        = Kind{"Composition", "Composition", values.FamilyPrescription, kbvSD + "KBV_PR_ERP_Composition"}
	KindPrescriptionBundle = Kind{"PrescriptionBundle", "Bundle", values.FamilyPrescription, kbvSD + "KBV_PR_ERP_Bundle"}

	KindCommunicationInfoReq        = Kind{"CommunicationInfoReq", "Communication", values.FamilyWorkflow, gematikSD + "GEM_ERP_PR_Communication_InfoReq"}
	KindCommunicationReply          = Kind{"CommunicationReply", "Communication", values.FamilyWorkflow, gematikSD + "GEM_ERP_PR_Communication_Reply"}
	KindCommunicationDispReq        = Kind{"CommunicationDispReq", "Communication", values.FamilyWorkflow, gematikSD + "GEM_ERP_PR_Communication_DispReq"}
	KindCommunicationRepresentative = Kind{"CommunicationRepresentative", "Communication", values.FamilyWorkflow, gematikSD + "GEM_ERP_PR_Communication_Representative"}
	KindMedicationDispense          = Kind{"MedicationDispense", "MedicationDispense", values.FamilyWorkflow, gematikSD + "GEM_ERP_PR_MedicationDispense"}
	KindDispenseOperation           = Kind{"DispenseOperation", "Parameters", values.FamilyWorkflow, gematikSD + "GEM_ERP_PR_PAR_CloseOperation_Input"}
	KindOperationOutcome            = Kind{"OperationOutcome", "OperationOutcome", values.FamilyWorkflow, gematikSD + "GEM_ERP_PR_OperationOutcome"}
)

var kinds = []Kind{
	KindMedication, KindPatient, KindCoverage, KindPractitioner, KindOrganization,
	KindMedicationRequest, KindSupplyRequest, KindComposition, KindPrescriptionBundle,
	KindCommunicationInfoReq, KindCommunicationReply, KindCommunicationDispReq, KindCommunicationRepresentative,
	KindMedicationDispense, KindDispenseOperation, KindOperationOutcome,
}

// Kinds returns every concrete kind.
func Kinds() []Kind {
	return slices.Clone(kinds)
}

// KindByName looks a kind up by its name ("Medication", "PrescriptionBundle", "Resource").
func KindByName(name string) (Kind, bool) {
	if strings.EqualFold(name, KindAny.name) {
		return KindAny, true
	}
	for _, k := range kinds {
		if strings.EqualFold(k.name, name) {
			return k, true
		}
	}
	return Kind{}, false
}

// KindFor infers the kind of a serialized resource from its resourceType and
// claimed profile. The profile wins; without a known profile the kind is only
// inferred when exactly one kind uses the resource type.
func KindFor(resourceType, profile string) (Kind, bool) {
	base, _, _ := strings.Cut(profile, "|")
	if base != "" {
		for _, k := range kinds {
			if k.profileURL == base && k.resourceType == resourceType {
				return k, true
			}
		}
	}

	var (
		match Kind
		n     int
	)
	for _, k := range kinds {
		if k.resourceType == resourceType {
			match = k
			n++
		}
	}
	if n == 1 {
		return match, true
	}
	return Kind{}, false
}

// Name returns the kind name
func (k Kind) Name() string { return k.name }

// ResourceType returns the FHIR resource type
func (k Kind) ResourceType() string { return k.resourceType }

// Family returns the profile family the kind is versioned by
func (k Kind) Family() values.ProfileFamily { return k.family }

// ProfileURL returns the unversioned StructureDefinition canonical
func (k Kind) ProfileURL() string { return k.profileURL }

// IsAny reports whether k is the universal base kind.
func (k Kind) IsAny() bool { return k == KindAny }

// IsZero returns true for the zero value (unknown kind).
func (k Kind) IsZero() bool { return k.name == "" }

// Accepts reports whether a document of kind actual satisfies a request for k.
func (k Kind) Accepts(actual Kind) bool {
	if k.IsAny() {
		return !actual.IsZero()
	}
	return k == actual
}

// ProfileID returns the versioned profile canonical for v.
func (k Kind) ProfileID(v values.ProfileVersion) (values.ProfileID, error) {
	return values.NewProfileID(k.profileURL, v)
}

func (k Kind) String() string { return k.name }
