package document

// Naming and code systems used by the documents.
const (
	SystemKVNRGKV            = "http://fhir.de/sid/gkv/kvid-10"
	SystemKVNRPKV            = "http://fhir.de/sid/pkv/kvid-10"
	SystemIKNR               = "http://fhir.de/sid/arge-ik/iknr"
	SystemIKNRLegacy         = "http://fhir.de/NamingSystem/arge-ik/iknr"
	SystemPZN                = "http://fhir.de/CodeSystem/ifa/pzn"
	SystemANR                = "https://fhir.kbv.de/NamingSystem/KBV_NS_Base_ANR"
	SystemZANR               = "http://fhir.de/sid/kzbv/zahnarztnummer"
	SystemBSNR               = "https://fhir.kbv.de/NamingSystem/KBV_NS_Base_BSNR"
	SystemTelematikID        = "https://gematik.de/fhir/sid/telematik-id"
	SystemPrescriptionID     = "https://gematik.de/fhir/erp/NamingSystem/GEM_ERP_NS_PrescriptionId"
	SystemPrescriptionLegacy = "https://gematik.de/fhir/NamingSystem/PrescriptionID"
	SystemCoverageType       = "http://fhir.de/CodeSystem/versicherungsart-de-basis"
	SystemAccidentType       = "https://fhir.kbv.de/CodeSystem/KBV_CS_FOR_Ursache_Type"
	SystemFlowType           = "https://gematik.de/fhir/erp/CodeSystem/GEM_ERP_CS_FlowType"
	SystemDoseForm           = "https://fhir.kbv.de/CodeSystem/KBV_CS_SFHIR_KBV_DARREICHUNGSFORM"
	SystemIssueType          = "http://hl7.org/fhir/issue-type"
	SystemCompositionType    = "https://fhir.kbv.de/CodeSystem/KBV_CS_SFHIR_KBV_FORMULAR_ART"
)

// Extension urls.
const (
	ExtAccident             = "https://fhir.kbv.de/StructureDefinition/KBV_EX_FOR_Accident"
	ExtAlternativeIK        = "https://fhir.kbv.de/StructureDefinition/KBV_EX_FOR_Alternative_IK"
	ExtCoverageKind         = "http://fhir.de/StructureDefinition/gkv/besondere-personengruppe"
	ExtPackagingSize        = "https://fhir.kbv.de/StructureDefinition/KBV_EX_ERP_Medication_PackagingSize"
	ExtMultiplePrescription = "https://fhir.kbv.de/StructureDefinition/KBV_EX_ERP_Multiple_Prescription"
	ExtDosageFlag           = "https://fhir.kbv.de/StructureDefinition/KBV_EX_ERP_DosageFlag"
	ExtPracticeSupplyPayor  = "https://fhir.kbv.de/StructureDefinition/KBV_EX_ERP_PracticeSupply_Payor"
	ExtFlowType             = "https://gematik.de/fhir/erp/StructureDefinition/GEM_ERP_EX_PrescriptionType"
	ExtInsuranceProvider    = "https://gematik.de/fhir/erp/StructureDefinition/GEM_ERP_EX_InsuranceProvider"
	ExtSupplyOptions        = "https://gematik.de/fhir/erp/StructureDefinition/GEM_ERP_EX_SupplyOptionsType"
	ExtAvailabilityState    = "https://gematik.de/fhir/erp/StructureDefinition/GEM_ERP_EX_AvailabilityState"
)

// Accident kinds (Unfallkennzeichen).
const (
	AccidentGeneral              = "1"
	AccidentWorkplace            = "2"
	AccidentOccupationalDiseases = "4"
)

// CoverageType is the insurance kind of a coverage.
type CoverageType string

const (
	CoverageGKV CoverageType = "GKV"
	CoveragePKV CoverageType = "PKV"
	CoverageBG  CoverageType = "BG"
	CoverageSEL CoverageType = "SEL"
	CoverageSOZ CoverageType = "SOZ"
	CoverageUK  CoverageType = "UK"
)

// Valid reports whether t is a known coverage type.
func (t CoverageType) Valid() bool {
	switch t {
	case CoverageGKV, CoveragePKV, CoverageBG, CoverageSEL, CoverageSOZ, CoverageUK:
		return true
	}
	return false
}
