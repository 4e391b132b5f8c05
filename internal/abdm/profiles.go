// Package abdm is the single source of truth for ABDM and NHCX profile
// URLs, SNOMED HI type codes, and coding system URIs. Never hardcode a
// profile URL anywhere else — always reference this package.
package abdm

// HIType describes an ABDM Health Information type as defined in the
// ABDM FHIR Implementation Guide.
type HIType struct {
	Code               string
	Display            string
	BundleProfile      string
	CompositionProfile string
	SNOMEDCode         string
	SNOMEDDisplay      string
	SNOMEDSystem       string
	LOINCCode          string
	LOINCDisplay       string
}

// HITypes maps HI type keys to their official definitions.
var HITypes = map[string]HIType{
	"DischargeSummary": {
		Code:               "DischargeSummary",
		Display:            "Discharge Summary",
		BundleProfile:      "https://nrces.in/ndhm/fhir/r4/StructureDefinition/DischargeSummaryRecord",
		CompositionProfile: "https://nrces.in/ndhm/fhir/r4/StructureDefinition/DischargeSummary",
		SNOMEDCode:         "373942005",
		SNOMEDDisplay:      "Discharge summary",
		SNOMEDSystem:       "http://snomed.info/sct",
		LOINCCode:          "18842-5",
		LOINCDisplay:       "Discharge summary",
	},
	"DiagnosticReport": {
		Code:               "DiagnosticReport",
		Display:            "Diagnostic Report",
		BundleProfile:      "https://nrces.in/ndhm/fhir/r4/StructureDefinition/DiagnosticReportRecord",
		CompositionProfile: "https://nrces.in/ndhm/fhir/r4/StructureDefinition/DiagnosticReportComposition",
		SNOMEDCode:         "4241000179101",
		SNOMEDDisplay:      "Diagnostic report",
		SNOMEDSystem:       "http://snomed.info/sct",
		LOINCCode:          "11502-2",
		LOINCDisplay:       "Laboratory report",
	},
	"OPConsultation": {
		Code:               "OPConsultation",
		Display:            "OP Consultation",
		BundleProfile:      "https://nrces.in/ndhm/fhir/r4/StructureDefinition/OPConsultRecord",
		CompositionProfile: "https://nrces.in/ndhm/fhir/r4/StructureDefinition/OPConsultation",
		SNOMEDCode:         "371530004",
		SNOMEDDisplay:      "Clinical consultation report",
		SNOMEDSystem:       "http://snomed.info/sct",
		LOINCCode:          "11488-4",
		LOINCDisplay:       "Consultation note",
	},
	"Prescription": {
		Code:               "Prescription",
		Display:            "Prescription",
		BundleProfile:      "https://nrces.in/ndhm/fhir/r4/StructureDefinition/PrescriptionRecord",
		CompositionProfile: "https://nrces.in/ndhm/fhir/r4/StructureDefinition/Prescription",
		SNOMEDCode:         "440545006",
		SNOMEDDisplay:      "Prescription record",
		SNOMEDSystem:       "http://snomed.info/sct",
		LOINCCode:          "57833-6",
		LOINCDisplay:       "Prescription for medication",
	},
}

// Profiles maps FHIR resource types to their NRCeS profile URLs.
var Profiles = map[string]string{
	"Bundle":                      "https://nrces.in/ndhm/fhir/r4/StructureDefinition/ClaimBundle",
	"Composition":                 "https://nrces.in/ndhm/fhir/r4/StructureDefinition/DischargeSummary",
	"Patient":                     "https://nrces.in/ndhm/fhir/r4/StructureDefinition/Patient",
	"Organization":                "https://nrces.in/ndhm/fhir/r4/StructureDefinition/Organization",
	"Practitioner":                "https://nrces.in/ndhm/fhir/r4/StructureDefinition/Practitioner",
	"Encounter":                   "https://nrces.in/ndhm/fhir/r4/StructureDefinition/Encounter",
	"Condition":                   "https://nrces.in/ndhm/fhir/r4/StructureDefinition/Condition",
	"Observation":                 "https://nrces.in/ndhm/fhir/r4/StructureDefinition/Observation",
	"DiagnosticReport":            "https://nrces.in/ndhm/fhir/r4/StructureDefinition/DiagnosticReportLab",
	"MedicationRequest":           "https://nrces.in/ndhm/fhir/r4/StructureDefinition/MedicationRequest",
	"Claim":                       "https://nrces.in/ndhm/fhir/r4/StructureDefinition/Claim",
	"CoverageEligibilityRequest":  "https://nrces.in/ndhm/fhir/r4/StructureDefinition/CoverageEligibilityRequest",
	"DocumentReference":           "https://nrces.in/ndhm/fhir/r4/StructureDefinition/DocumentReference",
	"Provenance":                  "https://nrces.in/ndhm/fhir/r4/StructureDefinition/Provenance",
}

// Official FHIR coding system URIs used across the pipeline.
const (
	SystemICD10             = "http://hl7.org/fhir/sid/icd-10"
	SystemLOINC             = "http://loinc.org"
	SystemSNOMED            = "http://snomed.info/sct"
	SystemRxNorm            = "http://www.nlm.nih.gov/research/umls/rxnorm"
	SystemUCUM              = "http://unitsofmeasure.org"
	SystemConditionClinical = "http://terminology.hl7.org/CodeSystem/condition-clinical"
	SystemConditionVerStat  = "http://terminology.hl7.org/CodeSystem/condition-ver-status"
	SystemConditionCategory = "http://terminology.hl7.org/CodeSystem/condition-category"
	SystemEncounterClass    = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
	SystemClaimType         = "http://terminology.hl7.org/CodeSystem/claim-type"
	SystemProcessPriority   = "http://terminology.hl7.org/CodeSystem/processpriority"
	SystemBenefitCategory   = "http://terminology.hl7.org/CodeSystem/ex-benefitcategory"
	SystemProvenanceAgent   = "http://terminology.hl7.org/CodeSystem/provenance-participant-type"
	SystemDataOperation     = "http://terminology.hl7.org/CodeSystem/v3-DataOperation"
	SystemActReason         = "http://terminology.hl7.org/CodeSystem/v3-ActReason"
	SystemObsInterpretation = "http://terminology.hl7.org/CodeSystem/v3-ObservationInterpretation"
	SystemV20360            = "http://terminology.hl7.org/CodeSystem/v2-0360"
	SystemUSCLS             = "http://terminology.hl7.org/CodeSystem/ex-USCLS"
	SystemNHCXProvider      = "https://nhcx.health.gov.in/providers"
	SystemNHCXInsurer       = "https://nhcx.health.gov.in/insurers"
	SystemNDHMPatient       = "https://ndhm.gov.in/patients"
	SystemNDHMBundle        = "https://ndhm.gov.in"
	SystemNDHMPractitioner  = "https://ndhm.gov.in/practitioners"
)

// docTypeToHIType maps detected document types to ABDM HI type keys.
var docTypeToHIType = map[string]string{
	"discharge_summary": "DischargeSummary",
	"diagnostic_report": "DiagnosticReport",
	"lab_report":        "DiagnosticReport",
	"op_consultation":   "OPConsultation",
	"prescription":      "Prescription",
	"unknown":           "DischargeSummary",
}

// HITypeFor returns the ABDM HI type definition for a detected document
// type, defaulting to DischargeSummary for unrecognized types.
func HITypeFor(docType string) HIType {
	key, ok := docTypeToHIType[docType]
	if !ok {
		key = "DischargeSummary"
	}
	return HITypes[key]
}

// HITypeKeyFor returns the HI type key (e.g. "DischargeSummary") for a
// document type.
func HITypeKeyFor(docType string) string {
	if key, ok := docTypeToHIType[docType]; ok {
		return key
	}
	return "DischargeSummary"
}

// ProfileFor returns the NRCeS profile URL for a FHIR resource type, or
// the empty string when no profile is defined.
func ProfileFor(resourceType string) string {
	return Profiles[resourceType]
}
