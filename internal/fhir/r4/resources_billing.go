package r4

// Claim represents a FHIR R4 Claim resource for NHCX submission.
type Claim struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id,omitempty"`
	Meta         *Meta            `json:"meta,omitempty"`
	Status       string           `json:"status,omitempty"`
	Type         *CodeableConcept `json:"type,omitempty"`
	Use          string           `json:"use,omitempty"` // claim | preauthorization | predetermination
	Patient      *Reference       `json:"patient,omitempty"`
	Created      string           `json:"created,omitempty"`
	Insurer      *Reference       `json:"insurer,omitempty"`
	Provider     *Reference       `json:"provider,omitempty"`
	Priority     *CodeableConcept `json:"priority,omitempty"`
	Diagnosis    []ClaimDiagnosis `json:"diagnosis,omitempty"`
	Insurance    []ClaimInsurance `json:"insurance,omitempty"`
	Item         []ClaimItem      `json:"item,omitempty"`
	Total        *Money           `json:"total,omitempty"`
}

// ClaimDiagnosis links a Condition resource to a claim.
type ClaimDiagnosis struct {
	Sequence                 int              `json:"sequence"`
	DiagnosisReference       *Reference       `json:"diagnosisReference,omitempty"`
	DiagnosisCodeableConcept *CodeableConcept `json:"diagnosisCodeableConcept,omitempty"`
}

// ClaimInsurance identifies the coverage backing a claim.
type ClaimInsurance struct {
	Sequence   int         `json:"sequence"`
	Focal      bool        `json:"focal"`
	Identifier *Identifier `json:"identifier,omitempty"`
	Coverage   *Reference  `json:"coverage,omitempty"`
}

// ClaimItem is one billed procedure or service line.
type ClaimItem struct {
	Sequence         int              `json:"sequence"`
	ProductOrService *CodeableConcept `json:"productOrService,omitempty"`
	UnitPrice        *Money           `json:"unitPrice,omitempty"`
	Net              *Money           `json:"net,omitempty"`
}

// Coverage represents a FHIR R4 Coverage resource used by the
// preauthorization flow.
type Coverage struct {
	ResourceType string      `json:"resourceType"`
	ID           string      `json:"id,omitempty"`
	Meta         *Meta       `json:"meta,omitempty"`
	Status       string      `json:"status,omitempty"`
	Subscriber   *Reference  `json:"subscriber,omitempty"`
	SubscriberID string      `json:"subscriberId,omitempty"`
	Beneficiary  *Reference  `json:"beneficiary,omitempty"`
	Payor        []Reference `json:"payor,omitempty"`
}

// CoverageEligibilityRequest represents a FHIR R4
// CoverageEligibilityRequest resource (the preauthorization counterpart of
// a Claim; the two never appear in the same bundle).
type CoverageEligibilityRequest struct {
	ResourceType string                `json:"resourceType"`
	ID           string                `json:"id,omitempty"`
	Meta         *Meta                 `json:"meta,omitempty"`
	Status       string                `json:"status,omitempty"`
	Purpose      []string              `json:"purpose,omitempty"`
	Patient      *Reference            `json:"patient,omitempty"`
	Created      string                `json:"created,omitempty"`
	Provider     *Reference            `json:"provider,omitempty"`
	Insurer      *Reference            `json:"insurer,omitempty"`
	Insurance    []EligibilityCoverage `json:"insurance,omitempty"`
	Item         []EligibilityItem     `json:"item,omitempty"`
}

// EligibilityCoverage links the Coverage resource to the request.
type EligibilityCoverage struct {
	Focal    bool       `json:"focal"`
	Coverage *Reference `json:"coverage,omitempty"`
}

// EligibilityItem is one proposed treatment line.
type EligibilityItem struct {
	Category         *CodeableConcept `json:"category,omitempty"`
	ProductOrService *CodeableConcept `json:"productOrService,omitempty"`
}
