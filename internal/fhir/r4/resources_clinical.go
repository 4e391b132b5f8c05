package r4

// Condition represents a FHIR R4 Condition resource carrying the primary
// diagnosis of an encounter.
type Condition struct {
	ResourceType       string            `json:"resourceType"`
	ID                 string            `json:"id,omitempty"`
	Meta               *Meta             `json:"meta,omitempty"`
	ClinicalStatus     *CodeableConcept  `json:"clinicalStatus,omitempty"`
	VerificationStatus *CodeableConcept  `json:"verificationStatus,omitempty"`
	Category           []CodeableConcept `json:"category,omitempty"`
	Code               *CodeableConcept  `json:"code,omitempty"`
	Subject            *Reference        `json:"subject,omitempty"`
	Encounter          *Reference        `json:"encounter,omitempty"`
	RecordedDate       string            `json:"recordedDate,omitempty"`
}

// Observation represents a FHIR R4 Observation resource (one lab result).
// Exactly one of ValueQuantity/ValueString is populated; numeric results
// get a UCUM quantity, everything else degrades to a string value.
type Observation struct {
	ResourceType   string                      `json:"resourceType"`
	ID             string                      `json:"id,omitempty"`
	Meta           *Meta                       `json:"meta,omitempty"`
	Status         string                      `json:"status,omitempty"` // registered | preliminary | final | amended | cancelled
	Category       []CodeableConcept           `json:"category,omitempty"`
	Code           *CodeableConcept            `json:"code,omitempty"`
	Subject        *Reference                  `json:"subject,omitempty"`
	Effective      string                      `json:"effectiveDateTime,omitempty"`
	ValueQuantity  *Quantity                   `json:"valueQuantity,omitempty"`
	ValueString    string                      `json:"valueString,omitempty"`
	Interpretation []CodeableConcept           `json:"interpretation,omitempty"`
	ReferenceRange []ObservationReferenceRange `json:"referenceRange,omitempty"`
}

// ObservationReferenceRange carries the reported reference range as free
// text; source lab reports rarely provide structured bounds.
type ObservationReferenceRange struct {
	Low  *Quantity `json:"low,omitempty"`
	High *Quantity `json:"high,omitempty"`
	Text string    `json:"text,omitempty"`
}

// DiagnosticReport represents a FHIR R4 DiagnosticReport resource grouping
// the Observations of one lab report.
type DiagnosticReport struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id,omitempty"`
	Meta         *Meta            `json:"meta,omitempty"`
	Status       string           `json:"status,omitempty"`
	Code         *CodeableConcept `json:"code,omitempty"`
	Subject      *Reference       `json:"subject,omitempty"`
	Performer    []Reference      `json:"performer,omitempty"`
	Result       []Reference      `json:"result,omitempty"`
	Conclusion   string           `json:"conclusion,omitempty"`
}

// MedicationRequest represents a FHIR R4 MedicationRequest resource (one
// discharge medication).
type MedicationRequest struct {
	ResourceType              string           `json:"resourceType"`
	ID                        string           `json:"id,omitempty"`
	Meta                      *Meta            `json:"meta,omitempty"`
	Status                    string           `json:"status,omitempty"`
	Intent                    string           `json:"intent,omitempty"`
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
	MedicationReference       *Reference       `json:"medicationReference,omitempty"`
	Subject                   *Reference       `json:"subject,omitempty"`
	AuthoredOn                string           `json:"authoredOn,omitempty"`
	Requester                 *Reference       `json:"requester,omitempty"`
	DosageInstruction         []Dosage         `json:"dosageInstruction,omitempty"`
}

// Dosage represents dosage instructions.
type Dosage struct {
	Sequence    int           `json:"sequence,omitempty"`
	Text        string        `json:"text,omitempty"`
	DoseAndRate []DoseAndRate `json:"doseAndRate,omitempty"`
}

// DoseAndRate represents a dose amount.
type DoseAndRate struct {
	Type         *CodeableConcept `json:"type,omitempty"`
	DoseQuantity *Quantity        `json:"doseQuantity,omitempty"`
}
