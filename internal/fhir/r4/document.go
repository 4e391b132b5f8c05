package r4

// Bundle represents a FHIR R4 document Bundle. ABDM mandates type
// "document" with a Composition as the first entry; the builder enforces
// both and the validator re-checks them independently.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Meta         *Meta         `json:"meta,omitempty"`
	Identifier   *Identifier   `json:"identifier,omitempty"`
	Type         string        `json:"type,omitempty"` // document | collection | transaction | ...
	Timestamp    string        `json:"timestamp,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

// BundleEntry pairs a resource with its urn:uuid fullUrl. Resource is
// deliberately untyped: the entry list is heterogeneous and consumers
// (validator, API clients) treat the bundle as a JSON document.
type BundleEntry struct {
	FullURL  string `json:"fullUrl,omitempty"`
	Resource any    `json:"resource,omitempty"`
}

// Composition is the clinical-document cover page and must be the first
// bundle entry.
type Composition struct {
	ResourceType string               `json:"resourceType"`
	ID           string               `json:"id,omitempty"`
	Meta         *Meta                `json:"meta,omitempty"`
	Status       string               `json:"status,omitempty"` // preliminary | final | amended | entered-in-error
	Type         *CodeableConcept     `json:"type,omitempty"`
	Subject      *Reference           `json:"subject,omitempty"`
	Encounter    *Reference           `json:"encounter,omitempty"`
	Date         string               `json:"date,omitempty"`
	Author       []Reference          `json:"author,omitempty"`
	Title        string               `json:"title,omitempty"`
	Custodian    *Reference           `json:"custodian,omitempty"`
	Section      []CompositionSection `json:"section,omitempty"`
}

// CompositionSection is one titled section of the document.
type CompositionSection struct {
	Title string           `json:"title,omitempty"`
	Code  *CodeableConcept `json:"code,omitempty"`
	Text  *Narrative       `json:"text,omitempty"`
	Entry []Reference      `json:"entry,omitempty"`
}

// DocumentReference embeds one source PDF as base64 content.
type DocumentReference struct {
	ResourceType string                     `json:"resourceType"`
	ID           string                     `json:"id,omitempty"`
	Meta         *Meta                      `json:"meta,omitempty"`
	Status       string                     `json:"status,omitempty"` // current | superseded | entered-in-error
	Type         *CodeableConcept           `json:"type,omitempty"`
	Subject      *Reference                 `json:"subject,omitempty"`
	Date         string                     `json:"date,omitempty"`
	Content      []DocumentReferenceContent `json:"content,omitempty"`
}

// DocumentReferenceContent wraps the embedded attachment.
type DocumentReferenceContent struct {
	Attachment Attachment `json:"attachment"`
}

// Provenance records which resources one conversion produced and from
// which source documents.
type Provenance struct {
	ResourceType string             `json:"resourceType"`
	ID           string             `json:"id,omitempty"`
	Meta         *Meta              `json:"meta,omitempty"`
	Target       []Reference        `json:"target,omitempty"`
	Recorded     string             `json:"recorded,omitempty"`
	Reason       []CodeableConcept  `json:"reason,omitempty"`
	Activity     *CodeableConcept   `json:"activity,omitempty"`
	Agent        []ProvenanceAgent  `json:"agent,omitempty"`
	Entity       []ProvenanceEntity `json:"entity,omitempty"`
}

// ProvenanceAgent identifies who or what produced the targets.
type ProvenanceAgent struct {
	Type       *CodeableConcept `json:"type,omitempty"`
	Who        *Reference       `json:"who,omitempty"`
	OnBehalfOf *Reference       `json:"onBehalfOf,omitempty"`
}

// ProvenanceEntity names one source artifact (here, a source PDF).
type ProvenanceEntity struct {
	Role string     `json:"role,omitempty"` // derivation | revision | quotation | source | removal
	What *Reference `json:"what,omitempty"`
}
