// Package bundle assembles NHCX-compliant FHIR R4 document bundles from a
// fused clinical record. ABDM compliance points enforced here:
//
//   - Bundle.type is "document", never "collection"
//   - the Composition is the first bundle entry
//   - every resource carries its NRCeS profile URL in meta.profile
//   - source PDFs are embedded base64 in DocumentReference resources
//   - a Provenance resource targets everything the conversion produced
package bundle

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arogya-labs/nhcx-bridge/internal/abdm"
	"github.com/arogya-labs/nhcx-bridge/internal/fhir/r4"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/record"
)

// Use cases accepted by Build. A claim bundle carries a Claim resource;
// a preauthorization bundle carries Coverage plus
// CoverageEligibilityRequest instead. The two never coexist.
const (
	UseCaseClaim            = "claim"
	UseCasePreauthorization = "preauthorization"
)

// Builder assembles document bundles. It holds no per-bundle state;
// concurrent Build calls are safe.
type Builder struct {
	logger *zap.Logger

	now      func() time.Time
	newID    func() string
	readFile func(string) ([]byte, error)
}

// NewBuilder creates a bundle builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		readFile: os.ReadFile,
	}
}

// Build assembles a complete NHCX document bundle from fused clinical
// data. Missing fields degrade to documented defaults rather than
// failing: a sparse record still yields a structurally valid bundle and
// the validator reports what is missing.
func (b *Builder) Build(data record.ClinicalRecord, docType, useCase string, sourcePDFPaths []string) *r4.Bundle {
	if data == nil {
		data = record.ClinicalRecord{}
	}
	hiType := abdm.HITypeFor(docType)
	ts := fhirInstant(b.now())

	patientID := b.newID()
	orgID := b.newID()
	pracID := b.newID()
	encID := b.newID()
	condID := b.newID()
	claimID := b.newID()

	var entries []r4.BundleEntry
	var allIDs []string

	add := func(id string, res any) {
		entries = append(entries, entry(id, res))
		allIDs = append(allIDs, id)
	}

	add(patientID, b.buildPatient(data, patientID))
	add(orgID, b.buildOrganization(data, orgID))
	add(pracID, b.buildPractitioner(data, pracID))
	add(encID, b.buildEncounter(data, encID, patientID, orgID, pracID))
	add(condID, b.buildCondition(data, condID, patientID))

	var observationIDs []string
	tests := record.GetList(data, "tests")
	for _, test := range tests {
		obsID := b.newID()
		add(obsID, b.buildObservation(test, obsID, patientID))
		observationIDs = append(observationIDs, obsID)
	}

	if len(tests) > 0 || docType == record.DocTypeDiagnosticReport || docType == record.DocTypeLabReport {
		drID := b.newID()
		add(drID, b.buildDiagnosticReport(data, drID, patientID, pracID, observationIDs))
	}

	for _, med := range record.GetList(data, "medications_at_discharge") {
		medID := b.newID()
		add(medID, b.buildMedicationRequest(med, medID, patientID))
	}

	if useCase == UseCasePreauthorization {
		coverageID := b.newID()
		add(coverageID, b.buildCoverage(data, patientID, coverageID))
		add(claimID, b.buildEligibilityRequest(data, claimID, patientID, orgID, coverageID, ts))
	} else {
		add(claimID, b.buildClaim(data, claimID, patientID, orgID, condID, ts))
	}

	var docRefIDs []string
	for _, pdfPath := range sourcePDFPaths {
		refID := b.newID()
		add(refID, b.buildDocumentReference(pdfPath, patientID, docType, refID, ts))
		docRefIDs = append(docRefIDs, refID)
	}

	provID := b.newID()
	entries = append(entries, entry(provID, b.buildProvenance(allIDs, pracID, provID, sourcePDFPaths, ts)))

	compID := b.newID()
	comp := b.buildComposition(data, hiType, docType, compID, patientID, pracID, orgID, condID, observationIDs, ts)
	entries = append([]r4.BundleEntry{entry(compID, comp)}, entries...)

	bundleID := b.newID()
	bundle := &r4.Bundle{
		ResourceType: "Bundle",
		ID:           bundleID,
		Meta: &r4.Meta{
			LastUpdated: ts,
			Profile:     []string{abdm.ProfileFor("Bundle")},
		},
		Identifier: &r4.Identifier{
			System: abdm.SystemNDHMBundle,
			Value:  bundleID,
		},
		Type:      "document",
		Timestamp: ts,
		Entry:     entries,
	}

	b.logger.Info("built FHIR bundle",
		zap.Int("resources", len(entries)),
		zap.String("use_case", useCase),
		zap.String("doc_type", docType),
	)
	return bundle
}

func (b *Builder) buildPatient(data record.ClinicalRecord, id string) *r4.Patient {
	birthDate := parseDate(record.GetString(data, "patient_dob"))
	if birthDate == "" {
		if age := record.GetString(data, "patient_age"); age != "" {
			birthDate = birthDateFromAge(age, b.now())
		}
	}

	p := &r4.Patient{
		ResourceType: "Patient",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("Patient")}},
		Identifier: []r4.Identifier{{
			System: abdm.SystemNDHMPatient,
			Value:  stringOr(data, "patient_id", b.newID()[:8]),
		}},
		Name:      []r4.HumanName{{Use: "official", Text: stringOr(data, "patient_name", "Unknown")}},
		Gender:    stringOr(data, "patient_gender", "unknown"),
		BirthDate: birthDate,
	}
	if phone := record.GetString(data, "patient_phone"); phone != "" {
		p.Telecom = []r4.ContactPoint{{System: "phone", Value: phone}}
	}
	if addr := record.GetString(data, "patient_address"); addr != "" {
		p.Address = []r4.Address{{Text: addr}}
	}
	return p
}

func (b *Builder) buildOrganization(data record.ClinicalRecord, id string) *r4.Organization {
	org := &r4.Organization{
		ResourceType: "Organization",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("Organization")}},
		Identifier: []r4.Identifier{{
			System: abdm.SystemNHCXProvider,
			Value:  identifierSlug(record.GetString(data, "hospital_name"), "UNKNOWN_HOSPITAL"),
		}},
		Name:    stringOr(data, "hospital_name", "Unknown Hospital"),
		Address: []r4.Address{{Text: record.GetString(data, "hospital_address")}},
	}
	if phone := record.GetString(data, "hospital_phone"); phone != "" {
		org.Telecom = []r4.ContactPoint{{System: "phone", Value: phone}}
	}
	return org
}

func (b *Builder) buildPractitioner(data record.ClinicalRecord, id string) *r4.Practitioner {
	name := record.GetString(data, "treating_doctor")
	if name == "" {
		name = stringOr(data, "referring_doctor", "Unknown Doctor")
	}
	return &r4.Practitioner{
		ResourceType: "Practitioner",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("Practitioner")}},
		Identifier: []r4.Identifier{{
			System: abdm.SystemNDHMPractitioner,
			Value:  stringOr(data, "doctor_registration", b.newID()[:8]),
		}},
		Name: []r4.HumanName{{Use: "official", Text: name}},
		Qualification: []r4.PractitionerQualification{{
			Code: r4.CodeableConcept{
				Coding: []r4.Coding{{
					System:  abdm.SystemV20360,
					Code:    "MD",
					Display: stringOr(data, "doctor_qualification", "MBBS"),
				}},
			},
		}},
	}
}

func (b *Builder) buildEncounter(data record.ClinicalRecord, id, patientID, orgID, pracID string) *r4.Encounter {
	enc := &r4.Encounter{
		ResourceType: "Encounter",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("Encounter")}},
		Status:       "finished",
		Class: &r4.Coding{
			System:  abdm.SystemEncounterClass,
			Code:    "IMP",
			Display: "Inpatient",
		},
		Subject:         ref(patientID),
		ServiceProvider: ref(orgID),
		Participant:     []r4.EncounterParticipant{{Individual: ref(pracID)}},
	}

	period := &r4.Period{}
	if adm := parseDate(record.GetString(data, "admission_date")); adm != "" {
		period.Start = adm + "T00:00:00Z"
	}
	if dis := parseDate(record.GetString(data, "discharge_date")); dis != "" {
		period.End = dis + "T23:59:00Z"
	}
	if period.Start != "" || period.End != "" {
		enc.Period = period
	}
	return enc
}

func (b *Builder) buildCondition(data record.ClinicalRecord, id, patientID string) *r4.Condition {
	diagnosis := record.GetString(data, "primary_diagnosis")

	// Coding priority: coding-engine annotation, then a raw ICD-10 code
	// from extraction, then an uncoded SNOMED display.
	coding := r4.Coding{
		System:  abdm.SystemSNOMED,
		Display: orDefault(diagnosis, "Unspecified condition"),
	}
	if cr := record.CodingFrom(record.GetMap(data, "primary_diagnosis_coding")); cr.Matched {
		coding = r4.Coding{
			System:  orDefault(cr.SystemURI, abdm.SystemICD10),
			Code:    cr.Code,
			Display: cr.Display,
		}
	} else if code := record.GetString(data, "primary_diagnosis_icd10"); code != "" {
		coding = r4.Coding{
			System:  abdm.SystemICD10,
			Code:    code,
			Display: diagnosis,
		}
	}

	return &r4.Condition{
		ResourceType: "Condition",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("Condition")}},
		ClinicalStatus: &r4.CodeableConcept{
			Coding: []r4.Coding{{
				System:  abdm.SystemConditionClinical,
				Code:    "resolved",
				Display: "Resolved",
			}},
		},
		VerificationStatus: &r4.CodeableConcept{
			Coding: []r4.Coding{{
				System: abdm.SystemConditionVerStat,
				Code:   "confirmed",
			}},
		},
		Category: []r4.CodeableConcept{{
			Coding: []r4.Coding{{
				System:  abdm.SystemConditionCategory,
				Code:    "encounter-diagnosis",
				Display: "Encounter Diagnosis",
			}},
		}},
		Code: &r4.CodeableConcept{
			Coding: []r4.Coding{coding},
			Text:   diagnosis,
		},
		Subject: ref(patientID),
	}
}

func (b *Builder) buildObservation(test any, id, patientID string) *r4.Observation {
	t, _ := test.(map[string]any)
	testName := record.GetString(t, "test_name")

	codeCoding := r4.Coding{Display: orDefault(testName, "Unknown test")}
	if cr := record.CodingFrom(record.GetMap(t, "loinc_coding")); cr.Matched {
		codeCoding = r4.Coding{
			System:  abdm.SystemLOINC,
			Code:    cr.Code,
			Display: cr.Display,
		}
	}

	obs := &r4.Observation{
		ResourceType: "Observation",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("Observation")}},
		Status:       "final",
		Code: &r4.CodeableConcept{
			Coding: []r4.Coding{codeCoding},
			Text:   testName,
		},
		Subject: ref(patientID),
	}

	if val := record.GetString(t, "result_value"); val != "" {
		if num, ok := parseAmount(val); ok {
			obs.ValueQuantity = &r4.Quantity{
				Value:  num,
				Unit:   record.GetString(t, "unit"),
				System: abdm.SystemUCUM,
			}
		} else {
			obs.ValueString = val
		}
	}

	if rr := record.GetString(t, "reference_range"); rr != "" {
		obs.ReferenceRange = []r4.ObservationReferenceRange{{Text: rr}}
	}

	switch flag := strings.ToUpper(record.GetString(t, "abnormal_flag")); flag {
	case "HIGH", "LOW":
		code := "H"
		if flag == "LOW" {
			code = "L"
		}
		obs.Interpretation = []r4.CodeableConcept{{
			Coding: []r4.Coding{{
				System:  abdm.SystemObsInterpretation,
				Code:    code,
				Display: flag,
			}},
		}}
	}

	return obs
}

func (b *Builder) buildDiagnosticReport(data record.ClinicalRecord, id, patientID, pracID string, obsIDs []string) *r4.DiagnosticReport {
	results := make([]r4.Reference, len(obsIDs))
	for i, oid := range obsIDs {
		results[i] = *ref(oid)
	}
	return &r4.DiagnosticReport{
		ResourceType: "DiagnosticReport",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("DiagnosticReport")}},
		Status:       "final",
		Code: &r4.CodeableConcept{
			Coding: []r4.Coding{{
				System:  abdm.SystemLOINC,
				Code:    "11502-2",
				Display: "Laboratory report",
			}},
		},
		Subject:    ref(patientID),
		Performer:  []r4.Reference{*ref(pracID)},
		Result:     results,
		Conclusion: record.GetString(data, "impression"),
	}
}

func (b *Builder) buildMedicationRequest(med any, id, patientID string) *r4.MedicationRequest {
	var name, dose, freq string
	switch m := med.(type) {
	case map[string]any:
		name = stringOr(m, "name", record.Stringify(m))
		dose = record.GetString(m, "dose")
		freq = record.GetString(m, "frequency")
	default:
		name = record.Stringify(med)
	}

	dosage := r4.Dosage{Text: strings.TrimSpace(dose + " " + freq)}
	if dose != "" {
		dosage.DoseAndRate = []r4.DoseAndRate{{
			DoseQuantity: &r4.Quantity{Value: 1, Unit: dose},
		}}
	}

	return &r4.MedicationRequest{
		ResourceType: "MedicationRequest",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("MedicationRequest")}},
		Status:       "active",
		Intent:       "order",
		MedicationCodeableConcept: &r4.CodeableConcept{
			Text: name,
			Coding: []r4.Coding{{
				System:  abdm.SystemRxNorm,
				Display: name,
			}},
		},
		Subject:           ref(patientID),
		DosageInstruction: []r4.Dosage{dosage},
	}
}

func (b *Builder) buildClaim(data record.ClinicalRecord, id, patientID, orgID, condID, ts string) *r4.Claim {
	claim := &r4.Claim{
		ResourceType: "Claim",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("Claim")}},
		Status:       "active",
		Type: &r4.CodeableConcept{
			Coding: []r4.Coding{{
				System:  abdm.SystemClaimType,
				Code:    "institutional",
				Display: "Institutional",
			}},
		},
		Use:     "claim",
		Patient: ref(patientID),
		Created: ts,
		Insurer: &r4.Reference{
			Identifier: &r4.Identifier{
				System: abdm.SystemNHCXInsurer,
				Value:  identifierSlug(record.GetString(data, "insurer_name"), "UNKNOWN_INSURER"),
			},
		},
		Provider: ref(orgID),
		Priority: &r4.CodeableConcept{
			Coding: []r4.Coding{{
				System: abdm.SystemProcessPriority,
				Code:   "normal",
			}},
		},
		Diagnosis: []r4.ClaimDiagnosis{{
			Sequence:           1,
			DiagnosisReference: ref(condID),
		}},
		Insurance: []r4.ClaimInsurance{{
			Sequence: 1,
			Focal:    true,
			Identifier: &r4.Identifier{
				System: abdm.SystemNHCXInsurer,
				Value:  stringOr(data, "insurance_id", "UNKNOWN_POLICY"),
			},
			Coverage: &r4.Reference{
				Display: stringOr(data, "insurer_name", "Unknown Insurer"),
			},
		}},
	}

	for i, proc := range procedures(data, "Inpatient Treatment") {
		claim.Item = append(claim.Item, r4.ClaimItem{
			Sequence: i + 1,
			ProductOrService: &r4.CodeableConcept{
				Coding: []r4.Coding{{
					System:  abdm.SystemUSCLS,
					Display: proc,
				}},
			},
		})
	}

	if amount, ok := parseAmount(record.GetString(data, "claim_amount")); ok {
		claim.Total = &r4.Money{Value: amount, Currency: "INR"}
	}

	return claim
}

func (b *Builder) buildCoverage(data record.ClinicalRecord, patientID, id string) *r4.Coverage {
	return &r4.Coverage{
		ResourceType: "Coverage",
		ID:           id,
		Status:       "active",
		Subscriber:   ref(patientID),
		SubscriberID: record.GetString(data, "insurance_id"),
		Beneficiary:  ref(patientID),
		Payor: []r4.Reference{{
			Identifier: &r4.Identifier{
				System: abdm.SystemNHCXInsurer,
				Value:  identifierSlug(record.GetString(data, "insurer_name"), "UNKNOWN_INSURER"),
			},
			Display: stringOr(data, "insurer_name", "Unknown Insurer"),
		}},
	}
}

func (b *Builder) buildEligibilityRequest(data record.ClinicalRecord, id, patientID, orgID, coverageID, ts string) *r4.CoverageEligibilityRequest {
	req := &r4.CoverageEligibilityRequest{
		ResourceType: "CoverageEligibilityRequest",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("CoverageEligibilityRequest")}},
		Status:       "active",
		Purpose:      []string{"benefits"},
		Patient:      ref(patientID),
		Created:      ts,
		Provider:     ref(orgID),
		Insurer: &r4.Reference{
			Identifier: &r4.Identifier{
				System: abdm.SystemNHCXInsurer,
				Value:  identifierSlug(record.GetString(data, "insurer_name"), "UNKNOWN_INSURER"),
			},
		},
		Insurance: []r4.EligibilityCoverage{{
			Focal:    true,
			Coverage: ref(coverageID),
		}},
	}

	for _, proc := range procedures(data, "Proposed Treatment") {
		req.Item = append(req.Item, r4.EligibilityItem{
			Category: &r4.CodeableConcept{
				Coding: []r4.Coding{{
					System:  abdm.SystemBenefitCategory,
					Code:    "medical",
					Display: "Medical",
				}},
			},
			ProductOrService: &r4.CodeableConcept{Text: proc},
		})
	}

	return req
}

func (b *Builder) buildDocumentReference(pdfPath, patientID, docType, id, ts string) *r4.DocumentReference {
	var pdfB64 string
	if pdfPath != "" {
		raw, err := b.readFile(pdfPath)
		if err != nil {
			// Degrade to an empty attachment; the bundle stays usable.
			b.logger.Warn("could not embed source PDF",
				zap.String("path", pdfPath),
				zap.Error(err),
			)
		} else {
			pdfB64 = base64.StdEncoding.EncodeToString(raw)
		}
	}

	loincCode, loincDisplay := "34105-7", "Hospital Discharge summary"
	if docType == record.DocTypeDiagnosticReport || docType == record.DocTypeLabReport {
		loincCode, loincDisplay = "11502-2", "Laboratory report"
	}

	title := "source.pdf"
	if pdfPath != "" {
		title = filepath.Base(pdfPath)
	}

	return &r4.DocumentReference{
		ResourceType: "DocumentReference",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("DocumentReference")}},
		Status:       "current",
		Type: &r4.CodeableConcept{
			Coding: []r4.Coding{{
				System:  abdm.SystemLOINC,
				Code:    loincCode,
				Display: loincDisplay,
			}},
		},
		Subject: ref(patientID),
		Date:    ts,
		Content: []r4.DocumentReferenceContent{{
			Attachment: r4.Attachment{
				ContentType: "application/pdf",
				Data:        pdfB64,
				Title:       title,
			},
		}},
	}
}

func (b *Builder) buildProvenance(resourceIDs []string, pracID, id string, sourcePaths []string, ts string) *r4.Provenance {
	targets := make([]r4.Reference, len(resourceIDs))
	for i, rid := range resourceIDs {
		targets[i] = *ref(rid)
	}

	entities := make([]r4.ProvenanceEntity, len(sourcePaths))
	for i, p := range sourcePaths {
		name := "unknown"
		if p != "" {
			name = filepath.Base(p)
		}
		entities[i] = r4.ProvenanceEntity{
			Role: "source",
			What: &r4.Reference{Display: "Source PDF: " + name},
		}
	}

	return &r4.Provenance{
		ResourceType: "Provenance",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{abdm.ProfileFor("Provenance")}},
		Target:       targets,
		Recorded:     ts,
		Reason: []r4.CodeableConcept{{
			Coding: []r4.Coding{{
				System:  abdm.SystemActReason,
				Code:    "TREAT",
				Display: "Treatment",
			}},
		}},
		Activity: &r4.CodeableConcept{
			Coding: []r4.Coding{{
				System:  abdm.SystemDataOperation,
				Code:    "CREATE",
				Display: "Create",
			}},
		},
		Agent: []r4.ProvenanceAgent{{
			Type: &r4.CodeableConcept{
				Coding: []r4.Coding{{
					System:  abdm.SystemProvenanceAgent,
					Code:    "author",
					Display: "Author",
				}},
			},
			Who:        ref(pracID),
			OnBehalfOf: &r4.Reference{Display: "NHCX FHIR Converter v1.0.0"},
		}},
		Entity: entities,
	}
}

func (b *Builder) buildComposition(
	data record.ClinicalRecord, hiType abdm.HIType, docType,
	id, patientID, pracID, orgID, condID string,
	observationIDs []string, ts string,
) *r4.Composition {
	return &r4.Composition{
		ResourceType: "Composition",
		ID:           id,
		Meta:         &r4.Meta{Profile: []string{hiType.CompositionProfile}},
		Status:       "final",
		Type: &r4.CodeableConcept{
			Coding: []r4.Coding{{
				System:  hiType.SNOMEDSystem,
				Code:    hiType.SNOMEDCode,
				Display: hiType.SNOMEDDisplay,
			}},
		},
		Subject:   ref(patientID),
		Date:      ts,
		Author:    []r4.Reference{*ref(pracID)},
		Custodian: ref(orgID),
		Title:     hiType.Display,
		Section:   b.buildSections(docType, data, condID, observationIDs),
	}
}

func (b *Builder) buildSections(docType string, data record.ClinicalRecord, condID string, observationIDs []string) []r4.CompositionSection {
	switch docType {
	case record.DocTypeDischargeSummary:
		return []r4.CompositionSection{
			{
				Title: "Chief Complaint",
				Code: &r4.CodeableConcept{
					Coding: []r4.Coding{{System: abdm.SystemLOINC, Code: "10154-3", Display: "Chief complaint"}},
				},
				Text: &r4.Narrative{Status: "generated", Div: "<div>" + record.GetString(data, "chief_complaint") + "</div>"},
			},
			{
				Title: "Diagnoses",
				Code: &r4.CodeableConcept{
					Coding: []r4.Coding{{System: abdm.SystemLOINC, Code: "29548-5", Display: "Diagnosis"}},
				},
				Entry: []r4.Reference{*ref(condID)},
				Text:  &r4.Narrative{Status: "generated", Div: "<div>" + record.GetString(data, "primary_diagnosis") + "</div>"},
			},
			{
				Title: "Medications on Discharge",
				Code: &r4.CodeableConcept{
					Coding: []r4.Coding{{System: abdm.SystemLOINC, Code: "75311-1", Display: "Discharge medications"}},
				},
				Text: &r4.Narrative{Status: "generated", Div: "<div>See MedicationRequest resources</div>"},
			},
		}
	case record.DocTypeDiagnosticReport, record.DocTypeLabReport:
		refs := make([]r4.Reference, len(observationIDs))
		for i, oid := range observationIDs {
			refs[i] = *ref(oid)
		}
		return []r4.CompositionSection{{
			Title: "Laboratory Results",
			Code: &r4.CodeableConcept{
				Coding: []r4.Coding{{System: abdm.SystemLOINC, Code: "30954-2", Display: "Relevant diagnostic tests"}},
			},
			Entry: refs,
			Text:  &r4.Narrative{Status: "generated", Div: "<div>See Observation resources</div>"},
		}}
	}
	return nil
}

func entry(id string, res any) r4.BundleEntry {
	return r4.BundleEntry{FullURL: "urn:uuid:" + id, Resource: res}
}

func ref(id string) *r4.Reference {
	return &r4.Reference{Reference: "urn:uuid:" + id}
}

func stringOr(data record.ClinicalRecord, field, fallback string) string {
	if v := record.GetString(data, field); v != "" {
		return v
	}
	return fallback
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// identifierSlug turns a display name into an NHCX participant identifier:
// uppercased, spaces to underscores, capped at 30 characters.
func identifierSlug(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	slug := strings.ReplaceAll(strings.ToUpper(name), " ", "_")
	if r := []rune(slug); len(r) > 30 {
		slug = string(r[:30])
	}
	return slug
}

// procedures lists the billable procedure lines, defaulting to a single
// placeholder line when none were extracted.
func procedures(data record.ClinicalRecord, fallback string) []string {
	items := record.GetList(data, "procedures_performed")
	if len(items) == 0 {
		return []string{fallback}
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = record.Stringify(item)
	}
	return out
}
