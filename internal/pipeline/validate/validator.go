// Package validate checks FHIR bundles against ABDM/NHCX submission
// rules and reports findings as FHIR OperationOutcome issues.
//
// Three levels of validation run on every bundle:
//
//  1. Structural: correct resourceType, required resources and fields
//  2. Terminology: official coding systems, valid value sets
//  3. Reference: every urn:uuid reference resolves inside the bundle
//
// Validation operates on the decoded JSON form (map[string]any), not on
// typed structs: bundles arriving over the API from other producers must
// get the same scrutiny as locally built ones.
package validate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arogya-labs/nhcx-bridge/internal/fhir/r4"
)

// Issue is a single validation finding.
type Issue struct {
	Severity string `json:"severity"` // error | warning | information
	Code     string `json:"code"`     // FHIR issue type code
	Message  string `json:"message"`
	Location string `json:"location"`
	Fix      string `json:"fix"`
}

// Readiness summarizes how close a bundle is to NHCX submission.
type Readiness struct {
	Score            int      `json:"score"`
	Status           string   `json:"status"`
	Color            string   `json:"color"`
	ResourcesPresent []string `json:"resources_present"`
	ResourcesMissing []string `json:"resources_missing"`
}

// Result is the complete validation report for one bundle.
type Result struct {
	Valid            bool                 `json:"valid"`
	ErrorCount       int                  `json:"error_count"`
	WarningCount     int                  `json:"warning_count"`
	InfoCount        int                  `json:"info_count"`
	Errors           []Issue              `json:"errors"`
	Warnings         []Issue              `json:"warnings"`
	Suggestions      []Issue              `json:"suggestions"`
	OperationOutcome *r4.OperationOutcome `json:"operation_outcome"`
	Readiness        Readiness            `json:"readiness"`
	Summary          string               `json:"summary"`
}

var (
	validGenders = map[string]bool{
		"male": true, "female": true, "other": true, "unknown": true,
	}
	validClaimUse = map[string]bool{
		"claim": true, "preauthorization": true, "predetermination": true,
	}
	validConditionClinical = map[string]bool{
		"active": true, "recurrence": true, "relapse": true,
		"inactive": true, "remission": true, "resolved": true,
	}
	validBundleTypes = map[string]bool{
		"document": true, "collection": true, "transaction": true,
	}
	validObsStatus = map[string]bool{
		"registered": true, "preliminary": true, "final": true,
		"amended": true, "cancelled": true,
	}

	// Official coding system prefixes accepted without a warning.
	validSystemPrefixes = []string{
		"http://hl7.org/fhir/sid/icd-10",
		"http://loinc.org",
		"http://snomed.info/sct",
		"http://terminology.hl7.org",
		"https://nrces.in/ndhm/fhir",
		"http://unitsofmeasure.org",
		"https://ndhm.gov.in",
		"https://nhcx.health.gov.in",
		"http://www.nlm.nih.gov/research/umls/rxnorm",
	}

	// SNOMED codes ABDM accepts for Composition.type.
	abdmSNOMEDCodes = map[string]bool{
		"373942005": true, "4241000179101": true, "371530004": true, "440545006": true,
	}
)

const claimBundleProfile = "https://nrces.in/ndhm/fhir/r4/StructureDefinition/ClaimBundle"

// Validator validates decoded FHIR bundles. Stateless; safe for
// concurrent use.
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a bundle validator.
func NewValidator(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{logger: logger}
}

// Validate runs all checks on a decoded bundle and returns the full
// report. A nil or empty bundle short-circuits to a single error.
func (v *Validator) Validate(bundle map[string]any) Result {
	if len(bundle) == 0 {
		return v.buildResult([]Issue{{
			Severity: "error",
			Code:     "required",
			Message:  "Bundle is empty or null",
			Location: "Bundle",
			Fix:      "Ensure the FHIR builder produced output",
		}}, nil)
	}

	col := collect(bundle)
	var issues []Issue

	issues = append(issues, checkBundle(bundle)...)
	issues = append(issues, checkRequiredResources(col)...)
	issues = append(issues, checkCompositions(col.byType["Composition"])...)
	issues = append(issues, checkPatients(col.byType["Patient"])...)
	issues = append(issues, checkClaims(col.byType["Claim"])...)
	issues = append(issues, checkConditions(col.byType["Condition"])...)
	issues = append(issues, checkObservations(col.byType["Observation"])...)
	issues = append(issues, checkMedicationRequests(col.byType["MedicationRequest"])...)
	issues = append(issues, checkDiagnosticReports(col.byType["DiagnosticReport"])...)
	issues = append(issues, checkReferences(col)...)
	issues = append(issues, checkCodingSystems(col)...)
	issues = append(issues, checkProfiles(col)...)

	return v.buildResult(issues, col)
}

// collection indexes a bundle's entries for the individual checks.
// typeOrder preserves first-seen resource type order so reports stay
// deterministic.
type collection struct {
	entries   []map[string]any
	byType    map[string][]map[string]any
	typeOrder []string
	fullURLs  map[string]bool
}

func collect(bundle map[string]any) *collection {
	col := &collection{
		byType:   map[string][]map[string]any{},
		fullURLs: map[string]bool{},
	}
	for _, e := range asList(bundle["entry"]) {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		col.entries = append(col.entries, entry)
		res := asMap(entry["resource"])
		if rt := asString(res["resourceType"]); rt != "" {
			if _, seen := col.byType[rt]; !seen {
				col.typeOrder = append(col.typeOrder, rt)
			}
			col.byType[rt] = append(col.byType[rt], res)
		}
		if u := asString(entry["fullUrl"]); u != "" {
			col.fullURLs[u] = true
		}
	}
	return col
}

func checkBundle(bundle map[string]any) []Issue {
	var issues []Issue

	if asString(bundle["resourceType"]) != "Bundle" {
		issues = append(issues, issue("error", "structure",
			"resourceType must be 'Bundle'", "Bundle.resourceType",
			"Set root resourceType to 'Bundle'"))
	}

	bt := asString(bundle["type"])
	if !validBundleTypes[bt] {
		issues = append(issues, issue("error", "value",
			fmt.Sprintf("Bundle.type '%s' is invalid", bt), "Bundle.type",
			"ABDM requires Bundle.type = 'document'"))
	} else if bt != "document" {
		issues = append(issues, issue("warning", "business-rule",
			"ABDM clinical bundles must use type 'document'", "Bundle.type",
			"Change Bundle.type from 'collection' to 'document'"))
	}

	if asString(bundle["timestamp"]) == "" {
		issues = append(issues, issue("warning", "required",
			"Bundle.timestamp missing", "Bundle.timestamp",
			"Add ISO 8601 UTC timestamp"))
	}

	declared := false
	for _, p := range asList(asMap(bundle["meta"])["profile"]) {
		if p == claimBundleProfile {
			declared = true
			break
		}
	}
	if !declared {
		issues = append(issues, issue("warning", "value",
			"Bundle should declare NHCX ClaimBundle profile", "Bundle.meta.profile",
			"Add '"+claimBundleProfile+"' to Bundle.meta.profile"))
	}

	return issues
}

func checkRequiredResources(col *collection) []Issue {
	var issues []Issue

	if len(col.byType["Composition"]) == 0 {
		issues = append(issues, issue("error", "required",
			"Composition resource missing — ABDM mandate for document bundles",
			"Bundle.entry[0]",
			"Add Composition as FIRST entry with ABDM SNOMED HI type codes"))
	}

	required := []struct{ rt, fix string }{
		{"Patient", "Patient demographics required for all NHCX claims"},
		{"Claim", "Claim resource mandatory for NHCX submission"},
		{"Organization", "Provider Organization resource required"},
		{"Practitioner", "Treating doctor Practitioner resource required"},
	}
	for _, r := range required {
		if len(col.byType[r.rt]) == 0 {
			issues = append(issues, issue("error", "required",
				"Required resource missing: "+r.rt, "Bundle.entry", r.fix))
		}
	}

	recommended := []struct{ rt, fix string }{
		{"Encounter", "Add Encounter with admission/discharge dates"},
		{"Condition", "Add Condition with ICD-10 coded primary diagnosis"},
		{"DocumentReference", "Embed original PDF for complete audit trail"},
		{"Provenance", "Record extraction metadata and data lineage"},
	}
	for _, r := range recommended {
		if len(col.byType[r.rt]) == 0 {
			issues = append(issues, issue("information", "required",
				"Recommended resource missing: "+r.rt, "Bundle.entry", r.fix))
		}
	}

	return issues
}

func checkCompositions(comps []map[string]any) []Issue {
	var issues []Issue
	for _, comp := range comps {
		if asString(comp["status"]) == "" {
			issues = append(issues, issue("error", "required",
				"Composition.status required", "Composition.status",
				"Set to 'final' for completed documents"))
		}

		codings := asList(asMap(comp["type"])["coding"])
		if len(codings) == 0 {
			issues = append(issues, issue("error", "required",
				"Composition.type must have SNOMED CT coding for ABDM HI type",
				"Composition.type.coding",
				"Use SNOMED 373942005 (Discharge Summary) or 4241000179101 (Diagnostic Report)"))
		} else {
			valid := false
			for _, c := range codings {
				coding := asMap(c)
				if asString(coding["system"]) == "http://snomed.info/sct" &&
					abdmSNOMEDCodes[asString(coding["code"])] {
					valid = true
					break
				}
			}
			if !valid {
				issues = append(issues, issue("error", "value",
					"Composition.type must use official ABDM SNOMED HI type code",
					"Composition.type.coding",
					"Use system='http://snomed.info/sct' code='373942005' or '4241000179101'"))
			}
		}

		if asMap(comp["subject"]) == nil {
			issues = append(issues, issue("error", "required",
				"Composition.subject (patient reference) required",
				"Composition.subject", "Add reference to Patient resource"))
		}
		if len(asList(comp["author"])) == 0 {
			issues = append(issues, issue("error", "required",
				"Composition.author required", "Composition.author",
				"Add reference to Practitioner resource"))
		}
	}
	return issues
}

func checkPatients(patients []map[string]any) []Issue {
	var issues []Issue
	for _, patient := range patients {
		names := asList(patient["name"])
		if len(names) == 0 || asString(asMap(names[0])["text"]) == "" {
			issues = append(issues, issue("error", "required",
				"Patient.name missing", "Patient.name",
				"Ensure patient name is present in source document"))
		}

		gender := asString(patient["gender"])
		if gender == "" {
			issues = append(issues, issue("warning", "required",
				"Patient.gender missing", "Patient.gender",
				"Check document for M/F indicator"))
		} else if !validGenders[gender] {
			issues = append(issues, issue("error", "value",
				fmt.Sprintf("Patient.gender '%s' invalid", gender), "Patient.gender",
				"Must be one of: male, female, other, unknown"))
		}

		if asString(patient["birthDate"]) == "" {
			issues = append(issues, issue("warning", "required",
				"Patient.birthDate missing (age approximation used)",
				"Patient.birthDate", "Provide exact date of birth"))
		}
	}
	return issues
}

func checkClaims(claims []map[string]any) []Issue {
	var issues []Issue
	for _, claim := range claims {
		if use := asString(claim["use"]); !validClaimUse[use] {
			issues = append(issues, issue("error", "value",
				fmt.Sprintf("Claim.use '%s' invalid", use), "Claim.use",
				"Set to 'claim' or 'preauthorization'"))
		}
		if asMap(claim["insurer"]) == nil {
			issues = append(issues, issue("error", "required",
				"Claim.insurer required for NHCX submission", "Claim.insurer",
				"Add insurer identifier from policy document"))
		}
		if len(asList(claim["diagnosis"])) == 0 {
			issues = append(issues, issue("error", "required",
				"Claim has no diagnosis linked", "Claim.diagnosis",
				"Link primary Condition resource"))
		}
		if len(asList(claim["item"])) == 0 {
			issues = append(issues, issue("warning", "required",
				"Claim has no items (procedures/services)", "Claim.item",
				"List procedures performed during hospitalisation"))
		}
	}
	return issues
}

func checkConditions(conditions []map[string]any) []Issue {
	var issues []Issue
	for _, cond := range conditions {
		clinical := asMap(cond["clinicalStatus"])
		if clinical == nil {
			issues = append(issues, issue("error", "required",
				"Condition.clinicalStatus required", "Condition.clinicalStatus",
				"Set to 'resolved' for post-discharge diagnoses"))
		} else {
			valid := false
			for _, c := range asList(clinical["coding"]) {
				if validConditionClinical[asString(asMap(c)["code"])] {
					valid = true
					break
				}
			}
			if !valid {
				issues = append(issues, issue("error", "value",
					"Condition.clinicalStatus code invalid",
					"Condition.clinicalStatus.coding.code",
					"Must be one of: active, recurrence, relapse, inactive, remission, resolved"))
			}
		}

		icdPresent := false
		for _, c := range asList(asMap(cond["code"])["coding"]) {
			if asString(asMap(c)["system"]) == "http://hl7.org/fhir/sid/icd-10" {
				icdPresent = true
				break
			}
		}
		if !icdPresent {
			issues = append(issues, issue("warning", "value",
				"Condition not ICD-10 coded", "Condition.code.coding",
				"ICD-10 code improves claim processing. Auto-coding was attempted."))
		}
	}
	return issues
}

func checkObservations(observations []map[string]any) []Issue {
	var issues []Issue
	for _, obs := range observations {
		hasValue := false
		for _, k := range []string{"valueQuantity", "valueString", "valueCodeableConcept", "valueBoolean"} {
			if v, ok := obs[k]; ok && v != nil && v != "" && v != false {
				hasValue = true
				break
			}
		}
		if !hasValue {
			issues = append(issues, issue("warning", "required",
				"Observation has no result value", "Observation.value[x]",
				"Ensure lab result value present on the report"))
		}

		if !validObsStatus[asString(obs["status"])] {
			issues = append(issues, issue("warning", "value",
				"Observation.status invalid", "Observation.status",
				"Set to 'final' for submitted results"))
		}
	}
	return issues
}

func checkMedicationRequests(meds []map[string]any) []Issue {
	var issues []Issue
	for _, med := range meds {
		if asMap(med["medicationCodeableConcept"]) == nil && asMap(med["medicationReference"]) == nil {
			issues = append(issues, issue("error", "required",
				"MedicationRequest must identify medication",
				"MedicationRequest.medication[x]", "Add medication name"))
		}
		if asString(med["status"]) == "" {
			issues = append(issues, issue("error", "required",
				"MedicationRequest.status required", "MedicationRequest.status",
				"Set to 'active'"))
		}
		if asString(med["intent"]) == "" {
			issues = append(issues, issue("error", "required",
				"MedicationRequest.intent required", "MedicationRequest.intent",
				"Set to 'order' for discharge prescriptions"))
		}
	}
	return issues
}

func checkDiagnosticReports(reports []map[string]any) []Issue {
	var issues []Issue
	for _, report := range reports {
		if asString(report["status"]) != "final" {
			issues = append(issues, issue("warning", "value",
				"DiagnosticReport.status should be 'final'",
				"DiagnosticReport.status", "Set to 'final'"))
		}
		if len(asList(report["result"])) == 0 {
			issues = append(issues, issue("warning", "required",
				"DiagnosticReport has no Observation results linked",
				"DiagnosticReport.result",
				"Link each lab result as an Observation"))
		}
	}
	return issues
}

// checkReferences walks every resource tree and reports urn:uuid
// references that do not resolve to an entry fullUrl.
func checkReferences(col *collection) []Issue {
	var issues []Issue
	for _, entry := range col.entries {
		res := asMap(entry["resource"])
		rt := asString(res["resourceType"])
		if rt == "" {
			rt = "Unknown"
		}
		walk(res, func(node map[string]any) {
			ref := asString(node["reference"])
			if ref != "" && strings.HasPrefix(ref, "urn:uuid:") && !col.fullURLs[ref] {
				issues = append(issues, issue("error", "not-found",
					fmt.Sprintf("Broken reference '%s' in %s", ref, rt),
					rt+".reference",
					"All urn:uuid references must resolve inside this bundle"))
			}
		})
	}
	return issues
}

// checkCodingSystems walks every resource tree and warns about coding
// systems outside the official allowlist.
func checkCodingSystems(col *collection) []Issue {
	var issues []Issue
	for _, entry := range col.entries {
		res := asMap(entry["resource"])
		rt := asString(res["resourceType"])
		if rt == "" {
			rt = "Unknown"
		}
		walk(res, func(node map[string]any) {
			codings, ok := node["coding"].([]any)
			if !ok {
				return
			}
			for _, c := range codings {
				system := asString(asMap(c)["system"])
				if system == "" || allowedSystem(system) {
					continue
				}
				issues = append(issues, issue("warning", "value",
					fmt.Sprintf("Non-standard coding system '%s' in %s", system, rt),
					rt+".coding.system",
					"Use official systems: ICD-10, LOINC, SNOMED CT, NHCX"))
			}
		})
	}
	return issues
}

func checkProfiles(col *collection) []Issue {
	const nrces = "https://nrces.in/ndhm/fhir/r4/StructureDefinition/"
	var issues []Issue
	for _, entry := range col.entries {
		res := asMap(entry["resource"])
		rt := asString(res["resourceType"])
		if rt == "" {
			continue
		}
		if len(asList(asMap(res["meta"])["profile"])) == 0 {
			issues = append(issues, issue("information", "value",
				rt+" has no NRCeS profile in meta.profile",
				rt+".meta.profile",
				"Add profile URL: "+nrces+rt))
		}
	}
	return issues
}

func allowedSystem(system string) bool {
	for _, p := range validSystemPrefixes {
		if strings.HasPrefix(system, p) {
			return true
		}
	}
	return false
}

// walk visits every map node in a decoded JSON tree, depth first.
func walk(node any, visit func(map[string]any)) {
	switch n := node.(type) {
	case map[string]any:
		visit(n)
		for _, v := range n {
			walk(v, visit)
		}
	case []any:
		for _, item := range n {
			walk(item, visit)
		}
	}
}

// readinessWeights is ordered; resources_missing keeps this order.
var readinessWeights = []struct {
	rt     string
	weight int
}{
	{"Patient", 10},
	{"Claim", 15},
	{"Organization", 8},
	{"Practitioner", 8},
	{"Condition", 8},
	{"Composition", 12},
	{"Encounter", 5},
	{"DocumentReference", 5},
	{"Provenance", 5},
	{"DiagnosticReport", 5},
	{"Observation", 5},
	{"MedicationRequest", 5},
}

func readiness(col *collection, errorCount, warningCount int) Readiness {
	present := map[string]bool{}
	var presentOrder []string
	if col != nil {
		presentOrder = col.typeOrder
		for _, rt := range col.typeOrder {
			present[rt] = true
		}
	}

	score := 100
	var missing []string
	for _, w := range readinessWeights {
		if !present[w.rt] {
			score -= w.weight
			missing = append(missing, w.rt)
		}
	}
	if penalty := errorCount * 3; penalty > 25 {
		score -= 25
	} else {
		score -= penalty
	}
	if warningCount > 10 {
		score -= 10
	} else {
		score -= warningCount
	}
	if score < 0 {
		score = 0
	}

	var status, color string
	switch {
	case score >= 90:
		status, color = "Ready for NHCX submission", "green"
	case score >= 75:
		status, color = "Review warnings before submitting", "yellow"
	case score >= 50:
		status, color = "Fix errors — not ready for submission", "orange"
	default:
		status, color = "Critical issues — major rework needed", "red"
	}

	if presentOrder == nil {
		presentOrder = []string{}
	}
	return Readiness{
		Score:            score,
		Status:           status,
		Color:            color,
		ResourcesPresent: presentOrder,
		ResourcesMissing: missing,
	}
}

func (v *Validator) buildResult(issues []Issue, col *collection) Result {
	errors := []Issue{}
	warnings := []Issue{}
	infos := []Issue{}
	for _, i := range issues {
		switch i.Severity {
		case "error":
			errors = append(errors, i)
		case "warning":
			warnings = append(warnings, i)
		default:
			infos = append(infos, i)
		}
	}

	outcomeIssues := make([]r4.OperationOutcomeIssue, len(issues))
	for i, is := range issues {
		outcomeIssues[i] = r4.OperationOutcomeIssue{
			Severity:    is.Severity,
			Code:        is.Code,
			Details:     &r4.CodeableConcept{Text: is.Message},
			Diagnostics: is.Fix,
			Expression:  []string{is.Location},
		}
	}
	outcome := r4.NewOperationOutcome(outcomeIssues...)
	outcome.ID = "validation-result"

	rd := readiness(col, len(errors), len(warnings))
	valid := len(errors) == 0

	v.logger.Info("validation complete",
		zap.Bool("valid", valid),
		zap.Int("errors", len(errors)),
		zap.Int("warnings", len(warnings)),
		zap.Int("score", rd.Score),
	)

	return Result{
		Valid:            valid,
		ErrorCount:       len(errors),
		WarningCount:     len(warnings),
		InfoCount:        len(infos),
		Errors:           errors,
		Warnings:         warnings,
		Suggestions:      infos,
		OperationOutcome: outcome,
		Readiness:        rd,
		Summary:          rd.Status,
	}
}

func issue(severity, code, message, location, fix string) Issue {
	return Issue{Severity: severity, Code: code, Message: message, Location: location, Fix: fix}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
