package validate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/bundle"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/record"
)

func builtBundle(t *testing.T, useCase string) map[string]any {
	t.Helper()
	data := record.ClinicalRecord{
		"patient_name":      "Ramesh Kumar",
		"patient_age":       "58",
		"patient_gender":    "male",
		"hospital_name":     "Apollo Hospitals",
		"treating_doctor":   "Dr. S. Mehta",
		"primary_diagnosis": "Type 2 Diabetes Mellitus",
		"primary_diagnosis_coding": map[string]any{
			"matched":    true,
			"code":       "E11.9",
			"display":    "Type 2 diabetes mellitus without complications",
			"system_uri": "http://hl7.org/fhir/sid/icd-10",
		},
		"admission_date": "12/03/2025",
		"discharge_date": "18/03/2025",
		"tests": []any{
			map[string]any{"test_name": "Hemoglobin", "result_value": "13.5", "unit": "g/dL"},
		},
		"medications_at_discharge": []any{
			map[string]any{"name": "Metformin", "dose": "500mg", "frequency": "BD"},
		},
		"procedures_performed": []any{"Inpatient Treatment"},
		"insurer_name":         "Star Health Insurance",
		"insurance_id":         "POL-1234",
		"claim_amount":         "125000",
	}

	b := bundle.NewBuilder(nil)
	raw, err := json.Marshal(b.Build(data, record.DocTypeDischargeSummary, useCase, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return doc
}

func TestValidateEmptyBundle(t *testing.T) {
	v := NewValidator(nil)

	for _, in := range []map[string]any{nil, {}} {
		result := v.Validate(in)
		if result.Valid {
			t.Error("empty bundle must not be valid")
		}
		if result.ErrorCount != 1 {
			t.Errorf("error_count = %d, want 1", result.ErrorCount)
		}
		if !strings.Contains(result.Errors[0].Message, "empty or null") {
			t.Errorf("message = %q", result.Errors[0].Message)
		}
		if result.Readiness.Score >= 50 {
			t.Errorf("empty bundle score = %d, want red band", result.Readiness.Score)
		}
		if result.Readiness.Color != "red" {
			t.Errorf("empty bundle color = %q", result.Readiness.Color)
		}
	}
}

func TestValidateFreshBundleHasNoErrors(t *testing.T) {
	v := NewValidator(nil)
	result := v.Validate(builtBundle(t, bundle.UseCaseClaim))

	if !result.Valid {
		t.Errorf("fresh bundle invalid: %+v", result.Errors)
	}
	if result.ErrorCount != 0 {
		t.Errorf("error_count = %d: %+v", result.ErrorCount, result.Errors)
	}
	if result.Readiness.Score < 90 {
		t.Errorf("score = %d, want >= 90 (warnings: %+v)", result.Readiness.Score, result.Warnings)
	}
	if result.Summary != result.Readiness.Status {
		t.Errorf("summary %q != readiness status %q", result.Summary, result.Readiness.Status)
	}
}

func TestValidateBrokenReference(t *testing.T) {
	doc := builtBundle(t, bundle.UseCaseClaim)

	// Point the Claim's diagnosis at a resource that is not in the bundle.
	for _, e := range doc["entry"].([]any) {
		res := e.(map[string]any)["resource"].(map[string]any)
		if res["resourceType"] == "Claim" {
			diag := res["diagnosis"].([]any)[0].(map[string]any)
			diag["diagnosisReference"].(map[string]any)["reference"] = "urn:uuid:does-not-exist"
		}
	}

	result := NewValidator(nil).Validate(doc)
	if result.Valid {
		t.Error("bundle with broken reference must be invalid")
	}
	found := false
	for _, err := range result.Errors {
		if err.Code == "not-found" && strings.Contains(err.Message, "urn:uuid:does-not-exist") {
			found = true
			if !strings.Contains(err.Message, "Claim") {
				t.Errorf("message should name the resource type: %q", err.Message)
			}
		}
	}
	if !found {
		t.Errorf("no not-found issue reported: %+v", result.Errors)
	}
}

func TestValidateMissingComposition(t *testing.T) {
	doc := builtBundle(t, bundle.UseCaseClaim)
	doc["entry"] = doc["entry"].([]any)[1:] // drop the Composition

	result := NewValidator(nil).Validate(doc)
	if result.Valid {
		t.Error("bundle without Composition must be invalid")
	}
	found := false
	for _, err := range result.Errors {
		if strings.Contains(err.Message, "Composition resource missing") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing Composition not reported: %+v", result.Errors)
	}
}

func TestValidateBundleType(t *testing.T) {
	v := NewValidator(nil)

	doc := builtBundle(t, bundle.UseCaseClaim)
	doc["type"] = "collection"
	result := v.Validate(doc)
	if result.ErrorCount != 0 {
		t.Errorf("collection type must be a warning, got errors: %+v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if w.Location == "Bundle.type" {
			found = true
		}
	}
	if !found {
		t.Error("no warning for non-document bundle type")
	}

	doc["type"] = "batch"
	result = v.Validate(doc)
	found = false
	for _, err := range result.Errors {
		if err.Location == "Bundle.type" {
			found = true
		}
	}
	if !found {
		t.Error("invalid bundle type must be an error")
	}
}

func TestValidateInvalidGender(t *testing.T) {
	doc := builtBundle(t, bundle.UseCaseClaim)
	for _, e := range doc["entry"].([]any) {
		res := e.(map[string]any)["resource"].(map[string]any)
		if res["resourceType"] == "Patient" {
			res["gender"] = "M"
		}
	}

	result := NewValidator(nil).Validate(doc)
	found := false
	for _, err := range result.Errors {
		if err.Location == "Patient.gender" {
			found = true
		}
	}
	if !found {
		t.Errorf("invalid gender not reported: %+v", result.Errors)
	}
}

func TestValidateNonStandardCodingSystem(t *testing.T) {
	doc := builtBundle(t, bundle.UseCaseClaim)
	for _, e := range doc["entry"].([]any) {
		res := e.(map[string]any)["resource"].(map[string]any)
		if res["resourceType"] == "Condition" {
			code := res["code"].(map[string]any)
			code["coding"] = []any{map[string]any{
				"system": "http://example.com/homegrown-codes",
				"code":   "X1",
			}}
		}
	}

	result := NewValidator(nil).Validate(doc)
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "Non-standard coding system") {
			found = true
		}
	}
	if !found {
		t.Errorf("non-standard system not flagged: %+v", result.Warnings)
	}
}

func TestValidateUncodedConditionWarns(t *testing.T) {
	doc := builtBundle(t, bundle.UseCaseClaim)
	for _, e := range doc["entry"].([]any) {
		res := e.(map[string]any)["resource"].(map[string]any)
		if res["resourceType"] == "Condition" {
			code := res["code"].(map[string]any)
			code["coding"] = []any{map[string]any{
				"system":  "http://snomed.info/sct",
				"display": "Dengue fever",
			}}
		}
	}

	result := NewValidator(nil).Validate(doc)
	found := false
	for _, w := range result.Warnings {
		if w.Location == "Condition.code.coding" {
			found = true
		}
	}
	if !found {
		t.Errorf("uncoded condition not flagged: %+v", result.Warnings)
	}
}

func TestReadinessMonotonicity(t *testing.T) {
	v := NewValidator(nil)
	doc := builtBundle(t, bundle.UseCaseClaim)
	baseline := v.Validate(doc).Readiness.Score

	// Strip resources one kind at a time; the score must never rise.
	prev := baseline
	for _, rt := range []string{"MedicationRequest", "Observation", "DiagnosticReport", "Provenance", "Encounter", "Practitioner", "Claim"} {
		var kept []any
		for _, e := range doc["entry"].([]any) {
			res := e.(map[string]any)["resource"].(map[string]any)
			if res["resourceType"] != rt {
				kept = append(kept, e)
			}
		}
		doc["entry"] = kept

		score := v.Validate(doc).Readiness.Score
		if score > prev {
			t.Errorf("score rose from %d to %d after removing %s", prev, score, rt)
		}
		prev = score
	}
}

func TestReadinessReportsMissingResources(t *testing.T) {
	result := NewValidator(nil).Validate(builtBundle(t, bundle.UseCaseClaim))

	for _, rt := range result.Readiness.ResourcesMissing {
		for _, present := range result.Readiness.ResourcesPresent {
			if rt == present {
				t.Errorf("%s reported both present and missing", rt)
			}
		}
	}
	// No PDFs were embedded, so DocumentReference must be missing.
	found := false
	for _, rt := range result.Readiness.ResourcesMissing {
		if rt == "DocumentReference" {
			found = true
		}
	}
	if !found {
		t.Errorf("DocumentReference not in missing list: %v", result.Readiness.ResourcesMissing)
	}
}

func TestValidatePreauthorizationBundle(t *testing.T) {
	result := NewValidator(nil).Validate(builtBundle(t, bundle.UseCasePreauthorization))

	// No Claim resource: that is an error for NHCX claim submission and
	// costs the Claim readiness weight.
	if result.Valid {
		t.Error("preauthorization bundle lacks a Claim and must report it")
	}
	foundErr := false
	for _, err := range result.Errors {
		if strings.Contains(err.Message, "Required resource missing: Claim") {
			foundErr = true
		}
	}
	if !foundErr {
		t.Errorf("missing Claim not reported: %+v", result.Errors)
	}
}

func TestValidateOperationOutcomeShape(t *testing.T) {
	result := NewValidator(nil).Validate(map[string]any{})

	oo := result.OperationOutcome
	if oo.ResourceType != "OperationOutcome" || oo.ID != "validation-result" {
		t.Errorf("outcome header = %s/%s", oo.ResourceType, oo.ID)
	}
	if len(oo.Issue) != 1 {
		t.Fatalf("issue count = %d", len(oo.Issue))
	}
	is := oo.Issue[0]
	if is.Details == nil || is.Details.Text != "Bundle is empty or null" {
		t.Errorf("details = %+v", is.Details)
	}
	if is.Diagnostics == "" || len(is.Expression) != 1 {
		t.Errorf("issue missing fix/location: %+v", is)
	}
}
