// Package integration exercises the full conversion pipeline without
// external dependencies: detection, coding, fusion, bundle assembly
// and validation in one pass.
package integration

import (
	"context"
	"testing"

	"github.com/arogya-labs/nhcx-bridge/internal/pipeline"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/record"
)

func dischargeInput() pipeline.DocumentInput {
	return pipeline.DocumentInput{
		FileName: "discharge.pdf",
		Text: "DISCHARGE SUMMARY\nApollo Hospitals, Chennai\n" +
			"Patient admitted with uncontrolled blood sugar.",
		ClinicalData: record.ClinicalRecord{
			"patient_name":      "Ramesh Kumar",
			"patient_age":       "58 years",
			"patient_gender":    "male",
			"hospital_name":     "Apollo Hospitals Chennai",
			"treating_doctor":   "Dr. S. Venkatesh",
			"primary_diagnosis": "Type 2 Diabetes Mellitus",
			"admission_date":    "10/03/2025",
			"discharge_date":    "15/03/2025",
			"insurer_name":      "Star Health Insurance",
			"insurance_id":      "SH-99871",
			"claim_amount":      "85,000",
			"tests": []any{
				map[string]any{"test_name": "HbA1c", "result_value": "9.2", "unit": "%"},
			},
		},
	}
}

func labInput() pipeline.DocumentInput {
	return pipeline.DocumentInput{
		FileName: "lab.pdf",
		Text: "DIAGNOSTIC REPORT\nSpecimen: blood\nTest results below " +
			"with reference range per laboratory standard.",
		ClinicalData: record.ClinicalRecord{
			"patient_name":  "Ramesh Kumar",
			"hospital_name": "Apollo Diagnostics",
			"tests": []any{
				map[string]any{"test_name": "Hemoglobin", "result_value": "12.8", "unit": "g/dL"},
				map[string]any{"test_name": "Serum Creatinine", "result_value": "1.1", "unit": "mg/dL"},
			},
		},
	}
}

func TestSingleDocumentConversion(t *testing.T) {
	c := pipeline.NewConverter(nil, nil)

	result, err := c.ConvertSingle(context.Background(), dischargeInput(), "claim", nil)
	if err != nil {
		t.Fatalf("ConvertSingle: %v", err)
	}

	if result.DocType != record.DocTypeDischargeSummary {
		t.Errorf("doc_type = %s, want discharge_summary", result.DocType)
	}
	if result.Detection == nil || result.Detection.Confidence < 90 {
		t.Errorf("detection = %+v, want title-based high confidence", result.Detection)
	}

	// Auto-coding should have filled in the ICD-10 code.
	if got := record.GetString(result.ClinicalData, "primary_diagnosis_icd10"); got != "E11.9" {
		t.Errorf("primary_diagnosis_icd10 = %q, want E11.9", got)
	}

	if !result.Validation.Valid {
		t.Fatalf("bundle invalid: %+v", result.Validation.Errors)
	}
	if result.Validation.Readiness.Score < 90 {
		t.Errorf("readiness score = %d, want >= 90", result.Validation.Readiness.Score)
	}

	entries := result.BundleDocument["entry"].([]any)
	first := entries[0].(map[string]any)["resource"].(map[string]any)
	if first["resourceType"] != "Composition" {
		t.Errorf("first entry = %v, want Composition", first["resourceType"])
	}
}

func TestMultiDocumentClaimConversion(t *testing.T) {
	c := pipeline.NewConverter(nil, nil)

	docs := []pipeline.DocumentInput{dischargeInput(), labInput()}
	result, err := c.ConvertClaim(context.Background(), docs, "claim", nil)
	if err != nil {
		t.Fatalf("ConvertClaim: %v", err)
	}

	if result.Fusion == nil {
		t.Fatal("fusion result missing")
	}
	if len(result.FileNames) != 2 || result.DocTypes[0] != record.DocTypeDischargeSummary {
		t.Errorf("file_names = %v doc_types = %v", result.FileNames, result.DocTypes)
	}

	// hospital_name differs between documents; the discharge summary
	// wins by authority and the conflict is recorded.
	if got := record.GetString(result.ClinicalData, "hospital_name"); got != "Apollo Hospitals Chennai" {
		t.Errorf("hospital_name = %q", got)
	}
	foundConflict := false
	for _, conflict := range result.Fusion.Conflicts {
		if conflict.Field == "hospital_name" {
			foundConflict = true
		}
	}
	if !foundConflict {
		t.Error("expected hospital_name conflict")
	}

	// Lab tests from both documents should be merged.
	tests := record.GetList(result.ClinicalData, "tests")
	if len(tests) != 3 {
		t.Errorf("merged tests = %d, want 3", len(tests))
	}

	if !result.Validation.Valid {
		t.Fatalf("bundle invalid: %+v", result.Validation.Errors)
	}
}

func TestClaimDocumentLimit(t *testing.T) {
	c := pipeline.NewConverter(nil, nil)

	docs := make([]pipeline.DocumentInput, 6)
	for i := range docs {
		docs[i] = dischargeInput()
	}
	if _, err := c.ConvertClaim(context.Background(), docs, "claim", nil); err == nil {
		t.Fatal("expected error for more than 5 documents")
	}
}

func TestExplicitDocTypeSkipsDetection(t *testing.T) {
	c := pipeline.NewConverter(nil, nil)

	in := dischargeInput()
	in.Text = ""
	in.DocType = record.DocTypePrescription

	result, err := c.ConvertSingle(context.Background(), in, "claim", nil)
	if err != nil {
		t.Fatalf("ConvertSingle: %v", err)
	}
	if result.Detection != nil {
		t.Error("detection ran despite explicit doc_type")
	}
	if result.DocType != record.DocTypePrescription {
		t.Errorf("doc_type = %s", result.DocType)
	}
}
