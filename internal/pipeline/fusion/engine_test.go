package fusion

import (
	"reflect"
	"testing"

	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/record"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultPolicy(), nil)
}

func TestFuseEmptyInput(t *testing.T) {
	result := newTestEngine().Fuse(nil)

	if result.UnifiedRecord == nil || len(result.UnifiedRecord) != 0 {
		t.Errorf("expected empty unified record, got %v", result.UnifiedRecord)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %d", len(result.Conflicts))
	}
	if result.Provenance == nil || result.Sources == nil {
		t.Error("expected non-nil provenance and sources")
	}
}

func TestFuseSingleDocumentPassesThrough(t *testing.T) {
	doc := record.ProcessedDocument{
		FileName: "discharge.pdf",
		DocType:  record.DocTypeDischargeSummary,
		ClinicalData: record.ClinicalRecord{
			"patient_name":      "Ramesh Kumar",
			"primary_diagnosis": "Type 2 Diabetes Mellitus",
			"insurer_name":      "",
		},
	}

	result := newTestEngine().Fuse([]record.ProcessedDocument{doc})

	if !reflect.DeepEqual(result.UnifiedRecord, doc.ClinicalData) {
		t.Errorf("unified record differs from input: %v", result.UnifiedRecord)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %d", len(result.Conflicts))
	}
	// Every field is attributed, even the empty-valued one.
	for _, field := range []string{"patient_name", "primary_diagnosis", "insurer_name"} {
		if got := result.Provenance[field]; got != "discharge.pdf" {
			t.Errorf("provenance[%s] = %q, want discharge.pdf", field, got)
		}
	}
	if len(result.Sources) != 1 || result.Sources[0] != "discharge.pdf" {
		t.Errorf("unexpected sources: %v", result.Sources)
	}
}

func TestFuseConflictResolvedByAuthority(t *testing.T) {
	docs := []record.ProcessedDocument{
		{
			FileName: "rx.pdf",
			DocType:  record.DocTypePrescription,
			ClinicalData: record.ClinicalRecord{
				"primary_diagnosis": "Diabetes",
			},
		},
		{
			FileName: "discharge.pdf",
			DocType:  record.DocTypeDischargeSummary,
			ClinicalData: record.ClinicalRecord{
				"primary_diagnosis": "Hypertension",
			},
		},
	}

	result := newTestEngine().Fuse(docs)

	if got := result.UnifiedRecord["primary_diagnosis"]; got != "Hypertension" {
		t.Errorf("unified primary_diagnosis = %v, want Hypertension", got)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d", len(result.Conflicts))
	}
	c := result.Conflicts[0]
	if c.Field != "primary_diagnosis" {
		t.Errorf("conflict field = %q", c.Field)
	}
	if c.ResolvedTo != "Hypertension" {
		t.Errorf("conflict resolved_to = %q, want Hypertension", c.ResolvedTo)
	}
	if c.ResolvedFrom != "discharge.pdf" {
		t.Errorf("conflict resolved_from = %q, want discharge.pdf", c.ResolvedFrom)
	}
	if len(c.Values) != 2 {
		t.Errorf("expected both contributors recorded, got %d", len(c.Values))
	}
	if want := "Used discharge_summary (highest authority for this field)"; c.Resolution != want {
		t.Errorf("resolution = %q, want %q", c.Resolution, want)
	}
	if got := result.Provenance["primary_diagnosis"]; got != "discharge.pdf" {
		t.Errorf("provenance = %q, want discharge.pdf", got)
	}
}

func TestFuseAgreementIsNotAConflict(t *testing.T) {
	docs := []record.ProcessedDocument{
		{
			FileName:     "discharge.pdf",
			DocType:      record.DocTypeDischargeSummary,
			ClinicalData: record.ClinicalRecord{"patient_name": "Ramesh Kumar"},
		},
		{
			FileName:     "lab.pdf",
			DocType:      record.DocTypeDiagnosticReport,
			ClinicalData: record.ClinicalRecord{"patient_name": "  ramesh kumar "},
		},
	}

	result := newTestEngine().Fuse(docs)

	if len(result.Conflicts) != 0 {
		t.Errorf("case/whitespace variants should agree, got %d conflicts", len(result.Conflicts))
	}
	// The authority winner's exact form survives.
	if got := result.UnifiedRecord["patient_name"]; got != "Ramesh Kumar" {
		t.Errorf("patient_name = %v, want Ramesh Kumar", got)
	}
}

func TestFuseMergesListsWithDedup(t *testing.T) {
	docs := []record.ProcessedDocument{
		{
			FileName: "discharge.pdf",
			DocType:  record.DocTypeDischargeSummary,
			ClinicalData: record.ClinicalRecord{
				"tests": []any{
					map[string]any{"test_name": "Hemoglobin", "value": "13.5"},
				},
			},
		},
		{
			FileName: "lab.pdf",
			DocType:  record.DocTypeDiagnosticReport,
			ClinicalData: record.ClinicalRecord{
				"tests": []any{
					"HEMOGLOBIN",
					"Serum Creatinine",
				},
			},
		},
	}

	result := newTestEngine().Fuse(docs)

	merged, ok := result.UnifiedRecord["tests"].([]any)
	if !ok {
		t.Fatalf("tests is not a list: %T", result.UnifiedRecord["tests"])
	}
	// "HEMOGLOBIN" duplicates nothing: its string form differs from the
	// map-shaped entry, so all three survive. A literal repeat would not.
	if len(merged) != 3 {
		t.Errorf("merged length = %d, want 3: %v", len(merged), merged)
	}
	if got := result.Provenance["tests"]; got != MergedProvenance {
		t.Errorf("provenance = %q, want %q", got, MergedProvenance)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("list merge must not report conflicts, got %d", len(result.Conflicts))
	}
}

func TestFuseDedupIsCaseInsensitiveFirstSeen(t *testing.T) {
	docs := []record.ProcessedDocument{
		{
			FileName: "a.pdf",
			DocType:  record.DocTypeDischargeSummary,
			ClinicalData: record.ClinicalRecord{
				"procedures_performed": []any{"Coronary Angiography", "PTCA"},
			},
		},
		{
			FileName: "b.pdf",
			DocType:  record.DocTypeDiagnosticReport,
			ClinicalData: record.ClinicalRecord{
				"procedures_performed": []any{"coronary angiography", "Echocardiography"},
			},
		},
	}

	result := newTestEngine().Fuse(docs)

	merged := result.UnifiedRecord["procedures_performed"].([]any)
	want := []any{"Coronary Angiography", "PTCA", "Echocardiography"}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("merged = %v, want %v", merged, want)
	}
}

func TestFuseSingleContributorCopiesVerbatim(t *testing.T) {
	docs := []record.ProcessedDocument{
		{
			FileName:     "discharge.pdf",
			DocType:      record.DocTypeDischargeSummary,
			ClinicalData: record.ClinicalRecord{"patient_name": "Sita Devi"},
		},
		{
			FileName:     "lab.pdf",
			DocType:      record.DocTypeDiagnosticReport,
			ClinicalData: record.ClinicalRecord{"claim_amount": "125000"},
		},
	}

	result := newTestEngine().Fuse(docs)

	if got := result.UnifiedRecord["claim_amount"]; got != "125000" {
		t.Errorf("claim_amount = %v", got)
	}
	if got := result.Provenance["claim_amount"]; got != "lab.pdf" {
		t.Errorf("provenance = %q, want lab.pdf", got)
	}
}

func TestFuseEmptyValuesDoNotCompete(t *testing.T) {
	docs := []record.ProcessedDocument{
		{
			FileName:     "rx.pdf",
			DocType:      record.DocTypePrescription,
			ClinicalData: record.ClinicalRecord{"hospital_name": "Apollo Hospitals"},
		},
		{
			FileName:     "discharge.pdf",
			DocType:      record.DocTypeDischargeSummary,
			ClinicalData: record.ClinicalRecord{"hospital_name": ""},
		},
	}

	result := newTestEngine().Fuse(docs)

	// The higher-authority document contributed nothing for this field.
	if got := result.UnifiedRecord["hospital_name"]; got != "Apollo Hospitals" {
		t.Errorf("hospital_name = %v, want Apollo Hospitals", got)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %d", len(result.Conflicts))
	}
}

func TestFuseLaterSameTypeDocumentReplaces(t *testing.T) {
	docs := []record.ProcessedDocument{
		{
			FileName:     "lab1.pdf",
			DocType:      record.DocTypeDiagnosticReport,
			ClinicalData: record.ClinicalRecord{"treating_doctor": "Dr. Mehta"},
		},
		{
			FileName:     "lab2.pdf",
			DocType:      record.DocTypeDiagnosticReport,
			ClinicalData: record.ClinicalRecord{"treating_doctor": "Dr. Rao"},
		},
	}

	result := newTestEngine().Fuse(docs)

	if got := result.UnifiedRecord["treating_doctor"]; got != "Dr. Rao" {
		t.Errorf("treating_doctor = %v, want Dr. Rao", got)
	}
	if got := result.Provenance["treating_doctor"]; got != "lab2.pdf" {
		t.Errorf("provenance = %q, want lab2.pdf", got)
	}
}

func TestFuseUnlistedFieldFallsBackToFirstDocument(t *testing.T) {
	docs := []record.ProcessedDocument{
		{
			FileName:     "rx.pdf",
			DocType:      record.DocTypePrescription,
			ClinicalData: record.ClinicalRecord{"chief_complaint": "Chest pain"},
		},
		{
			FileName:     "discharge.pdf",
			DocType:      record.DocTypeDischargeSummary,
			ClinicalData: record.ClinicalRecord{"chief_complaint": "Breathlessness"},
		},
	}

	result := newTestEngine().Fuse(docs)

	if got := result.UnifiedRecord["chief_complaint"]; got != "Chest pain" {
		t.Errorf("chief_complaint = %v, want first document's value", got)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(result.Conflicts))
	}
	if got := result.Conflicts[0].ResolvedFrom; got != "rx.pdf" {
		t.Errorf("resolved_from = %q, want rx.pdf", got)
	}
}

func TestFuseDeterministicAcrossRuns(t *testing.T) {
	docs := []record.ProcessedDocument{
		{
			FileName: "discharge.pdf",
			DocType:  record.DocTypeDischargeSummary,
			ClinicalData: record.ClinicalRecord{
				"patient_name":      "Ramesh Kumar",
				"primary_diagnosis": "Hypertension",
				"patient_age":       "58",
			},
		},
		{
			FileName: "lab.pdf",
			DocType:  record.DocTypeDiagnosticReport,
			ClinicalData: record.ClinicalRecord{
				"patient_name":      "R. Kumar",
				"primary_diagnosis": "HTN stage 2",
				"tests":             []any{"Lipid Profile"},
			},
		},
	}

	e := newTestEngine()
	first := e.Fuse(docs)
	for i := 0; i < 20; i++ {
		again := e.Fuse(docs)
		if !reflect.DeepEqual(first.UnifiedRecord, again.UnifiedRecord) {
			t.Fatal("unified record differs between runs")
		}
		if !reflect.DeepEqual(first.Conflicts, again.Conflicts) {
			t.Fatal("conflict list differs between runs")
		}
	}
}
