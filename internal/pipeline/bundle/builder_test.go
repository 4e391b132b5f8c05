package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/record"
)

func sampleRecord() record.ClinicalRecord {
	return record.ClinicalRecord{
		"patient_name":      "Ramesh Kumar",
		"patient_age":       "58",
		"patient_gender":    "male",
		"patient_id":        "ABHA-1234",
		"hospital_name":     "Apollo Hospitals Chennai",
		"treating_doctor":   "Dr. S. Mehta",
		"primary_diagnosis": "Type 2 Diabetes Mellitus",
		"primary_diagnosis_coding": map[string]any{
			"matched":    true,
			"code":       "E11.9",
			"display":    "Type 2 diabetes mellitus without complications",
			"system":     "ICD-10",
			"system_uri": "http://hl7.org/fhir/sid/icd-10",
		},
		"admission_date": "12/03/2025",
		"discharge_date": "18/03/2025",
		"tests": []any{
			map[string]any{
				"test_name":       "Hemoglobin",
				"result_value":    "13.5",
				"unit":            "g/dL",
				"reference_range": "13.0 - 17.0",
			},
			map[string]any{
				"test_name":     "HbA1c",
				"result_value":  "Positive",
				"abnormal_flag": "High",
			},
		},
		"medications_at_discharge": []any{
			map[string]any{"name": "Metformin", "dose": "500mg", "frequency": "BD"},
			"Aspirin 75mg",
		},
		"procedures_performed": []any{"Coronary Angiography"},
		"insurer_name":         "Star Health Insurance",
		"insurance_id":         "POL-99887766",
		"claim_amount":         "1,25,000",
	}
}

// decode round-trips a bundle through JSON, the form API clients and the
// validator consume.
func decode(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	return out
}

func entriesOf(t *testing.T, doc map[string]any) []map[string]any {
	t.Helper()
	raw, ok := doc["entry"].([]any)
	if !ok {
		t.Fatalf("bundle has no entry list")
	}
	out := make([]map[string]any, len(raw))
	for i, e := range raw {
		out[i] = e.(map[string]any)
	}
	return out
}

func resourceTypes(t *testing.T, doc map[string]any) map[string]int {
	t.Helper()
	counts := map[string]int{}
	for _, e := range entriesOf(t, doc) {
		res := e["resource"].(map[string]any)
		counts[res["resourceType"].(string)]++
	}
	return counts
}

func findResource(t *testing.T, doc map[string]any, resourceType string) map[string]any {
	t.Helper()
	for _, e := range entriesOf(t, doc) {
		res := e["resource"].(map[string]any)
		if res["resourceType"] == resourceType {
			return res
		}
	}
	t.Fatalf("no %s in bundle", resourceType)
	return nil
}

func TestBuildDocumentBundleStructure(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDischargeSummary, UseCaseClaim, nil))

	if doc["resourceType"] != "Bundle" {
		t.Errorf("resourceType = %v", doc["resourceType"])
	}
	if doc["type"] != "document" {
		t.Errorf("bundle type = %v, want document", doc["type"])
	}
	if doc["timestamp"] == nil {
		t.Error("bundle timestamp missing")
	}

	entries := entriesOf(t, doc)
	first := entries[0]["resource"].(map[string]any)
	if first["resourceType"] != "Composition" {
		t.Errorf("first entry is %v, want Composition", first["resourceType"])
	}

	meta := doc["meta"].(map[string]any)
	profiles := meta["profile"].([]any)
	if len(profiles) != 1 || !strings.Contains(profiles[0].(string), "ClaimBundle") {
		t.Errorf("bundle profile = %v", profiles)
	}
}

func TestBuildReferencesAreClosed(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDischargeSummary, UseCaseClaim, nil))

	fullURLs := map[string]bool{}
	for _, e := range entriesOf(t, doc) {
		fullURLs[e["fullUrl"].(string)] = true
	}

	var walk func(node any)
	walk = func(node any) {
		switch n := node.(type) {
		case map[string]any:
			if ref, ok := n["reference"].(string); ok && strings.HasPrefix(ref, "urn:uuid:") {
				if !fullURLs[ref] {
					t.Errorf("dangling reference %s", ref)
				}
			}
			for _, v := range n {
				walk(v)
			}
		case []any:
			for _, v := range n {
				walk(v)
			}
		}
	}
	walk(doc)
}

func TestBuildClaimUseCase(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDischargeSummary, UseCaseClaim, nil))

	counts := resourceTypes(t, doc)
	if counts["Claim"] != 1 {
		t.Errorf("Claim count = %d, want 1", counts["Claim"])
	}
	if counts["CoverageEligibilityRequest"] != 0 || counts["Coverage"] != 0 {
		t.Error("claim bundle must not carry preauthorization resources")
	}

	claim := findResource(t, doc, "Claim")
	if claim["use"] != "claim" {
		t.Errorf("claim use = %v", claim["use"])
	}
	total := claim["total"].(map[string]any)
	if total["value"].(float64) != 125000 || total["currency"] != "INR" {
		t.Errorf("claim total = %v", total)
	}
	insurer := claim["insurer"].(map[string]any)["identifier"].(map[string]any)
	if insurer["value"] != "STAR_HEALTH_INSURANCE" {
		t.Errorf("insurer identifier = %v", insurer["value"])
	}
}

func TestBuildPreauthorizationUseCase(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDischargeSummary, UseCasePreauthorization, nil))

	counts := resourceTypes(t, doc)
	if counts["CoverageEligibilityRequest"] != 1 || counts["Coverage"] != 1 {
		t.Errorf("preauthorization resources = %v", counts)
	}
	if counts["Claim"] != 0 {
		t.Error("preauthorization bundle must not carry a Claim")
	}

	req := findResource(t, doc, "CoverageEligibilityRequest")
	purposes := req["purpose"].([]any)
	if len(purposes) != 1 || purposes[0] != "benefits" {
		t.Errorf("purpose = %v", purposes)
	}
}

func TestBuildConditionUsesCodingAnnotation(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDischargeSummary, UseCaseClaim, nil))

	cond := findResource(t, doc, "Condition")
	coding := cond["code"].(map[string]any)["coding"].([]any)[0].(map[string]any)
	if coding["code"] != "E11.9" {
		t.Errorf("condition code = %v, want E11.9", coding["code"])
	}
	if coding["system"] != "http://hl7.org/fhir/sid/icd-10" {
		t.Errorf("condition system = %v", coding["system"])
	}
}

func TestBuildConditionFallsBackToDisplayOnly(t *testing.T) {
	b := NewBuilder(nil)
	data := record.ClinicalRecord{"primary_diagnosis": "Dengue fever"}
	doc := decode(t, b.Build(data, record.DocTypeDischargeSummary, UseCaseClaim, nil))

	cond := findResource(t, doc, "Condition")
	coding := cond["code"].(map[string]any)["coding"].([]any)[0].(map[string]any)
	if coding["code"] != nil {
		t.Errorf("unexpected code %v on uncoded diagnosis", coding["code"])
	}
	if coding["display"] != "Dengue fever" {
		t.Errorf("display = %v", coding["display"])
	}
}

func TestBuildObservationValues(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDiagnosticReport, UseCaseClaim, nil))

	var numeric, textual map[string]any
	for _, e := range entriesOf(t, doc) {
		res := e["resource"].(map[string]any)
		if res["resourceType"] != "Observation" {
			continue
		}
		if res["code"].(map[string]any)["text"] == "Hemoglobin" {
			numeric = res
		} else {
			textual = res
		}
	}
	if numeric == nil || textual == nil {
		t.Fatal("expected two observations")
	}

	vq := numeric["valueQuantity"].(map[string]any)
	if vq["value"].(float64) != 13.5 || vq["unit"] != "g/dL" {
		t.Errorf("valueQuantity = %v", vq)
	}
	rr := numeric["referenceRange"].([]any)[0].(map[string]any)
	if rr["text"] != "13.0 - 17.0" {
		t.Errorf("referenceRange = %v", rr)
	}

	if textual["valueString"] != "Positive" {
		t.Errorf("valueString = %v", textual["valueString"])
	}
	interp := textual["interpretation"].([]any)[0].(map[string]any)["coding"].([]any)[0].(map[string]any)
	if interp["code"] != "H" {
		t.Errorf("interpretation = %v", interp)
	}
}

func TestBuildDiagnosticReportGroupsObservations(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDiagnosticReport, UseCaseClaim, nil))

	dr := findResource(t, doc, "DiagnosticReport")
	results := dr["result"].([]any)
	if len(results) != 2 {
		t.Errorf("result refs = %d, want 2", len(results))
	}
}

func TestBuildNoDiagnosticReportWithoutTests(t *testing.T) {
	b := NewBuilder(nil)
	data := record.ClinicalRecord{"patient_name": "Sita Devi"}
	doc := decode(t, b.Build(data, record.DocTypeDischargeSummary, UseCaseClaim, nil))

	if n := resourceTypes(t, doc)["DiagnosticReport"]; n != 0 {
		t.Errorf("unexpected DiagnosticReport in discharge bundle without tests")
	}

	// Lab document types always get the report shell.
	doc = decode(t, b.Build(data, record.DocTypeLabReport, UseCaseClaim, nil))
	if n := resourceTypes(t, doc)["DiagnosticReport"]; n != 1 {
		t.Errorf("lab report bundle missing DiagnosticReport")
	}
}

func TestBuildMedicationRequests(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDischargeSummary, UseCaseClaim, nil))

	var structured, bare map[string]any
	for _, e := range entriesOf(t, doc) {
		res := e["resource"].(map[string]any)
		if res["resourceType"] != "MedicationRequest" {
			continue
		}
		switch res["medicationCodeableConcept"].(map[string]any)["text"] {
		case "Metformin":
			structured = res
		case "Aspirin 75mg":
			bare = res
		}
	}
	if structured == nil || bare == nil {
		t.Fatal("expected two medication requests")
	}

	dosage := structured["dosageInstruction"].([]any)[0].(map[string]any)
	if dosage["text"] != "500mg BD" {
		t.Errorf("dosage text = %v", dosage["text"])
	}
	if dosage["doseAndRate"] == nil {
		t.Error("structured medication missing doseAndRate")
	}

	bareDosage := bare["dosageInstruction"].([]any)[0].(map[string]any)
	if bareDosage["doseAndRate"] != nil {
		t.Error("bare medication string must not get doseAndRate")
	}
}

func TestBuildDocumentReferenceEmbedsPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "discharge.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDischargeSummary, UseCaseClaim, []string{path}))

	dr := findResource(t, doc, "DocumentReference")
	att := dr["content"].([]any)[0].(map[string]any)["attachment"].(map[string]any)
	if att["title"] != "discharge.pdf" {
		t.Errorf("attachment title = %v", att["title"])
	}
	if att["contentType"] != "application/pdf" {
		t.Errorf("contentType = %v", att["contentType"])
	}
	if att["data"] == "" {
		t.Error("attachment data empty")
	}
}

func TestBuildDocumentReferenceDegradesOnReadError(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDischargeSummary, UseCaseClaim, []string{"/nonexistent/file.pdf"}))

	dr := findResource(t, doc, "DocumentReference")
	att := dr["content"].([]any)[0].(map[string]any)["attachment"].(map[string]any)
	if att["data"] != "" {
		t.Error("expected empty data for unreadable PDF")
	}
	if att["title"] != "file.pdf" {
		t.Errorf("title = %v", att["title"])
	}
}

func TestBuildProvenanceTargetsEverything(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDischargeSummary, UseCaseClaim, nil))

	entries := entriesOf(t, doc)
	prov := findResource(t, doc, "Provenance")
	targets := prov["target"].([]any)

	// Everything except the Composition and the Provenance itself.
	if want := len(entries) - 2; len(targets) != want {
		t.Errorf("provenance targets = %d, want %d", len(targets), want)
	}
}

func TestBuildCompositionSections(t *testing.T) {
	b := NewBuilder(nil)

	doc := decode(t, b.Build(sampleRecord(), record.DocTypeDischargeSummary, UseCaseClaim, nil))
	comp := findResource(t, doc, "Composition")
	sections := comp["section"].([]any)
	if len(sections) != 3 {
		t.Fatalf("discharge sections = %d, want 3", len(sections))
	}
	if sections[0].(map[string]any)["title"] != "Chief Complaint" {
		t.Errorf("section[0] = %v", sections[0].(map[string]any)["title"])
	}

	typeCoding := comp["type"].(map[string]any)["coding"].([]any)[0].(map[string]any)
	if typeCoding["code"] != "373942005" {
		t.Errorf("composition SNOMED code = %v", typeCoding["code"])
	}

	doc = decode(t, b.Build(sampleRecord(), record.DocTypeDiagnosticReport, UseCaseClaim, nil))
	comp = findResource(t, doc, "Composition")
	sections = comp["section"].([]any)
	if len(sections) != 1 || sections[0].(map[string]any)["title"] != "Laboratory Results" {
		t.Errorf("lab sections = %v", sections)
	}
	typeCoding = comp["type"].(map[string]any)["coding"].([]any)[0].(map[string]any)
	if typeCoding["code"] != "4241000179101" {
		t.Errorf("composition SNOMED code = %v", typeCoding["code"])
	}
}

func TestBuildPatientDefaults(t *testing.T) {
	b := NewBuilder(nil)
	doc := decode(t, b.Build(record.ClinicalRecord{}, record.DocTypeDischargeSummary, UseCaseClaim, nil))

	p := findResource(t, doc, "Patient")
	if p["gender"] != "unknown" {
		t.Errorf("gender = %v, want unknown", p["gender"])
	}
	name := p["name"].([]any)[0].(map[string]any)
	if name["text"] != "Unknown" {
		t.Errorf("name = %v", name["text"])
	}
	if p["birthDate"] != nil {
		t.Errorf("unexpected birthDate %v", p["birthDate"])
	}

	org := findResource(t, doc, "Organization")
	id := org["identifier"].([]any)[0].(map[string]any)
	if id["value"] != "UNKNOWN_HOSPITAL" {
		t.Errorf("org identifier = %v", id["value"])
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"12/03/2025", "2025-03-12"},
		{"12-03-2025", "2025-03-12"},
		{"2025-03-12", "2025-03-12"},
		{"12 Mar 2025", "2025-03-12"},
		{"12 March 2025", "2025-03-12"},
		{"March 12, 2025", "2025-03-12"},
		{"12.03.2025", "2025-03-12"},
		{"2025/03/12", "2025-03-12"},
		{"not a date", "not a date"},
		{"", ""},
	}
	for _, c := range cases {
		if got := parseDate(c.in); got != c.want {
			t.Errorf("parseDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBirthDateFromAge(t *testing.T) {
	now := mustTime(t, "2025-06-01T00:00:00Z")
	if got := birthDateFromAge("58", now); got != "1967-01-01" {
		t.Errorf("birthDateFromAge(58) = %q", got)
	}
	if got := birthDateFromAge("58 years", now); got != "1967-01-01" {
		t.Errorf("birthDateFromAge with unit = %q", got)
	}
	if got := birthDateFromAge("abc", now); got != "" {
		t.Errorf("non-numeric age = %q", got)
	}
	if got := birthDateFromAge("0", now); got != "" {
		t.Errorf("zero age = %q", got)
	}
}

func TestIdentifierSlug(t *testing.T) {
	if got := identifierSlug("Star Health Insurance", "X"); got != "STAR_HEALTH_INSURANCE" {
		t.Errorf("slug = %q", got)
	}
	long := strings.Repeat("A", 40)
	if got := identifierSlug(long, "X"); len(got) != 30 {
		t.Errorf("slug length = %d, want 30", len(got))
	}
	if got := identifierSlug("", "FALLBACK"); got != "FALLBACK" {
		t.Errorf("empty slug = %q", got)
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}
