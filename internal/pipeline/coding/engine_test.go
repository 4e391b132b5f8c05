package coding

import (
	"testing"
)

func TestCodeDiagnosisExact(t *testing.T) {
	e := NewEngine(nil)

	cases := []struct {
		text string
		code string
	}{
		{"type 2 diabetes mellitus", "E11.9"},
		{"Essential Hypertension", "I10"},
		{"hypertension", "I10"},
		{"acute myocardial infarction", "I21.9"},
		{"dengue fever", "A90"},
		{"ckd", "N18.9"},
	}
	for _, c := range cases {
		result := e.CodeDiagnosis(c.text)
		if !result.Matched {
			t.Errorf("CodeDiagnosis(%q) did not match", c.text)
			continue
		}
		if result.Code != c.code {
			t.Errorf("CodeDiagnosis(%q) = %s, want %s", c.text, result.Code, c.code)
		}
		if result.MatchMethod != "exact" {
			t.Errorf("CodeDiagnosis(%q) method = %s", c.text, result.MatchMethod)
		}
		if result.Confidence != 100 {
			t.Errorf("CodeDiagnosis(%q) confidence = %d", c.text, result.Confidence)
		}
		if result.SystemURI != "http://hl7.org/fhir/sid/icd-10" {
			t.Errorf("system_uri = %s", result.SystemURI)
		}
	}
}

func TestCodeDiagnosisSubstring(t *testing.T) {
	e := NewEngine(nil)

	result := e.CodeDiagnosis("known case of type 2 diabetes mellitus")
	if !result.Matched || result.Code != "E11.9" {
		t.Errorf("substring match failed: %+v", result)
	}
	if result.MatchMethod != "substring" {
		t.Errorf("method = %s, want substring", result.MatchMethod)
	}
	if result.Confidence >= 100 || result.Confidence < 50 {
		t.Errorf("substring confidence = %d", result.Confidence)
	}
}

func TestCodeDiagnosisNoMatch(t *testing.T) {
	e := NewEngine(nil)

	for _, text := range []string{"", "xyzzy plugh quux"} {
		result := e.CodeDiagnosis(text)
		if result.Matched {
			t.Errorf("CodeDiagnosis(%q) unexpectedly matched %s", text, result.Code)
		}
		if result.MatchMethod != "none" {
			t.Errorf("method = %s, want none", result.MatchMethod)
		}
		if result.Code != "" || result.Confidence != 0 {
			t.Errorf("no-match result carries data: %+v", result)
		}
	}
}

func TestCodeTest(t *testing.T) {
	e := NewEngine(nil)

	cases := []struct {
		text string
		code string
	}{
		{"hemoglobin", "718-7"},
		{"Haemoglobin", "718-7"},
		{"platelet count", "777-3"},
		{"serum creatinine", "2160-0"},
		{"hba1c", "4548-4"},
		{"tsh", "3016-3"},
	}
	for _, c := range cases {
		result := e.CodeTest(c.text)
		if !result.Matched || result.Code != c.code {
			t.Errorf("CodeTest(%q) = %+v, want code %s", c.text, result, c.code)
		}
		if result.System != "LOINC" || result.SystemURI != "http://loinc.org" {
			t.Errorf("CodeTest(%q) system = %s/%s", c.text, result.System, result.SystemURI)
		}
	}
}

func TestCodeAllTests(t *testing.T) {
	e := NewEngine(nil)

	tests := []any{
		map[string]any{"test_name": "Hemoglobin", "result_value": "13.5"},
		map[string]any{"test_name": "made up assay zz"},
		"bare string entry",
	}
	coded := e.CodeAllTests(tests)
	if len(coded) != 3 {
		t.Fatalf("len = %d", len(coded))
	}

	first := coded[0].(map[string]any)["loinc_coding"].(map[string]any)
	if first["matched"] != true || first["code"] != "718-7" {
		t.Errorf("first coding = %v", first)
	}

	second := coded[1].(map[string]any)["loinc_coding"].(map[string]any)
	if second["matched"] != false {
		t.Errorf("unmatchable test matched: %v", second)
	}

	if coded[2] != "bare string entry" {
		t.Errorf("non-map entry altered: %v", coded[2])
	}
}

func TestCodeDiagnosisDeterministic(t *testing.T) {
	e := NewEngine(nil)

	first := e.CodeDiagnosis("diabetes with hypertension")
	for i := 0; i < 10; i++ {
		again := e.CodeDiagnosis("diabetes with hypertension")
		if again != first {
			t.Fatalf("nondeterministic coding: %+v vs %+v", first, again)
		}
	}
}
