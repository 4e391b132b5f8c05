// Package record defines the data exchanged between the extraction
// collaborators and the conversion pipeline. A ClinicalRecord is the
// opaque field map an upstream parser produced for one document; the
// pipeline never cares how it was obtained.
package record

import (
	"fmt"
	"strings"
)

// ClinicalRecord maps field names to extracted values. Values are scalars
// (string, float64, int), lists (tests, medications, procedures), or a
// nested CodingResult-shaped map. A record is immutable once handed to the
// pipeline; fusion builds a new record instead of mutating inputs.
type ClinicalRecord = map[string]any

// Document types recognized by the pipeline.
const (
	DocTypeDischargeSummary = "discharge_summary"
	DocTypeDiagnosticReport = "diagnostic_report"
	DocTypeLabReport        = "lab_report"
	DocTypeOPConsultation   = "op_consultation"
	DocTypePrescription     = "prescription"
	DocTypeUnknown          = "unknown"
)

// ProcessedDocument is the per-document output of the upstream extraction
// pipeline and the input unit to fusion.
type ProcessedDocument struct {
	FileName     string         `json:"file_name"`
	DocType      string         `json:"doc_type"`
	ClinicalData ClinicalRecord `json:"clinical_data"`
}

// CodingResult is the annotation the coding engine attaches to a
// diagnosis or lab test field.
type CodingResult struct {
	Matched     bool   `json:"matched"`
	Code        string `json:"code"`
	Display     string `json:"display"`
	System      string `json:"system"`
	SystemURI   string `json:"system_uri"`
	Confidence  int    `json:"confidence"`
	MatchMethod string `json:"match_method"`
}

// IsEmpty reports whether a field value counts as absent: nil, the empty
// string, or an empty list. Zero numbers are NOT absent.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case []ClinicalRecord:
		return len(val) == 0
	}
	return false
}

// Stringify renders a field value for comparison and conflict reporting.
func Stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Stringify(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetString returns a record field as a trimmed string, or "" when the
// field is missing or not string-like.
func GetString(rec ClinicalRecord, field string) string {
	v, ok := rec[field]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64, int, int64:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
	return ""
}

// GetList returns a record field as a list, treating a present non-list
// value as a singleton and an absent value as nil.
func GetList(rec ClinicalRecord, field string) []any {
	v, ok := rec[field]
	if !ok || IsEmpty(v) {
		return nil
	}
	switch val := v.(type) {
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	}
	return []any{v}
}

// GetMap returns a nested map field (e.g. a coding annotation), or nil.
func GetMap(rec ClinicalRecord, field string) map[string]any {
	if v, ok := rec[field].(map[string]any); ok {
		return v
	}
	return nil
}

// CodingFrom decodes a CodingResult-shaped map produced by the coding
// engine or arriving as parsed JSON.
func CodingFrom(m map[string]any) CodingResult {
	if m == nil {
		return CodingResult{}
	}
	cr := CodingResult{
		Code:        asString(m["code"]),
		Display:     asString(m["display"]),
		System:      asString(m["system"]),
		SystemURI:   asString(m["system_uri"]),
		MatchMethod: asString(m["match_method"]),
	}
	if b, ok := m["matched"].(bool); ok {
		cr.Matched = b
	}
	switch c := m["confidence"].(type) {
	case float64:
		cr.Confidence = int(c)
	case int:
		cr.Confidence = c
	}
	return cr
}

// AsMap renders a CodingResult in the wire shape the rest of the pipeline
// (and the original extraction contract) expects.
func (c CodingResult) AsMap() map[string]any {
	return map[string]any{
		"matched":      c.Matched,
		"code":         c.Code,
		"display":      c.Display,
		"system":       c.System,
		"system_uri":   c.SystemURI,
		"confidence":   c.Confidence,
		"match_method": c.MatchMethod,
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
