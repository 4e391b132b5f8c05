package fusion

// Policy carries the static fusion configuration: the per-field authority
// hierarchy, the set of fields merged as lists, and the numeric tolerance
// table. It is passed into the engine rather than read from package state
// so tests can inject alternative policies.
type Policy struct {
	// Authority maps field name -> document type -> priority. Higher
	// priority wins a conflict; document types absent from a field's map
	// rank as zero. Fields with no entry at all fall back to the first
	// document encountered, so caller-supplied document order is part of
	// the contract.
	Authority map[string]map[string]int

	// MergeAsList names fields whose values are concatenated and
	// deduplicated across documents instead of one value winning.
	MergeAsList map[string]bool

	// NumericTolerance declares acceptable numeric drift per field
	// (age +/-2). It is declared but deliberately not consulted during
	// conflict detection: resolution uses strict normalized equality.
	// Kept to document the intended future behavior; do not wire it in
	// without revisiting the conflict-report contract.
	NumericTolerance map[string]int
}

// MergedProvenance is the provenance sentinel recorded for list-merged
// fields, which have no single source document.
const MergedProvenance = "merged from multiple documents"

// DefaultPolicy returns the production fusion policy.
func DefaultPolicy() Policy {
	return Policy{
		Authority: map[string]map[string]int{
			// Patient demographics: the discharge summary is most
			// authoritative.
			"patient_name":   {"discharge_summary": 3, "diagnostic_report": 2, "prescription": 1},
			"patient_age":    {"discharge_summary": 3, "diagnostic_report": 2, "prescription": 1},
			"patient_gender": {"discharge_summary": 3, "diagnostic_report": 2, "prescription": 1},
			"patient_id":     {"discharge_summary": 3, "diagnostic_report": 2, "prescription": 1},
			"hospital_name":  {"discharge_summary": 3, "diagnostic_report": 2, "prescription": 2},
			"treating_doctor": {"discharge_summary": 3, "prescription": 2, "diagnostic_report": 1},

			// Clinical data: discharge summary wins.
			"primary_diagnosis":        {"discharge_summary": 3, "diagnostic_report": 1, "prescription": 1},
			"admission_date":           {"discharge_summary": 3, "diagnostic_report": 1},
			"discharge_date":           {"discharge_summary": 3},
			"condition_at_discharge":   {"discharge_summary": 3},
			"medications_at_discharge": {"discharge_summary": 3, "prescription": 2},
			"procedures_performed":     {"discharge_summary": 3, "diagnostic_report": 1},

			// Lab results: the diagnostic report is authoritative.
			"tests": {"diagnostic_report": 3, "discharge_summary": 1},

			// Insurance: equally authoritative.
			"insurer_name": {"discharge_summary": 2, "diagnostic_report": 2},
			"insurance_id": {"discharge_summary": 2, "diagnostic_report": 2},
		},
		MergeAsList: map[string]bool{
			"tests":                true,
			"secondary_diagnoses":  true,
			"procedures_performed": true,
		},
		NumericTolerance: map[string]int{
			"patient_age": 2,
		},
	}
}
