// Package detect classifies clinical document text into ABDM Health
// Information types using keyword frequency scoring with a title
// fast-path.
package detect

import (
	"strings"

	"go.uber.org/zap"

	"github.com/arogya-labs/nhcx-bridge/internal/abdm"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/record"
)

// Result describes one detection outcome.
type Result struct {
	DocType         string         `json:"doc_type"`
	ABDMHIType      string         `json:"abdm_hi_type"`
	Confidence      float64        `json:"confidence_percent"`
	Score           int            `json:"score"`
	MatchedKeywords []string       `json:"matched_keywords"`
	AllScores       map[string]int `json:"all_scores"`
	Reason          string         `json:"reason,omitempty"`
}

// keywordBank holds the weighted keyword lists for one document type.
type keywordBank struct {
	high   []string
	medium []string
	low    []string
}

const (
	weightHigh   = 3
	weightMedium = 2
	weightLow    = 1

	// titleZoneLen bounds the heading search. Scanned Indian hospital
	// PDFs print the document title prominently at the top, so an
	// explicit heading beats keyword statistics.
	titleZoneLen = 1200

	minTextLen = 30
)

// docTypeOrder fixes iteration order for title matching and score
// tie-breaks.
var docTypeOrder = []string{
	record.DocTypeDischargeSummary,
	record.DocTypeDiagnosticReport,
	record.DocTypePrescription,
	record.DocTypeOPConsultation,
}

var titlePatterns = map[string][]string{
	record.DocTypeDischargeSummary: {
		"discharge summary", "discharge summery", "dischargé summary",
		"date of discharge", "advice on discharge", "condition at discharge",
	},
	record.DocTypeDiagnosticReport: {
		"laboratory report", "lab report", "diagnostic report",
		"pathology report", "radiology report", "investigation report",
		"test report", "haematology report", "biochemistry report",
	},
	record.DocTypePrescription: {
		"prescription", "rx:", "rx ",
	},
	record.DocTypeOPConsultation: {
		"op consultation", "outpatient consultation", "clinic notes",
		"consultation notes",
	},
}

var keywordBanks = map[string]keywordBank{
	record.DocTypeDischargeSummary: {
		high: []string{
			"date of discharge", "discharge summary", "discharge date",
			"admitted on", "date of admission", "final diagnosis",
			"condition at discharge", "discharge medication",
			"advice on discharge", "discharge advice",
		},
		medium: []string{
			"treating physician", "attending doctor", "ward", "bed number",
			"length of stay", "follow up", "follow-up", "primary diagnosis",
			"inpatient", "ip number", "uhid",
		},
		low: []string{
			"hospital", "patient", "diagnosis", "treatment", "medication",
			"doctor", "physician", "admission", "blood pressure",
		},
	},
	record.DocTypeDiagnosticReport: {
		high: []string{
			"laboratory report", "lab report", "investigation report",
			"test report", "pathology report", "radiology report",
			"diagnostic report", "sample collected", "specimen",
			"result", "reference range", "normal range",
		},
		medium: []string{
			"haemoglobin", "hemoglobin", "blood glucose", "creatinine",
			"urea", "cholesterol", "platelet", "wbc", "rbc",
			"hba1c", "tsh", "bilirubin", "sgpt", "sgot", "urine",
			"impression", "finding", "report date", "collection date",
		},
		low: []string{
			"lab", "test", "value", "unit", "range", "sample",
			"analysis", "examination",
		},
	},
	record.DocTypePrescription: {
		high: []string{
			"prescription", "rx", "sig:", "dosage", "tablets",
			"capsules", "syrup", "injection", "apply topically",
			"take orally", "before food", "after food",
		},
		medium: []string{
			"refills", "dispense", "morning", "evening", "night",
			"once daily", "twice daily", "thrice daily", "sos",
			"prn", "as needed",
		},
		low: []string{
			"medicine", "drug", "dose", "frequency",
		},
	},
	record.DocTypeOPConsultation: {
		high: []string{
			"outpatient", "op consultation", "clinic notes",
			"consultation notes", "op number", "opd",
			"chief complaint", "history of present illness",
			"hpi", "review of systems",
		},
		medium: []string{
			"vital signs", "weight", "height", "bmi", "temperature",
			"pulse", "respiratory rate", "spo2", "physical examination",
			"general examination", "systemic examination",
		},
		low: []string{
			"complaint", "history", "examination", "plan",
		},
	},
}

// Detector classifies document text. Stateless; safe for concurrent
// use.
type Detector struct {
	logger *zap.Logger
}

// NewDetector creates a document type detector.
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{logger: logger}
}

// Detect classifies raw document text. Text shorter than 30 characters
// or matching no keywords comes back as "unknown", which downstream
// maps to the DischargeSummary HI type.
func (d *Detector) Detect(text string) Result {
	if len(strings.TrimSpace(text)) < minTextLen {
		return unknown("Text too short to detect")
	}

	lower := strings.ToLower(text)

	// Title fast-path: an explicit heading near the top of the document
	// overrides keyword statistics.
	titleZone := lower
	if len(titleZone) > titleZoneLen {
		titleZone = titleZone[:titleZoneLen]
	}
	for _, docType := range docTypeOrder {
		for _, title := range titlePatterns[docType] {
			if strings.Contains(titleZone, title) {
				d.logger.Info("title-override detected",
					zap.String("doc_type", docType),
					zap.String("title", title),
				)
				return Result{
					DocType:         docType,
					ABDMHIType:      abdm.HITypeKeyFor(docType),
					Confidence:      95.0,
					Score:           999,
					MatchedKeywords: []string{title},
					AllScores:       map[string]int{},
				}
			}
		}
	}

	allScores := map[string]int{}
	allMatched := map[string][]string{}
	for _, docType := range docTypeOrder {
		bank := keywordBanks[docType]
		score := 0
		var matched []string
		for _, group := range []struct {
			weight   int
			keywords []string
		}{
			{weightHigh, bank.high},
			{weightMedium, bank.medium},
			{weightLow, bank.low},
		} {
			for _, kw := range group.keywords {
				if strings.Contains(lower, kw) {
					score += group.weight
					matched = append(matched, kw)
				}
			}
		}
		allScores[docType] = score
		allMatched[docType] = matched
	}

	bestType := docTypeOrder[0]
	for _, docType := range docTypeOrder[1:] {
		if allScores[docType] > allScores[bestType] {
			bestType = docType
		}
	}
	bestScore := allScores[bestType]
	if bestScore == 0 {
		return unknown("No keywords matched")
	}

	bank := keywordBanks[bestType]
	maxPossible := weightHigh*len(bank.high) + weightMedium*len(bank.medium) + weightLow*len(bank.low)
	confidence := float64(bestScore) / float64(maxPossible) * 100 * 2
	if confidence > 99.9 {
		confidence = 99.9
	}
	confidence = roundTenth(confidence)

	d.logger.Info("detected document type",
		zap.String("doc_type", bestType),
		zap.Float64("confidence", confidence),
		zap.Int("score", bestScore),
	)

	return Result{
		DocType:         bestType,
		ABDMHIType:      abdm.HITypeKeyFor(bestType),
		Confidence:      confidence,
		Score:           bestScore,
		MatchedKeywords: allMatched[bestType],
		AllScores:       allScores,
	}
}

func unknown(reason string) Result {
	return Result{
		DocType:         record.DocTypeUnknown,
		ABDMHIType:      "DischargeSummary",
		Confidence:      0,
		Score:           0,
		MatchedKeywords: []string{},
		AllScores:       map[string]int{},
		Reason:          reason,
	}
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
