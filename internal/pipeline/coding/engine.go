// Package coding maps free-text diagnoses to ICD-10 codes and lab test
// names to LOINC codes. It works fully offline against embedded lookup
// tables, trying exact, then substring, then fuzzy matching with a
// confidence score for each.
package coding

import (
	"strings"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"

	"github.com/arogya-labs/nhcx-bridge/internal/abdm"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/record"
)

// Fuzzy match acceptance thresholds. LOINC is stricter: lab test names
// are short and near-misses code the wrong analyte.
const (
	fuzzyThresholdICD   = 0.60
	fuzzyThresholdLOINC = 0.65

	substringMinScore = 50
)

// Engine performs offline clinical coding. Stateless; safe for
// concurrent use.
type Engine struct {
	logger *zap.Logger
	params *levenshtein.Params
}

// NewEngine creates a coding engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, params: levenshtein.NewParams()}
}

// CodeDiagnosis maps a diagnosis string to an ICD-10 code.
func (e *Engine) CodeDiagnosis(diagnosisText string) record.CodingResult {
	return e.lookup(diagnosisText, icd10Table, "ICD-10", abdm.SystemICD10, fuzzyThresholdICD)
}

// CodeTest maps a lab test name to a LOINC code.
func (e *Engine) CodeTest(testName string) record.CodingResult {
	return e.lookup(testName, loincTable, "LOINC", abdm.SystemLOINC, fuzzyThresholdLOINC)
}

// CodeAllTests attaches a LOINC coding annotation to every map-shaped
// test in the list. Non-map entries pass through untouched.
func (e *Engine) CodeAllTests(tests []any) []any {
	for _, t := range tests {
		test, ok := t.(map[string]any)
		if !ok {
			continue
		}
		name := record.GetString(test, "test_name")
		test["loinc_coding"] = e.CodeTest(name).AsMap()
	}
	return tests
}

func (e *Engine) lookup(rawText string, table []tableEntry, system, systemURI string, fuzzyThreshold float64) record.CodingResult {
	needle := strings.ToLower(strings.TrimSpace(rawText))
	if needle == "" {
		return noMatch(system, systemURI)
	}

	// 1. Exact match.
	for _, entry := range table {
		if entry.key == needle {
			return match(entry, system, systemURI, 100, "exact")
		}
	}

	// 2. Substring match: needle inside a key or key inside needle,
	// ranked by string similarity.
	var bestSub *tableEntry
	bestSubScore := 0
	for i := range table {
		entry := &table[i]
		if !strings.Contains(needle, entry.key) && !strings.Contains(entry.key, needle) {
			continue
		}
		score := int(e.similarity(needle, entry.key)*100 + 0.5)
		if score > bestSubScore {
			bestSubScore = score
			bestSub = entry
		}
	}
	if bestSub != nil && bestSubScore >= substringMinScore {
		return match(*bestSub, system, systemURI, bestSubScore, "substring")
	}

	// 3. Fuzzy match over the whole table.
	var bestFuzzy *tableEntry
	bestRatio := 0.0
	for i := range table {
		entry := &table[i]
		if ratio := e.similarity(needle, entry.key); ratio > bestRatio {
			bestRatio = ratio
			bestFuzzy = entry
		}
	}
	if bestFuzzy != nil && bestRatio >= fuzzyThreshold {
		return match(*bestFuzzy, system, systemURI, int(bestRatio*100+0.5), "fuzzy")
	}

	e.logger.Debug("no code match", zap.String("text", rawText), zap.String("system", system))
	return noMatch(system, systemURI)
}

func (e *Engine) similarity(a, b string) float64 {
	return levenshtein.Similarity(a, b, e.params)
}

func match(entry tableEntry, system, systemURI string, confidence int, method string) record.CodingResult {
	return record.CodingResult{
		Matched:     true,
		Code:        entry.code,
		Display:     entry.display,
		System:      system,
		SystemURI:   systemURI,
		Confidence:  confidence,
		MatchMethod: method,
	}
}

func noMatch(system, systemURI string) record.CodingResult {
	return record.CodingResult{
		System:      system,
		SystemURI:   systemURI,
		MatchMethod: "none",
	}
}
