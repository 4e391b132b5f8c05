// Package fusion merges the clinical records of multiple source documents
// describing one patient encounter into a single unified record. It
// detects conflicts when documents disagree, resolves them through a
// per-field document authority hierarchy, and tracks which document every
// unified field came from.
package fusion

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/record"
)

// Conflict records one genuine disagreement between documents.
type Conflict struct {
	Field        string          `json:"field"`
	Values       []ConflictValue `json:"values"`
	ResolvedTo   string          `json:"resolved_to"`
	ResolvedFrom string          `json:"resolved_from"`
	Resolution   string          `json:"resolution"`
}

// ConflictValue is one document's contribution to a conflicted field.
type ConflictValue struct {
	Document string `json:"document"`
	DocType  string `json:"doc_type"`
	Value    string `json:"value"`
}

// Result is the immutable output of one fusion call.
type Result struct {
	UnifiedRecord record.ClinicalRecord `json:"unified_record"`
	Conflicts     []Conflict            `json:"conflicts"`
	Provenance    map[string]string     `json:"provenance"`
	Sources       []string              `json:"sources"`
}

// Engine fuses processed documents under a fixed policy. It holds no
// mutable state; concurrent Fuse calls are safe.
type Engine struct {
	policy Policy
	logger *zap.Logger
}

// NewEngine creates a fusion engine with the given policy.
func NewEngine(policy Policy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{policy: policy, logger: logger}
}

// candidate is one document's value for a field, in document arrival
// order. A later document of the same type replaces the value in place,
// keeping the position of the first occurrence.
type candidate struct {
	docType  string
	value    any
	fileName string
}

// Fuse merges documents in caller-supplied order. Zero documents yield an
// empty result; one document passes through unchanged.
func (e *Engine) Fuse(docs []record.ProcessedDocument) Result {
	if len(docs) == 0 {
		return Result{
			UnifiedRecord: record.ClinicalRecord{},
			Conflicts:     []Conflict{},
			Provenance:    map[string]string{},
			Sources:       []string{},
		}
	}

	if len(docs) == 1 {
		return e.passThrough(docs[0])
	}

	unified := record.ClinicalRecord{}
	provenance := map[string]string{}
	conflicts := []Conflict{}

	for _, field := range fieldUnion(docs) {
		cands := collectCandidates(docs, field)
		if len(cands) == 0 {
			continue
		}

		// Only one document carries the field: copy verbatim.
		if len(cands) == 1 {
			unified[field] = cands[0].value
			provenance[field] = cands[0].fileName
			continue
		}

		if e.policy.MergeAsList[field] {
			unified[field] = mergeLists(cands)
			provenance[field] = MergedProvenance
			continue
		}

		if allAgree(cands) {
			best := e.pickAuthority(field, cands)
			unified[field] = best.value
			provenance[field] = best.fileName
			continue
		}

		// Genuine conflict: every contributor is recorded, the authority
		// rule picks the survivor.
		values := make([]ConflictValue, len(cands))
		for i, c := range cands {
			values[i] = ConflictValue{
				Document: c.fileName,
				DocType:  c.docType,
				Value:    record.Stringify(c.value),
			}
		}

		best := e.pickAuthority(field, cands)
		conflicts = append(conflicts, Conflict{
			Field:        field,
			Values:       values,
			ResolvedTo:   record.Stringify(best.value),
			ResolvedFrom: best.fileName,
			Resolution:   "Used " + best.docType + " (highest authority for this field)",
		})
		e.logger.Warn("fusion conflict",
			zap.String("field", field),
			zap.String("resolved_to", record.Stringify(best.value)),
			zap.String("resolved_from", best.fileName),
		)

		unified[field] = best.value
		provenance[field] = best.fileName
	}

	e.logger.Info("fusion complete",
		zap.Int("documents", len(docs)),
		zap.Int("fields", len(unified)),
		zap.Int("conflicts", len(conflicts)),
	)

	return Result{
		UnifiedRecord: unified,
		Conflicts:     conflicts,
		Provenance:    provenance,
		Sources:       sourceNames(docs),
	}
}

// passThrough returns a single document's record unchanged, with every
// field attributed to that document.
func (e *Engine) passThrough(doc record.ProcessedDocument) Result {
	rec := doc.ClinicalData
	if rec == nil {
		rec = record.ClinicalRecord{}
	}
	provenance := make(map[string]string, len(rec))
	for field := range rec {
		provenance[field] = doc.FileName
	}
	return Result{
		UnifiedRecord: rec,
		Conflicts:     []Conflict{},
		Provenance:    provenance,
		Sources:       []string{doc.FileName},
	}
}

// fieldUnion lists every field present in any document, in first-seen
// order over the caller-supplied document sequence. Iteration order is
// part of the contract: it keeps conflict reports deterministic.
func fieldUnion(docs []record.ProcessedDocument) []string {
	var fields []string
	seen := map[string]bool{}
	for _, doc := range docs {
		keys := make([]string, 0, len(doc.ClinicalData))
		for k := range doc.ClinicalData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}
	return fields
}

// collectCandidates gathers each document's non-empty value for a field,
// keyed by document type: a later document of the same type replaces the
// earlier value without changing its position.
func collectCandidates(docs []record.ProcessedDocument, field string) []candidate {
	var cands []candidate
	index := map[string]int{}
	for _, doc := range docs {
		val, ok := doc.ClinicalData[field]
		if !ok || record.IsEmpty(val) {
			continue
		}
		docType := doc.DocType
		if docType == "" {
			docType = record.DocTypeUnknown
		}
		c := candidate{docType: docType, value: val, fileName: doc.FileName}
		if i, dup := index[docType]; dup {
			cands[i] = c
			continue
		}
		index[docType] = len(cands)
		cands = append(cands, c)
	}
	return cands
}

// mergeLists concatenates list values from all candidates, deduplicating
// by the lowercased first 50 characters of each item's string form and
// preserving first-seen order. Non-list values count as singletons.
func mergeLists(cands []candidate) []any {
	merged := []any{}
	seen := map[string]bool{}
	for _, c := range cands {
		items, ok := c.value.([]any)
		if !ok {
			items = []any{c.value}
		}
		for _, item := range items {
			key := strings.ToLower(record.Stringify(item))
			if len(key) > 50 {
				key = key[:50]
			}
			if !seen[key] {
				seen[key] = true
				merged = append(merged, item)
			}
		}
	}
	return merged
}

// allAgree reports whether every candidate value is equal after trimming
// and lowercasing its string form. No numeric or date tolerance applies.
func allAgree(cands []candidate) bool {
	first := normalize(cands[0].value)
	for _, c := range cands[1:] {
		if normalize(c.value) != first {
			return false
		}
	}
	return true
}

func normalize(v any) string {
	return strings.ToLower(strings.TrimSpace(record.Stringify(v)))
}

// pickAuthority selects the candidate whose document type has the highest
// authority for the field. Ties and unlisted document types keep the
// earliest candidate, so document arrival order is the implicit
// tie-break.
func (e *Engine) pickAuthority(field string, cands []candidate) candidate {
	authority, ok := e.policy.Authority[field]
	if !ok {
		return cands[0]
	}
	best := cands[0]
	bestRank := authority[best.docType]
	for _, c := range cands[1:] {
		if rank := authority[c.docType]; rank > bestRank {
			best = c
			bestRank = rank
		}
	}
	return best
}

func sourceNames(docs []record.ProcessedDocument) []string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.FileName
	}
	return names
}
