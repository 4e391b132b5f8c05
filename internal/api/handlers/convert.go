// Package handlers provides HTTP handlers for the converter API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arogya-labs/nhcx-bridge/internal/api/middleware"
	"github.com/arogya-labs/nhcx-bridge/internal/infrastructure/postgres"
	"github.com/arogya-labs/nhcx-bridge/internal/infrastructure/redpanda"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/record"
	"github.com/arogya-labs/nhcx-bridge/pkg/idempotency"
)

// ConversionStore is the persistence surface the handlers use.
type ConversionStore interface {
	Save(ctx context.Context, conv *postgres.Conversion, entry *postgres.OutboxEntry) error
	List(ctx context.Context, limit int) ([]*postgres.Conversion, error)
	GetBundle(ctx context.Context, id int64) (json.RawMessage, error)
	GetStats(ctx context.Context) (*postgres.Stats, error)
	Clear(ctx context.Context) error
}

// ConvertHandler handles conversion endpoints. The store may be nil,
// in which case conversions are not persisted.
type ConvertHandler struct {
	converter *pipeline.Converter
	store     ConversionStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewConvertHandler creates a handler.
func NewConvertHandler(converter *pipeline.Converter, store ConversionStore, logger *zap.Logger) *ConvertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConvertHandler{
		converter: converter,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Routes returns the handler routes.
func (h *ConvertHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/convert", h.ConvertSingle)
	r.Post("/convert/claim", h.ConvertClaim)
	r.Post("/validate", h.Validate)
	r.Get("/history", h.History)
	r.Delete("/history", h.ClearHistory)
	r.Get("/history/{id}/bundle", h.HistoryBundle)
	r.Get("/stats", h.Stats)
	r.Get("/codes/icd10", h.SearchICD10)
	r.Get("/codes/loinc", h.SearchLOINC)
	return r
}

// ConvertRequest is the request body for a single-document conversion.
type ConvertRequest struct {
	pipeline.DocumentInput
	UseCase        string   `json:"use_case,omitempty"`
	SourcePDFPaths []string `json:"source_pdf_paths,omitempty"`
}

// ClaimRequest is the request body for a multi-document claim.
type ClaimRequest struct {
	Documents      []pipeline.DocumentInput `json:"documents"`
	UseCase        string                   `json:"use_case,omitempty"`
	SourcePDFPaths []string                 `json:"source_pdf_paths,omitempty"`
}

// ConvertResponse wraps a pipeline result for the wire.
type ConvertResponse struct {
	Status string `json:"status"`
	*pipeline.Result
}

// ConvertSingle handles POST /convert.
func (h *ConvertHandler) ConvertSingle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FileName == "" {
		h.jsonError(w, "file_name is required", http.StatusBadRequest)
		return
	}
	if len(req.ClinicalData) == 0 {
		h.jsonError(w, "clinical_data is required", http.StatusBadRequest)
		return
	}

	result, err := h.converter.ConvertSingle(ctx, req.DocumentInput, req.UseCase, req.SourcePDFPaths)
	if err != nil {
		h.logger.Error("conversion failed",
			zap.String("file_name", req.FileName),
			zap.String("request_id", middleware.GetRequestID(ctx)),
			zap.Error(err))
		h.jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.persist(ctx, result, []string{req.FileName})
	h.writeJSON(w, http.StatusOK, ConvertResponse{Status: "success", Result: result})
}

// ConvertClaim handles POST /convert/claim.
func (h *ConvertHandler) ConvertClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Documents) == 0 {
		h.jsonError(w, "no documents provided", http.StatusBadRequest)
		return
	}
	if len(req.Documents) > pipeline.MaxClaimDocuments {
		h.jsonError(w, "maximum 5 documents per claim", http.StatusBadRequest)
		return
	}
	for _, doc := range req.Documents {
		if doc.FileName == "" {
			h.jsonError(w, "every document needs a file_name", http.StatusBadRequest)
			return
		}
	}

	result, err := h.converter.ConvertClaim(ctx, req.Documents, req.UseCase, req.SourcePDFPaths)
	if err != nil {
		h.logger.Error("claim conversion failed",
			zap.Int("documents", len(req.Documents)),
			zap.String("request_id", middleware.GetRequestID(ctx)),
			zap.Error(err))
		h.jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.persist(ctx, result, result.FileNames)
	h.writeJSON(w, http.StatusOK, ConvertResponse{Status: "success", Result: result})
}

// Validate handles POST /validate for externally built bundles.
func (h *ConvertHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.jsonError(w, "request body must be valid JSON", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, h.converter.ValidateBundle(doc))
}

// History handles GET /history.
func (h *ConvertHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"conversions": []any{}})
		return
	}
	conversions, err := h.store.List(r.Context(), 100)
	if err != nil {
		h.logger.Error("history read failed", zap.Error(err))
		h.jsonError(w, "failed to read history", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"conversions": conversions})
}

// ClearHistory handles DELETE /history.
func (h *ConvertHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Clear(r.Context()); err != nil {
			h.logger.Error("history clear failed", zap.Error(err))
			h.jsonError(w, "failed to clear history", http.StatusInternalServerError)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "History cleared"})
}

// HistoryBundle handles GET /history/{id}/bundle.
func (h *ConvertHandler) HistoryBundle(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.jsonError(w, "persistence disabled", http.StatusNotFound)
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, "invalid conversion id", http.StatusBadRequest)
		return
	}
	raw, err := h.store.GetBundle(r.Context(), id)
	if err != nil {
		h.jsonError(w, "conversion not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// Stats handles GET /stats.
func (h *ConvertHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeJSON(w, http.StatusOK, &postgres.Stats{
			ByDocType: map[string]int64{},
			ByUseCase: map[string]int64{},
		})
		return
	}
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		h.logger.Error("stats read failed", zap.Error(err))
		h.jsonError(w, "failed to read stats", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// SearchICD10 handles GET /codes/icd10?q=.
func (h *ConvertHandler) SearchICD10(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		h.jsonError(w, "provide ?q=search_term", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, h.converter.CodeDiagnosis(q).AsMap())
}

// SearchLOINC handles GET /codes/loinc?q=.
func (h *ConvertHandler) SearchLOINC(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		h.jsonError(w, "provide ?q=search_term", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, h.converter.CodeTest(q).AsMap())
}

// persist stores the conversion and queues its outbox event. Failures
// are logged but do not fail the request; the caller already has the
// bundle.
func (h *ConvertHandler) persist(ctx context.Context, result *pipeline.Result, fileNames []string) {
	if h.store == nil {
		return
	}

	bundleJSON, err := json.Marshal(result.Bundle)
	if err != nil {
		h.logger.Error("failed to encode bundle for storage", zap.Error(err))
		return
	}

	key := idempotency.GenerateKey(fileNames, result.UseCase, h.now())
	conv := &postgres.Conversion{
		IdempotencyKey: key,
		FileName:       strings.Join(fileNames, ", "),
		DocType:        result.DocType,
		PatientName:    stringOr(result.ClinicalData, "patient_name", "Unknown"),
		Hospital:       stringOr(result.ClinicalData, "hospital_name", "Unknown"),
		Valid:          result.Validation.Valid,
		Score:          result.Validation.Readiness.Score,
		ErrorCount:     result.Validation.ErrorCount,
		UseCase:        result.UseCase,
		Bundle:         bundleJSON,
	}

	event, _ := json.Marshal(map[string]any{
		"idempotency_key": key,
		"file_name":       conv.FileName,
		"doc_type":        conv.DocType,
		"use_case":        conv.UseCase,
		"valid":           conv.Valid,
		"readiness_score": conv.Score,
		"error_count":     conv.ErrorCount,
	})
	entry := &postgres.OutboxEntry{
		AggregateID:   key,
		AggregateType: postgres.AggregateConversion,
		EventType:     postgres.EventConversionCompleted,
		Payload:       event,
		Topic:         redpanda.TopicConversionEvents,
		PartitionKey:  key,
	}

	if err := h.store.Save(ctx, conv, entry); err != nil {
		if errors.Is(err, postgres.ErrDuplicateConversion) {
			h.logger.Info("duplicate conversion ignored", zap.String("idempotency_key", key))
			return
		}
		h.logger.Error("failed to persist conversion", zap.Error(err))
	}
}

func (h *ConvertHandler) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func (h *ConvertHandler) jsonError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, map[string]string{"error": message})
}

func stringOr(data record.ClinicalRecord, key, fallback string) string {
	if s := record.GetString(data, key); s != "" {
		return s
	}
	return fallback
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
