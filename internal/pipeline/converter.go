// Package pipeline orchestrates the conversion flow: document type
// detection, terminology coding, multi-document fusion, FHIR bundle
// assembly and validation.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arogya-labs/nhcx-bridge/internal/fhir/r4"
	"github.com/arogya-labs/nhcx-bridge/internal/observability/metrics"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/bundle"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/coding"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/detect"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/fusion"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/record"
	"github.com/arogya-labs/nhcx-bridge/internal/pipeline/validate"
	"github.com/arogya-labs/nhcx-bridge/pkg/workerpool"
)

// MaxClaimDocuments caps the documents accepted per claim request.
const MaxClaimDocuments = 5

// DocumentInput is one source document submitted for conversion. Text
// is the extracted PDF text; ClinicalData is the structured extraction.
// DocType may be given explicitly or left empty for detection.
type DocumentInput struct {
	FileName     string                `json:"file_name"`
	Text         string                `json:"text,omitempty"`
	DocType      string                `json:"doc_type,omitempty"`
	ClinicalData record.ClinicalRecord `json:"clinical_data"`
}

// PreparedDocument is a document after detection and coding.
type PreparedDocument struct {
	Document  record.ProcessedDocument
	Detection *detect.Result
}

// Result is the outcome of one conversion.
type Result struct {
	FileName       string                `json:"file_name,omitempty"`
	FileNames      []string              `json:"file_names,omitempty"`
	DocType        string                `json:"doc_type"`
	DocTypes       []string              `json:"doc_types,omitempty"`
	UseCase        string                `json:"use_case"`
	Detection      *detect.Result        `json:"detection,omitempty"`
	ClinicalData   record.ClinicalRecord `json:"clinical_data"`
	Fusion         *fusion.Result        `json:"fusion,omitempty"`
	Validation     validate.Result       `json:"validation"`
	Bundle         *r4.Bundle            `json:"fhir_bundle"`
	BundleDocument map[string]any        `json:"-"`
}

// Converter runs the conversion pipeline. Safe for concurrent use.
type Converter struct {
	detector  *detect.Detector
	coder     *coding.Engine
	fuser     *fusion.Engine
	builder   *bundle.Builder
	validator *validate.Validator
	metrics   *metrics.Metrics
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewConverter creates a converter. Metrics may be nil.
func NewConverter(m *metrics.Metrics, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		detector:  detect.NewDetector(logger),
		coder:     coding.NewEngine(logger),
		fuser:     fusion.NewEngine(fusion.DefaultPolicy(), logger),
		builder:   bundle.NewBuilder(logger),
		validator: validate.NewValidator(logger),
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("conversion-pipeline"),
	}
}

// Prepare runs detection and terminology coding for one document.
func (c *Converter) Prepare(ctx context.Context, in DocumentInput) (*PreparedDocument, error) {
	_, span := c.tracer.Start(ctx, "prepare_document",
		trace.WithAttributes(attribute.String("file_name", in.FileName)))
	defer span.End()

	if in.ClinicalData == nil {
		return nil, fmt.Errorf("document %s has no clinical data", in.FileName)
	}

	docType := in.DocType
	var detection *detect.Result
	if docType == "" {
		d := c.detector.Detect(in.Text)
		detection = &d
		docType = d.DocType
	}
	span.SetAttributes(attribute.String("doc_type", docType))

	data := in.ClinicalData
	if dx := record.GetString(data, "primary_diagnosis"); dx != "" {
		icd := c.coder.CodeDiagnosis(dx)
		data["primary_diagnosis_coding"] = icd.AsMap()
		if icd.Matched && record.GetString(data, "primary_diagnosis_icd10") == "" {
			data["primary_diagnosis_icd10"] = icd.Code
		}
		c.observeCoding("ICD-10", icd.MatchMethod)
	}
	if tests := record.GetList(data, "tests"); len(tests) > 0 {
		data["tests"] = c.coder.CodeAllTests(tests)
	}

	c.logger.Info("document prepared",
		zap.String("file_name", in.FileName),
		zap.String("doc_type", docType),
		zap.Int("fields", len(data)))

	return &PreparedDocument{
		Document: record.ProcessedDocument{
			FileName:     in.FileName,
			DocType:      docType,
			ClinicalData: data,
		},
		Detection: detection,
	}, nil
}

// ConvertSingle converts one document to a validated FHIR bundle.
func (c *Converter) ConvertSingle(ctx context.Context, in DocumentInput, useCase string, sourcePDFPaths []string) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "convert_single")
	defer span.End()
	start := time.Now()

	prepared, err := c.Prepare(ctx, in)
	if err != nil {
		c.observeFailure()
		return nil, err
	}

	result, err := c.assemble(ctx, prepared.Document.ClinicalData, prepared.Document.DocType, useCase, sourcePDFPaths)
	if err != nil {
		c.observeFailure()
		return nil, err
	}
	result.FileName = in.FileName
	result.Detection = prepared.Detection

	c.observeConversion(result, time.Since(start))
	return result, nil
}

// ConvertClaim fuses multiple documents into one claim bundle. The
// first document's type drives the bundle structure.
func (c *Converter) ConvertClaim(ctx context.Context, inputs []DocumentInput, useCase string, sourcePDFPaths []string) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "convert_claim",
		trace.WithAttributes(attribute.Int("document_count", len(inputs))))
	defer span.End()
	start := time.Now()

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no documents provided")
	}
	if len(inputs) > MaxClaimDocuments {
		return nil, fmt.Errorf("maximum %d documents per claim", MaxClaimDocuments)
	}

	prepared, err := c.prepareAll(ctx, inputs)
	if err != nil {
		c.observeFailure()
		return nil, err
	}

	docs := make([]record.ProcessedDocument, len(prepared))
	fileNames := make([]string, len(prepared))
	docTypes := make([]string, len(prepared))
	for i, p := range prepared {
		docs[i] = p.Document
		fileNames[i] = p.Document.FileName
		docTypes[i] = p.Document.DocType
	}

	fused := c.fuser.Fuse(docs)
	primaryDocType := docs[0].DocType

	result, err := c.assemble(ctx, fused.UnifiedRecord, primaryDocType, useCase, sourcePDFPaths)
	if err != nil {
		c.observeFailure()
		return nil, err
	}
	result.FileNames = fileNames
	result.DocTypes = docTypes
	result.Fusion = &fused

	if c.metrics != nil {
		c.metrics.FusionConflicts.Add(float64(len(fused.Conflicts)))
		c.metrics.DocumentsFused.Observe(float64(len(docs)))
	}
	c.observeConversion(result, time.Since(start))
	return result, nil
}

// ValidateBundle validates an externally supplied bundle document.
func (c *Converter) ValidateBundle(doc map[string]any) validate.Result {
	return c.validator.Validate(doc)
}

// CodeDiagnosis exposes ICD-10 lookup for the code search endpoint.
func (c *Converter) CodeDiagnosis(q string) record.CodingResult {
	result := c.coder.CodeDiagnosis(q)
	c.observeCoding("ICD-10", result.MatchMethod)
	return result
}

// CodeTest exposes LOINC lookup for the code search endpoint.
func (c *Converter) CodeTest(q string) record.CodingResult {
	result := c.coder.CodeTest(q)
	c.observeCoding("LOINC", result.MatchMethod)
	return result
}

// prepareAll fans document preparation out over a worker pool and
// returns prepared documents in input order.
func (c *Converter) prepareAll(ctx context.Context, inputs []DocumentInput) ([]*PreparedDocument, error) {
	if len(inputs) == 1 {
		p, err := c.Prepare(ctx, inputs[0])
		if err != nil {
			return nil, err
		}
		return []*PreparedDocument{p}, nil
	}

	cfg := workerpool.DefaultConfig()
	cfg.Workers = len(inputs)
	cfg.QueueSize = len(inputs)

	pool, err := workerpool.New(cfg, func(ctx context.Context, task *workerpool.Task) *workerpool.Result {
		in := task.Payload.(DocumentInput)
		p, err := c.Prepare(ctx, in)
		return &workerpool.Result{TaskID: task.ID, Error: err, Data: p}
	}, c.logger)
	if err != nil {
		return nil, err
	}
	pool.Start()
	defer pool.Stop()

	for i, in := range inputs {
		task := &workerpool.Task{ID: strconv.Itoa(i), Payload: in, Context: ctx}
		if err := pool.Submit(task); err != nil {
			return nil, fmt.Errorf("failed to queue document %s: %w", in.FileName, err)
		}
	}

	prepared := make([]*PreparedDocument, len(inputs))
	for range inputs {
		res := <-pool.Results()
		if res.Error != nil {
			return nil, res.Error
		}
		idx, _ := strconv.Atoi(res.TaskID)
		prepared[idx] = res.Data.(*PreparedDocument)
	}
	return prepared, nil
}

// assemble builds and validates the bundle from a clinical record.
func (c *Converter) assemble(ctx context.Context, data record.ClinicalRecord, docType, useCase string, sourcePDFPaths []string) (*Result, error) {
	_, span := c.tracer.Start(ctx, "assemble_bundle",
		trace.WithAttributes(
			attribute.String("doc_type", docType),
			attribute.String("use_case", useCase),
		))
	defer span.End()

	if useCase == "" {
		useCase = bundle.UseCaseClaim
	}

	b := c.builder.Build(data, docType, useCase, sourcePDFPaths)

	doc, err := bundleDocument(b)
	if err != nil {
		return nil, err
	}
	validation := c.validator.Validate(doc)
	span.SetAttributes(
		attribute.Bool("valid", validation.Valid),
		attribute.Int("readiness_score", validation.Readiness.Score),
	)

	return &Result{
		DocType:        docType,
		UseCase:        useCase,
		ClinicalData:   data,
		Validation:     validation,
		Bundle:         b,
		BundleDocument: doc,
	}, nil
}

// bundleDocument round-trips the typed bundle through JSON so the
// validator sees the exact wire form.
func bundleDocument(b *r4.Bundle) (map[string]any, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return doc, nil
}

func (c *Converter) observeConversion(r *Result, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ConversionsTotal.WithLabelValues(r.DocType, r.UseCase).Inc()
	c.metrics.ConversionDuration.Observe(elapsed.Seconds())
	c.metrics.ReadinessScore.Observe(float64(r.Validation.Readiness.Score))
	c.metrics.ValidationErrors.Observe(float64(r.Validation.ErrorCount))
}

func (c *Converter) observeFailure() {
	if c.metrics != nil {
		c.metrics.ConversionsFailed.Inc()
	}
}

func (c *Converter) observeCoding(system, method string) {
	if c.metrics != nil {
		c.metrics.CodingMatches.WithLabelValues(system, method).Inc()
	}
}
