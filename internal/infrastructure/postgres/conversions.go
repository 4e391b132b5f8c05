// Package postgres persists conversion history and implements the
// transactional outbox for reliable event publishing.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrDuplicateConversion is returned when a conversion with the same
// idempotency key already exists.
var ErrDuplicateConversion = errors.New("conversion already recorded")

// Conversion is one stored conversion result.
type Conversion struct {
	ID             int64           `json:"id"`
	IdempotencyKey string          `json:"-"`
	FileName       string          `json:"file_name"`
	DocType        string          `json:"doc_type"`
	PatientName    string          `json:"patient_name"`
	Hospital       string          `json:"hospital"`
	Valid          bool            `json:"valid"`
	Score          int             `json:"score"`
	ErrorCount     int             `json:"error_count"`
	UseCase        string          `json:"use_case"`
	Bundle         json.RawMessage `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Stats aggregates conversion history.
type Stats struct {
	TotalConversions      int64            `json:"total_conversions"`
	ValidBundles          int64            `json:"valid_bundles"`
	InvalidBundles        int64            `json:"invalid_bundles"`
	AverageReadinessScore float64          `json:"average_readiness_score"`
	ByDocType             map[string]int64 `json:"by_doc_type"`
	ByUseCase             map[string]int64 `json:"by_use_case"`
}

// ConversionStore reads and writes the conversions table.
type ConversionStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewConversionStore creates a conversion store.
func NewConversionStore(pool *pgxpool.Pool, logger *zap.Logger) *ConversionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversionStore{pool: pool, logger: logger}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS conversions (
	id              BIGSERIAL PRIMARY KEY,
	idempotency_key TEXT UNIQUE NOT NULL,
	file_name       TEXT NOT NULL,
	doc_type        TEXT NOT NULL,
	patient_name    TEXT NOT NULL DEFAULT 'Unknown',
	hospital        TEXT NOT NULL DEFAULT 'Unknown',
	valid           BOOLEAN NOT NULL DEFAULT FALSE,
	score           INT NOT NULL DEFAULT 0,
	error_count     INT NOT NULL DEFAULT 0,
	use_case        TEXT NOT NULL DEFAULT 'claim',
	fhir_bundle     JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS outbox (
	id             BIGSERIAL PRIMARY KEY,
	aggregate_id   TEXT NOT NULL,
	aggregate_type TEXT NOT NULL,
	event_type     TEXT NOT NULL,
	payload        JSONB NOT NULL,
	topic          TEXT NOT NULL,
	partition_key  TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	processed_at   TIMESTAMPTZ,
	retry_count    INT NOT NULL DEFAULT 0,
	last_error     TEXT
);

CREATE INDEX IF NOT EXISTS idx_outbox_unprocessed
	ON outbox (created_at) WHERE processed_at IS NULL;
`

// InitSchema creates the tables if they do not exist.
func (s *ConversionStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	s.logger.Info("database schema ready")
	return nil
}

// Save inserts a conversion and its outbox event in one transaction.
// The outbox entry may be nil when no event should be emitted.
func (s *ConversionStore) Save(ctx context.Context, conv *Conversion, entry *OutboxEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO conversions
			(idempotency_key, file_name, doc_type, patient_name, hospital,
			 valid, score, error_count, use_case, fhir_bundle)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query,
		conv.IdempotencyKey,
		conv.FileName,
		conv.DocType,
		conv.PatientName,
		conv.Hospital,
		conv.Valid,
		conv.Score,
		conv.ErrorCount,
		conv.UseCase,
		conv.Bundle,
	).Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateConversion
		}
		return fmt.Errorf("failed to insert conversion: %w", err)
	}

	if entry != nil {
		if err := WriteEntry(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit conversion: %w", err)
	}

	s.logger.Info("conversion saved",
		zap.Int64("id", conv.ID),
		zap.String("file_name", conv.FileName),
		zap.String("doc_type", conv.DocType))
	return nil
}

// List returns the most recent conversions, newest first.
func (s *ConversionStore) List(ctx context.Context, limit int) ([]*Conversion, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `
		SELECT id, file_name, doc_type, patient_name, hospital,
		       valid, score, error_count, use_case, created_at
		FROM conversions
		ORDER BY id DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer rows.Close()

	conversions := make([]*Conversion, 0, limit)
	for rows.Next() {
		conv := &Conversion{}
		err := rows.Scan(
			&conv.ID, &conv.FileName, &conv.DocType,
			&conv.PatientName, &conv.Hospital,
			&conv.Valid, &conv.Score, &conv.ErrorCount,
			&conv.UseCase, &conv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		conversions = append(conversions, conv)
	}
	return conversions, rows.Err()
}

// GetBundle returns the stored FHIR bundle for one conversion.
func (s *ConversionStore) GetBundle(ctx context.Context, id int64) (json.RawMessage, error) {
	var bundle json.RawMessage
	err := s.pool.QueryRow(ctx, "SELECT fhir_bundle FROM conversions WHERE id = $1", id).Scan(&bundle)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("conversion %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}
	return bundle, nil
}

// Clear deletes all conversion records.
func (s *ConversionStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM conversions"); err != nil {
		return fmt.Errorf("failed to clear conversions: %w", err)
	}
	s.logger.Info("conversion history cleared")
	return nil
}

// Ping checks database connectivity.
func (s *ConversionStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// GetStats aggregates conversion history.
func (s *ConversionStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByDocType: make(map[string]int64),
		ByUseCase: make(map[string]int64),
	}

	var avg *float64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE valid),
		       AVG(score)
		FROM conversions
	`).Scan(&stats.TotalConversions, &stats.ValidBundles, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate conversions: %w", err)
	}
	stats.InvalidBundles = stats.TotalConversions - stats.ValidBundles
	if avg != nil {
		stats.AverageReadinessScore = float64(int(*avg*10+0.5)) / 10
	}

	rows, err := s.pool.Query(ctx, "SELECT doc_type, COUNT(*) FROM conversions GROUP BY doc_type")
	if err != nil {
		return nil, fmt.Errorf("failed to group by doc_type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var docType string
		var count int64
		if err := rows.Scan(&docType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan doc_type count: %w", err)
		}
		stats.ByDocType[docType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, "SELECT use_case, COUNT(*) FROM conversions GROUP BY use_case")
	if err != nil {
		return nil, fmt.Errorf("failed to group by use_case: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var useCase string
		var count int64
		if err := rows.Scan(&useCase, &count); err != nil {
			return nil, fmt.Errorf("failed to scan use_case count: %w", err)
		}
		stats.ByUseCase[useCase] = count
	}
	return stats, rows.Err()
}
