// Package store persists finished analyses in PostgreSQL.
// ⭐ SSOT: 분석 결과 저장소는 여기서만
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kyh-dev/stockscope/internal/contracts"
)

// AnalysisStore implements contracts.AnalysisCache on the analysis_logs
// table (ticker PK, score, payload JSONB, updated_at).
type AnalysisStore struct {
	pool *pgxpool.Pool
}

// NewAnalysisStore creates a new analysis store.
func NewAnalysisStore(pool *pgxpool.Pool) *AnalysisStore {
	return &AnalysisStore{pool: pool}
}

// Get retrieves the stored analysis for a ticker along with its age.
// A missing row is not an error: (nil, 0, nil).
func (s *AnalysisStore) Get(ctx context.Context, ticker string) (*contracts.Analysis, time.Duration, error) {
	query := `
		SELECT payload, updated_at
		FROM analysis_logs
		WHERE ticker = $1
	`

	var payload []byte
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx, query, ticker).Scan(&payload, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get analysis: %w", err)
	}

	var analysis contracts.Analysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return nil, 0, fmt.Errorf("unmarshal analysis: %w", err)
	}

	return &analysis, time.Since(updatedAt), nil
}

// Put upserts the analysis for its ticker, stamping updated_at.
func (s *AnalysisStore) Put(ctx context.Context, analysis *contracts.Analysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	query := `
		INSERT INTO analysis_logs (ticker, name, score, payload, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			score = EXCLUDED.score,
			payload = EXCLUDED.payload,
			updated_at = now()
	`

	_, err = s.pool.Exec(ctx, query, analysis.Ticker, analysis.Name, analysis.Score.Total, payload)
	if err != nil {
		return fmt.Errorf("put analysis: %w", err)
	}
	return nil
}

// Recent lists the most recently updated analyses, newest first.
func (s *AnalysisStore) Recent(ctx context.Context, limit int) ([]*contracts.Analysis, error) {
	query := `
		SELECT payload
		FROM analysis_logs
		ORDER BY updated_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*contracts.Analysis
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var analysis contracts.Analysis
		if err := json.Unmarshal(payload, &analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
		analyses = append(analyses, &analysis)
	}
	return analyses, rows.Err()
}
