package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/domain"
)

type MatchRepository struct {
	pool PgxPool
}

func NewMatchRepository(pool PgxPool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

func (r *MatchRepository) Create(ctx context.Context, result *domain.MatchResult) error {
	query := `
		INSERT INTO match_results (id, matched_pet_id, matched_template_id, similarity, confidence_tier, rank, result_type, searcher_id, processing_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`

	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		result.ID,
		result.MatchedPetID,
		result.MatchedTemplateID,
		result.Similarity,
		result.Tier,
		result.Rank,
		result.ResultType,
		result.SearcherID,
		result.ProcessingSeconds,
	).Scan(&result.CreatedAt)

	if err != nil {
		return fmt.Errorf("create match result: %w", err)
	}

	return nil
}

// ListBySearcher returns the searcher's most recent results, newest first.
func (r *MatchRepository) ListBySearcher(ctx context.Context, searcherID uuid.UUID, limit int) ([]domain.MatchResult, error) {
	query := `
		SELECT id, matched_pet_id, matched_template_id, similarity, confidence_tier, rank, result_type, searcher_id, processing_seconds, created_at
		FROM match_results
		WHERE searcher_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, searcherID, limit)
	if err != nil {
		return nil, fmt.Errorf("list match results: %w", err)
	}
	defer rows.Close()

	var results []domain.MatchResult
	for rows.Next() {
		var result domain.MatchResult
		err := rows.Scan(
			&result.ID,
			&result.MatchedPetID,
			&result.MatchedTemplateID,
			&result.Similarity,
			&result.Tier,
			&result.Rank,
			&result.ResultType,
			&result.SearcherID,
			&result.ProcessingSeconds,
			&result.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
