package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/petnologia/petface/internal/domain"
)

type OwnerRepository struct {
	pool PgxPool
}

func NewOwnerRepository(pool PgxPool) *OwnerRepository {
	return &OwnerRepository{pool: pool}
}

func (r *OwnerRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Owner, error) {
	query := `
		SELECT id, name, email, api_key_hash, is_active, created_at
		FROM owners
		WHERE api_key_hash = $1
	`

	var owner domain.Owner
	err := r.pool.QueryRow(ctx, query, hash).Scan(
		&owner.ID,
		&owner.Name,
		&owner.Email,
		&owner.APIKeyHash,
		&owner.IsActive,
		&owner.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get owner by api key hash: %w", err)
	}

	return &owner, nil
}
