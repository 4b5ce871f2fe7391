package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/petnologia/petface/internal/domain"
)

type PetRepository struct {
	pool PgxPool
}

func NewPetRepository(pool PgxPool) *PetRepository {
	return &PetRepository{pool: pool}
}

func (r *PetRepository) Create(ctx context.Context, pet *domain.Pet) error {
	query := `
		INSERT INTO pets (id, owner_id, name, species, breed, registration_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if pet.ID == uuid.Nil {
		pet.ID = uuid.New()
	}
	if pet.RegistrationStatus == "" {
		pet.RegistrationStatus = domain.RegistrationPending
	}

	err := r.pool.QueryRow(ctx, query,
		pet.ID,
		pet.OwnerID,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.RegistrationStatus,
	).Scan(&pet.CreatedAt, &pet.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create pet: %w", err)
	}

	return nil
}

func (r *PetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Pet, error) {
	query := `
		SELECT id, owner_id, name, species, breed, registration_status, created_at, updated_at
		FROM pets
		WHERE id = $1
	`

	var pet domain.Pet
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&pet.ID,
		&pet.OwnerID,
		&pet.Name,
		&pet.Species,
		&pet.Breed,
		&pet.RegistrationStatus,
		&pet.CreatedAt,
		&pet.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pet: %w", err)
	}

	return &pet, nil
}

func (r *PetRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Pet, error) {
	query := `
		SELECT id, owner_id, name, species, breed, registration_status, created_at, updated_at
		FROM pets
		WHERE owner_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	defer rows.Close()

	var pets []domain.Pet
	for rows.Next() {
		var pet domain.Pet
		if err := rows.Scan(
			&pet.ID,
			&pet.OwnerID,
			&pet.Name,
			&pet.Species,
			&pet.Breed,
			&pet.RegistrationStatus,
			&pet.CreatedAt,
			&pet.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pet: %w", err)
		}
		pets = append(pets, pet)
	}

	return pets, rows.Err()
}

func (r *PetRepository) UpdateRegistrationStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) error {
	query := `
		UPDATE pets
		SET registration_status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update pet registration status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPetNotFound
	}

	return nil
}
