package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/petnologia/petface/internal/domain"
)

type TemplateRepository struct {
	pool PgxPool
}

func NewTemplateRepository(pool PgxPool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// Create inserts a new template row. Templates are append-only: a rebuild
// writes a fresh row and matching picks the latest completed one per pet.
func (r *TemplateRepository) Create(ctx context.Context, tmpl *domain.Template) error {
	query := `
		INSERT INTO face_templates (id, pet_id, embedding, dimension, model_name, status, source_images_count, quality_score, processing_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}

	var embedding *pgvector.Vector
	if len(tmpl.Embedding) > 0 {
		vec := pgvector.NewVector(tmpl.Embedding)
		embedding = &vec
	}

	err := r.pool.QueryRow(ctx, query,
		tmpl.ID,
		tmpl.PetID,
		embedding,
		tmpl.Dimension,
		tmpl.ModelName,
		tmpl.Status,
		tmpl.SourceImagesCount,
		tmpl.QualityScore,
		tmpl.ProcessingSeconds,
	).Scan(&tmpl.CreatedAt, &tmpl.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}

	return nil
}

const templateColumns = `id, pet_id, embedding, dimension, model_name, status, source_images_count, quality_score, processing_seconds, created_at, updated_at`

func (r *TemplateRepository) GetLatestByPet(ctx context.Context, petID uuid.UUID) (*domain.Template, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM face_templates
		WHERE pet_id = $1 AND status = 'completed'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	tmpl, err := scanTemplate(r.pool.QueryRow(ctx, query, petID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest template: %w", err)
	}
	return tmpl, nil
}

// ListCorpus returns the searchable corpus: the latest completed template
// of every pet, in a fixed order so ranking ties stay deterministic.
func (r *TemplateRepository) ListCorpus(ctx context.Context) ([]domain.Template, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM (
			SELECT DISTINCT ON (pet_id) ` + templateColumns + `
			FROM face_templates
			WHERE status = 'completed'
			ORDER BY pet_id, created_at DESC, id DESC
		) latest
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list template corpus: %w", err)
	}
	defer rows.Close()

	var templates []domain.Template
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *tmpl)
	}

	return templates, rows.Err()
}

// DeleteByPet removes every template of the pet and reports how many rows
// were dropped. Matching stops finding the pet until a new build completes.
func (r *TemplateRepository) DeleteByPet(ctx context.Context, petID uuid.UUID) (int, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM face_templates WHERE pet_id = $1`, petID)
	if err != nil {
		return 0, fmt.Errorf("delete templates: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var tmpl domain.Template
	var embedding *pgvector.Vector

	err := row.Scan(
		&tmpl.ID,
		&tmpl.PetID,
		&embedding,
		&tmpl.Dimension,
		&tmpl.ModelName,
		&tmpl.Status,
		&tmpl.SourceImagesCount,
		&tmpl.QualityScore,
		&tmpl.ProcessingSeconds,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if embedding != nil {
		tmpl.Embedding = embedding.Slice()
	}

	return &tmpl, nil
}
