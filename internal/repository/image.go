package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/petnologia/petface/internal/domain"
)

type ImageRepository struct {
	pool PgxPool
}

func NewImageRepository(pool PgxPool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

const imageColumns = `id, pet_id, session_id, object_key, sequence, quality_status, detected_class, detection_confidence, blur, brightness, contrast, captured_at`

func (r *ImageRepository) Create(ctx context.Context, img *domain.PetImage) error {
	query := `
		INSERT INTO pet_images (id, pet_id, session_id, object_key, sequence, quality_status, detected_class, detection_confidence, blur, brightness, contrast, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING captured_at
	`

	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	if img.QualityStatus == "" {
		img.QualityStatus = domain.QualityPending
	}

	err := r.pool.QueryRow(ctx, query,
		img.ID,
		img.PetID,
		img.SessionID,
		img.ObjectKey,
		img.Sequence,
		img.QualityStatus,
		img.DetectedClass,
		img.DetectionConfidence,
		img.Blur,
		img.Brightness,
		img.Contrast,
	).Scan(&img.CapturedAt)

	if err != nil {
		return fmt.Errorf("create pet image: %w", err)
	}

	return nil
}

func (r *ImageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PetImage, error) {
	query := `SELECT ` + imageColumns + ` FROM pet_images WHERE session_id = $1 ORDER BY sequence, id`
	return r.list(ctx, query, sessionID)
}

// ListUsableBySession returns the images that can contribute to a template,
// in a deterministic order.
func (r *ImageRepository) ListUsableBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PetImage, error) {
	query := `
		SELECT ` + imageColumns + `
		FROM pet_images
		WHERE session_id = $1 AND quality_status = 'good'
		ORDER BY sequence, id
	`
	return r.list(ctx, query, sessionID)
}

func (r *ImageRepository) list(ctx context.Context, query string, args ...any) ([]domain.PetImage, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pet images: %w", err)
	}
	defer rows.Close()

	var images []domain.PetImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pet image: %w", err)
		}
		images = append(images, *img)
	}

	return images, rows.Err()
}

func scanImage(row pgx.Row) (*domain.PetImage, error) {
	var img domain.PetImage
	err := row.Scan(
		&img.ID,
		&img.PetID,
		&img.SessionID,
		&img.ObjectKey,
		&img.Sequence,
		&img.QualityStatus,
		&img.DetectedClass,
		&img.DetectionConfidence,
		&img.Blur,
		&img.Brightness,
		&img.Contrast,
		&img.CapturedAt,
	)
	if err != nil {
		return nil, err
	}
	return &img, nil
}
