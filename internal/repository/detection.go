package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/domain"
)

type DetectionRepository struct {
	pool PgxPool
}

func NewDetectionRepository(pool PgxPool) *DetectionRepository {
	return &DetectionRepository{pool: pool}
}

func (r *DetectionRepository) Create(ctx context.Context, det *domain.FaceDetection) error {
	query := `
		INSERT INTO face_detections (id, image_id, class, confidence, x1, y1, x2, y2, face_area, model_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING created_at
	`

	if det.ID == uuid.Nil {
		det.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		det.ID,
		det.ImageID,
		det.Class,
		det.Confidence,
		det.X1,
		det.Y1,
		det.X2,
		det.Y2,
		det.FaceArea,
		det.ModelVersion,
	).Scan(&det.CreatedAt)

	if err != nil {
		return fmt.Errorf("create face detection: %w", err)
	}

	return nil
}
