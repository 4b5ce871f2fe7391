package domain

import (
	"time"

	"github.com/google/uuid"
)

// TemplateStatus tracks the lifecycle of a face template.
type TemplateStatus string

const (
	TemplatePending    TemplateStatus = "pending"
	TemplateProcessing TemplateStatus = "processing"
	TemplateCompleted  TemplateStatus = "completed"
	TemplateFailed     TemplateStatus = "failed"
)

// Template é o vetor biométrico agregado de um pet. One pet can accumulate
// several templates over time; matching uses the latest completed one.
type Template struct {
	ID                uuid.UUID      `json:"id"`
	PetID             uuid.UUID      `json:"pet_id"`
	Embedding         []float32      `json:"-"`
	Dimension         int            `json:"dimension"`
	ModelName         string         `json:"model_name"`
	Status            TemplateStatus `json:"status"`
	SourceImagesCount int            `json:"source_images_count"`
	QualityScore      *float64       `json:"quality_score,omitempty"`
	ProcessingSeconds *float64       `json:"processing_seconds,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
