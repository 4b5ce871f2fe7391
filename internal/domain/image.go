package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImageQuality is the classification assigned to a capture image at intake.
type ImageQuality string

const (
	QualityPending  ImageQuality = "pending"
	QualityGood     ImageQuality = "good"
	QualityPoor     ImageQuality = "poor"
	QualityRejected ImageQuality = "rejected"
)

// Detection-confidence cutoffs for quality classification.
const (
	GoodConfidenceThreshold = 0.7
	PoorConfidenceThreshold = 0.5
)

// QualityForDetection classifies an image from its best face detection.
// No detection at all means the image is rejected.
func QualityForDetection(confidence float64, detected bool) ImageQuality {
	switch {
	case !detected:
		return QualityRejected
	case confidence > GoodConfidenceThreshold:
		return QualityGood
	case confidence > PoorConfidenceThreshold:
		return QualityPoor
	default:
		return QualityRejected
	}
}

// PetImage representa uma imagem de captura armazenada para um pet.
type PetImage struct {
	ID                  uuid.UUID    `json:"id"`
	PetID               uuid.UUID    `json:"pet_id"`
	SessionID           *uuid.UUID   `json:"session_id,omitempty"`
	ObjectKey           string       `json:"-"`
	Sequence            int          `json:"sequence"`
	QualityStatus       ImageQuality `json:"quality_status"`
	DetectedClass       *string      `json:"detected_class,omitempty"`
	DetectionConfidence *float64     `json:"detection_confidence,omitempty"`
	Blur                *float64     `json:"blur,omitempty"`
	Brightness          *float64     `json:"brightness,omitempty"`
	Contrast            *float64     `json:"contrast,omitempty"`
	CapturedAt          time.Time    `json:"captured_at"`
}

// FaceDetection é o registro de auditoria de uma detecção individual.
type FaceDetection struct {
	ID           uuid.UUID `json:"id"`
	ImageID      uuid.UUID `json:"image_id"`
	Class        string    `json:"class"`
	Confidence   float64   `json:"confidence"`
	X1           float64   `json:"x1"`
	Y1           float64   `json:"y1"`
	X2           float64   `json:"x2"`
	Y2           float64   `json:"y2"`
	FaceArea     float64   `json:"face_area"`
	ModelVersion string    `json:"model_version"`
	CreatedAt    time.Time `json:"created_at"`
}
