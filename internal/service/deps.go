package service

import (
	"context"
	"image"

	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/domain"
	"github.com/petnologia/petface/internal/queue"
	"github.com/petnologia/petface/internal/vision"
)

// Consumer-side contracts for everything the services depend on. The
// concrete implementations live in repository, storage, queue and vision.

type PetRepository interface {
	Create(ctx context.Context, pet *domain.Pet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Pet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Pet, error)
	UpdateRegistrationStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.RegistrationSession) error
	GetByToken(ctx context.Context, token string) (*domain.RegistrationSession, error)
	GetActiveByPet(ctx context.Context, petID uuid.UUID) (*domain.RegistrationSession, error)
	GetLatestCompletedByPet(ctx context.Context, petID uuid.UUID) (*domain.RegistrationSession, error)
	MarkExpired(ctx context.Context, id uuid.UUID) error
	AddImages(ctx context.Context, id uuid.UUID, count int) error
	Finish(ctx context.Context, id uuid.UUID, status domain.SessionStatus, notes *string) error
}

type ImageRepository interface {
	Create(ctx context.Context, img *domain.PetImage) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PetImage, error)
	ListUsableBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PetImage, error)
}

type DetectionRepository interface {
	Create(ctx context.Context, det *domain.FaceDetection) error
}

type TemplateRepository interface {
	Create(ctx context.Context, tmpl *domain.Template) error
	GetLatestByPet(ctx context.Context, petID uuid.UUID) (*domain.Template, error)
	ListCorpus(ctx context.Context) ([]domain.Template, error)
	DeleteByPet(ctx context.Context, petID uuid.UUID) (int, error)
}

type QRRepository interface {
	Create(ctx context.Context, qr *domain.QRCode) error
	GetByCode(ctx context.Context, code string) (*domain.QRCode, error)
	ListByCreator(ctx context.Context, createdBy uuid.UUID) ([]domain.QRCode, error)
	MarkUsed(ctx context.Context, id uuid.UUID) (*domain.QRCode, error)
	MarkExpired(ctx context.Context, id uuid.UUID) error
	Disable(ctx context.Context, id uuid.UUID) error
}

type QRSessionRepository interface {
	Create(ctx context.Context, session *domain.QRSearchSession) error
	GetByToken(ctx context.Context, token string) (*domain.QRSearchSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QRSessionStatus) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Complete(ctx context.Context, id uuid.UUID, resultID *uuid.UUID) error
}

type MatchRepository interface {
	Create(ctx context.Context, result *domain.MatchResult) error
	ListBySearcher(ctx context.Context, searcherID uuid.UUID, limit int) ([]domain.MatchResult, error)
}

type JobRepository interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// ImageStore is the object storage boundary; the database only ever sees
// object keys.
type ImageStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// JobQueue enqueues template build tasks for the workers.
type JobQueue interface {
	PublishTemplateJob(ctx context.Context, task queue.TemplateJobTask) error
}

// QRRenderer turns a scan URL into a printable PNG.
type QRRenderer interface {
	RenderPNG(content string, size int) ([]byte, error)
}

// Detector is the detection adapter. Detect returns an empty slice both
// when nothing is found and when inference fails; failures never become
// errors on this path.
type Detector interface {
	Detect(img image.Image) []vision.Detection
	ExtractCrop(img image.Image, box vision.Box) image.Image
	AssessQuality(img image.Image) *vision.QualityMetrics
	ModelVersion() string
}

// Embedder is the embedding adapter; Embed returns nil on failure.
type Embedder interface {
	Embed(crop image.Image) []float32
	Dim() int
	ModelName() string
}
