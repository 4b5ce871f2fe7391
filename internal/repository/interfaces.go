package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/domain"
)

// OwnerRepositoryInterface defines operations for owner lookup
type OwnerRepositoryInterface interface {
	GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Owner, error)
}

// PetRepositoryInterface defines operations for pet data access
type PetRepositoryInterface interface {
	Create(ctx context.Context, pet *domain.Pet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Pet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Pet, error)
	UpdateRegistrationStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) error
}

// SessionRepositoryInterface defines operations for registration sessions
type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *domain.RegistrationSession) error
	GetByToken(ctx context.Context, token string) (*domain.RegistrationSession, error)
	GetActiveByPet(ctx context.Context, petID uuid.UUID) (*domain.RegistrationSession, error)
	GetLatestCompletedByPet(ctx context.Context, petID uuid.UUID) (*domain.RegistrationSession, error)
	MarkExpired(ctx context.Context, id uuid.UUID) error
	AddImages(ctx context.Context, id uuid.UUID, count int) error
	Finish(ctx context.Context, id uuid.UUID, status domain.SessionStatus, notes *string) error
}

// ImageRepositoryInterface defines operations for pet capture images
type ImageRepositoryInterface interface {
	Create(ctx context.Context, img *domain.PetImage) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PetImage, error)
	ListUsableBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PetImage, error)
}

// DetectionRepositoryInterface records detection audit rows
type DetectionRepositoryInterface interface {
	Create(ctx context.Context, det *domain.FaceDetection) error
}

// TemplateRepositoryInterface defines operations for face templates
type TemplateRepositoryInterface interface {
	Create(ctx context.Context, tmpl *domain.Template) error
	GetLatestByPet(ctx context.Context, petID uuid.UUID) (*domain.Template, error)
	ListCorpus(ctx context.Context) ([]domain.Template, error)
	DeleteByPet(ctx context.Context, petID uuid.UUID) (int, error)
}

// QRRepositoryInterface defines operations for QR codes
type QRRepositoryInterface interface {
	Create(ctx context.Context, qr *domain.QRCode) error
	GetByCode(ctx context.Context, code string) (*domain.QRCode, error)
	ListByCreator(ctx context.Context, createdBy uuid.UUID) ([]domain.QRCode, error)
	MarkUsed(ctx context.Context, id uuid.UUID) (*domain.QRCode, error)
	MarkExpired(ctx context.Context, id uuid.UUID) error
	Disable(ctx context.Context, id uuid.UUID) error
}

// QRSessionRepositoryInterface defines operations for QR search sessions
type QRSessionRepositoryInterface interface {
	Create(ctx context.Context, session *domain.QRSearchSession) error
	GetByToken(ctx context.Context, token string) (*domain.QRSearchSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QRSessionStatus) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Complete(ctx context.Context, id uuid.UUID, resultID *uuid.UUID) error
}

// MatchRepositoryInterface persists search results
type MatchRepositoryInterface interface {
	Create(ctx context.Context, result *domain.MatchResult) error
	ListBySearcher(ctx context.Context, searcherID uuid.UUID, limit int) ([]domain.MatchResult, error)
}

// JobRepositoryInterface defines operations for embedding jobs
type JobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EmbeddingJob, error)
	MarkRunning(ctx context.Context, id uuid.UUID, totalImages int) error
	RecordProgress(ctx context.Context, id uuid.UUID, processed, successful, failed int) error
	IncrementRetry(ctx context.Context, id uuid.UUID, errMsg string) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}
