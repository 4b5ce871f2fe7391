package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/domain"
	"github.com/petnologia/petface/internal/observability"
	"github.com/petnologia/petface/internal/queue"
	"github.com/petnologia/petface/internal/vision"
)

// RegistrationService drives the capture session state machine: start,
// image intake, completion and the lazy 30-minute expiry.
type RegistrationService struct {
	pets       PetRepository
	sessions   SessionRepository
	images     ImageRepository
	detections DetectionRepository
	jobs       JobRepository
	templates  TemplateRepository
	store      ImageStore
	jobQueue   JobQueue
	detector   Detector
	logger     *slog.Logger
}

func NewRegistrationService(
	pets PetRepository,
	sessions SessionRepository,
	images ImageRepository,
	detections DetectionRepository,
	jobs JobRepository,
	templates TemplateRepository,
	store ImageStore,
	jobQueue JobQueue,
	detector Detector,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		pets:       pets,
		sessions:   sessions,
		images:     images,
		detections: detections,
		jobs:       jobs,
		templates:  templates,
		store:      store,
		jobQueue:   jobQueue,
		detector:   detector,
		logger:     logger,
	}
}

// Start opens a capture session for the pet. If an unexpired active
// session already exists it is returned alongside ErrSessionAlreadyActive
// so the caller can resume it; an expired one is transitioned first.
func (s *RegistrationService) Start(ctx context.Context, ownerID, petID uuid.UUID) (*domain.RegistrationSession, error) {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if pet.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	active, err := s.sessions.GetActiveByPet(ctx, petID)
	if err == nil {
		if !active.IsExpired() {
			return active, domain.ErrSessionAlreadyActive
		}
		if err := s.sessions.MarkExpired(ctx, active.ID); err != nil {
			return nil, err
		}
	}

	session := &domain.RegistrationSession{
		PetID:          petID,
		Token:          domain.NewSessionToken(),
		Status:         domain.SessionActive,
		ExpectedImages: domain.DefaultExpectedImages,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		// Lost a concurrent start; surface the winner's session.
		if err == domain.ErrSessionAlreadyActive {
			if winner, getErr := s.sessions.GetActiveByPet(ctx, petID); getErr == nil {
				return winner, domain.ErrSessionAlreadyActive
			}
		}
		return nil, err
	}

	if err := s.pets.UpdateRegistrationStatus(ctx, petID, domain.RegistrationProcessing); err != nil {
		return nil, err
	}

	s.logger.Info("registration session started",
		slog.String("pet_id", petID.String()),
		slog.String("session_id", session.ID.String()),
	)

	return session, nil
}

// Validate fetches a session by token and applies lazy expiry, without
// mutating anything else. Handlers use it for session status lookups.
func (s *RegistrationService) Validate(ctx context.Context, ownerID uuid.UUID, token string) (*domain.RegistrationSession, error) {
	session, err := s.authorizedSession(ctx, ownerID, token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		if err := s.sessions.MarkExpired(ctx, session.ID); err != nil {
			return nil, err
		}
		session.Status = domain.SessionExpired
	}

	return session, nil
}

// AddImages stores a batch of capture images on an active, unexpired
// session. Each image is detected and quality-classified immediately;
// bad images are kept with a rejected status rather than dropped.
func (s *RegistrationService) AddImages(ctx context.Context, ownerID uuid.UUID, token string, uploads [][]byte) ([]domain.PetImage, error) {
	session, err := s.authorizedSession(ctx, ownerID, token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		if err := s.sessions.MarkExpired(ctx, session.ID); err != nil {
			return nil, err
		}
		return nil, domain.ErrSessionExpired
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrSessionNotActive
	}

	stored := make([]domain.PetImage, 0, len(uploads))
	for i, data := range uploads {
		img, err := vision.DecodeImage(data)
		if err != nil {
			return nil, domain.ErrInvalidImage.WithError(err)
		}

		sequence := session.ActualImages + i + 1
		key := fmt.Sprintf("pets/%s/sessions/%s/%03d.jpg", session.PetID, session.ID, sequence)
		if err := s.store.PutObject(ctx, key, data, "image/jpeg"); err != nil {
			return nil, domain.ErrInternal.WithError(err)
		}

		petImage, err := s.classifyAndRecord(ctx, session, img, key, sequence)
		if err != nil {
			return nil, err
		}
		stored = append(stored, *petImage)
		observability.ImagesProcessed.WithLabelValues("registration").Inc()
	}

	if err := s.sessions.AddImages(ctx, session.ID, len(uploads)); err != nil {
		return nil, err
	}

	return stored, nil
}

// classifyAndRecord runs detection over one capture image, persists the
// image row with its quality classification and audits every detection.
func (s *RegistrationService) classifyAndRecord(ctx context.Context, session *domain.RegistrationSession, img image.Image, key string, sequence int) (*domain.PetImage, error) {
	petImage := &domain.PetImage{
		ID:        uuid.New(),
		PetID:     session.PetID,
		SessionID: &session.ID,
		ObjectKey: key,
		Sequence:  sequence,
	}

	detections := s.detector.Detect(img)
	best := BestFace(detections)
	if best != nil {
		confidence := float64(best.Confidence)
		petImage.DetectedClass = &best.Class
		petImage.DetectionConfidence = &confidence
		petImage.QualityStatus = domain.QualityForDetection(confidence, true)
		observability.FacesDetected.WithLabelValues(best.Class).Inc()
	} else {
		petImage.QualityStatus = domain.QualityForDetection(0, false)
	}

	if metrics := s.detector.AssessQuality(img); metrics != nil {
		petImage.Blur = &metrics.Blur
		petImage.Brightness = &metrics.Brightness
		petImage.Contrast = &metrics.Contrast
	}

	if err := s.images.Create(ctx, petImage); err != nil {
		return nil, err
	}

	for _, det := range detections {
		record := &domain.FaceDetection{
			ImageID:      petImage.ID,
			Class:        det.Class,
			Confidence:   float64(det.Confidence),
			X1:           float64(det.Box.X1),
			Y1:           float64(det.Box.Y1),
			X2:           float64(det.Box.X2),
			Y2:           float64(det.Box.Y2),
			FaceArea:     float64(det.Box.Area()),
			ModelVersion: s.detector.ModelVersion(),
		}
		if err := s.detections.Create(ctx, record); err != nil {
			return nil, err
		}
	}

	return petImage, nil
}

// CompletionResult summarizes a finished capture session.
type CompletionResult struct {
	Session     *domain.RegistrationSession `json:"session"`
	Job         *domain.EmbeddingJob        `json:"job,omitempty"`
	TotalImages int                         `json:"total_images"`
}

// Complete closes the session. A successful close with at least one image
// marks the pet completed and enqueues an embedding job; anything else
// fails both the session and the pet.
func (s *RegistrationService) Complete(ctx context.Context, ownerID uuid.UUID, token string, success bool, notes *string) (*CompletionResult, error) {
	session, err := s.authorizedSession(ctx, ownerID, token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		if err := s.sessions.MarkExpired(ctx, session.ID); err != nil {
			return nil, err
		}
		return nil, domain.ErrSessionExpired
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrSessionNotActive
	}

	if !success || session.ActualImages == 0 {
		if err := s.sessions.Finish(ctx, session.ID, domain.SessionFailed, notes); err != nil {
			return nil, err
		}
		if err := s.pets.UpdateRegistrationStatus(ctx, session.PetID, domain.RegistrationFailed); err != nil {
			return nil, err
		}
		session.Status = domain.SessionFailed
		return &CompletionResult{Session: session, TotalImages: session.ActualImages}, nil
	}

	if err := s.sessions.Finish(ctx, session.ID, domain.SessionCompleted, notes); err != nil {
		return nil, err
	}
	session.Status = domain.SessionCompleted

	if err := s.pets.UpdateRegistrationStatus(ctx, session.PetID, domain.RegistrationCompleted); err != nil {
		return nil, err
	}

	job := &domain.EmbeddingJob{
		PetID:       session.PetID,
		SessionID:   session.ID,
		Status:      domain.JobPending,
		TotalImages: session.ActualImages,
		MaxRetries:  domain.DefaultMaxRetries,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	task := queue.TemplateJobTask{
		JobID:     job.ID,
		PetID:     session.PetID,
		SessionID: session.ID,
	}
	if err := s.jobQueue.PublishTemplateJob(ctx, task); err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	s.logger.Info("registration session completed",
		slog.String("session_id", session.ID.String()),
		slog.String("job_id", job.ID.String()),
		slog.Int("images", session.ActualImages),
	)

	return &CompletionResult{Session: session, Job: job, TotalImages: session.ActualImages}, nil
}

// Regenerate enqueues a fresh template build over the pet's latest
// completed capture session. Without force it refuses when a completed
// template already exists; the resulting template is a new record either
// way, never an overwrite.
func (s *RegistrationService) Regenerate(ctx context.Context, ownerID, petID uuid.UUID, force bool) (*domain.EmbeddingJob, error) {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if pet.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	if !force {
		_, err := s.templates.GetLatestByPet(ctx, petID)
		if err == nil {
			return nil, domain.ErrTemplateExists
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	session, err := s.sessions.GetLatestCompletedByPet(ctx, petID)
	if err != nil {
		return nil, err
	}

	usable, err := s.images.ListUsableBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if len(usable) == 0 {
		return nil, domain.ErrNoUsableImages
	}

	job := &domain.EmbeddingJob{
		PetID:       petID,
		SessionID:   session.ID,
		Status:      domain.JobPending,
		TotalImages: len(usable),
		MaxRetries:  domain.DefaultMaxRetries,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	if err := s.pets.UpdateRegistrationStatus(ctx, petID, domain.RegistrationProcessing); err != nil {
		return nil, err
	}

	task := queue.TemplateJobTask{
		JobID:     job.ID,
		PetID:     petID,
		SessionID: session.ID,
	}
	if err := s.jobQueue.PublishTemplateJob(ctx, task); err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	s.logger.Info("template regeneration enqueued",
		slog.String("pet_id", petID.String()),
		slog.String("job_id", job.ID.String()),
		slog.Bool("forced", force),
		slog.Int("images", len(usable)),
	)

	return job, nil
}

// authorizedSession resolves a token and checks the caller owns the pet
// behind the session.
func (s *RegistrationService) authorizedSession(ctx context.Context, ownerID uuid.UUID, token string) (*domain.RegistrationSession, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	pet, err := s.pets.GetByID(ctx, session.PetID)
	if err != nil {
		return nil, err
	}
	if pet.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	return session, nil
}
