package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/api/middleware"
	"github.com/petnologia/petface/internal/domain"
	"github.com/petnologia/petface/internal/service"
)

// RegistrationService interface for the service
type RegistrationService interface {
	Start(ctx context.Context, ownerID, petID uuid.UUID) (*domain.RegistrationSession, error)
	Validate(ctx context.Context, ownerID uuid.UUID, token string) (*domain.RegistrationSession, error)
	AddImages(ctx context.Context, ownerID uuid.UUID, token string, uploads [][]byte) ([]domain.PetImage, error)
	Complete(ctx context.Context, ownerID uuid.UUID, token string, success bool, notes *string) (*service.CompletionResult, error)
	Regenerate(ctx context.Context, ownerID, petID uuid.UUID, force bool) (*domain.EmbeddingJob, error)
}

// RegistrationHandler handles the capture session lifecycle
type RegistrationHandler struct {
	service RegistrationService
	logger  *slog.Logger
}

func NewRegistrationHandler(service RegistrationService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{service: service, logger: logger}
}

type startSessionResponse struct {
	Session *domain.RegistrationSession `json:"session"`
	Resumed bool                        `json:"resumed"`
}

// Start POST /v1/pets/:id/registration - open a capture session
func (h *RegistrationHandler) Start(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	petID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	session, err := h.service.Start(c.Context(), ownerID, petID)
	if err != nil {
		// An already active session is resumable, not an error for the client.
		if err == domain.ErrSessionAlreadyActive && session != nil {
			return c.Status(fiber.StatusConflict).JSON(startSessionResponse{
				Session: session,
				Resumed: true,
			})
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(startSessionResponse{Session: session})
}

// Validate GET /v1/registration/:token - session status with lazy expiry
func (h *RegistrationHandler) Validate(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	session, err := h.service.Validate(c.Context(), ownerID, c.Params("token"))
	if err != nil {
		return err
	}

	return c.JSON(session)
}

// AddImages POST /v1/registration/:token/images - upload a capture batch
func (h *RegistrationHandler) AddImages(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	batch, err := extractImageBatch(c)
	if err != nil {
		return err
	}

	images, err := h.service.AddImages(c.Context(), ownerID, c.Params("token"), batch)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"images": images})
}

type completeSessionRequest struct {
	Success bool    `json:"success"`
	Notes   *string `json:"notes,omitempty"`
}

// Complete POST /v1/registration/:token/complete - close the session
func (h *RegistrationHandler) Complete(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	var req completeSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	result, err := h.service.Complete(c.Context(), ownerID, c.Params("token"), req.Success, req.Notes)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

type regenerateRequest struct {
	Force bool `json:"force"`
}

// Regenerate POST /v1/pets/:id/regenerate - rebuild the pet's template
func (h *RegistrationHandler) Regenerate(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	petID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	// The body is optional; an empty POST means force=false.
	var req regenerateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
	}

	job, err := h.service.Regenerate(c.Context(), ownerID, petID, req.Force)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job": job})
}
