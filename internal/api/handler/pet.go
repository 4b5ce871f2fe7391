package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/api/middleware"
	"github.com/petnologia/petface/internal/domain"
	"github.com/petnologia/petface/internal/service"
)

// PetService interface for the service
type PetService interface {
	Create(ctx context.Context, ownerID uuid.UUID, name, species string, breed *string) (*domain.Pet, error)
	Get(ctx context.Context, ownerID, petID uuid.UUID) (*domain.Pet, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Pet, error)
	Status(ctx context.Context, ownerID, petID uuid.UUID) (*service.PetStatus, error)
	DeleteTemplates(ctx context.Context, ownerID, petID uuid.UUID) (int, error)
}

// PetHandler handles pet CRUD and enrollment status requests
type PetHandler struct {
	service PetService
	logger  *slog.Logger
}

func NewPetHandler(service PetService, logger *slog.Logger) *PetHandler {
	return &PetHandler{service: service, logger: logger}
}

type createPetRequest struct {
	Name    string  `json:"name"`
	Species string  `json:"species"`
	Breed   *string `json:"breed,omitempty"`
}

// Create POST /v1/pets - register a new pet
func (h *PetHandler) Create(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	var req createPetRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	req.Name = strings.TrimSpace(req.Name)

	pet, err := h.service.Create(c.Context(), ownerID, req.Name, req.Species, req.Breed)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(pet)
}

// List GET /v1/pets - list the owner's pets
func (h *PetHandler) List(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	pets, err := h.service.List(c.Context(), ownerID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"pets": pets})
}

// Get GET /v1/pets/:id - fetch one pet
func (h *PetHandler) Get(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	petID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	pet, err := h.service.Get(c.Context(), ownerID, petID)
	if err != nil {
		return err
	}

	return c.JSON(pet)
}

// Status GET /v1/pets/:id/status - enrollment state plus current template
func (h *PetHandler) Status(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	petID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	status, err := h.service.Status(c.Context(), ownerID, petID)
	if err != nil {
		return err
	}

	return c.JSON(status)
}

// DeleteTemplates DELETE /v1/pets/:id/template - drop the pet's templates
func (h *PetHandler) DeleteTemplates(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	petID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	count, err := h.service.DeleteTemplates(c.Context(), ownerID, petID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": count})
}
