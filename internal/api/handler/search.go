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

// SearchService interface for the service
type SearchService interface {
	Search(ctx context.Context, ownerID uuid.UUID, imageData []byte) (*service.SearchOutcome, error)
	History(ctx context.Context, ownerID uuid.UUID) ([]domain.MatchResult, error)
}

// SearchHandler handles authenticated direct searches
type SearchHandler struct {
	service SearchService
	logger  *slog.Logger
}

func NewSearchHandler(service SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{service: service, logger: logger}
}

// Search POST /v1/search - rank a photo against the whole corpus
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	outcome, err := h.service.Search(c.Context(), ownerID, imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(outcome)
}

// History GET /v1/search/history - the owner's recent search results
func (h *SearchHandler) History(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	results, err := h.service.History(c.Context(), ownerID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"search_history": results})
}
