package handler

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/api/middleware"
	"github.com/petnologia/petface/internal/domain"
	"github.com/petnologia/petface/internal/service"
)

// QRService interface for the service
type QRService interface {
	CreateCode(ctx context.Context, ownerID uuid.UUID, input service.CreateCodeInput) (*service.CreatedCode, error)
	ListCodes(ctx context.Context, ownerID uuid.UUID) ([]domain.QRCode, error)
	Disable(ctx context.Context, ownerID uuid.UUID, code string) error
	Scan(ctx context.Context, code string, searcherIP, userAgent *string) (*domain.QRSearchSession, error)
	Search(ctx context.Context, token string, imageData []byte) (*service.QRSearchOutcome, error)
	SessionStatus(ctx context.Context, token string) (*domain.QRSearchSession, error)
	ScanURL(code string) string
}

// QRHandler handles code management (authenticated) and the anonymous
// scan-to-search flow (public).
type QRHandler struct {
	service QRService
	logger  *slog.Logger
}

func NewQRHandler(service QRService, logger *slog.Logger) *QRHandler {
	return &QRHandler{service: service, logger: logger}
}

type createCodeRequest struct {
	Type       string  `json:"qr_type,omitempty"`
	ClinicName *string `json:"clinic_name,omitempty"`
	Location   *string `json:"location,omitempty"`
	MaxUsage   int     `json:"max_usage,omitempty"`
	ExpiresAt  *string `json:"expires_at,omitempty"`
}

type createCodeResponse struct {
	Code     *domain.QRCode `json:"qr_code"`
	ScanURL  string         `json:"scan_url"`
	ImagePNG string         `json:"image_png_base64"`
}

// Create POST /v1/qr-codes - mint a new printable code
func (h *QRHandler) Create(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	var req createCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	input := service.CreateCodeInput{
		Type:       domain.QRType(req.Type),
		ClinicName: req.ClinicName,
		Location:   req.Location,
		MaxUsage:   req.MaxUsage,
	}
	if req.ExpiresAt != nil {
		expires, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return domain.ErrValidationFailed.WithError(err)
		}
		input.ExpiresAt = &expires
	}

	created, err := h.service.CreateCode(c.Context(), ownerID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(createCodeResponse{
		Code:     created.Code,
		ScanURL:  h.service.ScanURL(created.Code.Code),
		ImagePNG: base64.StdEncoding.EncodeToString(created.PNG),
	})
}

// List GET /v1/qr-codes - codes created by the owner
func (h *QRHandler) List(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	codes, err := h.service.ListCodes(c.Context(), ownerID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"qr_codes": codes})
}

// Disable DELETE /v1/qr-codes/:code - take a code out of circulation
func (h *QRHandler) Disable(c *fiber.Ctx) error {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		return err
	}

	if err := h.service.Disable(c.Context(), ownerID, c.Params("code")); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Scan POST /scan/:code - public: open an anonymous search session
func (h *QRHandler) Scan(c *fiber.Ctx) error {
	ip := c.IP()
	userAgent := c.Get("User-Agent")

	var ipPtr, uaPtr *string
	if ip != "" {
		ipPtr = &ip
	}
	if userAgent != "" {
		uaPtr = &userAgent
	}

	session, err := h.service.Scan(c.Context(), c.Params("code"), ipPtr, uaPtr)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

// Search POST /scan/sessions/:token/search - public: upload the query photo
func (h *QRHandler) Search(c *fiber.Ctx) error {
	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	outcome, err := h.service.Search(c.Context(), c.Params("token"), imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(outcome)
}

// SessionStatus GET /scan/sessions/:token - public: poll the session state
func (h *QRHandler) SessionStatus(c *fiber.Ctx) error {
	session, err := h.service.SessionStatus(c.Context(), c.Params("token"))
	if err != nil {
		return err
	}

	return c.JSON(session)
}
