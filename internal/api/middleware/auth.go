package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/domain"
)

const (
	// LocalOwnerID is the key to retrieve owner_id from context
	LocalOwnerID = "owner_id"
	// LocalOwner is the key to retrieve the full owner from context
	LocalOwner = "owner"
)

// OwnerRepository interface for owner lookup
type OwnerRepository interface {
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Owner, error)
}

// Auth creates an authentication middleware using API Key
func Auth(ownerRepo OwnerRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractBearerToken(c)
		if apiKey == "" {
			return domain.ErrUnauthorized
		}

		hash := hashAPIKey(apiKey)

		owner, err := ownerRepo.GetByAPIKeyHash(c.Context(), hash)
		if err != nil {
			// Any error (not found or DB error) returns 401.
			// Don't reveal whether the API Key exists or not.
			return domain.ErrUnauthorized
		}

		if !owner.IsActive {
			return domain.ErrUnauthorized
		}

		c.Locals(LocalOwnerID, owner.ID)
		c.Locals(LocalOwner, owner)

		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// hashAPIKey generates SHA-256 hash of API Key
func hashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}

// GetOwnerID retrieves owner_id from Fiber context
func GetOwnerID(c *fiber.Ctx) (uuid.UUID, error) {
	ownerID, ok := c.Locals(LocalOwnerID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return ownerID, nil
}

// GetOwner retrieves the full owner from Fiber context
func GetOwner(c *fiber.Ctx) (*domain.Owner, error) {
	owner, ok := c.Locals(LocalOwner).(*domain.Owner)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return owner, nil
}
