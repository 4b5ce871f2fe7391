package domain

import (
	"time"

	"github.com/google/uuid"
)

// Owner is the authenticated principal behind registrations and QR codes.
type Owner struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	APIKeyHash string    `json:"-"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
