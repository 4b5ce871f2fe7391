package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the state of a registration capture session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionExpired   SessionStatus = "expired"
	SessionFailed    SessionStatus = "failed"
)

const (
	// SessionTTL is how long a registration session stays usable after start.
	// Expiry is evaluated lazily on access, there is no background sweeper.
	SessionTTL = 30 * time.Minute

	// DefaultExpectedImages is the capture target suggested to clients.
	DefaultExpectedImages = 10
)

// RegistrationSession representa uma sessão de captura de imagens para
// cadastro facial. At most one active session may exist per pet.
type RegistrationSession struct {
	ID             uuid.UUID     `json:"id"`
	PetID          uuid.UUID     `json:"pet_id"`
	Token          string        `json:"session_token"`
	Status         SessionStatus `json:"status"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        *time.Time    `json:"end_time,omitempty"`
	ExpectedImages int           `json:"expected_images_count"`
	ActualImages   int           `json:"actual_images_count"`
	Notes          *string       `json:"notes,omitempty"`
}

// IsExpiredAt reports whether an active session outlived its TTL at the
// given instant. Terminal sessions never expire further.
func (s *RegistrationSession) IsExpiredAt(now time.Time) bool {
	return s.Status == SessionActive && now.After(s.StartTime.Add(SessionTTL))
}

// IsExpired checks expiry against the wall clock.
func (s *RegistrationSession) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// ExpiresAt is the instant the session stops accepting images.
func (s *RegistrationSession) ExpiresAt() time.Time {
	return s.StartTime.Add(SessionTTL)
}
