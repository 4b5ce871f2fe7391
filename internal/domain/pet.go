package domain

import (
	"time"

	"github.com/google/uuid"
)

// Species values accepted at registration.
const (
	SpeciesCat = "cat"
	SpeciesDog = "dog"
)

// RegistrationStatus tracks the face enrollment lifecycle of a pet.
type RegistrationStatus string

const (
	RegistrationPending    RegistrationStatus = "pending"
	RegistrationProcessing RegistrationStatus = "processing"
	RegistrationCompleted  RegistrationStatus = "completed"
	RegistrationFailed     RegistrationStatus = "failed"
)

// Pet representa um animal cadastrado no sistema
type Pet struct {
	ID                 uuid.UUID          `json:"id"`
	OwnerID            uuid.UUID          `json:"-"`
	Name               string             `json:"name"`
	Species            string             `json:"species"`
	Breed              *string            `json:"breed,omitempty"`
	RegistrationStatus RegistrationStatus `json:"registration_status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func ValidSpecies(s string) bool {
	return s == SpeciesCat || s == SpeciesDog
}
