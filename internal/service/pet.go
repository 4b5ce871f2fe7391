package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/domain"
)

// PetService handles pet registration records and enrollment status.
type PetService struct {
	pets      PetRepository
	templates TemplateRepository
	logger    *slog.Logger
}

func NewPetService(pets PetRepository, templates TemplateRepository, logger *slog.Logger) *PetService {
	return &PetService{pets: pets, templates: templates, logger: logger}
}

// Create registers a new pet for the owner. Enrollment starts pending until
// a capture session is opened.
func (s *PetService) Create(ctx context.Context, ownerID uuid.UUID, name, species string, breed *string) (*domain.Pet, error) {
	if name == "" || !domain.ValidSpecies(species) {
		return nil, domain.ErrValidationFailed
	}

	pet := &domain.Pet{
		OwnerID:            ownerID,
		Name:               name,
		Species:            species,
		Breed:              breed,
		RegistrationStatus: domain.RegistrationPending,
	}
	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, err
	}

	s.logger.Info("pet created",
		slog.String("pet_id", pet.ID.String()),
		slog.String("species", pet.Species),
	)

	return pet, nil
}

// PetStatus pairs a pet with its latest completed template, when one exists.
type PetStatus struct {
	Pet      *domain.Pet      `json:"pet"`
	Template *domain.Template `json:"template,omitempty"`
}

// Get returns one pet owned by the caller.
func (s *PetService) Get(ctx context.Context, ownerID, petID uuid.UUID) (*domain.Pet, error) {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if pet.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return pet, nil
}

// List returns every pet of the owner.
func (s *PetService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Pet, error) {
	return s.pets.ListByOwner(ctx, ownerID)
}

// Status reports the enrollment state of a pet together with its current
// template, if enrollment already produced one.
func (s *PetService) Status(ctx context.Context, ownerID, petID uuid.UUID) (*PetStatus, error) {
	pet, err := s.Get(ctx, ownerID, petID)
	if err != nil {
		return nil, err
	}

	status := &PetStatus{Pet: pet}
	template, err := s.templates.GetLatestByPet(ctx, petID)
	switch {
	case err == nil:
		status.Template = template
	case errors.Is(err, domain.ErrNotFound):
		// Enrollment not finished yet; the pet status alone is the answer.
	default:
		return nil, err
	}

	return status, nil
}

// DeleteTemplates drops every template of the pet. The pet disappears from
// the search corpus until a new build completes. Returns the removed count.
func (s *PetService) DeleteTemplates(ctx context.Context, ownerID, petID uuid.UUID) (int, error) {
	if _, err := s.Get(ctx, ownerID, petID); err != nil {
		return 0, err
	}

	count, err := s.templates.DeleteByPet(ctx, petID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("templates deleted",
		slog.String("pet_id", petID.String()),
		slog.Int("count", count),
	)

	return count, nil
}
