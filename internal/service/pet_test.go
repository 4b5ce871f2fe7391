package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/petnologia/petface/internal/domain"
)

func newPetService() (*PetService, *MockPetRepository, *MockTemplateRepository) {
	pets := &MockPetRepository{}
	templates := &MockTemplateRepository{}
	svc := NewPetService(pets, templates, discardLogger())
	return svc, pets, templates
}

func TestPetService_Create(t *testing.T) {
	ownerID := uuid.New()

	t.Run("creates a pending pet", func(t *testing.T) {
		svc, pets, _ := newPetService()
		pets.On("Create", mock.Anything, mock.Anything).Return(nil)

		pet, err := svc.Create(context.Background(), ownerID, "Rex", "dog", nil)

		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationPending, pet.RegistrationStatus)
		assert.Equal(t, ownerID, pet.OwnerID)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		svc, pets, _ := newPetService()

		_, err := svc.Create(context.Background(), ownerID, "", "dog", nil)

		assert.ErrorIs(t, err, domain.ErrValidationFailed)
		pets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown species is rejected", func(t *testing.T) {
		svc, pets, _ := newPetService()

		_, err := svc.Create(context.Background(), ownerID, "Rex", "hamster", nil)

		assert.ErrorIs(t, err, domain.ErrValidationFailed)
		pets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestPetService_Get(t *testing.T) {
	ownerID := uuid.New()
	petID := uuid.New()
	pet := &domain.Pet{ID: petID, OwnerID: ownerID, Name: "Rex", Species: "dog"}

	t.Run("owner fetches their pet", func(t *testing.T) {
		svc, pets, _ := newPetService()
		pets.On("GetByID", mock.Anything, petID).Return(pet, nil)

		got, err := svc.Get(context.Background(), ownerID, petID)

		require.NoError(t, err)
		assert.Equal(t, petID, got.ID)
	})

	t.Run("someone else's pet is forbidden", func(t *testing.T) {
		svc, pets, _ := newPetService()
		pets.On("GetByID", mock.Anything, petID).Return(pet, nil)

		_, err := svc.Get(context.Background(), uuid.New(), petID)

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestPetService_Status(t *testing.T) {
	ownerID := uuid.New()
	petID := uuid.New()
	pet := &domain.Pet{ID: petID, OwnerID: ownerID, RegistrationStatus: domain.RegistrationCompleted}

	t.Run("includes the latest template when one exists", func(t *testing.T) {
		svc, pets, templates := newPetService()
		tmpl := &domain.Template{ID: uuid.New(), PetID: petID, Status: domain.TemplateCompleted}
		pets.On("GetByID", mock.Anything, petID).Return(pet, nil)
		templates.On("GetLatestByPet", mock.Anything, petID).Return(tmpl, nil)

		status, err := svc.Status(context.Background(), ownerID, petID)

		require.NoError(t, err)
		require.NotNil(t, status.Template)
		assert.Equal(t, tmpl.ID, status.Template.ID)
	})

	t.Run("missing template is not an error", func(t *testing.T) {
		svc, pets, templates := newPetService()
		pets.On("GetByID", mock.Anything, petID).Return(pet, nil)
		templates.On("GetLatestByPet", mock.Anything, petID).Return(nil, domain.ErrNotFound)

		status, err := svc.Status(context.Background(), ownerID, petID)

		require.NoError(t, err)
		assert.Nil(t, status.Template)
	})
}

func TestPetService_DeleteTemplates(t *testing.T) {
	ownerID := uuid.New()
	petID := uuid.New()
	pet := &domain.Pet{ID: petID, OwnerID: ownerID}

	t.Run("deletes and reports the count", func(t *testing.T) {
		svc, pets, templates := newPetService()
		pets.On("GetByID", mock.Anything, petID).Return(pet, nil)
		templates.On("DeleteByPet", mock.Anything, petID).Return(3, nil)

		count, err := svc.DeleteTemplates(context.Background(), ownerID, petID)

		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("nothing to delete reports zero", func(t *testing.T) {
		svc, pets, templates := newPetService()
		pets.On("GetByID", mock.Anything, petID).Return(pet, nil)
		templates.On("DeleteByPet", mock.Anything, petID).Return(0, nil)

		count, err := svc.DeleteTemplates(context.Background(), ownerID, petID)

		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("someone else's pet is forbidden", func(t *testing.T) {
		svc, pets, templates := newPetService()
		pets.On("GetByID", mock.Anything, petID).Return(pet, nil)

		_, err := svc.DeleteTemplates(context.Background(), uuid.New(), petID)

		assert.ErrorIs(t, err, domain.ErrForbidden)
		templates.AssertNotCalled(t, "DeleteByPet", mock.Anything, mock.Anything)
	})
}
