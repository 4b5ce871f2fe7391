package service

import (
	"context"
	"image"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/petnologia/petface/internal/domain"
)

type builderMocks struct {
	images     *MockImageRepository
	detections *MockDetectionRepository
	templates  *MockTemplateRepository
	pets       *MockPetRepository
	store      *MockImageStore
	detector   *MockDetector
	embedder   *MockEmbedder
}

func newTemplateBuilder() (*TemplateBuilder, *builderMocks) {
	m := &builderMocks{
		images:     &MockImageRepository{},
		detections: &MockDetectionRepository{},
		templates:  &MockTemplateRepository{},
		pets:       &MockPetRepository{},
		store:      &MockImageStore{},
		detector:   &MockDetector{},
		embedder:   &MockEmbedder{},
	}
	builder := NewTemplateBuilder(
		m.images, m.detections, m.templates, m.pets,
		m.store, m.detector, m.embedder, discardLogger(),
	)
	return builder, m
}

func sessionImages(petID, sessionID uuid.UUID, keys ...string) []domain.PetImage {
	images := make([]domain.PetImage, 0, len(keys))
	for i, key := range keys {
		images = append(images, domain.PetImage{
			ID:        uuid.New(),
			PetID:     petID,
			SessionID: &sessionID,
			ObjectKey: key,
			Sequence:  i + 1,
		})
	}
	return images
}

func setupHappyVision(t *testing.T, m *builderMocks) {
	t.Helper()
	m.store.On("GetObject", mock.Anything, mock.Anything).Return(testPNG(t), nil)
	m.detector.On("Detect", mock.Anything).Return(faceDetection(0.9))
	m.detector.On("ModelVersion").Return("v1")
	m.detector.On("ExtractCrop", mock.Anything, mock.Anything).Return(image.NewRGBA(image.Rect(0, 0, 8, 8)))
	m.detections.On("Create", mock.Anything, mock.Anything).Return(nil)
}

func TestTemplateBuilder_Build(t *testing.T) {
	petID := uuid.New()
	sessionID := uuid.New()

	t.Run("averages embeddings into a completed template", func(t *testing.T) {
		builder, m := newTemplateBuilder()
		images := sessionImages(petID, sessionID, "a.jpg", "b.jpg")
		m.images.On("ListUsableBySession", mock.Anything, sessionID).Return(images, nil)
		setupHappyVision(t, m)
		m.embedder.On("Dim").Return(2)
		m.embedder.On("ModelName").Return("clip-test")
		m.embedder.On("Embed", mock.Anything).Return([]float32{1, 0}).Once()
		m.embedder.On("Embed", mock.Anything).Return([]float32{0, 1}).Once()
		m.templates.On("Create", mock.Anything, mock.Anything).Return(nil)
		m.pets.On("UpdateRegistrationStatus", mock.Anything, petID, domain.RegistrationCompleted).Return(nil)

		stats, err := builder.Build(context.Background(), petID, sessionID)

		require.NoError(t, err)
		assert.Equal(t, 2, stats.Successful)
		assert.Equal(t, 0, stats.Failed)
		require.NotNil(t, stats.Template)
		assert.Equal(t, []float32{0.5, 0.5}, stats.Template.Embedding)
		assert.Equal(t, domain.TemplateCompleted, stats.Template.Status)
		assert.Equal(t, 2, stats.Template.SourceImagesCount)
		assert.Equal(t, "clip-test", stats.Template.ModelName)
	})

	t.Run("mean is independent of image order", func(t *testing.T) {
		e1 := []float32{0.8, 0.2, 0.1}
		e2 := []float32{0.1, 0.7, 0.4}
		e3 := []float32{0.3, 0.3, 0.9}

		build := func(order [][]float32) []float32 {
			builder, m := newTemplateBuilder()
			images := sessionImages(petID, sessionID, "a.jpg", "b.jpg", "c.jpg")
			m.images.On("ListUsableBySession", mock.Anything, sessionID).Return(images, nil)
			setupHappyVision(t, m)
			m.embedder.On("Dim").Return(3)
			m.embedder.On("ModelName").Return("clip-test")
			for _, e := range order {
				m.embedder.On("Embed", mock.Anything).Return(e).Once()
			}
			m.templates.On("Create", mock.Anything, mock.Anything).Return(nil)
			m.pets.On("UpdateRegistrationStatus", mock.Anything, petID, mock.Anything).Return(nil)

			stats, err := builder.Build(context.Background(), petID, sessionID)
			require.NoError(t, err)
			return stats.Template.Embedding
		}

		forward := build([][]float32{e1, e2, e3})
		reversed := build([][]float32{e3, e2, e1})

		assert.InDeltaSlice(t, forward, reversed, 1e-6)
	})

	t.Run("a failed image is skipped, not fatal", func(t *testing.T) {
		builder, m := newTemplateBuilder()
		images := sessionImages(petID, sessionID, "a.jpg", "b.jpg", "c.jpg")
		m.images.On("ListUsableBySession", mock.Anything, sessionID).Return(images, nil)
		setupHappyVision(t, m)
		m.embedder.On("Dim").Return(2)
		m.embedder.On("ModelName").Return("clip-test")
		m.embedder.On("Embed", mock.Anything).Return([]float32{1, 0}).Once()
		m.embedder.On("Embed", mock.Anything).Return(nil).Once()
		m.embedder.On("Embed", mock.Anything).Return([]float32{0, 1}).Once()
		m.templates.On("Create", mock.Anything, mock.Anything).Return(nil)
		m.pets.On("UpdateRegistrationStatus", mock.Anything, petID, domain.RegistrationCompleted).Return(nil)

		stats, err := builder.Build(context.Background(), petID, sessionID)

		require.NoError(t, err)
		assert.Equal(t, 3, stats.Processed)
		assert.Equal(t, 2, stats.Successful)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, 2, stats.Template.SourceImagesCount)
	})

	t.Run("no face in any image fails the build", func(t *testing.T) {
		builder, m := newTemplateBuilder()
		images := sessionImages(petID, sessionID, "a.jpg", "b.jpg")
		m.images.On("ListUsableBySession", mock.Anything, sessionID).Return(images, nil)
		m.store.On("GetObject", mock.Anything, mock.Anything).Return(testPNG(t), nil)
		m.detector.On("Detect", mock.Anything).Return(nil)
		m.embedder.On("Dim").Return(2)

		stats, err := builder.Build(context.Background(), petID, sessionID)

		assert.ErrorIs(t, err, domain.ErrNoUsableImages)
		assert.Equal(t, 0, stats.Successful)
		assert.Equal(t, 2, stats.Failed)
		m.templates.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.pets.AssertNotCalled(t, "UpdateRegistrationStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong embedding dimension counts as failure", func(t *testing.T) {
		builder, m := newTemplateBuilder()
		images := sessionImages(petID, sessionID, "a.jpg")
		m.images.On("ListUsableBySession", mock.Anything, sessionID).Return(images, nil)
		setupHappyVision(t, m)
		m.embedder.On("Dim").Return(2)
		m.embedder.On("Embed", mock.Anything).Return([]float32{1, 0, 0})

		stats, err := builder.Build(context.Background(), petID, sessionID)

		assert.ErrorIs(t, err, domain.ErrNoUsableImages)
		assert.Equal(t, 1, stats.Failed)
	})

	t.Run("unfetchable object counts as failure", func(t *testing.T) {
		builder, m := newTemplateBuilder()
		images := sessionImages(petID, sessionID, "a.jpg")
		m.images.On("ListUsableBySession", mock.Anything, sessionID).Return(images, nil)
		m.store.On("GetObject", mock.Anything, "a.jpg").Return(nil, assert.AnError)
		m.embedder.On("Dim").Return(2)

		stats, err := builder.Build(context.Background(), petID, sessionID)

		assert.ErrorIs(t, err, domain.ErrNoUsableImages)
		assert.Equal(t, 1, stats.Failed)
	})
}
