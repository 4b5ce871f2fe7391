package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/petnologia/petface/internal/domain"
	"github.com/petnologia/petface/internal/queue"
	"github.com/petnologia/petface/internal/vision"
)

type MockPetRepository struct {
	mock.Mock
}

func (m *MockPetRepository) Create(ctx context.Context, pet *domain.Pet) error {
	args := m.Called(ctx, pet)
	return args.Error(0)
}

func (m *MockPetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Pet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pet), args.Error(1)
}

func (m *MockPetRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Pet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Pet), args.Error(1)
}

func (m *MockPetRepository) UpdateRegistrationStatus(ctx context.Context, id uuid.UUID, status domain.RegistrationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.RegistrationSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*domain.RegistrationSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrationSession), args.Error(1)
}

func (m *MockSessionRepository) GetActiveByPet(ctx context.Context, petID uuid.UUID) (*domain.RegistrationSession, error) {
	args := m.Called(ctx, petID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrationSession), args.Error(1)
}

func (m *MockSessionRepository) GetLatestCompletedByPet(ctx context.Context, petID uuid.UUID) (*domain.RegistrationSession, error) {
	args := m.Called(ctx, petID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrationSession), args.Error(1)
}

func (m *MockSessionRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) AddImages(ctx context.Context, id uuid.UUID, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

func (m *MockSessionRepository) Finish(ctx context.Context, id uuid.UUID, status domain.SessionStatus, notes *string) error {
	args := m.Called(ctx, id, status, notes)
	return args.Error(0)
}

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(ctx context.Context, img *domain.PetImage) error {
	args := m.Called(ctx, img)
	return args.Error(0)
}

func (m *MockImageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PetImage, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PetImage), args.Error(1)
}

func (m *MockImageRepository) ListUsableBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PetImage, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PetImage), args.Error(1)
}

type MockDetectionRepository struct {
	mock.Mock
}

func (m *MockDetectionRepository) Create(ctx context.Context, det *domain.FaceDetection) error {
	args := m.Called(ctx, det)
	return args.Error(0)
}

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, tmpl *domain.Template) error {
	args := m.Called(ctx, tmpl)
	return args.Error(0)
}

func (m *MockTemplateRepository) GetLatestByPet(ctx context.Context, petID uuid.UUID) (*domain.Template, error) {
	args := m.Called(ctx, petID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

func (m *MockTemplateRepository) ListCorpus(ctx context.Context) ([]domain.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Template), args.Error(1)
}

func (m *MockTemplateRepository) DeleteByPet(ctx context.Context, petID uuid.UUID) (int, error) {
	args := m.Called(ctx, petID)
	return args.Int(0), args.Error(1)
}

type MockQRRepository struct {
	mock.Mock
}

func (m *MockQRRepository) Create(ctx context.Context, qr *domain.QRCode) error {
	args := m.Called(ctx, qr)
	return args.Error(0)
}

func (m *MockQRRepository) GetByCode(ctx context.Context, code string) (*domain.QRCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QRCode), args.Error(1)
}

func (m *MockQRRepository) ListByCreator(ctx context.Context, createdBy uuid.UUID) ([]domain.QRCode, error) {
	args := m.Called(ctx, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QRCode), args.Error(1)
}

func (m *MockQRRepository) MarkUsed(ctx context.Context, id uuid.UUID) (*domain.QRCode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QRCode), args.Error(1)
}

func (m *MockQRRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQRRepository) Disable(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockQRSessionRepository struct {
	mock.Mock
}

func (m *MockQRSessionRepository) Create(ctx context.Context, session *domain.QRSearchSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockQRSessionRepository) GetByToken(ctx context.Context, token string) (*domain.QRSearchSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QRSearchSession), args.Error(1)
}

func (m *MockQRSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QRSessionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockQRSessionRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockQRSessionRepository) Complete(ctx context.Context, id uuid.UUID, resultID *uuid.UUID) error {
	args := m.Called(ctx, id, resultID)
	return args.Error(0)
}

type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) Create(ctx context.Context, result *domain.MatchResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockMatchRepository) ListBySearcher(ctx context.Context, searcherID uuid.UUID, limit int) ([]domain.MatchResult, error) {
	args := m.Called(ctx, searcherID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchResult), args.Error(1)
}

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Create(ctx context.Context, job *domain.EmbeddingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockImageStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) PublishTemplateJob(ctx context.Context, task queue.TemplateJobTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Detect(img image.Image) []vision.Detection {
	args := m.Called(img)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]vision.Detection)
}

func (m *MockDetector) ExtractCrop(img image.Image, box vision.Box) image.Image {
	args := m.Called(img, box)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(image.Image)
}

func (m *MockDetector) AssessQuality(img image.Image) *vision.QualityMetrics {
	args := m.Called(img)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*vision.QualityMetrics)
}

func (m *MockDetector) ModelVersion() string {
	args := m.Called()
	return args.String(0)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(crop image.Image) []float32 {
	args := m.Called(crop)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]float32)
}

func (m *MockEmbedder) Dim() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockEmbedder) ModelName() string {
	args := m.Called()
	return args.String(0)
}

type MockQRRenderer struct {
	mock.Mock
}

func (m *MockQRRenderer) RenderPNG(content string, size int) ([]byte, error) {
	args := m.Called(content, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// testPNG encodes a small gray square, enough to pass image decoding.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.Gray{Y: 128})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func faceDetection(confidence float32) []vision.Detection {
	return []vision.Detection{
		{
			Class:      "dog_face",
			Confidence: confidence,
			Box:        vision.Box{X1: 4, Y1: 4, X2: 28, Y2: 28},
		},
	}
}
