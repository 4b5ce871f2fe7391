package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/domain"
	"github.com/petnologia/petface/internal/observability"
	"github.com/petnologia/petface/internal/vision"
)

// TemplateBuilder turns a completed capture session into a face template
// by averaging the embeddings of every image that yields a face.
type TemplateBuilder struct {
	images     ImageRepository
	detections DetectionRepository
	templates  TemplateRepository
	pets       PetRepository
	store      ImageStore
	detector   Detector
	embedder   Embedder
	logger     *slog.Logger
}

func NewTemplateBuilder(
	images ImageRepository,
	detections DetectionRepository,
	templates TemplateRepository,
	pets PetRepository,
	store ImageStore,
	detector Detector,
	embedder Embedder,
	logger *slog.Logger,
) *TemplateBuilder {
	return &TemplateBuilder{
		images:     images,
		detections: detections,
		templates:  templates,
		pets:       pets,
		store:      store,
		detector:   detector,
		embedder:   embedder,
		logger:     logger,
	}
}

// BuildStats reports what happened to each image of a build attempt.
type BuildStats struct {
	Total      int
	Processed  int
	Successful int
	Failed     int
	Template   *domain.Template
}

// Build processes every usable image of the session, averages the
// embeddings and persists the resulting template. A single bad image never
// fails the build; zero usable embeddings does, with ErrNoUsableImages.
func (b *TemplateBuilder) Build(ctx context.Context, petID, sessionID uuid.UUID) (*BuildStats, error) {
	started := time.Now()

	images, err := b.images.ListUsableBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	stats := &BuildStats{Total: len(images)}
	sum := make([]float64, b.embedder.Dim())

	for _, petImage := range images {
		embedding := b.embedImage(ctx, &petImage)
		stats.Processed++
		if embedding == nil {
			stats.Failed++
			continue
		}
		for i, v := range embedding {
			sum[i] += float64(v)
		}
		stats.Successful++
	}

	if stats.Successful == 0 {
		return stats, domain.ErrNoUsableImages
	}

	mean := make([]float32, len(sum))
	for i, v := range sum {
		mean[i] = float32(v / float64(stats.Successful))
	}

	elapsed := time.Since(started).Seconds()
	quality := float64(stats.Successful) / float64(stats.Total)
	template := &domain.Template{
		PetID:             petID,
		Embedding:         mean,
		Dimension:         len(mean),
		ModelName:         b.embedder.ModelName(),
		Status:            domain.TemplateCompleted,
		SourceImagesCount: stats.Successful,
		QualityScore:      &quality,
		ProcessingSeconds: &elapsed,
	}
	if err := b.templates.Create(ctx, template); err != nil {
		return stats, err
	}
	stats.Template = template

	if err := b.pets.UpdateRegistrationStatus(ctx, petID, domain.RegistrationCompleted); err != nil {
		return stats, err
	}

	b.logger.Info("face template built",
		slog.String("pet_id", petID.String()),
		slog.String("template_id", template.ID.String()),
		slog.Int("source_images", stats.Successful),
		slog.Int("failed_images", stats.Failed),
		slog.Float64("seconds", elapsed),
	)

	return stats, nil
}

// embedImage fetches, decodes, detects and embeds one stored image.
// Every failure mode returns nil; the caller counts it as failed.
func (b *TemplateBuilder) embedImage(ctx context.Context, petImage *domain.PetImage) []float32 {
	data, err := b.store.GetObject(ctx, petImage.ObjectKey)
	if err != nil {
		b.logger.Warn("fetch image failed",
			slog.String("image_id", petImage.ID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}

	img, err := vision.DecodeImage(data)
	if err != nil {
		b.logger.Warn("decode image failed",
			slog.String("image_id", petImage.ID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}

	start := time.Now()
	detections := b.detector.Detect(img)
	observability.InferenceDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())

	for _, det := range detections {
		record := &domain.FaceDetection{
			ImageID:      petImage.ID,
			Class:        det.Class,
			Confidence:   float64(det.Confidence),
			X1:           float64(det.Box.X1),
			Y1:           float64(det.Box.Y1),
			X2:           float64(det.Box.X2),
			Y2:           float64(det.Box.Y2),
			FaceArea:     float64(det.Box.Area()),
			ModelVersion: b.detector.ModelVersion(),
		}
		if err := b.detections.Create(ctx, record); err != nil {
			b.logger.Warn("audit detection failed", slog.String("error", err.Error()))
		}
	}

	best := BestFace(detections)
	if best == nil {
		return nil
	}

	crop := b.detector.ExtractCrop(img, best.Box)
	if crop == nil {
		return nil
	}

	start = time.Now()
	embedding := b.embedder.Embed(crop)
	observability.InferenceDuration.WithLabelValues("embed").Observe(time.Since(start).Seconds())

	if embedding != nil && len(embedding) != b.embedder.Dim() {
		b.logger.Warn("embedding dimension mismatch",
			slog.Int("got", len(embedding)),
			slog.Int("want", b.embedder.Dim()),
		)
		return nil
	}

	return embedding
}
