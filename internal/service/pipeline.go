package service

import (
	"image"
	"log/slog"

	"github.com/petnologia/petface/internal/vision"
)

// Pipeline is the shared detect, crop and embed path used by searches and
// the template builder.
type Pipeline struct {
	detector Detector
	embedder Embedder
	logger   *slog.Logger
}

func NewPipeline(detector Detector, embedder Embedder, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		detector: detector,
		embedder: embedder,
		logger:   logger,
	}
}

// EmbedQuery extracts an embedding from the best face in the image.
// Returns (nil, nil) when no face class is detected or the crop cannot be
// embedded; the caller decides what a missing face means.
func (p *Pipeline) EmbedQuery(img image.Image) ([]float32, *vision.Detection) {
	detections := p.detector.Detect(img)

	best := BestFace(detections)
	if best == nil {
		return nil, nil
	}

	crop := p.detector.ExtractCrop(img, best.Box)
	if crop == nil {
		p.logger.Warn("face box produced empty crop",
			slog.String("class", best.Class),
			slog.Float64("confidence", float64(best.Confidence)),
		)
		return nil, best
	}

	embedding := p.embedder.Embed(crop)
	if embedding == nil {
		return nil, best
	}

	return embedding, best
}

// BestFace picks the highest-confidence face-class detection. Detections
// arrive sorted by confidence, so the first face wins.
func BestFace(detections []vision.Detection) *vision.Detection {
	for i := range detections {
		if detections[i].IsFace() {
			return &detections[i]
		}
	}
	return nil
}
