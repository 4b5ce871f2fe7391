package vision

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	embInputW = 224
	embInputH = 224
	embDim    = 512
)

// Embedder extracts face embeddings using a CLIP-style ONNX vision encoder.
// Like Detector, it is loaded once and shared; Run is serialized.
type Embedder struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	modelName    string
}

// NewEmbedder loads the embedding ONNX model.
func NewEmbedder(modelPath string, opts *ort.SessionOptions) (*Embedder, error) {
	inputShape := ort.NewShape(1, 3, embInputH, embInputW)
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, embDim)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"pixel_values"},
		[]string{"image_embeds"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create embedder session: %w", err)
	}

	return &Embedder{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		modelName:    strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath)),
	}, nil
}

// Embed extracts an L2-normalized embedding from a face crop. Inference
// failures are logged and yield nil; the caller skips the image.
func (e *Embedder) Embed(crop image.Image) []float32 {
	bounds := crop.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil
	}

	input := preprocessForEmbedding(crop, embInputW, embInputH)

	e.mu.Lock()
	copy(e.inputTensor.GetData(), input)
	if err := e.session.Run(); err != nil {
		e.mu.Unlock()
		slog.Warn("embedding inference failed", "error", err, "model", e.modelName)
		return nil
	}
	embedding := make([]float32, embDim)
	copy(embedding, e.outputTensor.GetData())
	e.mu.Unlock()

	normalize(embedding)
	return embedding
}

// Dim returns the embedding vector dimension.
func (e *Embedder) Dim() int {
	return embDim
}

// ModelName identifies the loaded model for template records.
func (e *Embedder) ModelName() string {
	return e.modelName
}

func (e *Embedder) Close() {
	if e.session != nil {
		e.session.Destroy()
	}
	if e.inputTensor != nil {
		e.inputTensor.Destroy()
	}
	if e.outputTensor != nil {
		e.outputTensor.Destroy()
	}
}

// normalize performs L2 normalization in-place.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := float32(math.Sqrt(sum))
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
}
