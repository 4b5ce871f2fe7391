package vision

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Box is a pixel-space bounding box (x1, y1, x2, y2).
type Box struct {
	X1, Y1, X2, Y2 float32
}

// Area returns the box area in pixels.
func (b Box) Area() float32 {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Detection represents one detected animal or animal face.
type Detection struct {
	Class      string
	Confidence float32
	Box        Box
}

// IsFace reports whether the detection is a face class usable for embedding.
func (d Detection) IsFace() bool {
	return strings.HasSuffix(d.Class, "_face")
}

// classNames must match the training order of the detection model head.
var classNames = []string{"cat", "cat_face", "dog", "dog_face"}

const (
	detInputW    = 640
	detInputH    = 640
	detAnchors   = 8400
	iouThreshold = 0.45
)

// Detector runs pet face detection using an ONNX YOLO-style model.
//
// A Detector is loaded once at process start and shared; the preallocated
// tensors make Run non-reentrant, so calls are serialized with a mutex.
type Detector struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	threshold    float32
	modelVersion string
}

// NewDetector loads the detection ONNX model.
// opts may be nil (ORT defaults) or a pre-configured *ort.SessionOptions.
func NewDetector(modelPath string, threshold float32, opts *ort.SessionOptions) (*Detector, error) {
	inputShape := ort.NewShape(1, 3, detInputH, detInputW)
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	// Single YOLO head: [1, 4 box coords + len(classNames) scores, 8400]
	outputShape := ort.NewShape(1, int64(4+len(classNames)), detAnchors)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create detector session: %w", err)
	}

	return &Detector{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		threshold:    threshold,
		modelVersion: strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath)),
	}, nil
}

// Detect runs detection on a decoded image and returns detections sorted by
// confidence descending. Inference failures are logged and yield an empty
// result; callers treat "no detections" and "detector failed" the same way.
func (d *Detector) Detect(img image.Image) []Detection {
	bounds := img.Bounds()
	origW := bounds.Dx()
	origH := bounds.Dy()
	if origW == 0 || origH == 0 {
		return nil
	}

	input := preprocessForDetection(img, detInputW, detInputH)

	d.mu.Lock()
	copy(d.inputTensor.GetData(), input)
	if err := d.session.Run(); err != nil {
		d.mu.Unlock()
		slog.Warn("detection inference failed", "error", err, "model", d.modelVersion)
		return nil
	}
	raw := make([]float32, len(d.outputTensor.GetData()))
	copy(raw, d.outputTensor.GetData())
	d.mu.Unlock()

	detections := decodeDetections(raw, d.threshold, origW, origH)
	detections = nms(detections, iouThreshold)

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})

	return detections
}

// decodeDetections parses the YOLO head output: anchors as columns, rows are
// cx, cy, w, h followed by one score per class, all at model input scale.
func decodeDetections(raw []float32, threshold float32, origW, origH int) []Detection {
	scaleW := float32(origW) / float32(detInputW)
	scaleH := float32(origH) / float32(detInputH)

	var detections []Detection
	for i := 0; i < detAnchors; i++ {
		bestClass := -1
		bestScore := float32(0)
		for c := range classNames {
			score := raw[(4+c)*detAnchors+i]
			if score > bestScore {
				bestScore = score
				bestClass = c
			}
		}
		if bestClass < 0 || bestScore < threshold {
			continue
		}

		cx := raw[0*detAnchors+i]
		cy := raw[1*detAnchors+i]
		w := raw[2*detAnchors+i]
		h := raw[3*detAnchors+i]

		x1 := clampF((cx-w/2)*scaleW, 0, float32(origW))
		y1 := clampF((cy-h/2)*scaleH, 0, float32(origH))
		x2 := clampF((cx+w/2)*scaleW, 0, float32(origW))
		y2 := clampF((cy+h/2)*scaleH, 0, float32(origH))

		detections = append(detections, Detection{
			Class:      classNames[bestClass],
			Confidence: bestScore,
			Box:        Box{X1: x1, Y1: y1, X2: x2, Y2: y2},
		})
	}

	return detections
}

// ExtractCrop cuts the detected region out of the source image with a 10%
// margin on each side. Returns nil when the clamped box is degenerate.
func (d *Detector) ExtractCrop(img image.Image, box Box) image.Image {
	return CropBox(img, box)
}

// ModelVersion identifies the loaded model for audit records.
func (d *Detector) ModelVersion() string {
	return d.modelVersion
}

func (d *Detector) Close() {
	if d.session != nil {
		d.session.Destroy()
	}
	if d.inputTensor != nil {
		d.inputTensor.Destroy()
	}
	if d.outputTensor != nil {
		d.outputTensor.Destroy()
	}
}

// nms performs Non-Maximum Suppression per class.
func nms(detections []Detection, iouThreshold float32) []Detection {
	if len(detections) == 0 {
		return detections
	}

	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})

	keep := make([]bool, len(detections))
	for i := range keep {
		keep[i] = true
	}

	for i := 0; i < len(detections); i++ {
		if !keep[i] {
			continue
		}
		for j := i + 1; j < len(detections); j++ {
			if !keep[j] || detections[i].Class != detections[j].Class {
				continue
			}
			if iou(detections[i].Box, detections[j].Box) > iouThreshold {
				keep[j] = false
			}
		}
	}

	var result []Detection
	for i, d := range detections {
		if keep[i] {
			result = append(result, d)
		}
	}
	return result
}

func iou(a, b Box) float32 {
	x1 := float32(math.Max(float64(a.X1), float64(b.X1)))
	y1 := float32(math.Max(float64(a.Y1), float64(b.Y1)))
	x2 := float32(math.Min(float64(a.X2), float64(b.X2)))
	y2 := float32(math.Min(float64(a.Y2), float64(b.Y2)))

	intersection := float32(math.Max(0, float64(x2-x1))) * float32(math.Max(0, float64(y2-y1)))

	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

func clampF(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
