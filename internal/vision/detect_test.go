package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawOutput() []float32 {
	return make([]float32, (4+len(classNames))*detAnchors)
}

func setAnchor(raw []float32, i int, cx, cy, w, h float32, class int, score float32) {
	raw[0*detAnchors+i] = cx
	raw[1*detAnchors+i] = cy
	raw[2*detAnchors+i] = w
	raw[3*detAnchors+i] = h
	raw[(4+class)*detAnchors+i] = score
}

func TestDecodeDetections(t *testing.T) {
	raw := rawOutput()
	setAnchor(raw, 0, 320, 320, 100, 100, 1, 0.9)  // cat_face, confident
	setAnchor(raw, 10, 100, 100, 50, 50, 3, 0.3)   // dog_face, below threshold
	setAnchor(raw, 20, 630, 630, 100, 100, 2, 0.8) // dog near the edge

	detections := decodeDetections(raw, 0.5, 640, 640)

	require.Len(t, detections, 2)

	face := detections[0]
	assert.Equal(t, "cat_face", face.Class)
	assert.InDelta(t, 0.9, float64(face.Confidence), 1e-6)
	assert.InDelta(t, 270, float64(face.Box.X1), 0.5)
	assert.InDelta(t, 270, float64(face.Box.Y1), 0.5)
	assert.InDelta(t, 370, float64(face.Box.X2), 0.5)
	assert.InDelta(t, 370, float64(face.Box.Y2), 0.5)
	assert.True(t, face.IsFace())

	edge := detections[1]
	assert.Equal(t, "dog", edge.Class)
	assert.False(t, edge.IsFace())
	// Box clamped to the image, never past it.
	assert.LessOrEqual(t, float64(edge.Box.X2), 640.0)
	assert.LessOrEqual(t, float64(edge.Box.Y2), 640.0)
}

func TestDecodeDetections_ScalesToOriginalSize(t *testing.T) {
	raw := rawOutput()
	setAnchor(raw, 0, 320, 320, 320, 320, 0, 0.7)

	detections := decodeDetections(raw, 0.5, 1280, 320)

	require.Len(t, detections, 1)
	box := detections[0].Box
	assert.InDelta(t, 320, float64(box.X1), 0.5)
	assert.InDelta(t, 960, float64(box.X2), 0.5)
	assert.InDelta(t, 80, float64(box.Y1), 0.5)
	assert.InDelta(t, 240, float64(box.Y2), 0.5)
}

func TestNMS_SuppressesSameClassOverlap(t *testing.T) {
	detections := []Detection{
		{Class: "cat_face", Confidence: 0.9, Box: Box{X1: 0, Y1: 0, X2: 100, Y2: 100}},
		{Class: "cat_face", Confidence: 0.7, Box: Box{X1: 10, Y1: 10, X2: 110, Y2: 110}},
		{Class: "cat_face", Confidence: 0.6, Box: Box{X1: 300, Y1: 300, X2: 400, Y2: 400}},
	}

	kept := nms(detections, 0.45)

	require.Len(t, kept, 2)
	assert.InDelta(t, 0.9, float64(kept[0].Confidence), 1e-6)
	assert.InDelta(t, 0.6, float64(kept[1].Confidence), 1e-6)
}

func TestNMS_KeepsDifferentClasses(t *testing.T) {
	detections := []Detection{
		{Class: "cat", Confidence: 0.9, Box: Box{X1: 0, Y1: 0, X2: 100, Y2: 100}},
		{Class: "cat_face", Confidence: 0.8, Box: Box{X1: 5, Y1: 5, X2: 95, Y2: 95}},
	}

	kept := nms(detections, 0.45)
	assert.Len(t, kept, 2)
}

func TestIOU(t *testing.T) {
	a := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}

	assert.InDelta(t, 1.0, float64(iou(a, a)), 1e-6)
	assert.InDelta(t, 0.0, float64(iou(a, Box{X1: 20, Y1: 20, X2: 30, Y2: 30})), 1e-6)

	half := Box{X1: 0, Y1: 5, X2: 10, Y2: 15}
	assert.InDelta(t, 50.0/150.0, float64(iou(a, half)), 1e-6)
}

func TestBox_Area(t *testing.T) {
	assert.Equal(t, float32(100), Box{X1: 0, Y1: 0, X2: 10, Y2: 10}.Area())
	assert.Equal(t, float32(0), Box{X1: 10, Y1: 10, X2: 0, Y2: 0}.Area())
}
