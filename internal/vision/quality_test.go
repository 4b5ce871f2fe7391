package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformImage(w, h int, gray uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{gray, gray, gray, 255})
		}
	}
	return img
}

func checkerImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func TestAssessQuality_UniformImage(t *testing.T) {
	metrics := AssessQuality(uniformImage(32, 32, 128))
	require.NotNil(t, metrics)

	assert.InDelta(t, 128, metrics.Brightness, 1)
	assert.InDelta(t, 0, metrics.Contrast, 1e-9)
	assert.InDelta(t, 0, metrics.Blur, 1e-9)
}

func TestAssessQuality_HighFrequencyImage(t *testing.T) {
	metrics := AssessQuality(checkerImage(32, 32))
	require.NotNil(t, metrics)

	assert.Greater(t, metrics.Contrast, 100.0)
	assert.Greater(t, metrics.Blur, 1000.0)
	assert.InDelta(t, 127.5, metrics.Brightness, 5)
}

func TestAssessQuality_TooSmall(t *testing.T) {
	assert.Nil(t, AssessQuality(uniformImage(2, 2, 100)))
}
