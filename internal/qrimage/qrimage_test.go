package qrimage

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPNG(t *testing.T) {
	r := NewRenderer()

	data, err := r.RenderPNG("https://scan.example.com/scan/ABC123DEF456", 256)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestRenderPNG_EmptyContent(t *testing.T) {
	r := NewRenderer()

	_, err := r.RenderPNG("", 128)
	assert.Error(t, err)
}
