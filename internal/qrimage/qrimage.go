package qrimage

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Renderer produces printable QR code PNGs with medium error correction,
// enough redundancy for codes worn by weather or handling.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderPNG encodes the content into a size x size PNG.
func (r *Renderer) RenderPNG(content string, size int) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
