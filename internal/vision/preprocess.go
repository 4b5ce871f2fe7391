package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// DecodeImage decodes a JPEG or PNG upload.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func preprocessForDetection(img image.Image, targetW, targetH int) []float32 {
	// YOLO export expects plain 0-1 scaling.
	return imageToFloat32CHW(img, targetW, targetH,
		[3]float32{0, 0, 0},
		[3]float32{255, 255, 255})
}

func preprocessForEmbedding(img image.Image, targetW, targetH int) []float32 {
	// CLIP normalization constants, expressed on the 0-255 scale.
	return imageToFloat32CHW(img, targetW, targetH,
		[3]float32{122.77, 116.75, 104.09},
		[3]float32{68.50, 66.63, 70.32})
}

// imageToFloat32CHW resizes and converts an image to CHW float32 format with
// per-channel normalization: pixel = (pixel - mean) / std.
func imageToFloat32CHW(img image.Image, targetW, targetH int, mean, std [3]float32) []float32 {
	resized := resizeImage(img, targetW, targetH)
	bounds := resized.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	data := make([]float32, 3*h*w)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := resized.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()

			rf := float32(r >> 8)
			gf := float32(g >> 8)
			bf := float32(b >> 8)

			// CHW layout: [C][H][W]
			idx := y*w + x
			data[0*h*w+idx] = (rf - mean[0]) / std[0]
			data[1*h*w+idx] = (gf - mean[1]) / std[1]
			data[2*h*w+idx] = (bf - mean[2]) / std[2]
		}
	}

	return data
}

// resizeImage performs a bilinear resize to the model input size.
func resizeImage(img image.Image, targetW, targetH int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == targetW && bounds.Dy() == targetH {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// CropBox extracts a region from the image with a 10% margin on each side,
// clamped to the image bounds. Returns nil for degenerate boxes.
func CropBox(img image.Image, box Box) image.Image {
	bounds := img.Bounds()

	x1 := int(box.X1)
	y1 := int(box.Y1)
	x2 := int(box.X2)
	y2 := int(box.Y2)

	if x1 < bounds.Min.X {
		x1 = bounds.Min.X
	}
	if y1 < bounds.Min.Y {
		y1 = bounds.Min.Y
	}
	if x2 > bounds.Max.X {
		x2 = bounds.Max.X
	}
	if y2 > bounds.Max.Y {
		y2 = bounds.Max.Y
	}

	w := x2 - x1
	h := y2 - y1
	if w <= 0 || h <= 0 {
		return nil
	}

	padW := w / 10
	padH := h / 10
	x1 -= padW
	y1 -= padH
	x2 += padW
	y2 += padH

	if x1 < bounds.Min.X {
		x1 = bounds.Min.X
	}
	if y1 < bounds.Min.Y {
		y1 = bounds.Min.Y
	}
	if x2 > bounds.Max.X {
		x2 = bounds.Max.X
	}
	if y2 > bounds.Max.Y {
		y2 = bounds.Max.Y
	}

	dst := image.NewRGBA(image.Rect(0, 0, x2-x1, y2-y1))
	xdraw.Copy(dst, image.Point{}, img, image.Rect(x1, y1, x2, y2), xdraw.Src, nil)
	return dst
}
