package vision

import (
	"image"
	"math"
)

// QualityMetrics are the per-image capture quality measurements persisted
// alongside each registration image.
type QualityMetrics struct {
	Blur       float64 `json:"blur"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
}

// AssessQuality computes blur (Laplacian variance), brightness (mean gray
// level) and contrast (gray level standard deviation) over the image.
// Returns nil when the image is too small to measure.
func AssessQuality(img image.Image) *QualityMetrics {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w < 3 || h < 3 {
		return nil
	}

	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// ITU-R BT.601 luma on the 0-255 scale.
			gray[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}

	var sum float64
	for _, v := range gray {
		sum += v
	}
	mean := sum / float64(len(gray))

	var variance float64
	for _, v := range gray {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(gray))

	return &QualityMetrics{
		Blur:       laplacianVariance(gray, w, h),
		Brightness: mean,
		Contrast:   math.Sqrt(variance),
	}
}

// laplacianVariance applies a 3x3 Laplacian kernel to interior pixels and
// returns the variance of the response. Low values indicate blur.
func laplacianVariance(gray []float64, w, h int) float64 {
	n := (w - 2) * (h - 2)
	if n <= 0 {
		return 0
	}

	responses := make([]float64, 0, n)
	var sum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := 4*gray[y*w+x] -
				gray[(y-1)*w+x] -
				gray[(y+1)*w+x] -
				gray[y*w+x-1] -
				gray[y*w+x+1]
			responses = append(responses, v)
			sum += v
		}
	}

	mean := sum / float64(n)
	var variance float64
	for _, v := range responses {
		d := v - mean
		variance += d * d
	}
	return variance / float64(n)
}

// AssessQuality on the detector keeps quality measurement behind the same
// adapter handle the services already hold.
func (d *Detector) AssessQuality(img image.Image) *QualityMetrics {
	return AssessQuality(img)
}
