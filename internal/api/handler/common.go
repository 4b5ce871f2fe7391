package handler

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/petnologia/petface/internal/domain"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
	maxBatchSize = 10
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// extractAndValidateImage extracts and validates a single image from the form
func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}
	return readImageFile(file)
}

// extractImageBatch extracts every "images" file from a multipart form
func extractImageBatch(c *fiber.Ctx) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, domain.ErrValidationFailed
	}
	if len(files) > maxBatchSize {
		return nil, domain.ErrValidationFailed
	}

	batch := make([][]byte, 0, len(files))
	for _, file := range files {
		data, err := readImageFile(file)
		if err != nil {
			return nil, err
		}
		batch = append(batch, data)
	}
	return batch, nil
}

func readImageFile(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > maxImageSize || file.Size == 0 {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
