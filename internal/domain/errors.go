package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing API key",
		StatusCode: 401,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Access denied",
		StatusCode: 403,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrPetNotFound = &AppError{
		Code:       "PET_NOT_FOUND",
		Message:    "Pet not found",
		StatusCode: 404,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No pet face detected, please retake the photo",
		StatusCode: 422,
	}

	// Registration session errors
	ErrSessionNotFound = &AppError{
		Code:       "SESSION_NOT_FOUND",
		Message:    "Registration session not found",
		StatusCode: 404,
	}

	ErrSessionAlreadyActive = &AppError{
		Code:       "SESSION_ALREADY_ACTIVE",
		Message:    "An active registration session already exists for this pet",
		StatusCode: 409,
	}

	ErrSessionExpired = &AppError{
		Code:       "SESSION_EXPIRED",
		Message:    "Registration session has expired",
		StatusCode: 400,
	}

	ErrSessionNotActive = &AppError{
		Code:       "SESSION_NOT_ACTIVE",
		Message:    "Registration session is not active",
		StatusCode: 400,
	}

	ErrNoUsableImages = &AppError{
		Code:       "NO_USABLE_IMAGES",
		Message:    "No image produced a usable face embedding",
		StatusCode: 422,
	}

	ErrTemplateExists = &AppError{
		Code:       "TEMPLATE_EXISTS",
		Message:    "A completed template already exists for this pet",
		StatusCode: 409,
	}

	// QR errors
	ErrQRNotFound = &AppError{
		Code:       "QR_NOT_FOUND",
		Message:    "QR code not found",
		StatusCode: 404,
	}

	ErrQRNotUsable = &AppError{
		Code:       "QR_NOT_USABLE",
		Message:    "QR code is not usable",
		StatusCode: 400,
	}

	ErrQRExpired = &AppError{
		Code:       "QR_EXPIRED",
		Message:    "QR code has expired",
		StatusCode: 400,
	}

	ErrQRExhausted = &AppError{
		Code:       "QR_EXHAUSTED",
		Message:    "QR code usage limit reached",
		StatusCode: 400,
	}

	ErrQRSessionNotFound = &AppError{
		Code:       "QR_SESSION_NOT_FOUND",
		Message:    "Search session not found",
		StatusCode: 404,
	}

	ErrQRSessionExpired = &AppError{
		Code:       "QR_SESSION_EXPIRED",
		Message:    "Search session has expired",
		StatusCode: 400,
	}

	ErrQRSessionClosed = &AppError{
		Code:       "QR_SESSION_CLOSED",
		Message:    "Search session already finished",
		StatusCode: 409,
	}
)
