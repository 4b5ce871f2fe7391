package domain

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrPetNotFound,
			expected: "Pet not found",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	appErr := &AppError{
		Code:       "TEST",
		Message:    "test",
		StatusCode: 500,
		Err:        underlying,
	}

	if got := appErr.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	if got := ErrPetNotFound.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("pg: connection refused")
	wrapped := ErrSessionNotFound.WithError(underlying)

	if wrapped == ErrSessionNotFound {
		t.Fatal("WithError() must return a copy, not mutate the sentinel")
	}
	if wrapped.Code != ErrSessionNotFound.Code {
		t.Errorf("Code = %v, want %v", wrapped.Code, ErrSessionNotFound.Code)
	}
	if wrapped.StatusCode != ErrSessionNotFound.StatusCode {
		t.Errorf("StatusCode = %v, want %v", wrapped.StatusCode, ErrSessionNotFound.StatusCode)
	}
	if !errors.Is(wrapped.Unwrap(), underlying) {
		t.Error("wrapped error lost the underlying cause")
	}
	if errors.Is(ErrSessionNotFound.Unwrap(), underlying) {
		t.Error("sentinel was mutated by WithError")
	}
}

func TestSentinelCodes(t *testing.T) {
	tests := []struct {
		appErr *AppError
		code   string
		status int
	}{
		{ErrSessionAlreadyActive, "SESSION_ALREADY_ACTIVE", 409},
		{ErrSessionExpired, "SESSION_EXPIRED", 400},
		{ErrSessionNotActive, "SESSION_NOT_ACTIVE", 400},
		{ErrQRExhausted, "QR_EXHAUSTED", 400},
		{ErrQRExpired, "QR_EXPIRED", 400},
		{ErrNoFaceDetected, "NO_FACE_DETECTED", 422},
		{ErrQRSessionClosed, "QR_SESSION_CLOSED", 409},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.appErr.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.appErr.Code, tt.code)
			}
			if tt.appErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %v, want %v", tt.appErr.StatusCode, tt.status)
			}
		})
	}
}
