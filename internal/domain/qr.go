package domain

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
)

// QRStatus is the stored state of a QR code. Usability is always re-derived
// from status, expiry and usage at check time.
type QRStatus string

const (
	QRActive   QRStatus = "active"
	QRUsed     QRStatus = "used"
	QRExpired  QRStatus = "expired"
	QRDisabled QRStatus = "disabled"
)

// QRType distinguishes where a code is meant to be scanned.
type QRType string

const (
	QRTypePetSearch    QRType = "pet_search"
	QRTypeClinicSearch QRType = "clinic_search"
	QRTypeEmergency    QRType = "emergency"
)

const (
	qrCodeLength    = 12
	qrCodeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultMaxUsage = 1
)

// QRCode é um código físico/impresso que abre uma sessão de busca.
type QRCode struct {
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	Type       QRType     `json:"qr_type"`
	Status     QRStatus   `json:"status"`
	CreatedBy  uuid.UUID  `json:"-"`
	ClinicName *string    `json:"clinic_name,omitempty"`
	Location   *string    `json:"location,omitempty"`
	UsageCount int        `json:"usage_count"`
	MaxUsage   int        `json:"max_usage"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
}

// IsExpiredAt reports whether the code's own expiry passed.
func (q *QRCode) IsExpiredAt(now time.Time) bool {
	return q.ExpiresAt != nil && now.After(*q.ExpiresAt)
}

// IsUsableAt re-derives usability: active status, not expired, usage below cap.
func (q *QRCode) IsUsableAt(now time.Time) bool {
	return q.Status == QRActive && !q.IsExpiredAt(now) && q.UsageCount < q.MaxUsage
}

// NewQRCodeValue generates a random 12-character A-Z0-9 code.
func NewQRCodeValue() string {
	buf := make([]byte, qrCodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = qrCodeAlphabet[int(b)%len(qrCodeAlphabet)]
	}
	return string(buf)
}

// QRSessionStatus is the state of one scan-to-result flow.
type QRSessionStatus string

const (
	QRSessionInitiated     QRSessionStatus = "initiated"
	QRSessionImageUploaded QRSessionStatus = "image_uploaded"
	QRSessionProcessing    QRSessionStatus = "processing"
	QRSessionCompleted     QRSessionStatus = "completed"
	QRSessionFailed        QRSessionStatus = "failed"
	QRSessionExpiredState  QRSessionStatus = "expired"
)

// QRSessionTTL bounds how long a scanner has to upload a photo.
const QRSessionTTL = 30 * time.Minute

// QRSearchSession representa uma sessão de busca aberta por um scan.
type QRSearchSession struct {
	ID            uuid.UUID       `json:"id"`
	QRCodeID      uuid.UUID       `json:"qr_code_id"`
	Token         string          `json:"session_token"`
	Status        QRSessionStatus `json:"status"`
	SearcherIP    *string         `json:"-"`
	UserAgent     *string         `json:"-"`
	ResultID      *uuid.UUID      `json:"result_id,omitempty"`
	FailureReason *string         `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// IsExpiredAt checks the session's own expiry, independent of the QR code's.
func (s *QRSearchSession) IsExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsTerminal reports whether the session reached a final state. Transitions
// are forward-only; a terminal session rejects further uploads.
func (s *QRSearchSession) IsTerminal() bool {
	switch s.Status {
	case QRSessionCompleted, QRSessionFailed, QRSessionExpiredState:
		return true
	}
	return false
}
