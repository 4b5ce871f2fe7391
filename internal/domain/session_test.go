package domain

import (
	"testing"
	"time"
)

func TestRegistrationSession_IsExpiredAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  SessionStatus
		at      time.Time
		expired bool
	}{
		{"active within ttl", SessionActive, start.Add(29 * time.Minute), false},
		{"active at exact ttl", SessionActive, start.Add(SessionTTL), false},
		{"active past ttl", SessionActive, start.Add(SessionTTL + time.Second), true},
		{"completed never expires", SessionCompleted, start.Add(2 * time.Hour), false},
		{"failed never expires", SessionFailed, start.Add(2 * time.Hour), false},
		{"already expired stays terminal", SessionExpired, start.Add(2 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &RegistrationSession{Status: tt.status, StartTime: start}
			if got := s.IsExpiredAt(tt.at); got != tt.expired {
				t.Errorf("IsExpiredAt() = %v, want %v", got, tt.expired)
			}
		})
	}
}

func TestRegistrationSession_ExpiresAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &RegistrationSession{Status: SessionActive, StartTime: start}

	want := start.Add(30 * time.Minute)
	if got := s.ExpiresAt(); !got.Equal(want) {
		t.Errorf("ExpiresAt() = %v, want %v", got, want)
	}
}
