package storage

import "testing"

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"capture image key", "pets/9f1b/sessions/2c4d/001.jpg", false},
		{"search image key", "searches/direct/9f1b/1725000000.jpg", false},
		{"empty key", "", true},
		{"absolute key", "/etc/passwd", true},
		{"parent traversal", "pets/../../secrets", true},
		{"embedded traversal", "pets/..%2f/x.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateKey(tt.key)
			if tt.wantErr && err == nil {
				t.Errorf("validateKey(%q) expected error, got nil", tt.key)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateKey(%q) unexpected error: %v", tt.key, err)
			}
		})
	}
}
