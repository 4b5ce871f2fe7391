package domain

import (
	"crypto/rand"
	"encoding/base64"
)

// NewSessionToken returns a URL-safe opaque token for session lookup.
func NewSessionToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
