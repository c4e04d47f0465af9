package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// resetTokenBytes is the entropy of a reset token. 32 bytes keeps the token
// comfortably unguessable while staying short enough for a URL parameter.
const resetTokenBytes = 32

// NewResetToken generates a cryptographically random, URL-safe single-use
// token value.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
