package idgen

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

// GenerateSecureID generates a cryptographically secure ID with the given prefix and length.
// Uses only alphanumeric characters (0-9, a-z) - no dashes or special characters.
func GenerateSecureID(prefix string, length int) (string, error) {
	bytes := make([]byte, length*2)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	const charset = "0123456789abcdefghijklmnopqrstuvwxyz"
	encoded := make([]byte, length)
	for i := 0; i < length; i++ {
		encoded[i] = charset[bytes[i]%36] // 36 = len(charset)
	}

	return fmt.Sprintf("%s_%s", prefix, string(encoded)), nil
}

// NewID returns a 16 character secure ID, falling back to a UUID when the
// system random source fails.
func NewID(prefix string) string {
	id, err := GenerateSecureID(prefix, 16)
	if err != nil {
		return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
	}
	return id
}
