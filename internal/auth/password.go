package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the bcrypt input limit. Bytes beyond this do not
// contribute to the hash, so both hashing and verification truncate to
// the same prefix to keep the two paths consistent.
const maxPasswordBytes = 72

// normalisePassword trims surrounding whitespace and truncates to the
// first 72 bytes. Applied identically on hash and verify.
func normalisePassword(password string) []byte {
	b := []byte(strings.TrimSpace(password))
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// HashPassword hashes a plaintext password with bcrypt. Each call
// generates a fresh random salt, so two hashes of the same password
// differ. The returned string embeds algorithm, cost and salt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(normalisePassword(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against a stored bcrypt hash.
// Returns true only on a match. Malformed or foreign hash strings verify
// as false rather than erroring; callers treat them as bad credentials.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), normalisePassword(password)) == nil
}
