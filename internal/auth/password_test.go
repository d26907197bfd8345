package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	password := "correct-horse-battery-staple"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	// bcrypt hashes are self-describing: $2a$cost$saltandhash
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash should start with $2, got %q", hash)
	}

	if !VerifyPassword(password, hash) {
		t.Error("VerifyPassword() should return true for correct password")
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if VerifyPassword("wrong-password", hash) {
		t.Error("VerifyPassword() should return false for wrong password")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	password := "same-password"

	hash1, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash1 == hash2 {
		t.Error("two hashes of the same password should have different salts")
	}
}

func TestHashPassword_TruncatesAt72Bytes(t *testing.T) {
	base := strings.Repeat("a", 72)

	hash, err := HashPassword(base + "extra-bytes-beyond-the-limit")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	// Bytes past 72 do not participate in the hash.
	if !VerifyPassword(base+"completely-different-tail", hash) {
		t.Error("passwords agreeing on the first 72 bytes should verify")
	}

	// A difference within the first 72 bytes still matters.
	if VerifyPassword(strings.Repeat("b", 72), hash) {
		t.Error("passwords differing within the first 72 bytes should not verify")
	}
}

func TestHashPassword_TrimsWhitespace(t *testing.T) {
	hash, err := HashPassword("  secret  ")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !VerifyPassword("secret", hash) {
		t.Error("surrounding whitespace should be stripped before hashing")
	}
	if !VerifyPassword("\tsecret\n", hash) {
		t.Error("surrounding whitespace should be stripped before verifying")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plaintext", "not-a-hash"},
		{"argon2id hash", "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA"},
		{"truncated bcrypt", "$2a$10$tooShort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyPassword("password", tt.hash) {
				t.Error("VerifyPassword() should return false for malformed hash")
			}
		})
	}
}
