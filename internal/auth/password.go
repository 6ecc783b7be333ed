package auth

import (
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const maxEmailLength = 254

// NormalizeEmail returns the canonical lowercase form of an address and
// validates its shape.
func NormalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(strings.ToLower(raw))
	if email == "" {
		return "", fmt.Errorf("Missing email")
	}
	if len(email) > maxEmailLength {
		return "", fmt.Errorf("email too long")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("invalid email")
	}
	return email, nil
}

// HashSecret hashes one plaintext secret for persistent storage.
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("Missing password")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifySecret verifies a plaintext secret against a bcrypt hash.
func VerifySecret(secretHash, candidate string) bool {
	if strings.TrimSpace(secretHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(candidate)) == nil
}
