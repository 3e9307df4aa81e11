package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost = 12
	MaxPinLen  = 128
)

// Secret holds the configured admin PIN, either in plaintext or as a bcrypt hash.
// When a hash is configured it takes precedence over the plaintext form.
type Secret struct {
	pin  string
	hash string
}

// NewSecret creates a Secret from deployment configuration.
// At least one of pin or bcryptHash must be non-empty.
func NewSecret(pin, bcryptHash string) (*Secret, error) {
	if pin == "" && bcryptHash == "" {
		return nil, fmt.Errorf("admin secret is not configured")
	}
	if bcryptHash != "" && !strings.HasPrefix(bcryptHash, "$2") {
		return nil, fmt.Errorf("admin secret hash is not a bcrypt hash")
	}
	return &Secret{pin: pin, hash: bcryptHash}, nil
}

// Matches reports whether the candidate equals the configured PIN.
// Plaintext comparison is constant-time.
func (s *Secret) Matches(candidate string) bool {
	if candidate == "" || len(candidate) > MaxPinLen {
		return false
	}

	if s.hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.hash), []byte(candidate)) == nil
	}

	return subtle.ConstantTimeCompare([]byte(s.pin), []byte(candidate)) == 1
}

// HashPin produces a bcrypt hash suitable for the ADMIN_PIN_HASH setting
func HashPin(pin string) (string, error) {
	if pin == "" {
		return "", fmt.Errorf("pin cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(pin), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(hashedBytes), nil
}
