package common

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// SecretLength is the exact length of session and host secrets. Inputs are
// validated against it before any repository lookup.
const SecretLength = 36

// NewSecret returns a fresh opaque secret in the canonical 36-character form.
// Secrets are single-use per issuance: reissuing one invalidates the previous
// value held by the repository.
func NewSecret() string {
	return uuid.NewString()
}

// MakeRandHexString generates a random hexadecimal string from size random
// bytes. The resulting string is twice as long as size, since each byte
// expands to two hex characters.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
