package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the number of random bytes in a security token
// (session or CSRF). 32 bytes = 256 bits, hex-encoded to 64 characters.
const TokenBytes = 32

func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating random bytes: %w", err)
	}
	return b, nil
}

// RandomToken returns a hex-encoded 256-bit random token. Uniqueness is
// probabilistic; callers never check for collisions.
func RandomToken() (string, error) {
	b, err := RandomBytes(TokenBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
