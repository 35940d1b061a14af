package util

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2KeyLen is the fixed derived-key length for stored password
// hashes. Descriptors always encode a 32-byte key.
const PBKDF2KeyLen = 32

func DerivePBKDF2Key(password string, salt []byte, iterations int) ([]byte, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("pbkdf2 iteration count must be positive, got %d", iterations)
	}
	return pbkdf2.Key([]byte(password), salt, iterations, PBKDF2KeyLen, sha256.New), nil
}

// ComparePBKDF2Key derives a key from password and compares it against
// expectedKey in constant time.
func ComparePBKDF2Key(password string, salt []byte, iterations int, expectedKey []byte) (bool, error) {
	key, err := DerivePBKDF2Key(password, salt, iterations)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, expectedKey) == 1, nil
}
