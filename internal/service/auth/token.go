package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenKeyBytes yields a 40-character hex key.
const tokenKeyBytes = 20

// KeyGenerator produces new opaque token keys.
type KeyGenerator func() (string, error)

// GenerateKey returns a random 40-character lowercase hex key.
func GenerateKey() (string, error) {
	buf := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
