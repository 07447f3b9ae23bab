package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandomString returns n random bytes hex encoded (2n characters).
func GenerateRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
