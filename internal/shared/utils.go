// Package shared provides helpers for handling secrets in memory.
package shared

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns size random bytes, hex encoded (2*size chars).
// The development API uses it to generate a signing secret when none is
// configured.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes b, e.g. a password once it has been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
