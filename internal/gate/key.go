// Package gate implements the access-control core: secret-key digest
// verification and date eligibility in the product's fixed reference
// timezone.
package gate

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyLength is the length of generated secret keys.
const KeyLength = 10

// keyAlphabet is the uppercase-alphanumeric alphabet keys are drawn from.
const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Digest returns the hex-encoded SHA-256 digest of the plaintext key. The
// algorithm is fixed: stored hashes and share links depend on it.
func Digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether the candidate key digests to storedHash.
func Verify(candidate, storedHash string) bool {
	return Digest(candidate) == storedHash
}

// NormalizeKey uppercases and trims a user-supplied key the way the entry
// form does. Verification itself accepts any string and simply fails on
// mismatch.
func NormalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// GenerateKey returns a new random secret key of KeyLength characters drawn
// from the uppercase-alphanumeric alphabet.
func GenerateKey() (string, error) {
	buf := make([]byte, KeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	out := make([]byte, KeyLength)
	for i, b := range buf {
		out[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}
	return string(out), nil
}
