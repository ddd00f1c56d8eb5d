// Package shared provides sentinel errors and small helpers used across
// server components.
package shared

import "crypto/rand"

// RandBytes returns size cryptographically random bytes. It panics if the
// randomness source fails; salts and secrets must never come from a weaker
// source.
func RandBytes(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeBytes overwrites the contents of b with zeros. Used to drop plaintext
// credentials from memory once a verifier has been derived.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
