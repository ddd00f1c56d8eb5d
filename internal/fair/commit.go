// Package fair implements the commit-reveal protocol used to pick giveaway
// winners in a way any third party can verify. The operator commits to a
// random seed before entries are known by publishing only its SHA-256 hash,
// and reveals the seed when the winner is drawn. Everything in this package
// is pure computation: no storage, no transport, no clock.
//
// The seed is canonically represented as its lowercase 64-character hex
// string; that string (not the raw bytes) is what every hash in the protocol
// is computed over, so independent implementations agree byte for byte.
package fair

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
)

// SeedSize is the length of a seed in bytes.
const SeedSize = 32

// Seed is the operator's committed secret.
type Seed [SeedSize]byte

var ErrBadSeed = errors.New("seed must be 64 hex characters")

// NewSeed draws a fresh seed from crypto/rand. If the randomness source
// fails the error is returned as is; there is no weaker fallback.
func NewSeed() (Seed, error) {
	var s Seed
	if _, err := rand.Read(s[:]); err != nil {
		return Seed{}, fmt.Errorf("secure randomness unavailable: %w", err)
	}
	return s, nil
}

// ParseSeed decodes a seed from its canonical hex form.
func ParseSeed(seedHex string) (Seed, error) {
	b, err := hex.DecodeString(seedHex)
	if err != nil || len(b) != SeedSize {
		return Seed{}, ErrBadSeed
	}
	var s Seed
	copy(s[:], b)
	return s, nil
}

// Hex returns the canonical lowercase hex representation of the seed.
func (s Seed) Hex() string {
	return hex.EncodeToString(s[:])
}

// CommitHash returns the published commitment: SHA-256 of the seed's hex
// string, as a lowercase hex digest.
func (s Seed) CommitHash() string {
	return CommitHashOf(s.Hex())
}

// CommitHashOf computes the commitment hash for an already hex-encoded seed.
func CommitHashOf(seedHex string) string {
	sum := sha256.Sum256([]byte(seedHex))
	return hex.EncodeToString(sum[:])
}

// VerifyCommitment reports whether seedHex binds to commitHash, i.e. the
// revealed seed is the one the operator committed to before entries were
// known. Comparison is constant-time.
func VerifyCommitment(seedHex, commitHash string) bool {
	return subtle.ConstantTimeCompare([]byte(CommitHashOf(seedHex)), []byte(commitHash)) == 1
}
