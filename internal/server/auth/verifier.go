package auth

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/fairdraw/internal/shared"
	"golang.org/x/crypto/argon2"
)

// Verifier holds an argon2id digest of the admin password. The plaintext is
// wiped once the verifier is derived, so only the digest stays in memory for
// the lifetime of the process.
type Verifier struct {
	salt   []byte
	digest []byte
}

func deriveDigest(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// NewVerifier derives a verifier from password and wipes the input slice.
func NewVerifier(password []byte) *Verifier {
	salt := shared.RandBytes(16)
	digest := deriveDigest(password, salt)
	shared.WipeBytes(password)
	return &Verifier{salt: salt, digest: digest}
}

// Check reports whether candidate is the password the verifier was derived
// from. Comparison is constant-time.
func (v *Verifier) Check(candidate []byte) bool {
	candidateDigest := deriveDigest(candidate, v.salt)
	shared.WipeBytes(candidate)
	return subtle.ConstantTimeCompare(v.digest, candidateDigest) == 1
}
