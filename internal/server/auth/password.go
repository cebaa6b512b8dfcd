// Package auth implements the security ports of the Insight API: password
// hashing and access token signing. Each port has exactly one adapter today,
// but the interfaces keep the algorithms swappable without touching the
// authentication flow.
package auth

import (
	"crypto/sha512"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes plaintext passwords into opaque digests and verifies
// candidates against stored digests.
//
// Contract: Verify(p, must(Hash(p))) is always true; hashing is one-way.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// BcryptHasher pre-hashes the password concatenated with a server-wide secret
// using SHA-512, then feeds the hex digest into bcrypt. The pre-hash step
// normalizes arbitrary-length passwords to a fixed-size input (bcrypt ignores
// input beyond 72 bytes) and mixes in the server secret, so a stolen digest
// dump is not directly crackable without also compromising the secret.
type BcryptHasher struct {
	secret string
	cost   int
}

func NewBcryptHasher(secret string) *BcryptHasher {
	return &BcryptHasher{secret: secret, cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) prehash(password string) []byte {
	sum := sha512.Sum512([]byte(password + h.secret))
	return []byte(hex.EncodeToString(sum[:]))
}

// Hash returns a digest suitable for storage.
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(h.prehash(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify repeats the identical pre-hash step on the supplied password and
// delegates equality checking to bcrypt's constant-time comparison. Any
// mismatch returns false; this is a pure boolean predicate.
func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), h.prehash(password)) == nil
}

var _ PasswordHasher = (*BcryptHasher)(nil)
