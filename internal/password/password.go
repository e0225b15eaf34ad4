// Package password provides one-way password hashing for account credentials.
//
// Hashing is always explicit at the call site that creates or mutates an
// account; nothing in the persistence layer hashes implicitly.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash derives a salted bcrypt digest from a plaintext password. Each call
// generates a fresh random salt, so hashing the same plaintext twice yields
// different digests. The digest embeds the salt and cost parameters.
func Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plain matches the given bcrypt digest. The comparison
// is constant-time. A malformed digest yields false, never a panic; Verify is
// the only meaningful equality check between a password and a digest.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
