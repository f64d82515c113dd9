// Package cryptox wraps the one-way password hashing used for stored
// credentials.
package cryptox

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt work factor. It is fixed at build time.
const PasswordHashCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt hash of plaintext. Each call uses a
// fresh random salt, so hashing the same input twice gives different results.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches hash. A malformed hash
// yields false.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Hasher exposes HashPassword/CheckPassword as a value for injection.
type Hasher struct{}

func (Hasher) Hash(plaintext string) (string, error) { return HashPassword(plaintext) }

func (Hasher) Verify(plaintext, hash string) bool { return CheckPassword(plaintext, hash) }
