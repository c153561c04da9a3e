// Package security wraps the password hashing primitives used by the
// auth handlers. Plaintext passwords never leave this package's inputs.
package security

import "golang.org/x/crypto/bcrypt"

// Fixed cost factor for every stored hash.
const hashCost = bcrypt.DefaultCost

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a stored bcrypt hash with a plaintext candidate.
// The comparison is done by bcrypt itself, never by recomputing and
// comparing strings.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
