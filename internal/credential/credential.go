// Package credential hashes and verifies user passwords.
//
// Stored user records carry a bcrypt hash in their password field. The
// plain password only ever exists in memory between prompt and hash.
package credential

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned by Hash for an empty password.
var ErrEmptyPassword = errors.New("credential: empty password")

// Hasher turns a plain password into its stored form.
type Hasher interface {
	Hash(password string) (string, error)
}

// Verifier reports whether a plain password matches a stored hash.
type Verifier interface {
	Verify(hash, password string) bool
}

// Bcrypt implements Hasher and Verifier with bcrypt.
type Bcrypt struct {
	// Cost is the bcrypt work factor. Zero means bcrypt.DefaultCost.
	Cost int
}

// Default is the Bcrypt value used when no verifier is configured.
var Default = Bcrypt{}

// Hash returns the bcrypt hash of password.
func (b Bcrypt) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(out), nil
}

// Verify compares in constant time. A malformed hash never matches.
func (Bcrypt) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
