// Package password hashes and checks staff login secrets.
package password

import (
	"errors"

	"garage-orchestrator/internal/pkg/errs"

	"golang.org/x/crypto/bcrypt"
)

// MinLength matches the login request binding.
const MinLength = 8

var (
	ErrTooShort = errors.New("password too short")
	ErrMismatch = errors.New("password does not match")
)

// Hash returns a bcrypt hash of plain. A zero cost means bcrypt.DefaultCost.
func Hash(plain string, cost int) (string, error) {
	if len(plain) < MinLength {
		return "", errs.Mark(errs.Newf("password has %d characters, need %d", len(plain), MinLength), ErrTooShort)
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", errs.Wrap(err, "hash password")
	}
	return string(b), nil
}

// Verify reports ErrMismatch when plain is not the secret behind hash.
func Verify(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return errs.Wrap(err, "verify password")
	}
}
