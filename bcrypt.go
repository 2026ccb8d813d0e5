package users

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password. A malformed digest is
// reported as a mismatch, not as a distinct failure.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		if errors.Is(err, bcrypt.ErrHashTooShort) {
			return ErrMismatchedHashAndPassword
		}
		var hvErr bcrypt.HashVersionTooNewError
		var ivErr bcrypt.InvalidHashPrefixError
		if errors.As(err, &hvErr) || errors.As(err, &ivErr) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
