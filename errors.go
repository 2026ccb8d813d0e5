package users

import (
	goerrors "github.com/goliatone/go-errors"
)

// ErrNoEmptyString is returned when a value that must be non empty is empty
var ErrNoEmptyString = goerrors.New("value should not be an empty string", goerrors.CategoryValidation).
	WithTextCode("EMPTY_STRING")

// ErrMismatchedHashAndPassword is returned when a password does not match
// its stored hash. Malformed digests surface as the same error so callers
// cannot tell the cases apart.
var ErrMismatchedHashAndPassword = goerrors.New("mismatched hash and password", goerrors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH")

// ErrInvalidCredentials covers both an unknown email and a wrong password.
// Login deliberately returns the same value for both so responses cannot
// be used to enumerate registered emails.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailAlreadyRegistered is returned when registration or an admin
// create/update collides with an existing email.
var ErrEmailAlreadyRegistered = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode("EMAIL_TAKEN")

// ErrUserNotFound is returned when an id does not resolve to a user record
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode("USER_NOT_FOUND")

// ErrRoleNotFound is returned when a role name or id does not resolve
var ErrRoleNotFound = goerrors.New("role not found", goerrors.CategoryNotFound).
	WithTextCode("ROLE_NOT_FOUND")

// ErrRegistrationFailed wraps any unexpected failure inside the atomic
// registration unit. The cause is logged, never exposed to the caller.
var ErrRegistrationFailed = goerrors.New("registration failed", goerrors.CategoryInternal).
	WithTextCode("REGISTRATION_FAILED")

// ErrUnauthenticated is returned when a bearer token does not resolve to
// an active credential.
var ErrUnauthenticated = goerrors.New("unauthenticated", goerrors.CategoryAuth).
	WithTextCode("UNAUTHENTICATED").
	WithCode(goerrors.CodeUnauthorized)

// IsNotFound reports whether err is one of the not-found values of this
// package or a repository record-not-found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return goerrors.Is(err, ErrUserNotFound) ||
		goerrors.Is(err, ErrRoleNotFound) ||
		goerrors.IsNotFound(err)
}
