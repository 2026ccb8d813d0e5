package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds the credential workflows: registration, login,
// logout, and reading back the acting account.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, user *User) error
	AuthenticatedUser(ctx context.Context, user *User) (*User, error)
}

// RegisterInput carries the already shape-validated registration payload.
// The workflow only enforces business rules (email uniqueness).
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// UseHashid derives the account UUID from the email instead of
	// generating a random one.
	UseHashid bool
}

// AuthResult pairs the account with the plaintext bearer token issued for
// it. The token is not retrievable again.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// TokenIssuer issues and revokes persisted bearer tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, user *User) (string, error)
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// TokenResolver maps an incoming bearer token back to its owner. Meant to
// run at the transport boundary, before workflow methods are invoked.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*User, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] USERS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] USERS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] USERS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] USERS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
