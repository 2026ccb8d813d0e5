package users

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// tokenByteLength is the entropy of an issued token: 32 random bytes,
// 64 hex characters on the wire.
const tokenByteLength = 32

// TokenService issues and resolves opaque bearer tokens. The plaintext is
// random, returned exactly once, and only its SHA-256 digest is stored;
// revocation deletes the row, so a token is either resolvable or gone.
type TokenService struct {
	tokens Tokens
	users  Users
	logger Logger
}

var (
	_ TokenIssuer   = (*TokenService)(nil)
	_ TokenResolver = (*TokenService)(nil)
)

// NewTokenService creates a new TokenService instance
func NewTokenService(tokens Tokens, users Users) *TokenService {
	return &TokenService{
		tokens: tokens,
		users:  users,
		logger: defLogger{},
	}
}

func (ts *TokenService) WithLogger(logger Logger) *TokenService {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// Issue generates a fresh token for the user and persists its digest.
func (ts *TokenService) Issue(ctx context.Context, user *User) (string, error) {
	return ts.IssueTx(ctx, nil, user)
}

// IssueTx is the transactional variant; pass nil to run outside a
// transaction.
func (ts *TokenService) IssueTx(ctx context.Context, tx bun.IDB, user *User) (string, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", errors.New("cannot issue token without a user", errors.CategoryValidation)
	}

	plaintext, err := randomToken()
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate token")
	}

	store := ts.tokens.Store
	if tx != nil {
		store = func(ctx context.Context, userID uuid.UUID, tokenHash string) (*Token, error) {
			return ts.tokens.StoreTx(ctx, tx, userID, tokenHash)
		}
	}

	if _, err := store(ctx, user.ID, HashToken(plaintext)); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to persist token")
	}

	return plaintext, nil
}

// Resolve maps a presented bearer token back to its owning user, with
// role memberships loaded. Unknown and revoked tokens are indistinguishable.
func (ts *TokenService) Resolve(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	userID, err := ts.tokens.ResolveOwner(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return nil, err
		}
		ts.logger.Error("token resolve lookup failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve token")
	}

	user, err := ts.users.GetWithRoles(ctx, userID)
	if err != nil {
		// The owner was deleted after issuance; its tokens are dead.
		if IsNotFound(err) {
			return nil, ErrUnauthenticated
		}
		ts.logger.Error("token resolve user load failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load token owner")
	}

	return user, nil
}

// RevokeAll deletes every token the user holds. Idempotent.
func (ts *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return ts.tokens.RevokeAllForUser(ctx, userID)
}

// HashToken returns the hex encoded SHA-256 digest stored in place of the
// plaintext.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	buf := make([]byte, tokenByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
