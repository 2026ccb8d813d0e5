package users

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Auther orchestrates registration, credential login, and logout over the
// repositories and the token service.
type Auther struct {
	repo   RepositoryManager
	tokens *TokenService
	logger Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, tokens *TokenService) *Auther {
	return &Auther{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Register creates the account, attaches the default role, and issues the
// first token as one atomic unit. A failure after partial writes rolls
// everything back; callers see ErrEmailAlreadyRegistered for duplicate
// emails and ErrRegistrationFailed for anything else.
func (s *Auther) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	var user *User
	var token string

	s.logger.Info("starting user registration", "email", input.Email)

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(input.Password)
		if err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid password provided")
		}

		record := &User{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: hash,
		}

		if input.UseHashid {
			if id, err := hashid.NewUUID(NormalizeEmail(input.Email)); err == nil {
				record.ID = id
			}
		}

		if user, err = s.repo.Users().CreateTx(ctx, tx, record); err != nil {
			return err
		}

		if err := s.attachDefaultRoleTx(ctx, tx, user); err != nil {
			return err
		}

		if token, err = s.tokens.IssueTx(ctx, tx, user); err != nil {
			return err
		}

		if user, err = s.repo.Users().GetWithRolesTx(ctx, tx, user.ID); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrEmailAlreadyRegistered) {
			return nil, ErrEmailAlreadyRegistered
		}

		s.logger.Error("registration failed", "email", input.Email, "error", err)
		return nil, ErrRegistrationFailed
	}

	s.logger.Info("user registered", "user_id", user.ID.String())

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the credential pair and rotates the user's tokens: every
// previously issued token is revoked before a fresh one is returned.
// Unknown email and wrong password produce the identical error.
func (s *Auther) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("login compare failed", "user_id", user.ID.String(), "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to verify credentials")
	}

	if err := s.tokens.RevokeAll(ctx, user.ID); err != nil {
		s.logger.Error("login token rotation failed", "user_id", user.ID.String(), "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to revoke prior tokens")
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Logout revokes every token the user holds. Revoking zero tokens is
// success; only a store failure is an error.
func (s *Auther) Logout(ctx context.Context, user *User) error {
	if user == nil || user.ID == uuid.Nil {
		return ErrUnauthenticated
	}

	if err := s.tokens.RevokeAll(ctx, user.ID); err != nil {
		s.logger.Error("logout failed", "user_id", user.ID.String(), "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to revoke tokens")
	}

	return nil
}

// AuthenticatedUser reloads the acting user with current role memberships.
func (s *Auther) AuthenticatedUser(ctx context.Context, user *User) (*User, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	return s.repo.Users().GetWithRoles(ctx, user.ID)
}

// attachDefaultRoleTx gives a new account the default role. A missing
// default role is skipped silently: provisioning roles is a deploy
// concern, not a registration failure.
func (s *Auther) attachDefaultRoleTx(ctx context.Context, tx bun.Tx, user *User) error {
	role, err := s.repo.Roles().GetByNameTx(ctx, tx, DefaultRoleName)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			s.logger.Warn("default role not provisioned, skipping", "role", DefaultRoleName)
			return nil
		}
		return err
	}

	return s.repo.Roles().AssignTx(ctx, tx, user.ID, role.ID)
}
