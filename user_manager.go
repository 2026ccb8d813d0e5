package users

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateUserInput is the admin-create payload. Shape validation happens
// at the transport boundary; only business rules are enforced here.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput models a partial update: nil means "not provided",
// which is distinct from a pointer to the zero value. When Roles is
// non-nil the membership set is replaced wholesale.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Roles    []uuid.UUID
}

func (u UpdateUserInput) isZero() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil && u.Roles == nil
}

// UserManager is the admin-facing CRUD surface over accounts and their
// role memberships. Every read returns the user with roles loaded.
type UserManager struct {
	repo   RepositoryManager
	logger Logger
}

func NewUserManager(repo RepositoryManager) *UserManager {
	return &UserManager{
		repo:   repo,
		logger: defLogger{},
	}
}

func (m *UserManager) WithLogger(logger Logger) *UserManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// ListUsers returns every account with roles eagerly loaded.
func (m *UserManager) ListUsers(ctx context.Context) ([]*User, error) {
	return m.repo.Users().ListWithRoles(ctx)
}

// GetUser returns the account with roles loaded, or ErrUserNotFound.
func (m *UserManager) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return m.repo.Users().GetWithRoles(ctx, id)
}

// CreateUser mirrors registration without issuing a token: hash, persist,
// attach the default role. Used for admin-created accounts.
func (m *UserManager) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	var user *User

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(input.Password)
		if err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid password provided")
		}

		record := &User{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: hash,
		}

		if user, err = m.repo.Users().CreateTx(ctx, tx, record); err != nil {
			return err
		}

		role, err := m.repo.Roles().GetByNameTx(ctx, tx, DefaultRoleName)
		if err != nil {
			if errors.Is(err, ErrRoleNotFound) {
				m.logger.Warn("default role not provisioned, skipping", "role", DefaultRoleName)
				return nil
			}
			return err
		}

		return m.repo.Roles().AssignTx(ctx, tx, user.ID, role.ID)
	})

	if err != nil {
		if errors.Is(err, ErrEmailAlreadyRegistered) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create user")
	}

	return m.repo.Users().GetWithRoles(ctx, user.ID)
}

// UpdateUser applies the provided fields to the account. Passwords are
// re-hashed; a present Roles set replaces membership rather than merging.
func (m *UserManager) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*User, error) {
	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := m.repo.Users().GetWithRolesTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if input.isZero() {
			return nil
		}

		record := &User{
			ID:           current.ID,
			Name:         current.Name,
			Email:        current.Email,
			PasswordHash: current.PasswordHash,
		}

		if input.Name != nil {
			record.Name = *input.Name
		}
		if input.Email != nil {
			record.Email = NormalizeEmail(*input.Email)
		}
		if input.Password != nil {
			hash, err := HashPassword(*input.Password)
			if err != nil {
				return errors.Wrap(err, errors.CategoryValidation, "invalid password provided")
			}
			record.PasswordHash = hash
		}

		if input.Name != nil || input.Email != nil || input.Password != nil {
			_, err = tx.NewUpdate().
				Model(record).
				Column("name", "email", "password_hash").
				WherePK().
				Exec(ctx)
			if err != nil {
				if isUniqueViolation(err) {
					return ErrEmailAlreadyRegistered
				}
				return err
			}
		}

		if input.Roles != nil {
			if err := m.repo.Roles().SyncTx(ctx, tx, id, input.Roles); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrUserNotFound) ||
			errors.Is(err, ErrRoleNotFound) ||
			errors.Is(err, ErrEmailAlreadyRegistered) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update user")
	}

	return m.repo.Users().GetWithRoles(ctx, id)
}

// DeleteUser hard deletes the account and cascades membership and token
// rows in the same transaction. Former tokens stop resolving immediately.
func (m *UserManager) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := m.repo.Users().RemoveTx(ctx, tx, id); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*UserToRole)(nil)).
			Where("user_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		return m.repo.Tokens().RevokeAllForUserTx(ctx, tx, id)
	})

	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}

	return nil
}

// AssignRole attaches the role to the user. Idempotent when the user is
// already a member.
func (m *UserManager) AssignRole(ctx context.Context, userID, roleID uuid.UUID) (*User, error) {
	if _, err := m.repo.Users().GetWithRoles(ctx, userID); err != nil {
		return nil, err
	}

	if err := m.repo.Roles().Assign(ctx, userID, roleID); err != nil {
		return nil, err
	}

	return m.repo.Users().GetWithRoles(ctx, userID)
}

// RemoveRole detaches the role from the user. Removing a role the user
// does not hold is a no-op; a role id that does not exist is an error.
func (m *UserManager) RemoveRole(ctx context.Context, userID, roleID uuid.UUID) (*User, error) {
	if _, err := m.repo.Users().GetWithRoles(ctx, userID); err != nil {
		return nil, err
	}

	if err := m.repo.Roles().Remove(ctx, userID, roleID); err != nil {
		return nil, err
	}

	return m.repo.Users().GetWithRoles(ctx, userID)
}
