package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles is the role registry plus membership operations. Assign and
// Remove are idempotent with respect to membership state: assigning an
// existing member or removing a non member is a no-op, never an error.
// Referencing a role that does not exist is an error on every operation.
type Roles interface {
	GetByName(ctx context.Context, name string) (*Role, error)
	GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Role, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Role, error)

	Assign(ctx context.Context, userID, roleID uuid.UUID) error
	AssignTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error
	AssignByName(ctx context.Context, userID uuid.UUID, roleName string) error
	AssignByNameTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, roleName string) error
	Remove(ctx context.Context, userID, roleID uuid.UUID) error
	RemoveTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error
	Sync(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error
	SyncTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, roleIDs []uuid.UUID) error

	UserHasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error)
}

type rolesRepo struct {
	repository.Repository[*Role]
	db *bun.DB
}

var (
	_ Roles                        = (*rolesRepo)(nil)
)

func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &rolesRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *rolesRepo) GetByName(ctx context.Context, name string) (*Role, error) {
	return a.GetByNameTx(ctx, a.db, name)
}

func (a *rolesRepo) GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*Role, error) {
	record := &Role{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	return record, nil
}

func (a *rolesRepo) GetByID(ctx context.Context, id uuid.UUID) (*Role, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *rolesRepo) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Role, error) {
	record := &Role{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	return record, nil
}

func (a *rolesRepo) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	return a.AssignTx(ctx, a.db, userID, roleID)
}

func (a *rolesRepo) AssignTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	if _, err := a.GetByIDTx(ctx, tx, roleID); err != nil {
		return err
	}

	membership := &UserToRole{
		UserID: userID,
		RoleID: roleID,
	}

	// The composite PK turns repeat assignments into a no-op.
	_, err := tx.NewInsert().
		Model(membership).
		On("CONFLICT DO NOTHING").
		Exec(ctx)

	return err
}

func (a *rolesRepo) AssignByName(ctx context.Context, userID uuid.UUID, roleName string) error {
	return a.AssignByNameTx(ctx, a.db, userID, roleName)
}

func (a *rolesRepo) AssignByNameTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, roleName string) error {
	role, err := a.GetByNameTx(ctx, tx, roleName)
	if err != nil {
		return err
	}
	return a.AssignTx(ctx, tx, userID, role.ID)
}

func (a *rolesRepo) Remove(ctx context.Context, userID, roleID uuid.UUID) error {
	return a.RemoveTx(ctx, a.db, userID, roleID)
}

func (a *rolesRepo) RemoveTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	if _, err := a.GetByIDTx(ctx, tx, roleID); err != nil {
		return err
	}

	_, err := tx.NewDelete().
		Model((*UserToRole)(nil)).
		Where("user_id = ?", userID).
		Where("role_id = ?", roleID).
		Exec(ctx)

	return err
}

func (a *rolesRepo) Sync(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) error {
	return a.SyncTx(ctx, a.db, userID, roleIDs)
}

// SyncTx replaces the user's membership set wholesale: missing roles are
// added, extras removed. An empty set detaches everything.
func (a *rolesRepo) SyncTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, roleIDs []uuid.UUID) error {
	for _, roleID := range roleIDs {
		if _, err := a.GetByIDTx(ctx, tx, roleID); err != nil {
			return err
		}
	}

	q := tx.NewDelete().
		Model((*UserToRole)(nil)).
		Where("user_id = ?", userID)

	if len(roleIDs) > 0 {
		q = q.Where("role_id NOT IN (?)", bun.In(roleIDs))
	}

	if _, err := q.Exec(ctx); err != nil {
		return err
	}

	if len(roleIDs) == 0 {
		return nil
	}

	memberships := make([]*UserToRole, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		memberships = append(memberships, &UserToRole{
			UserID: userID,
			RoleID: roleID,
		})
	}

	_, err := tx.NewInsert().
		Model(&memberships).
		On("CONFLICT DO NOTHING").
		Exec(ctx)

	return err
}

func (a *rolesRepo) UserHasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	return a.db.NewSelect().
		Model((*UserToRole)(nil)).
		Join("JOIN roles AS rol ON rol.id = ?TableAlias.role_id").
		Where("?TableAlias.user_id = ?", userID).
		Where("rol.name = ?", roleName).
		Exists(ctx)
}
