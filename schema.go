package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RegisterModels registers the join model with bun so m2m relations
// resolve. Call once per *bun.DB before any query.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*UserToRole)(nil))
}

// CreateSchema creates the package tables. Deployments normally run the
// embedded SQL migrations instead; this exists for tests and embedded
// setups that point at a throwaway database.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	RegisterModels(db)

	models := []any{
		(*User)(nil),
		(*Role)(nil),
		(*UserToRole)(nil),
		(*Token)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}

// SeedDefaultRoles provisions the two stock roles when absent, matching
// the shipped fixtures: user(read) and admin(read, write, delete).
func SeedDefaultRoles(ctx context.Context, db *bun.DB) error {
	roles := []*Role{
		{
			ID:          uuid.New(),
			Name:        RoleNameUser,
			Permissions: []string{"read"},
		},
		{
			ID:          uuid.New(),
			Name:        RoleNameAdmin,
			Permissions: []string{"read", "write", "delete"},
		},
	}

	for _, role := range roles {
		if _, err := db.NewInsert().
			Model(role).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
