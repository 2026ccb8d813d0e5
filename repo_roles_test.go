package users_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMember(t *testing.T, stack *testStack, email string) *users.User {
	t.Helper()

	record, err := stack.repo.Users().Create(context.Background(), &users.User{
		Name:         "Member",
		Email:        email,
		PasswordHash: "irrelevant-here",
	})
	require.NoError(t, err)
	return record
}

func TestRolesGetByName(t *testing.T) {
	ctx := context.Background()
	stack := setupStack(t)

	role, err := stack.repo.Roles().GetByName(ctx, users.RoleNameAdmin)
	require.NoError(t, err)
	assert.Equal(t, users.RoleNameAdmin, role.Name)
	assert.True(t, role.HasPermission("write"))

	_, err = stack.repo.Roles().GetByName(ctx, "superuser")
	assert.ErrorIs(t, err, users.ErrRoleNotFound)
}

func TestRolesAssignIsIdempotent(t *testing.T) {
	ctx := context.Background()
	stack := setupStack(t)
	member := seedMember(t, stack, "assignee@example.com")

	admin, err := stack.repo.Roles().GetByName(ctx, users.RoleNameAdmin)
	require.NoError(t, err)

	require.NoError(t, stack.repo.Roles().Assign(ctx, member.ID, admin.ID))
	require.NoError(t, stack.repo.Roles().Assign(ctx, member.ID, admin.ID))

	reloaded, err := stack.repo.Users().GetWithRoles(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Roles, 1)
	assert.True(t, reloaded.HasRole(users.RoleNameAdmin))
}

func TestRolesAssignUnknownRole(t *testing.T) {
	ctx := context.Background()
	stack := setupStack(t)
	member := seedMember(t, stack, "nobody-home@example.com")

	err := stack.repo.Roles().Assign(ctx, member.ID, uuid.New())
	assert.ErrorIs(t, err, users.ErrRoleNotFound)

	err = stack.repo.Roles().AssignByName(ctx, member.ID, "superuser")
	assert.ErrorIs(t, err, users.ErrRoleNotFound)
}

func TestRolesRemove(t *testing.T) {
	ctx := context.Background()
	stack := setupStack(t)
	member := seedMember(t, stack, "removal@example.com")

	admin, err := stack.repo.Roles().GetByName(ctx, users.RoleNameAdmin)
	require.NoError(t, err)

	require.NoError(t, stack.repo.Roles().Assign(ctx, member.ID, admin.ID))
	require.NoError(t, stack.repo.Roles().Remove(ctx, member.ID, admin.ID))

	has, err := stack.repo.Roles().UserHasRole(ctx, member.ID, users.RoleNameAdmin)
	require.NoError(t, err)
	assert.False(t, has)

	// removing a role the user does not hold is a no-op
	assert.NoError(t, stack.repo.Roles().Remove(ctx, member.ID, admin.ID))

	// removing a role that does not exist is an error
	assert.ErrorIs(t, stack.repo.Roles().Remove(ctx, member.ID, uuid.New()), users.ErrRoleNotFound)
}

func TestRolesSyncReplacesMembership(t *testing.T) {
	ctx := context.Background()
	stack := setupStack(t)
	member := seedMember(t, stack, "synced@example.com")

	user, err := stack.repo.Roles().GetByName(ctx, users.RoleNameUser)
	require.NoError(t, err)
	admin, err := stack.repo.Roles().GetByName(ctx, users.RoleNameAdmin)
	require.NoError(t, err)

	require.NoError(t, stack.repo.Roles().Sync(ctx, member.ID, []uuid.UUID{user.ID, admin.ID}))

	reloaded, err := stack.repo.Users().GetWithRoles(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Roles, 2)

	require.NoError(t, stack.repo.Roles().Sync(ctx, member.ID, []uuid.UUID{admin.ID}))

	reloaded, err = stack.repo.Users().GetWithRoles(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Roles, 1)
	assert.True(t, reloaded.HasRole(users.RoleNameAdmin))
	assert.False(t, reloaded.HasRole(users.RoleNameUser))
}

func TestRolesSyncEmptyDetachesAll(t *testing.T) {
	ctx := context.Background()
	stack := setupStack(t)
	member := seedMember(t, stack, "detached@example.com")

	require.NoError(t, stack.repo.Roles().AssignByName(ctx, member.ID, users.RoleNameUser))
	require.NoError(t, stack.repo.Roles().Sync(ctx, member.ID, nil))

	reloaded, err := stack.repo.Users().GetWithRoles(ctx, member.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Roles)
}

func TestRolesSyncUnknownRoleTouchesNothing(t *testing.T) {
	ctx := context.Background()
	stack := setupStack(t)
	member := seedMember(t, stack, "untouched@example.com")

	require.NoError(t, stack.repo.Roles().AssignByName(ctx, member.ID, users.RoleNameUser))

	err := stack.repo.Roles().Sync(ctx, member.ID, []uuid.UUID{uuid.New()})
	require.ErrorIs(t, err, users.ErrRoleNotFound)

	reloaded, err := stack.repo.Users().GetWithRoles(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.HasRole(users.RoleNameUser))
}
