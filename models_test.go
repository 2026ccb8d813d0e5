package users_test

import (
	"testing"

	"github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
)

func TestUserHasRole(t *testing.T) {
	user := &users.User{
		Roles: []*users.Role{
			{Name: users.RoleNameUser},
			{Name: users.RoleNameAdmin},
		},
	}

	assert.True(t, user.HasRole(users.RoleNameUser))
	assert.True(t, user.HasRole(users.RoleNameAdmin))
	assert.False(t, user.HasRole("superuser"))

	var nilUser *users.User
	assert.False(t, nilUser.HasRole(users.RoleNameUser))
}

func TestUserRoleNames(t *testing.T) {
	user := &users.User{
		Roles: []*users.Role{
			{Name: users.RoleNameAdmin},
			nil,
			{Name: users.RoleNameUser},
		},
	}

	assert.Equal(t, []string{users.RoleNameAdmin, users.RoleNameUser}, user.RoleNames())

	var nilUser *users.User
	assert.Nil(t, nilUser.RoleNames())
}

func TestRoleHasPermission(t *testing.T) {
	role := &users.Role{
		Name:        users.RoleNameAdmin,
		Permissions: []string{"read", "write", "delete"},
	}

	assert.True(t, role.HasPermission("write"))
	assert.False(t, role.HasPermission("impersonate"))

	var nilRole *users.Role
	assert.False(t, nilRole.HasPermission("read"))
}
