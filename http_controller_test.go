package users_test

import (
	"testing"

	"github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload users.RegisterRequest
		wantErr bool
	}{
		{
			name: "valid payload",
			payload: users.RegisterRequest{
				Name:                 "Ada",
				Email:                "ada@example.com",
				Password:             "long-enough-pass",
				PasswordConfirmation: "long-enough-pass",
			},
			wantErr: false,
		},
		{
			name: "missing email",
			payload: users.RegisterRequest{
				Name:                 "Ada",
				Password:             "long-enough-pass",
				PasswordConfirmation: "long-enough-pass",
			},
			wantErr: true,
		},
		{
			name: "malformed email",
			payload: users.RegisterRequest{
				Name:                 "Ada",
				Email:                "not-an-email",
				Password:             "long-enough-pass",
				PasswordConfirmation: "long-enough-pass",
			},
			wantErr: true,
		},
		{
			name: "short password",
			payload: users.RegisterRequest{
				Name:                 "Ada",
				Email:                "ada@example.com",
				Password:             "short",
				PasswordConfirmation: "short",
			},
			wantErr: true,
		},
		{
			name: "confirmation mismatch",
			payload: users.RegisterRequest{
				Name:                 "Ada",
				Email:                "ada@example.com",
				Password:             "long-enough-pass",
				PasswordConfirmation: "different-confirm",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoginRequestValidate(t *testing.T) {
	valid := users.LoginRequest{Email: "ada@example.com", Password: "whatever"}
	assert.NoError(t, valid.Validate())

	missing := users.LoginRequest{Email: "ada@example.com"}
	assert.Error(t, missing.Validate())

	malformed := users.LoginRequest{Email: "nope", Password: "whatever"}
	assert.Error(t, malformed.Validate())
}

func TestUpdateUserRequestValidate(t *testing.T) {
	// partial updates leave absent fields alone
	assert.NoError(t, users.UpdateUserRequest{}.Validate())

	name := "Renamed"
	assert.NoError(t, users.UpdateUserRequest{Name: &name}.Validate())

	bad := "not-an-email"
	assert.Error(t, users.UpdateUserRequest{Email: &bad}.Validate())

	short := "short"
	assert.Error(t, users.UpdateUserRequest{Password: &short}.Validate())
}

func TestRoleRequestValidate(t *testing.T) {
	assert.Error(t, users.RoleRequest{}.Validate())
}

func TestNewHTTPControllerRequiresCollaborators(t *testing.T) {
	assert.Panics(t, func() {
		users.NewHTTPController()
	})
}

func TestNewHTTPControllerDefaults(t *testing.T) {
	stack := setupStack(t)
	manager := users.NewUserManager(stack.repo)

	controller := users.NewHTTPController(
		users.WithAuthenticator(stack.auth),
		users.WithUserManager(manager),
		users.WithTokenResolver(stack.tokens),
	)

	assert.Equal(t, "/auth/login", controller.Routes.Login)
	assert.Equal(t, "/users", controller.Routes.Users)
	assert.Equal(t, users.RoleNameAdmin, controller.AdminRole)
	assert.NotNil(t, controller.ErrorHandler)
}
