package users

import (
	"context"

	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext sets the acting User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the acting user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// FromRouterContext extracts the acting user stored by the bearer token
// middleware.
func FromRouterContext(ctx router.Context, key ...string) (*User, bool) {
	k := ContextKeyUser
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	raw := ctx.Locals(k)
	if raw == nil {
		return nil, false
	}
	user, ok := raw.(*User)
	return user, ok
}

// Can reports whether the acting user in the context holds a role that
// grants the capability string.
func Can(ctx context.Context, permission string) bool {
	user, ok := FromContext(ctx)
	if !ok {
		return false
	}
	for _, role := range user.Roles {
		if role.HasPermission(permission) {
			return true
		}
	}
	return false
}
