package users

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultRoleName is attached to every newly created account when the
// role is provisioned.
const DefaultRoleName = "user"

// Well known role names, matching the shipped fixtures.
const (
	RoleNameUser  = "user"
	RoleNameAdmin = "admin"
)

// User is the account record
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Roles         []*Role    `bun:"m2m:user_roles,join:User=Role" json:"roles,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasRole reports whether the loaded memberships include the named role.
// It only inspects what is in memory; use the Roles repository for a
// store backed check.
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	return slices.ContainsFunc(u.Roles, func(r *Role) bool {
		return r != nil && r.Name == name
	})
}

// RoleNames returns the names of the loaded memberships.
func (u *User) RoleNames() []string {
	if u == nil {
		return nil
	}
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		if r != nil {
			out = append(out, r.Name)
		}
	}
	return out
}

// Role is a named permission set. Roles are provisioned by seed or admin
// tooling and shared by every member.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	Permissions   []string   `bun:"permissions,type:jsonb" json:"permissions,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasPermission reports whether the role grants the capability string.
func (r *Role) HasPermission(permission string) bool {
	if r == nil {
		return false
	}
	return slices.Contains(r.Permissions, permission)
}

// UserToRole is the membership join row. The composite primary key keeps
// a (user, role) pair unique.
type UserToRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:usrrol"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	RoleID        uuid.UUID `bun:"role_id,pk,type:uuid" json:"role_id,omitempty"`
	Role          *Role     `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
}

// Token is a persisted bearer credential. Only the SHA-256 digest of the
// plaintext is stored; the plaintext leaves the process exactly once, at
// issuance. Deleting the row revokes the token.
type Token struct {
	bun.BaseModel `bun:"table:tokens,alias:tok"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	TokenHash     string     `bun:"token_hash,notnull,unique" json:"-"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
