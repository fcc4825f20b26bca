package model

import "time"

// Role levels used for privilege comparisons. Access decisions always use
// the numeric level; role names are display and audit data only, since
// name strings have historically been duplicated in the roles table.
const (
	RoleLevelUser       = 40  // baseline tier applied when no assignment exists
	RoleLevelAdmin      = 80  // facility administrators
	RoleLevelSuperAdmin = 100 // top tier, organization management
)

// DefaultRoleName is the display name reported for users without an
// explicit role assignment.
const DefaultRoleName = "user"

// User represents an identity record from the `users` table together with
// its role resolved at read time. The role is never persisted on the user
// row itself; RoleName and RoleLevel are filled by the role-resolution
// join (or the defaults above when no assignment row exists).
//
// Users are value copies: update helpers return a new User rather than
// mutating in place, so instances can be shared across goroutines freely.
type User struct {
	ID          uint64     // users.id
	Email       string     // users.email (unique, stored case-sensitively)
	FullName    string     // users.full_name
	Phone       *string    // users.phone (nullable)
	PhotoURL    *string    // users.photo_url (nullable)
	Occupation  *string    // users.occupation (nullable)
	IsActive    bool       // users.is_active
	LastLoginAt *time.Time // users.last_login_at (nullable)
	CreatedAt   time.Time  // users.created_at
	UpdatedAt   time.Time  // users.updated_at

	RoleName  string // resolved role display name
	RoleLevel int    // resolved numeric privilege level
}

// IsAdmin reports whether the user sits in the admin or super-admin tier.
func (u User) IsAdmin() bool { return u.RoleLevel >= RoleLevelAdmin }

// IsSuperAdmin reports whether the user holds the exact top tier.
func (u User) IsSuperAdmin() bool { return u.RoleLevel >= RoleLevelSuperAdmin }

// HasRoleLevel reports whether the user's level meets the given minimum.
// A zero (absent) level denies by default.
func (u User) HasRoleLevel(min int) bool { return u.RoleLevel >= min }

// Capability aliases consumed by handlers. Kept as named predicates so the
// call sites read as intent rather than tier arithmetic.
func (u User) CanManageUsers() bool         { return u.IsAdmin() }
func (u User) CanVerifyInspections() bool   { return u.IsAdmin() }
func (u User) CanManageOrganizations() bool { return u.IsSuperAdmin() }

// WithRole returns a copy of the user with the resolved role attached.
func (u User) WithRole(name string, level int) User {
	u.RoleName = name
	u.RoleLevel = level
	return u
}

// WithLastLogin returns a copy of the user with the last-login timestamp set.
func (u User) WithLastLogin(t time.Time) User {
	u.LastLoginAt = &t
	return u
}

// Deactivated returns an inactive copy of the user.
func (u User) Deactivated() User {
	u.IsActive = false
	return u
}

// Role represents a row in the `roles` table.
type Role struct {
	ID          uint64  // roles.id
	Name        string  // roles.name
	Description *string // roles.description (nullable)
	Level       int     // roles.level (higher = more privileged)
	IsActive    bool    // roles.is_active
	CreatedAt   time.Time
}

// UserRole is an assignment row from `user_roles`. The storage layer does
// not enforce one assignment per user; the write path keeps at most one
// and the read path tolerates strays by picking the highest level.
type UserRole struct {
	ID         uint64    // user_roles.id
	UserID     uint64    // user_roles.user_id
	RoleID     uint64    // user_roles.role_id
	AssignedBy uint64    // user_roles.assigned_by
	CreatedAt  time.Time // user_roles.created_at
}
