// Copyright (c) 2026 Pollhub. All rights reserved.

package sec

// # User Roles

// UserRole represents an authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "ADMIN"

	// Can moderate polls and community content
	RoleModerator UserRole = "MODERATOR"

	// Default role assigned to every account at sign-up
	RoleUser UserRole = "USER"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleModerator:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}

// # Request Identity

// Identity is the per-request authenticated principal: a snapshot of the
// account resolved from storage at request time plus its granted roles.
//
// # Lifecycle
//
// An Identity is created by the authentication middleware, attached to one
// request's context, and discarded at request end. It is never shared across
// requests and never mutated after construction.
type Identity struct {
	// UserID is the account's numeric id.
	UserID int64

	// Username is the account's unique login name.
	Username string

	// Email is the account's unique email address.
	Email string

	// Roles is the account's granted role set, non-empty for any account
	// created through sign-up.
	Roles []UserRole
}

// HasRoleAtLeast reports whether any granted role meets or exceeds target.
func (identity *Identity) HasRoleAtLeast(target UserRole) bool {
	for _, role := range identity.Roles {
		if role.AtLeast(target) {
			return true
		}
	}
	return false
}
