// Copyright (c) 2026 Pollhub. All rights reserved.

package auth

import "context"

// # Repository Contract

// UserRepository is the persistence contract for accounts and their roles.
type UserRepository interface {
	// FindByID loads an account with its roles. Returns apperr.NotFound when
	// no such account exists.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByUsernameOrEmail matches the login handle against both the
	// username and email columns. Returns apperr.NotFound on no match.
	FindByUsernameOrEmail(ctx context.Context, handle string) (*User, error)

	// ExistsByUsername reports whether the username is already taken.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether the email is already registered.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts the account and grants it the given catalog roles.
	// A unique violation surfaces as ErrDuplicateUsername or
	// ErrDuplicateEmail depending on the violated constraint.
	Create(ctx context.Context, user *User) (*User, error)
}
