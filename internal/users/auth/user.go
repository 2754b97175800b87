// Copyright (c) 2026 Pollhub. All rights reserved.

// Package auth owns account registration, credential verification and token
// issuance. Identity resolution for the request pipeline also lives here
// because it reads the same account rows.
package auth

import (
	"time"

	"github.com/woolbro/pollhub/internal/platform/sec"
)

// # Entity

// User is a registered account with its role assignments loaded.
type User struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Roles        []sec.UserRole `json:"roles"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

/*
Identity projects the account into the request-scoped principal carried
through the middleware pipeline.
*/
func (u *User) Identity() *sec.Identity {
	return &sec.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.Roles,
	}
}

// # Field Names

const (
	fieldName     = "name"
	fieldUsername = "username"
	fieldEmail    = "email"
	fieldPassword = "password"
)

// # Input Limits

const (
	nameMaxLen     = 40
	usernameMinLen = 3
	usernameMaxLen = 15
	emailMaxLen    = 40
	passwordMinLen = 6
	passwordMaxLen = 20
)
