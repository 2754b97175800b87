// Copyright (c) 2026 Pollhub. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/woolbro/pollhub/internal/platform/apperr"
	"github.com/woolbro/pollhub/internal/platform/constants"
	"github.com/woolbro/pollhub/internal/platform/sec"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing signed access tokens.
type TokenProvider interface {
	// Issue creates a signed JWT whose subject is the given account ID.
	Issue(userID int64) (string, error)
}

// Duplicate-identity errors returned by SignUp. The messages are part of the
// public API contract and must not change.
var (
	ErrDuplicateUsername = &apperr.AppError{
		Code:       "DUPLICATE_USERNAME",
		Message:    "Username is already taken!",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrDuplicateEmail = &apperr.AppError{
		Code:       "DUPLICATE_EMAIL",
		Message:    "Email Address already in use!",
		HTTPStatus: http.StatusBadRequest,
	}
)

// Service implements account registration, credential verification and
// identity resolution use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, signin,
// or signup logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
}

// NewService constructs the auth [Service] with its dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
	}
}

// # Signin Flow

// SignInInput defines credentials for an authentication attempt.
type SignInInput struct {
	UsernameOrEmail string
	Password        string
}

// SignInResult carries the issued bearer credential.
type SignInResult struct {
	AccessToken string
	TokenType   string
	User        *User
}

/*
SignIn validates credentials and issues an access token.

Description: Resolves the handle against both username and email, performs a
constant-time password comparison and signs a fresh JWT on success.

Parameters:
  - context: context.Context
  - input: SignInInput

Returns:
  - *SignInResult: Transport-ready credential
  - error: Unauthorized or internal failures
*/
func (service *Service) SignIn(context context.Context, input SignInInput) (*SignInResult, error) {
	user, err := service.userRepository.FindByUsernameOrEmail(context, input.UsernameOrEmail)

	// Unknown handle. Generic message to prevent account enumeration.
	if err != nil {
		if apperr.IsAppError(err) && apperr.As(err).HTTPStatus == http.StatusNotFound {
			return nil, apperr.Unauthorized("Invalid username/email or password")
		}
		return nil, err
	}

	// Constant-time comparison in bcrypt to prevent timing attacks. Same
	// generic message as the unknown-handle branch.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid username/email or password")
	}

	token, err := service.tokenProvider.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_issue_failed: %w", err)
	}

	return &SignInResult{
		AccessToken: token,
		TokenType:   constants.TokenTypeBearer,
		User:        user,
	}, nil
}

// # Signup Flow

// SignUpInput holds the data required to enroll a new account.
type SignUpInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

/*
SignUp validates, hashes and persists a brand new account.

Description: Checks username and email availability up front for precise
duplicate messages, hashes the password and stores the account with the
default role from the catalog. The insert still maps late unique violations
to the same duplicate errors, so a concurrent winner of the pre-check race
produces the identical client response.

Parameters:
  - context: context.Context
  - input: SignUpInput

Returns:
  - *User: Created entity with its generated ID
  - error: ErrDuplicateUsername, ErrDuplicateEmail or storage errors
*/
func (service *Service) SignUp(context context.Context, input SignUpInput) (*User, error) {

	// ── 1. Availability pre-checks, username first ──────────────────────────
	taken, err := service.userRepository.ExistsByUsername(context, input.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	registered, err := service.userRepository.ExistsByEmail(context, input.Email)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, ErrDuplicateEmail
	}

	// ── 2. Hash the password, never store plain text ────────────────────────
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Persist with the default catalog role ────────────────────────────
	user := &User{
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Roles:        []sec.UserRole{sec.RoleUser},
	}

	created, err := service.userRepository.Create(context, user)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// # Identity Resolution

/*
ResolveIdentity loads the principal for a verified token subject.

Description: Backs the request pipeline's authentication gate. The account's
current roles are read on every request so a revoked role takes effect
without waiting for token expiry.

Parameters:
  - context: context.Context
  - userID: int64 (the token subject)

Returns:
  - *sec.Identity: The request-scoped principal
  - error: apperr.NotFound when the account no longer exists, or storage errors
*/
func (service *Service) ResolveIdentity(context context.Context, userID int64) (*sec.Identity, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}
