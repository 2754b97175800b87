// Copyright (c) 2026 Pollhub. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the small interfaces its consumers define for
// themselves (e.g. middleware.TokenVerifier).
package sec

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Validation Failure Taxonomy

// Token verification returns exactly one of these sentinel errors. Keeping
// the set closed lets the authentication middleware degrade every failure to
// "no identity" without a fallthrough path that could panic.
var (
	// ErrTokenEmpty indicates a Bearer scheme with no token after it.
	ErrTokenEmpty = errors.New("sec: token is empty")

	// ErrTokenExpired indicates a well-formed, correctly signed token whose
	// expiry is in the past.
	ErrTokenExpired = errors.New("sec: token is expired")

	// ErrTokenBadSignature indicates the signature does not match the payload.
	ErrTokenBadSignature = errors.New("sec: token signature is invalid")

	// ErrTokenMalformed indicates the token is structurally broken, including
	// a subject claim that does not parse back to an account id.
	ErrTokenMalformed = errors.New("sec: token is malformed")

	// ErrTokenUnsupported indicates a signing algorithm other than HS512.
	ErrTokenUnsupported = errors.New("sec: token algorithm is unsupported")
)

// AuthClaims is the validated payload of an access token.
//
// The token intentionally carries only {sub, iat, exp}: identity details
// (username, roles) are resolved from storage on every request, so a deleted
// or demoted account is observed immediately instead of at token expiry.
type AuthClaims struct {
	// UserID is the account id parsed from the subject claim.
	UserID int64

	// IssuedAt is the token's iat claim.
	IssuedAt time.Time

	// ExpiresAt is the token's exp claim.
	ExpiresAt time.Time
}

// TokenService issues and verifies JWT access tokens signed with HS512 over
// a process-wide symmetric secret.
//
// # Concurrency
//
// The secret and TTL are set once at construction and never mutated, so a
// single instance is safe for concurrent use without locks.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService from the configured signing secret
// and token time-to-live.
//
// Rotating the secret invalidates every previously issued token. There is no
// multi-key grace period.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("sec: token ttl must be positive")
	}

	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (service *TokenService) TTL() time.Duration {
	return service.ttl
}

// Issue creates a signed access token for the given account id.
//
// Claims are {sub: id as decimal string, iat: now, exp: now + ttl}.
func (service *TokenService) Issue(userID int64) (string, error) {
	currentTime := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", errors.Join(errors.New("sec: failed to sign token"), err)
	}

	return signedToken, nil
}

// Verify parses a token string, checks the HS512 signature and expiry, and
// parses the subject back to an account id.
//
// # Failure Modes
//
// Every failure is one of the sentinel errors above. Verify never panics and
// never returns a library error directly, so callers can treat the failure
// set as exhaustive.
func (service *TokenService) Verify(tokenString string) (*AuthClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenEmpty
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Pin the exact algorithm. Accepting any HMAC variant would let a
		// token signed HS256 over the same secret through.
		if token.Method != jwt.SigningMethodHS512 {
			return nil, ErrTokenUnsupported
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, classifyTokenError(err)
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	result := &AuthClaims{UserID: userID}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	return result, nil
}

// classifyTokenError maps golang-jwt parse errors onto the closed sentinel set.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, ErrTokenUnsupported):
		// Raised by our keyfunc; golang-jwt wraps it in ErrTokenUnverifiable.
		return ErrTokenUnsupported
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		// Anything unanticipated still fails closed as a structural problem.
		return ErrTokenMalformed
	}
}
