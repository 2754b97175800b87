// Copyright (c) 2026 Pollhub. All rights reserved.

// Authentication and authorization gates.
//
// # Architecture
//
// Authentication is split in two phases. [Authenticate] runs once per request
// before route dispatch and attaches an identity when it can — it never
// rejects. [RequireAuth] and [RequireRole] run per route group and reject
// requests that reached a protected operation without (sufficient) identity.
// The split lets public and protected routes share one pipeline stage without
// the gate knowing any route policy.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/woolbro/pollhub/internal/platform/apperr"
	"github.com/woolbro/pollhub/internal/platform/constants"
	"github.com/woolbro/pollhub/internal/platform/ctxutil"
	"github.com/woolbro/pollhub/internal/platform/respond"
	"github.com/woolbro/pollhub/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the concrete
// [sec.TokenService], allowing us to easily inject stubs during unit testing.
type TokenVerifier interface {
	Verify(tokenString string) (*sec.AuthClaims, error)
}

// IdentityResolver loads the account behind a validated token's subject.
//
// Implementations must return an [apperr.AppError] with code NOT_FOUND when
// the account no longer exists; any other error is treated as a storage
// fault.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID int64) (*sec.Identity, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header
// and resolves the authenticated identity for the request.
//
// # Flow
//  1. Read the Authorization header. No header, a non-Bearer scheme, or an
//     empty token after the prefix means "no token present": continue
//     anonymous.
//  2. Verify the token. Every verification failure (expired, bad signature,
//     malformed, unsupported, empty) is logged by kind and degrades to an
//     anonymous request — never a thrown error, never an early response.
//  3. Resolve the subject's account. A missing account (deleted since
//     issuance) also degrades to anonymous. Other storage faults surface as
//     500s rather than masquerading as anonymous traffic.
//  4. Attach the [*sec.Identity] to the request context and continue the
//     chain either way.
//
// Whether anonymity is acceptable is decided later by [RequireAuth] /
// [RequireRole] on the routes that need identity.
func Authenticate(verifier TokenVerifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			logger := ctxutil.GetLogger(request.Context())

			// ── 1. Token Extraction ───────────────────────────────────────────
			// The scheme match is case-sensitive with a single space, so
			// "Basic ...", "bearer ..." and a bare "Bearer" all count as
			// "no token present", not as errors.
			authHeader := request.Header.Get(constants.HeaderAuthorization)
			if !strings.HasPrefix(authHeader, constants.BearerSchemePrefix) {
				next.ServeHTTP(writer, request)
				return
			}

			tokenString := authHeader[len(constants.BearerSchemePrefix):]
			if tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.Verify(tokenString)
			if err != nil {
				// Fail closed: log the failure kind, never the token, and
				// continue as anonymous.
				logger.WarnContext(request.Context(), "token_rejected",
					slog.String("reason", err.Error()),
				)
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Identity Resolution ────────────────────────────────────────
			identity, err := resolver.ResolveIdentity(request.Context(), claims.UserID)
			if err != nil {
				if ae := apperr.As(err); ae != nil && ae.HTTPStatus == http.StatusNotFound {
					// Valid token for an account that no longer exists.
					logger.WarnContext(request.Context(), "token_identity_unresolvable",
						slog.Int64("user_id", claims.UserID),
					)
					next.ServeHTTP(writer, request)
					return
				}

				// A storage outage is a server fault, not an anonymous request.
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. This is the terminal
// unauthorized responder: it fires exactly when a protected route is reached
// with no attached identity, with a generic message carrying no token or
// parser internals.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		identity := ctxutil.GetIdentity(request.Context())
		if identity == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose identity lacks the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth], so the two never need to be mounted together.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !identity.HasRoleAtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
