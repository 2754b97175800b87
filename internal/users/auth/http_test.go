// Copyright (c) 2026 Pollhub. All rights reserved.

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woolbro/pollhub/internal/platform/middleware"
	"github.com/woolbro/pollhub/internal/platform/sec"
)

const testSigningSecret = "http-test-signing-secret"

// newTestRouter wires the handler the way the server does: the auth routes
// under /api/auth plus one protected probe route behind the full pipeline.
func newTestRouter(t *testing.T, tokenTTL time.Duration) (*chi.Mux, *fakeUserRepository, *Service) {
	t.Helper()

	tokenService, err := sec.NewTokenService(testSigningSecret, tokenTTL)
	require.NoError(t, err)

	repo := newFakeUserRepository()
	service := NewService(repo, tokenService)
	handler := NewHandler(service)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokenService, service))
	router.Mount("/api/auth", handler.Routes())
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/api/protected", func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusOK)
		})
	})

	return router, repo, service
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

// # Signin Endpoint

func TestSignInEndpoint(t *testing.T) {
	router, repo, _ := newTestRouter(t, 15*time.Minute)
	seedUser(t, repo, "alice", "alice@example.com", "s3cretpw")

	t.Run("issues_bearer_token", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/auth/signin",
			`{"usernameOrEmail": "alice", "password": "s3cretpw"}`)

		require.Equal(t, http.StatusOK, recorder.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, "Bearer", body["tokenType"])
		assert.NotEmpty(t, body["accessToken"])
		assert.Len(t, strings.Split(body["accessToken"], "."), 3)
	})

	t.Run("token_opens_protected_route", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/auth/signin",
			`{"usernameOrEmail": "alice@example.com", "password": "s3cretpw"}`)
		require.Equal(t, http.StatusOK, recorder.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

		request := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		request.Header.Set("Authorization", "Bearer "+body["accessToken"])
		probe := httptest.NewRecorder()
		router.ServeHTTP(probe, request)

		assert.Equal(t, http.StatusOK, probe.Code)
	})

	t.Run("wrong_password_gets_401", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/auth/signin",
			`{"usernameOrEmail": "alice", "password": "wrongpw"}`)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.NotContains(t, recorder.Body.String(), "accessToken")
	})

	t.Run("missing_fields_get_validation_error", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/auth/signin", `{"usernameOrEmail": "alice"}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("malformed_json", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/auth/signin", `{"usernameOrEmail":`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

// # Signup Endpoint

func TestSignUpEndpoint(t *testing.T) {
	router, repo, _ := newTestRouter(t, 15*time.Minute)
	seedUser(t, repo, "alice", "alice@example.com", "s3cretpw")

	t.Run("registers_account", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/auth/signup",
			`{"name": "Bob Example", "username": "bob", "email": "bob@example.com", "password": "s3cretpw"}`)

		require.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, "/api/users/bob", recorder.Header().Get("Location"))

		var body apiResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "User registered successfully", body.Message)
	})

	t.Run("duplicate_username", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/auth/signup",
			`{"name": "Imposter", "username": "alice", "email": "fresh@example.com", "password": "s3cretpw"}`)

		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var body apiResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "Username is already taken!", body.Message)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/auth/signup",
			`{"name": "Imposter", "username": "fresh", "email": "alice@example.com", "password": "s3cretpw"}`)

		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var body apiResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "Email Address already in use!", body.Message)
	})

	t.Run("rejects_short_password", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/auth/signup",
			`{"name": "Carol", "username": "carol", "email": "carol@example.com", "password": "pw"}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects_bad_username_charset", func(t *testing.T) {
		recorder := postJSON(t, router, "/api/auth/signup",
			`{"name": "Carol", "username": "carol!!", "email": "carol@example.com", "password": "s3cretpw"}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

// # Token Lifecycle Against Protected Routes

func TestExpiredTokenRejectedOnProtectedRoute(t *testing.T) {
	router, repo, _ := newTestRouter(t, 15*time.Minute)
	seeded := seedUser(t, repo, "alice", "alice@example.com", "s3cretpw")

	// Hand-sign a token for the seeded account that expired an hour ago.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(seeded.ID, 10),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	token, err := expired.SignedString([]byte(testSigningSecret))
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), testSigningSecret)
}

func TestAnonymousRejectedOnProtectedRoute(t *testing.T) {
	router, _, _ := newTestRouter(t, 15*time.Minute)

	request := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

// Compile-time guarantee that the concrete types satisfy the pipeline
// contracts.
var (
	_ middleware.IdentityResolver = (*Service)(nil)
	_ TokenProvider               = (*sec.TokenService)(nil)
)
