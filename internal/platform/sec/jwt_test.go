// Copyright (c) 2026 Pollhub. All rights reserved.

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woolbro/pollhub/internal/platform/sec"
)

const testSecret = "unit-test-signing-secret"

func newTestService(t *testing.T, ttl time.Duration) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(testSecret, ttl)
	require.NoError(t, err)
	return service
}

/*
TestTokenService_IssueVerifyRoundTrip verifies that a freshly issued token
resolves back to the account id it was issued for.
*/
func TestTokenService_IssueVerifyRoundTrip(t *testing.T) {
	service := newTestService(t, 15*time.Minute)

	token, err := service.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	assert.WithinDuration(t, claims.IssuedAt.Add(15*time.Minute), claims.ExpiresAt, time.Second)
}

/*
TestTokenService_Expired verifies that a token past its expiry fails with
the dedicated expiry error.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTestService(t, 15*time.Minute)

	// Sign an already-expired token with the same secret and algorithm.
	pastTime := time.Now().Add(-1 * time.Hour)
	expiredToken := signTestToken(t, jwt.RegisteredClaims{
		Subject:   "42",
		IssuedAt:  jwt.NewNumericDate(pastTime),
		ExpiresAt: jwt.NewNumericDate(pastTime.Add(time.Minute)),
	})

	_, err := service.Verify(expiredToken)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenService_TamperedSignature verifies that flipping a byte inside the
signature segment fails with the bad-signature error.
*/
func TestTokenService_TamperedSignature(t *testing.T) {
	service := newTestService(t, 15*time.Minute)

	token, err := service.Issue(42)
	require.NoError(t, err)

	segments := strings.Split(token, ".")
	require.Len(t, segments, 3)

	// Replace the first character of the signature with a different one.
	signature := []byte(segments[2])
	if signature[0] == 'A' {
		signature[0] = 'B'
	} else {
		signature[0] = 'A'
	}
	tampered := segments[0] + "." + segments[1] + "." + string(signature)

	_, err = service.Verify(tampered)
	assert.ErrorIs(t, err, sec.ErrTokenBadSignature)
}

/*
TestTokenService_Malformed covers structurally broken inputs and non-numeric
subjects, which must surface at verification time.
*/
func TestTokenService_Malformed(t *testing.T) {
	service := newTestService(t, 15*time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"two_segments", "abc.def"},
		{"non_numeric_subject", signTestToken(t, jwt.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Verify(tt.token)
			assert.ErrorIs(t, err, sec.ErrTokenMalformed)
		})
	}
}

/*
TestTokenService_UnsupportedAlgorithm verifies that a token signed with a
different HMAC variant over the same secret is rejected as unsupported.
*/
func TestTokenService_UnsupportedAlgorithm(t *testing.T) {
	service := newTestService(t, 15*time.Minute)

	claims := jwt.RegisteredClaims{
		Subject:   "42",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	hs256Token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = service.Verify(hs256Token)
	assert.ErrorIs(t, err, sec.ErrTokenUnsupported)
}

/*
TestTokenService_Empty verifies the empty-token sentinel.
*/
func TestTokenService_Empty(t *testing.T) {
	service := newTestService(t, 15*time.Minute)

	_, err := service.Verify("")
	assert.ErrorIs(t, err, sec.ErrTokenEmpty)
}

/*
TestNewTokenService_Configuration rejects unusable secrets and TTLs.
*/
func TestNewTokenService_Configuration(t *testing.T) {
	_, err := sec.NewTokenService("", time.Minute)
	assert.Error(t, err)

	_, err = sec.NewTokenService(testSecret, 0)
	assert.Error(t, err)
}

// signTestToken signs arbitrary claims with the test secret using HS512.
func signTestToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}
