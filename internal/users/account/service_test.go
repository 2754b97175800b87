// Copyright (c) 2026 Pollhub. All rights reserved.

package account

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woolbro/pollhub/internal/platform/apperr"
	"github.com/woolbro/pollhub/internal/platform/sec"
	"github.com/woolbro/pollhub/internal/users/auth"
)

// # Test Doubles

type stubUserRepository struct {
	user          *auth.User
	usernameTaken bool
	emailTaken    bool
}

func (s *stubUserRepository) FindByID(_ context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, apperr.NotFound("User")
	}
	return s.user, nil
}

func (s *stubUserRepository) FindByUsernameOrEmail(context.Context, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (s *stubUserRepository) ExistsByUsername(context.Context, string) (bool, error) {
	return s.usernameTaken, nil
}

func (s *stubUserRepository) ExistsByEmail(context.Context, string) (bool, error) {
	return s.emailTaken, nil
}

func (s *stubUserRepository) Create(_ context.Context, user *auth.User) (*auth.User, error) {
	return user, nil
}

type stubStatsRepository struct {
	profile *UserProfile
}

func (s *stubStatsRepository) ProfileByUsername(_ context.Context, username string) (*UserProfile, error) {
	if s.profile == nil || s.profile.Username != username {
		return nil, apperr.NotFound("User")
	}
	return s.profile, nil
}

// # Availability Probes

func TestCheckAvailability(t *testing.T) {
	t.Run("username_free", func(t *testing.T) {
		service := NewService(&stubUserRepository{usernameTaken: false}, &stubStatsRepository{})
		availability, err := service.CheckUsernameAvailability(context.Background(), "bob")
		require.NoError(t, err)
		assert.True(t, availability.Available)
	})

	t.Run("username_taken", func(t *testing.T) {
		service := NewService(&stubUserRepository{usernameTaken: true}, &stubStatsRepository{})
		availability, err := service.CheckUsernameAvailability(context.Background(), "alice")
		require.NoError(t, err)
		assert.False(t, availability.Available)
	})

	t.Run("email_taken", func(t *testing.T) {
		service := NewService(&stubUserRepository{emailTaken: true}, &stubStatsRepository{})
		availability, err := service.CheckEmailAvailability(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.False(t, availability.Available)
	})
}

// # Profile Reads

func TestMe(t *testing.T) {
	repo := &stubUserRepository{user: &auth.User{
		ID:       42,
		Name:     "Alice Example",
		Username: "alice",
	}}
	service := NewService(repo, &stubStatsRepository{})

	t.Run("returns_summary", func(t *testing.T) {
		summary, err := service.Me(context.Background(), &sec.Identity{UserID: 42})
		require.NoError(t, err)
		assert.Equal(t, int64(42), summary.ID)
		assert.Equal(t, "alice", summary.Username)
		assert.Equal(t, "Alice Example", summary.Name)
	})

	t.Run("deleted_account", func(t *testing.T) {
		_, err := service.Me(context.Background(), &sec.Identity{UserID: 9999})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)
	})
}

func TestProfile(t *testing.T) {
	stats := &stubStatsRepository{profile: &UserProfile{
		ID:        42,
		Username:  "alice",
		Name:      "Alice Example",
		JoinedAt:  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		PollCount: 3,
		VoteCount: 17,
	}}
	service := NewService(&stubUserRepository{}, stats)

	t.Run("returns_counts", func(t *testing.T) {
		profile, err := service.Profile(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(3), profile.PollCount)
		assert.Equal(t, int64(17), profile.VoteCount)
	})

	t.Run("unknown_username", func(t *testing.T) {
		_, err := service.Profile(context.Background(), "ghost")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)
	})
}
