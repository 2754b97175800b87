// Copyright (c) 2026 Pollhub. All rights reserved.

package polls

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woolbro/pollhub/internal/platform/apperr"
	"github.com/woolbro/pollhub/internal/platform/sec"
	"github.com/woolbro/pollhub/pkg/pagination"
)

// # Test Doubles

type fakePollRepository struct {
	polls  map[int64]*Poll
	votes  map[[2]int64]int64 // (pollID, accountID) -> choiceID
	nextID int64
}

func newFakePollRepository() *fakePollRepository {
	return &fakePollRepository{
		polls:  make(map[int64]*Poll),
		votes:  make(map[[2]int64]int64),
		nextID: 1,
	}
}

func (f *fakePollRepository) List(_ context.Context, params pagination.Params) ([]*Poll, int, error) {
	var page []*Poll
	for _, poll := range f.polls {
		page = append(page, poll)
	}
	return page, len(f.polls), nil
}

func (f *fakePollRepository) FindByID(_ context.Context, id int64) (*Poll, error) {
	poll, ok := f.polls[id]
	if !ok {
		return nil, apperr.NotFound("Poll")
	}
	return poll, nil
}

func (f *fakePollRepository) Create(_ context.Context, poll *Poll) (*Poll, error) {
	poll.ID = f.nextID
	f.nextID++
	for i := range poll.Choices {
		poll.Choices[i].ID = poll.ID*100 + int64(i)
	}
	poll.CreatedAt = time.Now()
	f.polls[poll.ID] = poll
	return poll, nil
}

func (f *fakePollRepository) CastVote(_ context.Context, pollID, choiceID, accountID int64) error {
	key := [2]int64{pollID, accountID}
	if _, voted := f.votes[key]; voted {
		return apperr.Conflict("You have already voted in this poll")
	}
	f.votes[key] = choiceID
	poll := f.polls[pollID]
	for i := range poll.Choices {
		if poll.Choices[i].ID == choiceID {
			poll.Choices[i].VoteCount++
			poll.TotalVotes++
		}
	}
	return nil
}

func (f *fakePollRepository) VoteOfAccount(_ context.Context, pollID, accountID int64) (int64, error) {
	return f.votes[[2]int64{pollID, accountID}], nil
}

// fakeTallyCache records cache traffic in memory.
type fakeTallyCache struct {
	entries     map[int64]map[int64]int64
	sets        int
	invalidates int
}

func newFakeTallyCache() *fakeTallyCache {
	return &fakeTallyCache{entries: make(map[int64]map[int64]int64)}
}

func (f *fakeTallyCache) Get(_ context.Context, pollID int64) (map[int64]int64, bool) {
	tally, ok := f.entries[pollID]
	return tally, ok
}

func (f *fakeTallyCache) Set(_ context.Context, pollID int64, tally map[int64]int64, _ time.Duration) {
	f.sets++
	f.entries[pollID] = tally
}

func (f *fakeTallyCache) Invalidate(_ context.Context, pollID int64) {
	f.invalidates++
	delete(f.entries, pollID)
}

func newTestService(t *testing.T) (*Service, *fakePollRepository, *fakeTallyCache) {
	t.Helper()
	repo := newFakePollRepository()
	cache := newFakeTallyCache()
	return NewService(repo, cache), repo, cache
}

func seedPoll(t *testing.T, service *Service, question string, choices ...string) *Poll {
	t.Helper()
	poll, err := service.Create(context.Background(), CreateInput{
		Question: question,
		Choices:  choices,
	}, &sec.Identity{UserID: 1, Username: "alice"})
	require.NoError(t, err)
	return poll
}

var voter = &sec.Identity{UserID: 2, Username: "bob", Roles: []sec.UserRole{sec.RoleUser}}

// # Creation

func TestCreate(t *testing.T) {
	service, _, _ := newTestService(t)

	t.Run("assigns_ids_and_expiry", func(t *testing.T) {
		poll := seedPoll(t, service, "Tabs or spaces?", "Tabs", "Spaces")
		assert.NotZero(t, poll.ID)
		assert.Len(t, poll.Choices, 2)
		assert.Equal(t, "alice", poll.CreatedByName)
		assert.True(t, poll.ExpiresAt.After(time.Now()))
	})

	t.Run("too_few_choices", func(t *testing.T) {
		_, err := service.Create(context.Background(), CreateInput{
			Question: "Yes?",
			Choices:  []string{"Only one"},
		}, voter)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
	})

	t.Run("too_many_choices", func(t *testing.T) {
		_, err := service.Create(context.Background(), CreateInput{
			Question: "Pick one",
			Choices:  []string{"a", "b", "c", "d", "e", "f", "g"},
		}, voter)
		require.Error(t, err)
	})

	t.Run("duration_capped_at_seven_days", func(t *testing.T) {
		_, err := service.Create(context.Background(), CreateInput{
			Question:      "Forever poll?",
			Choices:       []string{"Yes", "No"},
			DurationHours: 24 * 8,
		}, voter)
		require.Error(t, err)
	})
}

// # Voting

func TestCastVote(t *testing.T) {
	service, _, cache := newTestService(t)
	poll := seedPoll(t, service, "Tabs or spaces?", "Tabs", "Spaces")
	tabs := poll.Choices[0].ID

	t.Run("counts_and_annotates", func(t *testing.T) {
		updated, err := service.CastVote(context.Background(), poll.ID, tabs, voter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.TotalVotes)
		require.NotNil(t, updated.SelectedChoice)
		assert.Equal(t, tabs, *updated.SelectedChoice)
	})

	t.Run("repeat_vote_conflicts", func(t *testing.T) {
		_, err := service.CastVote(context.Background(), poll.ID, tabs, voter)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, apperr.As(err).HTTPStatus)
	})

	t.Run("invalidates_cached_tally", func(t *testing.T) {
		assert.NotZero(t, cache.invalidates)
	})

	t.Run("foreign_choice_rejected", func(t *testing.T) {
		other := seedPoll(t, service, "Vim or Emacs?", "Vim", "Emacs")
		_, err := service.CastVote(context.Background(), poll.ID, other.Choices[0].ID, voter)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
	})

	t.Run("unknown_poll", func(t *testing.T) {
		_, err := service.CastVote(context.Background(), 9999, tabs, voter)
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)
	})
}

func TestCastVote_ExpiredPoll(t *testing.T) {
	service, _, _ := newTestService(t)
	poll := seedPoll(t, service, "Old news?", "Yes", "No")

	// Move the clock past the poll's expiry.
	service.now = func() time.Time { return poll.ExpiresAt.Add(time.Minute) }

	_, err := service.CastVote(context.Background(), poll.ID, poll.Choices[0].ID, voter)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
	assert.Contains(t, err.Error(), "expired")
}

// # Discovery

func TestGet(t *testing.T) {
	service, _, cache := newTestService(t)
	poll := seedPoll(t, service, "Tabs or spaces?", "Tabs", "Spaces")

	t.Run("miss_populates_cache", func(t *testing.T) {
		_, err := service.Get(context.Background(), poll.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("hit_serves_cached_counts", func(t *testing.T) {
		cache.entries[poll.ID] = map[int64]int64{
			poll.Choices[0].ID: 7,
			poll.Choices[1].ID: 3,
		}
		got, err := service.Get(context.Background(), poll.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(10), got.TotalVotes)
		assert.Equal(t, int64(7), got.Choices[0].VoteCount)
	})

	t.Run("anonymous_has_no_selection", func(t *testing.T) {
		got, err := service.Get(context.Background(), poll.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, got.SelectedChoice)
	})
}

func TestList(t *testing.T) {
	service, _, _ := newTestService(t)
	seedPoll(t, service, "Tabs or spaces?", "Tabs", "Spaces")
	seedPoll(t, service, "Vim or Emacs?", "Vim", "Emacs")

	page, total, err := service.List(context.Background(), pagination.Params{Page: 1, Size: 30}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, page, 2)
}
