// Copyright (c) 2026 Pollhub. All rights reserved.

package polls

import (
	"context"
	"time"

	"github.com/woolbro/pollhub/internal/platform/apperr"
	"github.com/woolbro/pollhub/internal/platform/sec"
	"github.com/woolbro/pollhub/pkg/pagination"
)

// # Service Layer

// tallyCacheTTL bounds staleness of cached vote counts on hot polls.
const tallyCacheTTL = 30 * time.Second

// Service orchestrates poll business rules.
type Service struct {
	pollRepository PollRepository
	tallyCache     TallyCache
	now            func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(pollRepo PollRepository, cache TallyCache) *Service {
	return &Service{
		pollRepository: pollRepo,
		tallyCache:     cache,
		now:            time.Now,
	}
}

// # Discovery

/*
List returns a page of polls, newest first.

Description: When the caller is authenticated, each poll on the page is
annotated with the choice the caller voted for.

Parameters:
  - context: context.Context
  - params: pagination.Params
  - identity: *sec.Identity (nil for anonymous callers)

Returns:
  - []*Poll: The page
  - int: Total poll count
  - error: Storage failures
*/
func (service *Service) List(context context.Context, params pagination.Params, identity *sec.Identity) ([]*Poll, int, error) {
	page, total, err := service.pollRepository.List(context, params)
	if err != nil {
		return nil, 0, err
	}

	if identity != nil {
		for _, poll := range page {
			if err := service.annotateSelection(context, poll, identity.UserID); err != nil {
				return nil, 0, err
			}
		}
	}

	return page, total, nil
}

/*
Get returns one poll with its vote counts.

Description: The per-choice tally is served from the cache when present;
misses fall through to the counts loaded from Postgres and repopulate the
cache entry.

Parameters:
  - context: context.Context
  - pollID: int64
  - identity: *sec.Identity (nil for anonymous callers)

Returns:
  - *Poll: Hydrated poll
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Get(context context.Context, pollID int64, identity *sec.Identity) (*Poll, error) {
	poll, err := service.pollRepository.FindByID(context, pollID)
	if err != nil {
		return nil, err
	}

	if tally, ok := service.tallyCache.Get(context, pollID); ok {
		applyTally(poll, tally)
	} else {
		service.tallyCache.Set(context, pollID, tallyOf(poll), tallyCacheTTL)
	}

	if identity != nil {
		if err := service.annotateSelection(context, poll, identity.UserID); err != nil {
			return nil, err
		}
	}

	return poll, nil
}

// # Creation

// CreateInput holds the data required to open a new poll.
type CreateInput struct {
	Question      string
	Choices       []string
	DurationHours int
}

/*
Create opens a new poll owned by the caller.

Description: Enforces the choice count bounds and caps the expiry horizon.
A zero duration falls back to the default lifetime.

Parameters:
  - context: context.Context
  - input: CreateInput
  - identity: *sec.Identity (the authenticated creator)

Returns:
  - *Poll: The persisted poll with generated IDs
  - error: Validation or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput, identity *sec.Identity) (*Poll, error) {
	if len(input.Choices) < minChoices || len(input.Choices) > maxChoices {
		return nil, apperr.ValidationError("Polls must have between 2 and 6 choices")
	}

	duration := defaultDuration
	if input.DurationHours > 0 {
		duration = time.Duration(input.DurationHours) * time.Hour
	}
	if duration > maxDuration {
		return nil, apperr.ValidationError("Poll duration must not exceed 7 days")
	}

	choices := make([]Choice, len(input.Choices))
	for i, text := range input.Choices {
		choices[i] = Choice{Text: text}
	}

	poll := &Poll{
		Question:      input.Question,
		Choices:       choices,
		CreatedBy:     identity.UserID,
		CreatedByName: identity.Username,
		ExpiresAt:     service.now().Add(duration).UTC(),
	}

	return service.pollRepository.Create(context, poll)
}

// # Voting

/*
CastVote records the caller's vote and returns the refreshed poll.

Description: Rejects votes on expired polls and choices that do not belong
to the poll. The unique vote constraint turns a repeat vote into a conflict
even when two requests race. The cached tally is invalidated so the next
read reflects the new count.

Parameters:
  - context: context.Context
  - pollID, choiceID: int64
  - identity: *sec.Identity (the authenticated voter)

Returns:
  - *Poll: The poll with updated counts and the caller's selection
  - error: apperr.NotFound, apperr.ValidationError, apperr.Conflict or
    storage failures
*/
func (service *Service) CastVote(context context.Context, pollID, choiceID int64, identity *sec.Identity) (*Poll, error) {
	poll, err := service.pollRepository.FindByID(context, pollID)
	if err != nil {
		return nil, err
	}

	if poll.Expired(service.now()) {
		return nil, apperr.ValidationError("Sorry! This poll has already expired")
	}
	if !poll.HasChoice(choiceID) {
		return nil, apperr.ValidationError("Choice does not belong to this poll")
	}

	if err := service.pollRepository.CastVote(context, pollID, choiceID, identity.UserID); err != nil {
		return nil, err
	}

	service.tallyCache.Invalidate(context, pollID)

	return service.Get(context, pollID, identity)
}

// annotateSelection marks the choice the account voted for, if any.
func (service *Service) annotateSelection(context context.Context, poll *Poll, accountID int64) error {
	choiceID, err := service.pollRepository.VoteOfAccount(context, poll.ID, accountID)
	if err != nil {
		return err
	}
	if choiceID != 0 {
		poll.SelectedChoice = &choiceID
	}
	return nil
}

// tallyOf extracts the per-choice counts loaded from storage.
func tallyOf(poll *Poll) map[int64]int64 {
	tally := make(map[int64]int64, len(poll.Choices))
	for _, choice := range poll.Choices {
		tally[choice.ID] = choice.VoteCount
	}
	return tally
}

// applyTally overlays cached counts onto the poll's choices.
func applyTally(poll *Poll, tally map[int64]int64) {
	poll.TotalVotes = 0
	for i := range poll.Choices {
		poll.Choices[i].VoteCount = tally[poll.Choices[i].ID]
		poll.TotalVotes += poll.Choices[i].VoteCount
	}
}
