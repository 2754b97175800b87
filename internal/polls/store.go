// Copyright (c) 2026 Pollhub. All rights reserved.

package polls

import (
	"context"
	"time"

	"github.com/woolbro/pollhub/pkg/pagination"
)

// # Repository Contracts

// PollRepository is the persistence contract for polls, choices and votes.
type PollRepository interface {
	// List returns a page of polls ordered newest first, with per-choice
	// vote counts, plus the total poll count.
	List(ctx context.Context, params pagination.Params) ([]*Poll, int, error)

	// FindByID loads one poll with its choices and vote counts. Returns
	// apperr.NotFound when no such poll exists.
	FindByID(ctx context.Context, id int64) (*Poll, error)

	// Create persists a poll and its choices atomically.
	Create(ctx context.Context, poll *Poll) (*Poll, error)

	// CastVote records one account's vote. A second vote by the same
	// account on the same poll surfaces as apperr.Conflict.
	CastVote(ctx context.Context, pollID, choiceID, accountID int64) error

	// VoteOfAccount returns the choice the account voted for, or 0 when
	// the account has not voted on the poll.
	VoteOfAccount(ctx context.Context, pollID, accountID int64) (int64, error)
}

// TallyCache caches per-choice vote counts keyed by poll.
type TallyCache interface {
	// Get returns the cached tally, or ok=false on a miss. Cache transport
	// failures also read as misses so the database stays authoritative.
	Get(ctx context.Context, pollID int64) (map[int64]int64, bool)

	// Set stores the tally with the given lifetime. Best effort.
	Set(ctx context.Context, pollID int64, tally map[int64]int64, ttl time.Duration)

	// Invalidate drops the cached tally after a write. Best effort.
	Invalidate(ctx context.Context, pollID int64)
}
