// Copyright (c) 2026 Pollhub. All rights reserved.

package polls

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/woolbro/pollhub/internal/platform/apperr"
	"github.com/woolbro/pollhub/internal/platform/dberr"
	"github.com/woolbro/pollhub/pkg/pagination"
)

// # Poll Repository

// PostgresPollRepository implements the PollRepository interface using pgx.
type PostgresPollRepository struct {
	pool *pgxpool.Pool
}

// NewPollRepository creates a new PostgreSQL implementation of the PollRepository.
func NewPollRepository(pool *pgxpool.Pool) *PostgresPollRepository {
	return &PostgresPollRepository{pool: pool}
}

/*
List returns a page of polls with their choices and vote counts.

Description: Uses COUNT(*) OVER() to retrieve the total poll count without a
second query, then hydrates the page's choices and tallies in one batch
query instead of one query per poll.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*Poll: The page, newest first
  - int: Total poll count
  - error: Database errors
*/
func (repository *PostgresPollRepository) List(context context.Context, params pagination.Params) ([]*Poll, int, error) {
	const query = `
		SELECT p.id, p.question, p.created_by, a.username, p.expires_at, p.created_at,
		       COUNT(*) OVER() AS total
		FROM polls.poll p
		JOIN users.account a ON a.id = p.created_by
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, params.Size, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "")
	}
	defer rows.Close()

	var page []*Poll
	var total int
	for rows.Next() {
		poll := &Poll{}
		err := rows.Scan(
			&poll.ID,
			&poll.Question,
			&poll.CreatedBy,
			&poll.CreatedByName,
			&poll.ExpiresAt,
			&poll.CreatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "")
		}
		page = append(page, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "")
	}

	if err := repository.attachChoices(context, page); err != nil {
		return nil, 0, err
	}

	return page, total, nil
}

/*
FindByID loads one poll with its choices and vote counts.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Poll: Hydrated poll
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresPollRepository) FindByID(context context.Context, id int64) (*Poll, error) {
	const query = `
		SELECT p.id, p.question, p.created_by, a.username, p.expires_at, p.created_at
		FROM polls.poll p
		JOIN users.account a ON a.id = p.created_by
		WHERE p.id = $1`

	poll := &Poll{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&poll.ID,
		&poll.Question,
		&poll.CreatedBy,
		&poll.CreatedByName,
		&poll.ExpiresAt,
		&poll.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Poll")
		}
		return nil, dberr.Wrap(err, "")
	}

	if err := repository.attachChoices(context, []*Poll{poll}); err != nil {
		return nil, err
	}
	return poll, nil
}

/*
Create persists a poll and its choices atomically.

Parameters:
  - context: context.Context
  - poll: *Poll (ID and choice IDs are assigned here)

Returns:
  - *Poll: The persisted poll with generated IDs
  - error: Database errors
*/
func (repository *PostgresPollRepository) Create(context context.Context, poll *Poll) (*Poll, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	defer transaction.Rollback(context)

	const insertPoll = `
		INSERT INTO polls.poll (question, created_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	now := time.Now().UTC()
	err = transaction.QueryRow(context, insertPoll,
		poll.Question,
		poll.CreatedBy,
		poll.ExpiresAt,
		now,
	).Scan(&poll.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}

	const insertChoice = `
		INSERT INTO polls.choice (poll_id, text, position)
		VALUES ($1, $2, $3)
		RETURNING id`

	for i := range poll.Choices {
		err := transaction.QueryRow(context, insertChoice, poll.ID, poll.Choices[i].Text, i).
			Scan(&poll.Choices[i].ID)
		if err != nil {
			return nil, dberr.Wrap(err, "")
		}
	}

	if err := transaction.Commit(context); err != nil {
		return nil, dberr.Wrap(err, "")
	}

	poll.CreatedAt = now
	return poll, nil
}

/*
CastVote records one account's vote on a poll.

Description: The polls.vote table carries a unique constraint on
(poll_id, account_id), so a repeat vote fails with 23505 regardless of how
many instances race on the same account.

Parameters:
  - context: context.Context
  - pollID, choiceID, accountID: int64

Returns:
  - error: apperr.Conflict on a repeat vote, or database errors
*/
func (repository *PostgresPollRepository) CastVote(context context.Context, pollID, choiceID, accountID int64) error {
	const query = `
		INSERT INTO polls.vote (poll_id, choice_id, account_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := repository.pool.Exec(context, query, pollID, choiceID, accountID, time.Now().UTC())
	if err != nil {
		return dberr.Wrap(err, "You have already voted in this poll")
	}
	return nil
}

/*
VoteOfAccount returns the choice an account voted for on a poll.

Parameters:
  - context: context.Context
  - pollID, accountID: int64

Returns:
  - int64: The chosen choice ID, or 0 when the account has not voted
  - error: Database errors
*/
func (repository *PostgresPollRepository) VoteOfAccount(context context.Context, pollID, accountID int64) (int64, error) {
	const query = `SELECT choice_id FROM polls.vote WHERE poll_id = $1 AND account_id = $2`

	var choiceID int64
	err := repository.pool.QueryRow(context, query, pollID, accountID).Scan(&choiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, dberr.Wrap(err, "")
	}
	return choiceID, nil
}

// attachChoices hydrates choices and vote counts for a page of polls in one
// batch query.
func (repository *PostgresPollRepository) attachChoices(context context.Context, page []*Poll) error {
	if len(page) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(page))
	byID := make(map[int64]*Poll, len(page))
	for _, poll := range page {
		ids = append(ids, poll.ID)
		byID[poll.ID] = poll
	}

	const query = `
		SELECT c.poll_id, c.id, c.text, COUNT(v.choice_id)
		FROM polls.choice c
		LEFT JOIN polls.vote v ON v.choice_id = c.id
		WHERE c.poll_id = ANY($1)
		GROUP BY c.poll_id, c.id, c.text, c.position
		ORDER BY c.poll_id, c.position`

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return dberr.Wrap(err, "")
	}
	defer rows.Close()

	for rows.Next() {
		var pollID int64
		var choice Choice
		if err := rows.Scan(&pollID, &choice.ID, &choice.Text, &choice.VoteCount); err != nil {
			return dberr.Wrap(err, "")
		}
		poll := byID[pollID]
		poll.Choices = append(poll.Choices, choice)
		poll.TotalVotes += choice.VoteCount
	}
	return rows.Err()
}
