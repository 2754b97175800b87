// Copyright (c) 2026 Pollhub. All rights reserved.

package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/woolbro/pollhub/internal/platform/apperr"
	"github.com/woolbro/pollhub/internal/platform/dberr"
)

// # Stats Repository

// StatsRepository reads public profile projections with participation counts.
type StatsRepository interface {
	// ProfileByUsername loads the public profile with its poll and vote
	// counts. Returns apperr.NotFound when no such account exists.
	ProfileByUsername(ctx context.Context, username string) (*UserProfile, error)
}

// PostgresStatsRepository implements StatsRepository using pgx.
type PostgresStatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new PostgreSQL implementation of the StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{pool: pool}
}

/*
ProfileByUsername loads an account's public profile with participation counts.

Description: Counts the account's polls and votes in correlated subqueries so
the projection stays a single round trip.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *UserProfile: Public projection with counts
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresStatsRepository) ProfileByUsername(context context.Context, username string) (*UserProfile, error) {
	const query = `
		SELECT a.id, a.username, a.name, a.created_at,
		       (SELECT COUNT(*) FROM polls.poll p WHERE p.created_by = a.id),
		       (SELECT COUNT(*) FROM polls.vote v WHERE v.account_id = a.id)
		FROM users.account a
		WHERE a.username = $1`

	profile := &UserProfile{}
	err := repository.pool.QueryRow(context, query, username).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Name,
		&profile.JoinedAt,
		&profile.PollCount,
		&profile.VoteCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "")
	}

	return profile, nil
}
