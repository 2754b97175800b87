// Copyright (c) 2026 Pollhub. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/woolbro/pollhub/internal/platform/apperr"
	"github.com/woolbro/pollhub/internal/platform/dberr"
	"github.com/woolbro/pollhub/internal/platform/sec"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// selectUser joins the role catalog so every lookup hydrates the account with
// its role names in one round trip.
const selectUser = `
	SELECT a.id, a.name, a.username, a.email, a.password_hash,
	       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}'),
	       a.created_at, a.updated_at
	FROM users.account a
	LEFT JOIN users.account_role ar ON ar.account_id = a.id
	LEFT JOIN users.role r ON r.id = ar.role_id`

/*
FindByID retrieves an account record with its roles by primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id int64) (*User, error) {
	query := selectUser + `
	WHERE a.id = $1
	GROUP BY a.id`

	return repository.scanUser(repository.pool.QueryRow(context, query, id))
}

/*
FindByUsernameOrEmail retrieves an account by login handle, matching the
username and email columns.

Parameters:
  - context: context.Context
  - handle: string (username or email)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsernameOrEmail(context context.Context, handle string) (*User, error) {
	query := selectUser + `
	WHERE a.username = $1 OR a.email = $1
	GROUP BY a.id`

	return repository.scanUser(repository.pool.QueryRow(context, query, handle))
}

/*
ExistsByUsername reports whether an account already holds the username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - bool: true when the username is taken
  - error: Database errors
*/
func (repository *PostgresUserRepository) ExistsByUsername(context context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users.account WHERE username = $1)`

	var exists bool
	if err := repository.pool.QueryRow(context, query, username).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "")
	}
	return exists, nil
}

/*
ExistsByEmail reports whether an account already holds the email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - bool: true when the email is registered
  - error: Database errors
*/
func (repository *PostgresUserRepository) ExistsByEmail(context context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users.account WHERE email = $1)`

	var exists bool
	if err := repository.pool.QueryRow(context, query, email).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "")
	}
	return exists, nil
}

/*
Create persists a new account and grants its catalog roles in one transaction.

Description: Inserts the account row, resolves each role name against the
users.role catalog and writes the assignment rows. A missing catalog role is
a deployment fault and surfaces as an internal error. Unique violations are
mapped to the duplicate-username/email errors by constraint name, covering
the race where a concurrent signup wins between the existence pre-checks and
this insert.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist; ID and timestamps are assigned here)

Returns:
  - *User: The persisted entity with its generated ID
  - error: ErrDuplicateUsername, ErrDuplicateEmail or database errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) (*User, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	defer transaction.Rollback(context)

	const insertAccount = `
		INSERT INTO users.account (name, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`

	now := time.Now().UTC()
	err = transaction.QueryRow(context, insertAccount,
		user.Name,
		user.Username,
		user.Email,
		user.PasswordHash,
		now,
	).Scan(&user.ID)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	const grantRole = `
		INSERT INTO users.account_role (account_id, role_id)
		SELECT $1, id FROM users.role WHERE name = $2`

	for _, role := range user.Roles {
		tag, err := transaction.Exec(context, grantRole, user.ID, string(role))
		if err != nil {
			return nil, dberr.Wrap(err, "")
		}
		if tag.RowsAffected() == 0 {
			return nil, apperr.Internal(fmt.Errorf("role %q missing from catalog", role))
		}
	}

	if err := transaction.Commit(context); err != nil {
		return nil, dberr.Wrap(err, "")
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

// scanUser hydrates a single account row from the selectUser projection.
func (repository *PostgresUserRepository) scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	var roleNames []string

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&roleNames,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "")
	}

	user.Roles = make([]sec.UserRole, 0, len(roleNames))
	for _, name := range roleNames {
		user.Roles = append(user.Roles, sec.UserRole(name))
	}
	return user, nil
}

// mapUniqueViolation translates a 23505 on the account table into the
// duplicate error matching the violated constraint.
func mapUniqueViolation(err error) error {
	pgError := dberr.UniqueViolation(err)
	if pgError == nil {
		return dberr.Wrap(err, "")
	}
	if strings.Contains(pgError.ConstraintName, "email") {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}
