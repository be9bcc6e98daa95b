// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/cpos/internal/platform/database/schema"
	"github.com/taibuivan/cpos/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] on users.account.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var userColumns = strings.Join(schema.UserAccount.Columns(), ", ")

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.IsEnabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

/*
FindByLogin matches the identifier against the username as typed and against
the email in case-folded form.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *User: Hydrated account entity
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresUserRepository) FindByLogin(context context.Context, identifier string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 OR %s = $2 LIMIT 1`,
		userColumns,
		schema.UserAccount.Table,
		schema.UserAccount.Username,
		schema.UserAccount.Email,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, identifier, NormalizeEmail(identifier)))
	if err != nil {
		return nil, dberr.Wrap(err, "find user by login")
	}
	return user, nil
}

// FindByID retrieves an account by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		userColumns,
		schema.UserAccount.Table,
		schema.UserAccount.ID,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find user by id")
	}
	return user, nil
}

// ExistsByUsernameOrEmail reports whether either identity is already taken.
func (repository *PostgresUserRepository) ExistsByUsernameOrEmail(context context.Context, username, email string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 OR %s = $2)`,
		schema.UserAccount.Table,
		schema.UserAccount.Username,
		schema.UserAccount.Email,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, username, email).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check user identity")
	}
	return exists, nil
}

/*
Create persists a new account, initializing timestamps.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Conflict on a duplicate username or email, database errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.UserAccount.Table,
		userColumns,
	)

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.IsEnabled,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return dberr.Wrap(err, "create user")
}

// SetEnabled toggles the enabled flag.
func (repository *PostgresUserRepository) SetEnabled(context context.Context, id string, enabled bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.IsEnabled,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	tag, err := repository.pool.Exec(context, query, id, enabled)
	if err != nil {
		return dberr.Wrap(err, "set user enabled")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] on users.session.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of [SessionRepository].
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

var sessionColumns = strings.Join(schema.UserSession.Columns(), ", ")

// Create inserts a new session row.
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.UserSession.Table,
		sessionColumns,
	)

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.IPAddress,
		session.UserAgent,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	return dberr.Wrap(err, "create session")
}

// FindByID returns a session by id without filtering on expiry.
func (repository *PostgresSessionRepository) FindByID(context context.Context, id string) (*Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		sessionColumns,
		schema.UserSession.Table,
		schema.UserSession.ID,
	)

	session := &Session{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.IPAddress,
		&session.UserAgent,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find session")
	}
	return session, nil
}

// UpdateDigest rotates the digest and expiry in place. Concurrent rotations
// of one session are last-writer-wins.
func (repository *PostgresSessionRepository) UpdateDigest(context context.Context, id, tokenHash string, expiresAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = now() WHERE %s = $1`,
		schema.UserSession.Table,
		schema.UserSession.TokenHash,
		schema.UserSession.ExpiresAt,
		schema.UserSession.UpdatedAt,
		schema.UserSession.ID,
	)

	tag, err := repository.pool.Exec(context, query, id, tokenHash, expiresAt)
	if err != nil {
		return dberr.Wrap(err, "rotate session")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// Delete removes one session.
func (repository *PostgresSessionRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserSession.Table, schema.UserSession.ID)

	_, err := repository.pool.Exec(context, query, id)
	return dberr.Wrap(err, "delete session")
}

// DeleteOwned removes one session of userID.
func (repository *PostgresSessionRepository) DeleteOwned(context context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.UserSession.Table,
		schema.UserSession.ID,
		schema.UserSession.UserID,
	)

	_, err := repository.pool.Exec(context, query, id, userID)
	return dberr.Wrap(err, "revoke session")
}

// DeleteByUser removes every session of userID.
func (repository *PostgresSessionRepository) DeleteByUser(context context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserSession.Table, schema.UserSession.UserID)

	_, err := repository.pool.Exec(context, query, userID)
	return dberr.Wrap(err, "revoke user sessions")
}

// DeleteExpired purges sessions whose expiry is not after now.
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`, schema.UserSession.Table, schema.UserSession.ExpiresAt)

	tag, err := repository.pool.Exec(context, query, now)
	if err != nil {
		return 0, dberr.Wrap(err, "delete expired sessions")
	}
	return tag.RowsAffected(), nil
}
