// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for operator accounts.
type UserRepository interface {

	/*
		FindByLogin returns the account whose username equals identifier or
		whose email equals the case-folded identifier.

		Parameters:
		  - context: context.Context
		  - identifier: string (username or email)

		Returns:
		  - *User: Hydrated entity, disabled accounts included
		  - error: dberr.ErrNotFound or database failures
	*/
	FindByLogin(context context.Context, identifier string) (*User, error)

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	// ExistsByUsernameOrEmail reports whether either identity is taken.
	// email must already be normalized.
	ExistsByUsernameOrEmail(context context.Context, username, email string) (bool, error)

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - user: *User (ID and PasswordHash set)

		Returns:
		  - error: Conflict on duplicate identity, persistence failures
	*/
	Create(context context.Context, user *User) error

	// SetEnabled toggles the account flag.
	SetEnabled(context context.Context, id string, enabled bool) error
}

// # Session Data Access

// SessionRepository stores refresh-token sessions. Implementations never see
// a plaintext refresh token, only its digest.
type SessionRepository interface {

	/*
		Create persists a new session.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByID returns the session with the given ID, expired or not.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Session: Hydrated entity
		  - error: dberr.ErrNotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Session, error)

	/*
		UpdateDigest overwrites the digest and expiry of a session in place.

		Parameters:
		  - context: context.Context
		  - id: string
		  - tokenHash: string
		  - expiresAt: time.Time

		Returns:
		  - error: dberr.ErrNotFound when the session is gone
	*/
	UpdateDigest(context context.Context, id, tokenHash string, expiresAt time.Time) error

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(context context.Context, id string) error

	// DeleteOwned removes a session only when it belongs to userID.
	DeleteOwned(context context.Context, id, userID string) error

	// DeleteByUser removes every session of a user.
	DeleteByUser(context context.Context, userID string) error

	// DeleteExpired purges sessions whose expiry is at or before now and
	// returns how many were removed.
	DeleteExpired(context context.Context, now time.Time) (int64, error)
}
