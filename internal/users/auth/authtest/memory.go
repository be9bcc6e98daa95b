// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package authtest provides in-memory account and session repositories for tests.
package authtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/users/auth"
)

// # Accounts

// Users is a mutex-guarded [auth.UserRepository].
type Users struct {
	mu    sync.Mutex
	byID  map[string]auth.User
	order []string
}

var _ auth.UserRepository = (*Users)(nil)

func NewUsers() *Users {
	return &Users{byID: make(map[string]auth.User)}
}

func (users *Users) FindByLogin(_ context.Context, identifier string) (*auth.User, error) {
	users.mu.Lock()
	defer users.mu.Unlock()

	email := auth.NormalizeEmail(identifier)
	for _, user := range users.byID {
		if user.Username == identifier || user.Email == email {
			return &user, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (users *Users) FindByID(_ context.Context, id string) (*auth.User, error) {
	users.mu.Lock()
	defer users.mu.Unlock()

	user, ok := users.byID[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return &user, nil
}

func (users *Users) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	users.mu.Lock()
	defer users.mu.Unlock()
	return users.existsLocked(username, email), nil
}

func (users *Users) existsLocked(username, email string) bool {
	for _, user := range users.byID {
		if user.Username == username || user.Email == email {
			return true
		}
	}
	return false
}

func (users *Users) Create(_ context.Context, user *auth.User) error {
	users.mu.Lock()
	defer users.mu.Unlock()

	if users.existsLocked(user.Username, user.Email) {
		return apperr.Conflict("Resource already exists")
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	users.byID[user.ID] = *user
	users.order = append(users.order, user.ID)
	return nil
}

// List returns accounts newest first.
func (users *Users) List(_ context.Context, limit, offset int) ([]*auth.User, int, error) {
	users.mu.Lock()
	defer users.mu.Unlock()

	page := []*auth.User{}
	for i := len(users.order) - 1 - offset; i >= 0 && len(page) < limit; i-- {
		user := users.byID[users.order[i]]
		page = append(page, &user)
	}
	return page, len(users.order), nil
}

func (users *Users) SetEnabled(_ context.Context, id string, enabled bool) error {
	users.mu.Lock()
	defer users.mu.Unlock()

	user, ok := users.byID[id]
	if !ok {
		return dberr.ErrNotFound
	}
	user.IsEnabled = enabled
	user.UpdatedAt = time.Now()
	users.byID[id] = user
	return nil
}

// # Sessions

// Sessions is a mutex-guarded [auth.SessionRepository].
type Sessions struct {
	mu   sync.Mutex
	byID map[string]auth.Session
}

var _ auth.SessionRepository = (*Sessions)(nil)

func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]auth.Session)}
}

// Count returns the number of stored sessions.
func (sessions *Sessions) Count() int {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	return len(sessions.byID)
}

// IDs returns the stored session ids in sorted order.
func (sessions *Sessions) IDs() []string {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	ids := make([]string, 0, len(sessions.byID))
	for id := range sessions.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (sessions *Sessions) Create(_ context.Context, session *auth.Session) error {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	sessions.byID[session.ID] = *session
	return nil
}

func (sessions *Sessions) FindByID(_ context.Context, id string) (*auth.Session, error) {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	session, ok := sessions.byID[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return &session, nil
}

func (sessions *Sessions) UpdateDigest(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	session, ok := sessions.byID[id]
	if !ok {
		return dberr.ErrNotFound
	}
	session.TokenHash = tokenHash
	session.ExpiresAt = expiresAt
	session.UpdatedAt = time.Now()
	sessions.byID[id] = session
	return nil
}

func (sessions *Sessions) Delete(_ context.Context, id string) error {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	delete(sessions.byID, id)
	return nil
}

func (sessions *Sessions) DeleteOwned(_ context.Context, id, userID string) error {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	if session, ok := sessions.byID[id]; ok && session.UserID == userID {
		delete(sessions.byID, id)
	}
	return nil
}

func (sessions *Sessions) DeleteByUser(_ context.Context, userID string) error {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	for id, session := range sessions.byID {
		if session.UserID == userID {
			delete(sessions.byID, id)
		}
	}
	return nil
}

func (sessions *Sessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	var removed int64
	for id, session := range sessions.byID {
		if !session.ExpiresAt.After(now) {
			delete(sessions.byID, id)
			removed++
		}
	}
	return removed, nil
}
