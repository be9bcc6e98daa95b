// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cpos/internal/platform/sec"
	"github.com/taibuivan/cpos/internal/users/auth"
	"github.com/taibuivan/cpos/internal/users/auth/authtest"
)

// clock is a settable time source shared by ledger and issuer.
type clock struct{ now time.Time }

func newClock() *clock { return &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

const (
	sessionID = "0190a6f0-0000-7000-8000-000000000001"
	ownerID   = "0190a6f0-0000-7000-8000-0000000000aa"
	tokenA    = "refresh-token-a-0123456789"
	tokenB    = "refresh-token-b-0123456789"
)

func newLedger(t *testing.T) (*auth.Ledger, *authtest.Sessions, *clock) {
	t.Helper()

	sessions := authtest.NewSessions()
	c := newClock()
	ledger := auth.NewLedger(sessions, auth.WithLedgerClock(c.Now))
	require.NoError(t, ledger.Create(context.Background(), sessionID, ownerID, tokenA, auth.ClientMeta{IPAddress: "10.0.0.1"}, time.Hour))
	return ledger, sessions, c
}

/*
TestLedger_StoresDigestOnly verifies the plaintext token never reaches storage.
*/
func TestLedger_StoresDigestOnly(t *testing.T) {
	_, sessions, c := newLedger(t)

	stored, err := sessions.FindByID(context.Background(), sessionID)
	require.NoError(t, err)

	assert.NotEqual(t, tokenA, stored.TokenHash)
	assert.Equal(t, sec.HashToken(tokenA), stored.TokenHash)
	assert.Equal(t, c.Now().Add(time.Hour), stored.ExpiresAt)
	assert.Equal(t, "10.0.0.1", stored.IPAddress)
}

/*
TestLedger_Validate covers the ordered validation outcomes.
*/
func TestLedger_Validate(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		userID    string
		token     string
		advance   time.Duration
		want      error
	}{
		{"valid", sessionID, ownerID, tokenA, 0, nil},
		{"unknown session", "0190a6f0-0000-7000-8000-000000000002", ownerID, tokenA, 0, auth.ErrSessionNotFound},
		{"foreign owner", sessionID, "someone-else", tokenA, 0, auth.ErrSessionMismatch},
		{"foreign owner wins over expiry", sessionID, "someone-else", tokenA, 2 * time.Hour, auth.ErrSessionMismatch},
		{"expired", sessionID, ownerID, tokenA, time.Hour, auth.ErrSessionExpired},
		{"wrong token", sessionID, ownerID, tokenB, 0, auth.ErrSessionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, _, c := newLedger(t)
			c.Advance(tt.advance)

			session, err := ledger.Validate(context.Background(), tt.sessionID, tt.userID, tt.token)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, ownerID, session.UserID)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, session)
		})
	}
}

/*
TestLedger_ExpiredSessionIsDeleted verifies expiry detection removes the row.
*/
func TestLedger_ExpiredSessionIsDeleted(t *testing.T) {
	ledger, sessions, c := newLedger(t)
	c.Advance(time.Hour + time.Second)

	_, err := ledger.Validate(context.Background(), sessionID, ownerID, tokenA)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)
	assert.Equal(t, 0, sessions.Count())

	_, err = ledger.Validate(context.Background(), sessionID, ownerID, tokenA)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

/*
TestLedger_Rotate verifies the previous token stops validating at once.
*/
func TestLedger_Rotate(t *testing.T) {
	ctx := context.Background()
	ledger, sessions, c := newLedger(t)

	c.Advance(30 * time.Minute)
	require.NoError(t, ledger.Rotate(ctx, sessionID, tokenB, time.Hour))

	_, err := ledger.Validate(ctx, sessionID, ownerID, tokenA)
	assert.ErrorIs(t, err, auth.ErrSessionMismatch)

	_, err = ledger.Validate(ctx, sessionID, ownerID, tokenB)
	assert.NoError(t, err)

	stored, err := sessions.FindByID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(time.Hour), stored.ExpiresAt, "expiry moves with rotation")

	err = ledger.Rotate(ctx, "0190a6f0-0000-7000-8000-000000000009", tokenB, time.Hour)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

/*
TestLedger_Revoke verifies revocation is owner-scoped and idempotent.
*/
func TestLedger_Revoke(t *testing.T) {
	ctx := context.Background()
	ledger, sessions, _ := newLedger(t)

	require.NoError(t, ledger.Revoke(ctx, sessionID, "someone-else"))
	assert.Equal(t, 1, sessions.Count())

	require.NoError(t, ledger.Revoke(ctx, sessionID, ownerID))
	require.NoError(t, ledger.Revoke(ctx, sessionID, ownerID))

	_, err := ledger.Validate(ctx, sessionID, ownerID, tokenA)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

/*
TestLedger_SweepAndRevokeAll verifies bulk removal helpers.
*/
func TestLedger_SweepAndRevokeAll(t *testing.T) {
	ctx := context.Background()
	ledger, sessions, c := newLedger(t)

	require.NoError(t, ledger.Create(ctx, "0190a6f0-0000-7000-8000-000000000003", ownerID, tokenB, auth.ClientMeta{}, 3*time.Hour))
	require.NoError(t, ledger.Create(ctx, "0190a6f0-0000-7000-8000-000000000004", "other", tokenB, auth.ClientMeta{}, 3*time.Hour))

	c.Advance(2 * time.Hour)
	removed, err := ledger.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, 2, sessions.Count())

	require.NoError(t, ledger.RevokeAllForUser(ctx, ownerID))
	assert.Equal(t, []string{"0190a6f0-0000-7000-8000-000000000004"}, sessions.IDs())
}

/*
TestLedger_RunSweeper verifies the background loop purges expired sessions
and stops when its context is cancelled.
*/
func TestLedger_RunSweeper(t *testing.T) {
	ledger, sessions, c := newLedger(t)
	c.Advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ledger.RunSweeper(ctx, 5*time.Millisecond, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	assert.Eventually(t, func() bool { return sessions.Count() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
