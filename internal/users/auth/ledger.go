// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/platform/sec"
)

// Ledger enforces the lifecycle of refresh-token sessions.
//
// A session's digest always corresponds to exactly one live refresh token:
// rotating or revoking it makes every earlier token string unusable, even
// when the token's own expiry has not elapsed.
type Ledger struct {
	sessions SessionRepository
	now      func() time.Time
}

// LedgerOption customizes a [Ledger].
type LedgerOption func(*Ledger)

// WithLedgerClock overrides the time source used for expiry decisions.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(ledger *Ledger) {
		ledger.now = now
	}
}

// NewLedger creates a Ledger over the given session storage.
func NewLedger(sessions SessionRepository, opts ...LedgerOption) *Ledger {
	ledger := &Ledger{sessions: sessions, now: time.Now}
	for _, opt := range opts {
		opt(ledger)
	}
	return ledger
}

/*
Create records a new session holding only the digest of refreshToken.

Parameters:
  - context: context.Context
  - sessionID: string (the sessionId claim of refreshToken)
  - userID: string
  - refreshToken: string
  - client: ClientMeta
  - ttl: time.Duration

Returns:
  - error: Persistence failures
*/
func (ledger *Ledger) Create(context context.Context, sessionID, userID, refreshToken string, client ClientMeta, ttl time.Duration) error {
	return ledger.sessions.Create(context, &Session{
		ID:        sessionID,
		UserID:    userID,
		TokenHash: sec.HashToken(refreshToken),
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		ExpiresAt: ledger.now().Add(ttl),
	})
}

/*
Validate checks a presented refresh token against its session, in order:
existence, ownership, expiry, digest. An expired session is deleted.

Parameters:
  - context: context.Context
  - sessionID: string
  - userID: string (the token subject)
  - refreshToken: string

Returns:
  - *Session: The live session
  - error: ErrSessionNotFound, ErrSessionMismatch, ErrSessionExpired or storage failures
*/
func (ledger *Ledger) Validate(context context.Context, sessionID, userID, refreshToken string) (*Session, error) {
	session, err := ledger.sessions.FindByID(context, sessionID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if session.UserID != userID {
		return nil, ErrSessionMismatch
	}

	if !ledger.now().Before(session.ExpiresAt) {
		if err := ledger.sessions.Delete(context, sessionID); err != nil {
			return nil, fmt.Errorf("%w: cleanup failed: %w", ErrSessionExpired, err)
		}
		return nil, ErrSessionExpired
	}

	if !sec.CompareTokenHash(refreshToken, session.TokenHash) {
		return nil, ErrSessionMismatch
	}

	return session, nil
}

// Rotate replaces the digest and expiry of a session in place.
func (ledger *Ledger) Rotate(context context.Context, sessionID, newRefreshToken string, ttl time.Duration) error {
	err := ledger.sessions.UpdateDigest(context, sessionID, sec.HashToken(newRefreshToken), ledger.now().Add(ttl))
	if dberr.IsNotFound(err) {
		return ErrSessionNotFound
	}
	return err
}

// Revoke deletes the session of userID. Revoking an absent session succeeds.
func (ledger *Ledger) Revoke(context context.Context, sessionID, userID string) error {
	return ledger.sessions.DeleteOwned(context, sessionID, userID)
}

// RevokeAllForUser deletes every session of userID.
func (ledger *Ledger) RevokeAllForUser(context context.Context, userID string) error {
	return ledger.sessions.DeleteByUser(context, userID)
}

// Sweep purges expired sessions and reports how many were removed.
func (ledger *Ledger) Sweep(context context.Context) (int64, error) {
	return ledger.sessions.DeleteExpired(context, ledger.now())
}

// RunSweeper calls Sweep every interval until ctx is cancelled. Each pass is
// bounded by timeout. Failures are logged and retried on the next tick.
func (ledger *Ledger) RunSweeper(ctx context.Context, interval, timeout time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			passCtx, cancel := context.WithTimeout(ctx, timeout)
			removed, err := ledger.Sweep(passCtx)
			cancel()

			if err != nil {
				logger.Error("session_sweep_failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				logger.Info("session_sweep_completed", slog.Int64("removed", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}
