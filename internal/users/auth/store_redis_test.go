// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/platform/redis"
	"github.com/taibuivan/cpos/internal/users/auth"
)

func newRedisSessions(t *testing.T) (*auth.RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client, err := redis.NewClient(t.Context(), "redis://"+server.Addr(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return auth.NewRedisSessionRepository(client), server
}

func redisSession(id, userID string) *auth.Session {
	return &auth.Session{
		ID:        id,
		UserID:    userID,
		TokenHash: "digest-" + id,
		IPAddress: "10.0.0.7",
		UserAgent: "cpos-test",
		ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Millisecond),
	}
}

/*
TestRedisSessions_RoundTrip verifies a stored session reads back intact with a TTL.
*/
func TestRedisSessions_RoundTrip(t *testing.T) {
	sessions, server := newRedisSessions(t)
	session := redisSession(sessionID, ownerID)

	require.NoError(t, sessions.Create(t.Context(), session))

	stored, err := sessions.FindByID(t.Context(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, stored.UserID)
	assert.Equal(t, "digest-"+sessionID, stored.TokenHash)
	assert.Equal(t, "10.0.0.7", stored.IPAddress)
	assert.Equal(t, "cpos-test", stored.UserAgent)
	assert.True(t, session.ExpiresAt.Equal(stored.ExpiresAt))

	ttl := server.TTL("auth:session:" + sessionID)
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
	assert.True(t, server.Exists("auth:user_sessions:"+ownerID))
}

/*
TestRedisSessions_UpdateDigest verifies rotation and the missing-key case.
*/
func TestRedisSessions_UpdateDigest(t *testing.T) {
	sessions, server := newRedisSessions(t)
	require.NoError(t, sessions.Create(t.Context(), redisSession(sessionID, ownerID)))

	expiresAt := time.Now().Add(2 * time.Hour)
	require.NoError(t, sessions.UpdateDigest(t.Context(), sessionID, "rotated", expiresAt))

	stored, err := sessions.FindByID(t.Context(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "rotated", stored.TokenHash)
	assert.Greater(t, server.TTL("auth:session:"+sessionID), time.Hour)

	err = sessions.UpdateDigest(t.Context(), "missing", "rotated", expiresAt)
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}

// revokeAfterRead deletes key from a second connection right after the
// first HGET on it, modelling a logout racing a refresh.
type revokeAfterRead struct {
	key   string
	other *goredis.Client
	once  sync.Once
}

func (hook *revokeAfterRead) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (hook *revokeAfterRead) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func (hook *revokeAfterRead) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		err := next(ctx, cmd)
		args := cmd.Args()
		if cmd.Name() == "hget" && len(args) > 1 && args[1] == hook.key {
			hook.once.Do(func() { hook.other.Del(ctx, hook.key) })
		}
		return err
	}
}

/*
TestRedisSessions_UpdateDigestAfterRevoke verifies a rotation that loses the
race against a revocation reports the session as gone and leaves no key behind.
*/
func TestRedisSessions_UpdateDigestAfterRevoke(t *testing.T) {
	server := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := redis.NewClient(t.Context(), "redis://"+server.Addr(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	other := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = other.Close() })

	sessions := auth.NewRedisSessionRepository(client)
	require.NoError(t, sessions.Create(t.Context(), redisSession(sessionID, ownerID)))

	key := "auth:session:" + sessionID
	client.AddHook(&revokeAfterRead{key: key, other: other})

	err = sessions.UpdateDigest(t.Context(), sessionID, "rotated", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, dberr.ErrNotFound)
	assert.False(t, server.Exists(key))

	_, err = sessions.FindByID(t.Context(), sessionID)
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}

/*
TestRedisSessions_Delete covers owner-scoped and bulk removal.
*/
func TestRedisSessions_Delete(t *testing.T) {
	sessions, _ := newRedisSessions(t)
	ctx := t.Context()

	for _, session := range []*auth.Session{
		redisSession("s1", ownerID),
		redisSession("s2", ownerID),
		redisSession("s3", "other"),
	} {
		require.NoError(t, sessions.Create(ctx, session))
	}

	require.NoError(t, sessions.DeleteOwned(ctx, "s1", "other"))
	_, err := sessions.FindByID(ctx, "s1")
	require.NoError(t, err, "foreign owner cannot revoke")

	require.NoError(t, sessions.DeleteOwned(ctx, "s1", ownerID))
	_, err = sessions.FindByID(ctx, "s1")
	assert.ErrorIs(t, err, dberr.ErrNotFound)
	require.NoError(t, sessions.DeleteOwned(ctx, "s1", ownerID))

	require.NoError(t, sessions.DeleteByUser(ctx, ownerID))
	_, err = sessions.FindByID(ctx, "s2")
	assert.ErrorIs(t, err, dberr.ErrNotFound)

	_, err = sessions.FindByID(ctx, "s3")
	assert.NoError(t, err)

	require.NoError(t, sessions.Delete(ctx, "s3"))
	require.NoError(t, sessions.Delete(ctx, "s3"))
	_, err = sessions.FindByID(ctx, "s3")
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}

/*
TestRedisSessions_Expiry verifies Redis drops a session once its TTL elapses.
*/
func TestRedisSessions_Expiry(t *testing.T) {
	sessions, server := newRedisSessions(t)
	require.NoError(t, sessions.Create(t.Context(), redisSession(sessionID, ownerID)))

	server.FastForward(61 * time.Minute)

	_, err := sessions.FindByID(t.Context(), sessionID)
	assert.ErrorIs(t, err, dberr.ErrNotFound)

	removed, err := sessions.DeleteExpired(t.Context(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

/*
TestLedger_OverRedis runs the rotation flow against the Redis store.
*/
func TestLedger_OverRedis(t *testing.T) {
	sessions, _ := newRedisSessions(t)
	ledger := auth.NewLedger(sessions)
	ctx := t.Context()

	require.NoError(t, ledger.Create(ctx, sessionID, ownerID, tokenA, auth.ClientMeta{}, time.Hour))

	_, err := ledger.Validate(ctx, sessionID, ownerID, tokenA)
	require.NoError(t, err)

	require.NoError(t, ledger.Rotate(ctx, sessionID, tokenB, time.Hour))
	_, err = ledger.Validate(ctx, sessionID, ownerID, tokenA)
	assert.ErrorIs(t, err, auth.ErrSessionMismatch)

	require.NoError(t, ledger.Revoke(ctx, sessionID, ownerID))
	_, err = ledger.Validate(ctx, sessionID, ownerID, tokenB)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}
