// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/cpos/internal/platform/constants"
	"github.com/taibuivan/cpos/internal/platform/dberr"
)

// Hash fields of a session key.
const (
	redisFieldUserID    = "user_id"
	redisFieldTokenHash = "token_hash"
	redisFieldIPAddress = "ip_address"
	redisFieldUserAgent = "user_agent"
	redisFieldExpiresAt = "expires_at"
	redisFieldCreatedAt = "created_at"
	redisFieldUpdatedAt = "updated_at"
)

// RedisSessionRepository implements [SessionRepository] with one hash per
// session and one set of session ids per user. Keys expire with the session,
// so Redis purges expired sessions on its own.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a Redis-backed [SessionRepository].
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(id string) string {
	return constants.RedisPrefixSession + id
}

func userSessionsKey(userID string) string {
	return constants.RedisPrefixUserSession + userID
}

/*
Create stores the session hash and indexes it under its owner.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Execution errors
*/
func (repository *RedisSessionRepository) Create(context context.Context, session *Session) error {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	key := sessionKey(session.ID)
	ownerKey := userSessionsKey(session.UserID)

	_, err := repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, key,
			redisFieldUserID, session.UserID,
			redisFieldTokenHash, session.TokenHash,
			redisFieldIPAddress, session.IPAddress,
			redisFieldUserAgent, session.UserAgent,
			redisFieldExpiresAt, session.ExpiresAt.UTC().Format(time.RFC3339Nano),
			redisFieldCreatedAt, session.CreatedAt.UTC().Format(time.RFC3339Nano),
			redisFieldUpdatedAt, session.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		pipe.ExpireAt(context, key, session.ExpiresAt)
		pipe.SAdd(context, ownerKey, session.ID)
		pipe.ExpireAt(context, ownerKey, session.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_session_create_failed: %w", err)
	}
	return nil
}

/*
FindByID loads a session hash.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Session: Hydrated entity
  - error: dberr.ErrNotFound when the key is absent or expired
*/
func (repository *RedisSessionRepository) FindByID(context context.Context, id string) (*Session, error) {
	fields, err := repository.client.HGetAll(context, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, dberr.ErrNotFound
	}

	session := &Session{
		ID:        id,
		UserID:    fields[redisFieldUserID],
		TokenHash: fields[redisFieldTokenHash],
		IPAddress: fields[redisFieldIPAddress],
		UserAgent: fields[redisFieldUserAgent],
	}

	timestamps := []struct {
		field  string
		target *time.Time
	}{
		{redisFieldExpiresAt, &session.ExpiresAt},
		{redisFieldCreatedAt, &session.CreatedAt},
		{redisFieldUpdatedAt, &session.UpdatedAt},
	}
	for _, timestamp := range timestamps {
		parsed, err := time.Parse(time.RFC3339Nano, fields[timestamp.field])
		if err != nil {
			return nil, fmt.Errorf("redis_session_corrupt_%s: %w", timestamp.field, err)
		}
		*timestamp.target = parsed
	}

	return session, nil
}

// rotateAttempts bounds retries when a concurrent write touches a session
// between WATCH and EXEC.
const rotateAttempts = 3

/*
UpdateDigest overwrites digest and expiry of an existing session.

The key is WATCHed, so a revocation that lands between the ownership read and
the write aborts the transaction instead of recreating a partial hash. A
retry then observes the missing key.

Returns:
  - error: dberr.ErrNotFound when the session is gone
*/
func (repository *RedisSessionRepository) UpdateDigest(context context.Context, id, tokenHash string, expiresAt time.Time) error {
	key := sessionKey(id)

	rotate := func(tx *redis.Tx) error {
		userID, err := tx.HGet(context, key, redisFieldUserID).Result()
		if errors.Is(err, redis.Nil) {
			return dberr.ErrNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(context, func(pipe redis.Pipeliner) error {
			pipe.HSet(context, key,
				redisFieldTokenHash, tokenHash,
				redisFieldExpiresAt, expiresAt.UTC().Format(time.RFC3339Nano),
				redisFieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano),
			)
			pipe.ExpireAt(context, key, expiresAt)
			pipe.ExpireAt(context, userSessionsKey(userID), expiresAt)
			return nil
		})
		return err
	}

	for range rotateAttempts {
		err := repository.client.Watch(context, rotate, key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case dberr.IsNotFound(err):
			return err
		default:
			return fmt.Errorf("redis_session_rotate_failed: %w", err)
		}
	}
	return fmt.Errorf("redis_session_rotate_failed: %w", redis.TxFailedErr)
}

// Delete removes the session hash and its index entry.
func (repository *RedisSessionRepository) Delete(context context.Context, id string) error {
	key := sessionKey(id)

	userID, err := repository.client.HGet(context, key, redisFieldUserID).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	return repository.remove(context, id, userID)
}

// DeleteOwned removes the session only when userID owns it.
func (repository *RedisSessionRepository) DeleteOwned(context context.Context, id, userID string) error {
	owner, err := repository.client.HGet(context, sessionKey(id), redisFieldUserID).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis_session_revoke_failed: %w", err)
	}
	if owner != userID {
		return nil
	}

	return repository.remove(context, id, userID)
}

// DeleteByUser removes every session indexed under userID.
func (repository *RedisSessionRepository) DeleteByUser(context context.Context, userID string) error {
	ownerKey := userSessionsKey(userID)

	ids, err := repository.client.SMembers(context, ownerKey).Result()
	if err != nil {
		return fmt.Errorf("redis_session_revoke_all_failed: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, ownerKey)

	if err := repository.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis_session_revoke_all_failed: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: session keys carry their own expiry.
func (repository *RedisSessionRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (repository *RedisSessionRepository) remove(context context.Context, id, userID string) error {
	_, err := repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Del(context, sessionKey(id))
		pipe.SRem(context, userSessionsKey(userID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
