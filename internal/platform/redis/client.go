// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for volatile data storage.

It backs the optional Redis session ledger (SESSION_BACKEND=redis), where
refresh-token sessions expire through key TTLs, and the readiness probe.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connection defaults. The session ledger issues short single-key commands.
const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	dialTimeout         = 3 * time.Second
	readTimeout         = 2 * time.Second
	writeTimeout        = 2 * time.Second
	pingTimeout         = 2 * time.Second
)

// Option adjusts the parsed client options before the client is built.
type Option func(*redis.Options)

// WithPoolSize overrides the connection pool size.
func WithPoolSize(size int) Option {
	return func(options *redis.Options) {
		options.PoolSize = size
	}
}

// WithClientName sets the CLIENT SETNAME value shown by CLIENT LIST.
func WithClientName(name string) Option {
	return func(options *redis.Options) {
		options.ClientName = name
	}
}

/*
NewClient parses a Redis URL, applies opts, and returns a client that has
already answered a PING.

Parameters:
  - context: Bounds the initial ping
  - redisURL: redis:// or rediss:// URL, database index in the path
  - logger: Structured logger for connection events
  - opts: Optional overrides

Returns:
  - *redis.Client: Connected client
  - error: Malformed URL or unreachable server
*/
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger, opts ...Option) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = defaultPoolSize
	options.MinIdleConns = defaultMinIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout
	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)
	return client, nil
}

// Ping verifies that the Redis client is healthy within pingTimeout.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
