// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cpos/internal/platform/redis"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

/*
TestNewClient covers a reachable server, options, and the failure modes.
*/
func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()

	client, err := redis.NewClient(t.Context(), "redis://"+addr+"/2", discard, redis.WithPoolSize(3))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, 3, client.Options().PoolSize)
	assert.Equal(t, 2, client.Options().DB)
	assert.NoError(t, redis.Ping(t.Context(), client))

	server.Close()
	assert.Error(t, redis.Ping(t.Context(), client))

	_, err = redis.NewClient(t.Context(), "http://not-redis", discard)
	assert.ErrorContains(t, err, "invalid URL")

	_, err = redis.NewClient(t.Context(), "redis://"+addr, discard)
	assert.ErrorContains(t, err, "ping failed")
}
