// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores and reads the per-request values shared by
// middleware and handlers: the request id, the request logger and the
// authenticated principal.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/cpos/internal/platform/sec"
)

// key is unexported so no other package can read or overwrite these values.
type key int

const (
	keyRequestID key = iota
	keyLogger
	keyPrincipal
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(keyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithAuthUser returns a new context carrying the authenticated principal.
func WithAuthUser(ctx context.Context, principal *sec.Principal) context.Context {
	return context.WithValue(ctx, keyPrincipal, principal)
}

// GetAuthUser retrieves the [*sec.Principal] from the [context.Context].
// Returns nil for unauthenticated requests.
func GetAuthUser(ctx context.Context) *sec.Principal {
	principal, ok := ctx.Value(keyPrincipal).(*sec.Principal)
	if !ok {
		return nil
	}
	return principal
}

// ActorID returns the authenticated principal's id, or "system" when the
// context carries none. Audit records use it as the acting user.
func ActorID(ctx context.Context) string {
	if principal := GetAuthUser(ctx); principal != nil {
		return principal.ID
	}
	return "system"
}
