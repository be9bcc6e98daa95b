// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package audit records administrative changes to roles, grants and users.
//
// Events are structured slog records under the "audit" group, written
// through the logger the service was built with.
package audit

import (
	"context"
	"log/slog"

	"github.com/taibuivan/cpos/internal/platform/ctxutil"
)

// Event names emitted by the RBAC and user administration services.
const (
	RoleCreated            = "role.created"
	RoleUpdated            = "role.updated"
	RoleDeleted            = "role.deleted"
	RolePermissionsUpdated = "role.permissions.updated"
	RoleWidgetsUpdated     = "role.widgets.updated"
	UserRoleAssigned       = "user.role.assigned"
	UserRoleRemoved        = "user.role.removed"
	UserRolesReplaced      = "user.roles.replaced"
	UserStatusChanged      = "user.status.changed"
	UserCreated            = "user.created"
)

// Logger writes audit events.
type Logger struct {
	logger *slog.Logger
}

// New creates an audit Logger on top of logger.
func New(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Record writes one audit event. The actor is the authenticated principal
// in ctx, or "system" when there is none.
func (auditor *Logger) Record(ctx context.Context, action string, details ...slog.Attr) {
	attrs := []any{
		slog.String("action", action),
		slog.String("actor", ctxutil.ActorID(ctx)),
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if len(details) > 0 {
		detailAttrs := make([]any, len(details))
		for i, detail := range details {
			detailAttrs[i] = detail
		}
		attrs = append(attrs, slog.Group("details", detailAttrs...))
	}

	auditor.logger.InfoContext(ctx, "audit_event", slog.Group("audit", attrs...))
}
