// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/audit"
	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/platform/validate"
	"github.com/taibuivan/cpos/internal/users/auth"
	"github.com/taibuivan/cpos/pkg/pagination"
)

// # Service Layer

// Service orchestrates user administration.
type Service struct {
	directory Directory
	users     auth.UserRepository
	registrar Registrar
	resolver  ContextResolver
	roles     RoleReplacer
	sessions  SessionRevoker
	auditor   *audit.Logger
	logger    *slog.Logger
}

// NewService constructs a new [Service] with its collaborators.
func NewService(
	directory Directory,
	users auth.UserRepository,
	registrar Registrar,
	resolver ContextResolver,
	roles RoleReplacer,
	sessions SessionRevoker,
	auditor *audit.Logger,
	logger *slog.Logger,
) *Service {
	return &Service{
		directory: directory,
		users:     users,
		registrar: registrar,
		resolver:  resolver,
		roles:     roles,
		sessions:  sessions,
		auditor:   auditor,
		logger:    logger,
	}
}

// # Queries

// List returns one page of accounts with their role names.
func (service *Service) List(context context.Context, params pagination.Params) ([]Account, int, error) {
	accounts, total, err := service.directory.ListAccounts(context, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return accounts, total, nil
}

/*
Get retrieves an account and resolves its effective context.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Detail: Account, roles and permissions
  - error: Validation, NotFound or storage failures
*/
func (service *Service) Get(context context.Context, userID string) (*Detail, error) {
	user, err := service.find(context, userID)
	if err != nil {
		return nil, err
	}

	effective, err := service.resolver.ResolveContext(context, user.ID)
	if err != nil {
		return nil, fmt.Errorf("account_service_resolve_failed: %w", err)
	}

	return &Detail{User: user, Roles: effective.Roles, Permissions: effective.Permissions}, nil
}

// # Commands

/*
Create provisions an enabled account holding the named roles.

Parameters:
  - context: context.Context
  - input: auth.RegisterInput

Returns:
  - *Detail: Created account with its effective context
  - error: Validation, Conflict or storage failures
*/
func (service *Service) Create(context context.Context, input auth.RegisterInput) (*Detail, error) {
	result, err := service.registrar.Register(context, input)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRoles) {
			return nil, validate.RequiredError(auth.FieldRoles, "One or more roles are invalid")
		}
		return nil, err
	}

	service.auditor.Record(context, audit.UserCreated,
		slog.String("user_id", result.User.ID),
		slog.Any("roles", result.Context.RoleNames()),
	)

	return &Detail{User: result.User, Roles: result.Context.Roles, Permissions: result.Context.Permissions}, nil
}

/*
ReplaceRoles makes roleIDs the complete role set of an existing account.

Parameters:
  - context: context.Context
  - userID: string
  - roleIDs: []string

Returns:
  - *Detail: The account with its new effective context
  - error: NotFound when the account is missing, Validation on unknown roles
*/
func (service *Service) ReplaceRoles(context context.Context, userID string, roleIDs []string) (*Detail, error) {
	if _, err := service.find(context, userID); err != nil {
		return nil, err
	}

	if err := service.roles.ReplaceUserRoles(context, userID, roleIDs); err != nil {
		return nil, err
	}

	return service.Get(context, userID)
}

/*
SetStatus enables or disables an account.

Description: Disabling also revokes every session of the account, so its
outstanding refresh tokens stop working at once.

Parameters:
  - context: context.Context
  - userID: string
  - enabled: bool

Returns:
  - *auth.User: The updated account
  - error: NotFound or storage failures
*/
func (service *Service) SetStatus(context context.Context, userID string, enabled bool) (*auth.User, error) {
	user, err := service.find(context, userID)
	if err != nil {
		return nil, err
	}

	if err := service.users.SetEnabled(context, user.ID, enabled); err != nil {
		return nil, fmt.Errorf("account_service_set_status_failed: %w", err)
	}
	user.IsEnabled = enabled

	if !enabled {
		if err := service.sessions.RevokeAllForUser(context, user.ID); err != nil {
			return nil, fmt.Errorf("account_service_revoke_sessions_failed: %w", err)
		}
	}

	service.auditor.Record(context, audit.UserStatusChanged,
		slog.String("user_id", user.ID),
		slog.Bool("is_enabled", enabled),
	)

	return user, nil
}

// # Helpers

func (service *Service) find(context context.Context, userID string) (*auth.User, error) {
	if err := validate.New().UUID(FieldUserID, userID).Err(); err != nil {
		return nil, err
	}

	user, err := service.users.FindByID(context, userID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("account_service_find_failed: %w", err)
	}
	return user, nil
}
