// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles back-office user administration.

Operators holding rbac.manage.users list and provision accounts, replace the
role set of an account and enable or disable it.

# Architecture

  - Entities: Account (listing row), Detail (account with effective context).
  - Domain: This package depends on the auth package for the User entity and
    session revocation, and on the rbac package for role grants.
  - Security: Disabling an account revokes every session it holds.
*/
package account

import (
	"context"

	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/internal/users/auth"
)

// # Domain Entities

// Account is one row of the user listing: the account and its role names.
type Account struct {
	*auth.User
	Roles []string `json:"roles"`
}

// Detail is an account with its resolved roles and permissions.
type Detail struct {
	User        *auth.User  `json:"user"`
	Roles       []rbac.Role `json:"roles"`
	Permissions []string    `json:"permissions"`
}

// Field names used in validation errors.
const (
	FieldUserID  = "userID"
	FieldRoleIDs = "role_ids"
	FieldEnabled = "is_enabled"
)

// # Contracts

// Directory lists accounts together with the names of their roles.
type Directory interface {

	/*
		ListAccounts returns one page of accounts, newest first.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []Account: Page of accounts (never nil)
		  - int: Total number of accounts
		  - error: Database failures
	*/
	ListAccounts(context context.Context, limit, offset int) ([]Account, int, error)
}

// Registrar provisions an account with roles.
type Registrar interface {
	Register(ctx context.Context, input auth.RegisterInput) (*auth.RegisterResult, error)
}

// ContextResolver computes the effective roles and permissions of a user.
type ContextResolver interface {
	ResolveContext(ctx context.Context, userID string) (rbac.EffectiveContext, error)
}

// RoleReplacer swaps the complete role set of a user.
type RoleReplacer interface {
	ReplaceUserRoles(ctx context.Context, userID string, roleIDs []string) error
}

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string) error
}
