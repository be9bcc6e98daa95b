// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rbac implements role-based access control for the back office.

It owns the role, permission and widget catalogs, the user→role and
role→permission grants, and the [Resolver] that flattens them into the
effective context embedded in access tokens.

Architecture:

  - Resolver: Read-only grant flattening used by authentication.
  - Service: Catalog and grant administration with audit events.
  - Repository: Storage contract, backed by PostgreSQL in production.
*/
package rbac

import "github.com/taibuivan/cpos/pkg/slice"

// # Domain Entities

// Role is a named bundle of permissions.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoleDetail is a role together with the names of the permissions it grants.
type RoleDetail struct {
	Role
	Permissions []string `json:"permissions"`
}

// Permission is an atomic capability named "<module>.<action>"
// (e.g. "product.delete").
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Module      string `json:"module"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Widget is a dashboard tile whose visibility depends on roles.
type Widget struct {
	ID             string `json:"id"`
	Key            string `json:"widget_key"`
	Title          string `json:"title"`
	Type           string `json:"type"`
	DataSource     string `json:"data_source"`
	DefaultVisible bool   `json:"default_visible"`
}

// EffectiveContext is the flattened authorization view of a user at one
// instant: the roles held and the union of their permission names.
type EffectiveContext struct {
	Roles       []Role   `json:"roles"`
	Permissions []string `json:"permissions"`
}

// RoleNames returns the names of the context's roles in order.
func (effective EffectiveContext) RoleNames() []string {
	names := slice.Map(effective.Roles, func(role Role) string { return role.Name })
	if names == nil {
		return []string{}
	}
	return names
}

// # Inputs

// CreateRoleInput is the payload for creating a role.
type CreateRoleInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleInput patches a role. A nil Permissions leaves grants untouched;
// a non-nil slice replaces them entirely.
type UpdateRoleInput struct {
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
}

// UserRoleInput identifies a single user→role grant.
type UserRoleInput struct {
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
}
