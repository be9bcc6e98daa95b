// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/cpos/pkg/slice"
)

// Resolver flattens user→role→permission grants into an [EffectiveContext].
//
// It is read-only and holds no state between calls, so a context resolved
// right after a grant change already reflects it.
type Resolver struct {
	grants GrantReader
}

// NewResolver creates a resolver over the given grant storage.
func NewResolver(grants GrantReader) *Resolver {
	return &Resolver{grants: grants}
}

// ResolveRoles returns the roles granted to userID. A user without grants
// yields an empty slice.
func (resolver *Resolver) ResolveRoles(context context.Context, userID string) ([]Role, error) {
	roles, err := resolver.grants.ListUserRoles(context, userID)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		return []Role{}, nil
	}
	return roles, nil
}

/*
ResolvePermissions returns the union of permission names granted through the
roles of userID, without duplicates and in first-seen order.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []string: Permission names, empty when the user holds no roles
  - error: Storage failures, unchanged
*/
func (resolver *Resolver) ResolvePermissions(context context.Context, userID string) ([]string, error) {
	roleIDs, err := resolver.grants.ListUserRoleIDs(context, userID)
	if err != nil {
		return nil, err
	}

	// No roles, no permission query.
	if len(roleIDs) == 0 {
		return []string{}, nil
	}

	names, err := resolver.grants.ListPermissionNames(context, roleIDs)
	if err != nil {
		return nil, err
	}
	return slice.Unique(names), nil
}

// ResolveContext resolves roles and permissions concurrently. The first
// storage error cancels the other lookup and is returned as is.
func (resolver *Resolver) ResolveContext(ctx context.Context, userID string) (EffectiveContext, error) {
	var effective EffectiveContext

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		roles, err := resolver.ResolveRoles(groupCtx, userID)
		effective.Roles = roles
		return err
	})

	group.Go(func() error {
		permissions, err := resolver.ResolvePermissions(groupCtx, userID)
		effective.Permissions = permissions
		return err
	})

	if err := group.Wait(); err != nil {
		return EffectiveContext{}, err
	}
	return effective, nil
}
