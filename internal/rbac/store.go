// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac

import "context"

// # Grant Reads

// GrantReader is the read side used by the [Resolver].
type GrantReader interface {

	/*
		ListUserRoles returns the roles granted to a user, ordered by name.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []Role: Empty (not nil) when the user holds no roles
		  - error: Database retrieval failures
	*/
	ListUserRoles(context context.Context, userID string) ([]Role, error)

	/*
		ListUserRoleIDs returns only the ids of the roles granted to a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []string: Role ids
		  - error: Database retrieval failures
	*/
	ListUserRoleIDs(context context.Context, userID string) ([]string, error)

	/*
		ListPermissionNames returns the permission names granted by any of the
		given roles. The result may contain duplicates.

		Parameters:
		  - context: context.Context
		  - roleIDs: []string (non-empty)

		Returns:
		  - []string: Permission names
		  - error: Database retrieval failures
	*/
	ListPermissionNames(context context.Context, roleIDs []string) ([]string, error)
}

// # Full Repository

// Repository is the storage contract for the RBAC catalog and its grants.
type Repository interface {
	GrantReader

	// ListRoles returns every role with its permission names.
	ListRoles(context context.Context) ([]RoleDetail, error)

	// FindRoleByID returns a single role or a not-found error.
	FindRoleByID(context context.Context, id string) (*Role, error)

	// FindRolesByNames returns the roles whose names are in names. Unknown
	// names are silently absent from the result.
	FindRolesByNames(context context.Context, names []string) ([]Role, error)

	// FindRolesByIDs returns the roles whose ids are in ids.
	FindRolesByIDs(context context.Context, ids []string) ([]Role, error)

	/*
		CreateRole inserts a role and its initial permission grants atomically.

		Parameters:
		  - context: context.Context
		  - role: *Role (ID must be set)
		  - permissionIDs: []string

		Returns:
		  - error: Conflict on duplicate name, persistence failures
	*/
	CreateRole(context context.Context, role *Role, permissionIDs []string) error

	/*
		UpdateRole updates a role's description and, when permissionIDs is
		non-nil, replaces its permission grants in the same transaction.

		Parameters:
		  - context: context.Context
		  - role: *Role
		  - permissionIDs: []string (nil keeps grants)

		Returns:
		  - error: Not found, persistence failures
	*/
	UpdateRole(context context.Context, role *Role, permissionIDs []string) error

	// DeleteRole removes a role; grants cascade.
	DeleteRole(context context.Context, id string) error

	// ListPermissions returns the permission catalog ordered by name.
	ListPermissions(context context.Context) ([]Permission, error)

	// FindPermissionsByNames returns the permissions whose names are in names.
	FindPermissionsByNames(context context.Context, names []string) ([]Permission, error)

	/*
		ReplaceRolePermissions makes permissionIDs the complete grant set of a
		role: all previous grants are removed, then the new ones inserted.

		Parameters:
		  - context: context.Context
		  - roleID: string
		  - permissionIDs: []string

		Returns:
		  - error: Persistence failures
	*/
	ReplaceRolePermissions(context context.Context, roleID string, permissionIDs []string) error

	// AssignRoles grants roles to a user. Existing grants are left untouched.
	// assignedBy may be empty.
	AssignRoles(context context.Context, userID string, roleIDs []string, assignedBy string) error

	// RemoveUserRole revokes one grant. Removing an absent grant is not an error.
	RemoveUserRole(context context.Context, userID, roleID string) error

	// ReplaceUserRoles makes roleIDs the complete role set of a user.
	ReplaceUserRoles(context context.Context, userID string, roleIDs []string, assignedBy string) error

	// ListWidgets returns the widget catalog.
	ListWidgets(context context.Context) ([]Widget, error)

	// FindWidgetsByKeys returns the widgets whose keys are in keys.
	FindWidgetsByKeys(context context.Context, keys []string) ([]Widget, error)

	// ListVisibleWidgets returns default-visible widgets plus the widgets
	// granted visible to any of roleIDs. The result may contain duplicates.
	ListVisibleWidgets(context context.Context, roleIDs []string) ([]Widget, error)

	// ReplaceRoleWidgets makes widgetIDs the complete visible widget set of a role.
	ReplaceRoleWidgets(context context.Context, roleID string, widgetIDs []string) error

	// # Catalog seeding

	// UpsertRole inserts or updates a role by name and sets role.ID.
	UpsertRole(context context.Context, role *Role) error

	// UpsertPermission inserts or updates a permission by name and sets permission.ID.
	UpsertPermission(context context.Context, permission *Permission) error

	// UpsertWidget inserts or updates a widget by key and sets widget.ID.
	UpsertWidget(context context.Context, widget *Widget) error

	// GrantRolePermissions adds grants without removing existing ones.
	GrantRolePermissions(context context.Context, roleID string, permissionIDs []string) error

	// GrantRoleWidgets adds visible widget grants without removing existing ones.
	GrantRoleWidgets(context context.Context, roleID string, widgetIDs []string) error
}
