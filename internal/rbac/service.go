// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/audit"
	"github.com/taibuivan/cpos/internal/platform/ctxutil"
	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/platform/validate"
	"github.com/taibuivan/cpos/pkg/slice"
	"github.com/taibuivan/cpos/pkg/uuid"
)

// Field names reported in validation errors.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldPermissions = "permissions"
	FieldWidgets     = "widgets"
	FieldUserID      = "user_id"
	FieldRoleID      = "role_id"
	FieldRoleIDs     = "role_ids"
)

// Service administers the RBAC catalog and grants.
type Service struct {
	repo     Repository
	resolver *Resolver
	auditor  *audit.Logger
	logger   *slog.Logger
}

// NewService constructs the RBAC service.
func NewService(repo Repository, resolver *Resolver, auditor *audit.Logger, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		auditor:  auditor,
		logger:   logger,
	}
}

// # Catalog Reads

func (service *Service) ListRoles(context context.Context) ([]RoleDetail, error) {
	return service.repo.ListRoles(context)
}

func (service *Service) ListPermissions(context context.Context) ([]Permission, error) {
	return service.repo.ListPermissions(context)
}

func (service *Service) ListWidgets(context context.Context) ([]Widget, error) {
	return service.repo.ListWidgets(context)
}

// # Role Management

/*
CreateRole validates the input and creates a role with its initial grants.

Parameters:
  - context: context.Context
  - input: CreateRoleInput

Returns:
  - *RoleDetail: The created role
  - error: Validation, conflict on duplicate name, or unknown permission names
*/
func (service *Service) CreateRole(context context.Context, input CreateRoleInput) (*RoleDetail, error) {
	input.Name = strings.TrimSpace(input.Name)

	validator := validate.New()
	validator.Required(FieldName, input.Name).MinLen(FieldName, input.Name, 3).MaxLen(FieldName, input.Name, 100)
	validator.MaxLen(FieldDescription, input.Description, 255)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	existing, err := service.repo.FindRolesByNames(context, []string{input.Name})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperr.Conflict("Role already exists")
	}

	names := slice.Unique(input.Permissions)
	permissionIDs, err := service.permissionIDs(context, names)
	if err != nil {
		return nil, err
	}

	role := Role{ID: uuid.New(), Name: input.Name, Description: input.Description}
	if err := service.repo.CreateRole(context, &role, permissionIDs); err != nil {
		return nil, err
	}

	service.auditor.Record(context, audit.RoleCreated,
		slog.String("role_id", role.ID),
		slog.String("name", role.Name),
		slog.Any("permissions", names),
	)
	return &RoleDetail{Role: role, Permissions: names}, nil
}

// UpdateRole patches the description and, when given, replaces the permission set.
func (service *Service) UpdateRole(context context.Context, roleID string, input UpdateRoleInput) (*Role, error) {
	role, err := service.findRole(context, roleID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		if err := validate.New().MaxLen(FieldDescription, *input.Description, 255).Err(); err != nil {
			return nil, err
		}
		role.Description = *input.Description
	}

	var permissionIDs []string
	if input.Permissions != nil {
		ids, err := service.permissionIDs(context, slice.Unique(*input.Permissions))
		if err != nil {
			return nil, err
		}
		permissionIDs = ids
	}

	if err := service.repo.UpdateRole(context, role, permissionIDs); err != nil {
		return nil, notFoundAs(err, "Role")
	}

	service.auditor.Record(context, audit.RoleUpdated,
		slog.String("role_id", role.ID),
		slog.Bool("permissions_replaced", input.Permissions != nil),
	)
	return role, nil
}

// DeleteRole removes a role and, through cascading, every grant referencing it.
func (service *Service) DeleteRole(context context.Context, roleID string) error {
	if err := service.repo.DeleteRole(context, roleID); err != nil {
		return notFoundAs(err, "Role")
	}

	service.auditor.Record(context, audit.RoleDeleted, slog.String("role_id", roleID))
	return nil
}

// ReplaceRolePermissions makes names the complete permission set of a role.
func (service *Service) ReplaceRolePermissions(context context.Context, roleID string, names []string) error {
	if _, err := service.findRole(context, roleID); err != nil {
		return err
	}

	names = slice.Unique(names)
	permissionIDs, err := service.permissionIDs(context, names)
	if err != nil {
		return err
	}

	if err := service.repo.ReplaceRolePermissions(context, roleID, permissionIDs); err != nil {
		return err
	}

	service.auditor.Record(context, audit.RolePermissionsUpdated,
		slog.String("role_id", roleID),
		slog.Any("permissions", names),
	)
	return nil
}

// ReplaceRoleWidgets makes keys the complete visible widget set of a role.
func (service *Service) ReplaceRoleWidgets(context context.Context, roleID string, keys []string) error {
	if _, err := service.findRole(context, roleID); err != nil {
		return err
	}

	keys = slice.Unique(keys)
	widgetIDs := []string{}
	if len(keys) > 0 {
		widgets, err := service.repo.FindWidgetsByKeys(context, keys)
		if err != nil {
			return err
		}
		if len(widgets) != len(keys) {
			return validate.RequiredError(FieldWidgets, "Unknown widget key")
		}
		widgetIDs = slice.Map(widgets, func(widget Widget) string { return widget.ID })
	}

	if err := service.repo.ReplaceRoleWidgets(context, roleID, widgetIDs); err != nil {
		return err
	}

	service.auditor.Record(context, audit.RoleWidgetsUpdated,
		slog.String("role_id", roleID),
		slog.Any("widgets", keys),
	)
	return nil
}

// # User Grants

// AssignRole grants one role to a user. Assigning a role already held is a no-op.
func (service *Service) AssignRole(context context.Context, input UserRoleInput) error {
	if err := validateUserRole(input); err != nil {
		return err
	}
	if _, err := service.findRole(context, input.RoleID); err != nil {
		return err
	}

	if err := service.repo.AssignRoles(context, input.UserID, []string{input.RoleID}, assignedBy(context)); err != nil {
		return err
	}

	service.auditor.Record(context, audit.UserRoleAssigned,
		slog.String("user_id", input.UserID),
		slog.String("role_id", input.RoleID),
	)
	return nil
}

// RemoveRole revokes one role from a user. Revoking a role not held is a no-op.
func (service *Service) RemoveRole(context context.Context, input UserRoleInput) error {
	if err := validateUserRole(input); err != nil {
		return err
	}

	if err := service.repo.RemoveUserRole(context, input.UserID, input.RoleID); err != nil {
		return err
	}

	service.auditor.Record(context, audit.UserRoleRemoved,
		slog.String("user_id", input.UserID),
		slog.String("role_id", input.RoleID),
	)
	return nil
}

/*
ReplaceUserRoles makes roleIDs the complete role set of a user.

Parameters:
  - context: context.Context
  - userID: string
  - roleIDs: []string (may be empty to strip every role)

Returns:
  - error: Validation error when any role id is malformed or unknown
*/
func (service *Service) ReplaceUserRoles(context context.Context, userID string, roleIDs []string) error {
	roleIDs = slice.Unique(roleIDs)
	if err := validate.New().EachUUID(FieldRoleIDs, roleIDs).Err(); err != nil {
		return err
	}

	if len(roleIDs) > 0 {
		roles, err := service.repo.FindRolesByIDs(context, roleIDs)
		if err != nil {
			return err
		}
		if len(roles) != len(roleIDs) {
			return apperr.ValidationError("One or more roles are invalid")
		}
	}

	if err := service.repo.ReplaceUserRoles(context, userID, roleIDs, assignedBy(context)); err != nil {
		return err
	}

	service.auditor.Record(context, audit.UserRolesReplaced,
		slog.String("user_id", userID),
		slog.Any("role_ids", roleIDs),
	)
	return nil
}

// # Dashboard

// WidgetsForUser returns the default-visible widgets plus those granted to
// any role of userID, one entry per widget key.
func (service *Service) WidgetsForUser(context context.Context, userID string) ([]Widget, error) {
	roleIDs, err := service.repo.ListUserRoleIDs(context, userID)
	if err != nil {
		return nil, err
	}

	widgets, err := service.repo.ListVisibleWidgets(context, roleIDs)
	if err != nil {
		return nil, err
	}
	return slice.UniqueBy(widgets, func(widget Widget) string { return widget.Key }), nil
}

// # Seeding

/*
SeedCatalog loads a catalog idempotently: permissions, widgets and roles are
upserted by name or key, and grants are added without removing existing ones.

Parameters:
  - context: context.Context
  - catalog: Catalog

Returns:
  - error: A role seed referencing an unknown permission or widget, or storage failures
*/
func (service *Service) SeedCatalog(context context.Context, catalog Catalog) error {
	permissionIDs := make(map[string]string, len(catalog.Permissions))
	allPermissionIDs := make([]string, 0, len(catalog.Permissions))
	for _, permission := range catalog.Permissions {
		if err := service.repo.UpsertPermission(context, &permission); err != nil {
			return err
		}
		permissionIDs[permission.Name] = permission.ID
		allPermissionIDs = append(allPermissionIDs, permission.ID)
	}

	widgetIDs := make(map[string]string, len(catalog.Widgets))
	for _, widget := range catalog.Widgets {
		if err := service.repo.UpsertWidget(context, &widget); err != nil {
			return err
		}
		widgetIDs[widget.Key] = widget.ID
	}

	for _, seed := range catalog.Roles {
		role := Role{Name: seed.Name, Description: seed.Description}
		if err := service.repo.UpsertRole(context, &role); err != nil {
			return err
		}

		grants := allPermissionIDs
		if !seed.AllPermissions {
			ids, err := lookup(permissionIDs, seed.Permissions, "permission", seed.Name)
			if err != nil {
				return err
			}
			grants = ids
		}
		if err := service.repo.GrantRolePermissions(context, role.ID, grants); err != nil {
			return err
		}

		widgets, err := lookup(widgetIDs, seed.Widgets, "widget", seed.Name)
		if err != nil {
			return err
		}
		if err := service.repo.GrantRoleWidgets(context, role.ID, widgets); err != nil {
			return err
		}

		service.logger.Info("role_seeded",
			slog.String("role", role.Name),
			slog.Int("permissions", len(grants)),
			slog.Int("widgets", len(widgets)),
		)
	}
	return nil
}

// # Helpers

func (service *Service) findRole(context context.Context, roleID string) (*Role, error) {
	if err := validate.New().UUID(FieldRoleID, roleID).Err(); err != nil {
		return nil, err
	}
	role, err := service.repo.FindRoleByID(context, roleID)
	if err != nil {
		return nil, notFoundAs(err, "Role")
	}
	return role, nil
}

// permissionIDs maps permission names to ids. Any unknown name fails the
// whole lookup.
func (service *Service) permissionIDs(context context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return []string{}, nil
	}

	permissions, err := service.repo.FindPermissionsByNames(context, names)
	if err != nil {
		return nil, err
	}
	if len(permissions) != len(names) {
		return nil, validate.RequiredError(FieldPermissions, "Unknown permission name")
	}
	return slice.Map(permissions, func(permission Permission) string { return permission.ID }), nil
}

func validateUserRole(input UserRoleInput) error {
	return validate.New().
		UUID(FieldUserID, input.UserID).
		UUID(FieldRoleID, input.RoleID).
		Err()
}

func assignedBy(ctx context.Context) string {
	if principal := ctxutil.GetAuthUser(ctx); principal != nil {
		return principal.ID
	}
	return ""
}

func notFoundAs(err error, resource string) error {
	if dberr.IsNotFound(err) {
		return apperr.NotFound(resource)
	}
	return err
}

func lookup(ids map[string]string, names []string, kind, role string) ([]string, error) {
	result := make([]string, 0, len(names))
	for _, name := range names {
		id, ok := ids[name]
		if !ok {
			return nil, fmt.Errorf("rbac: role %q references unknown %s %q", role, kind, name)
		}
		result = append(result, id)
	}
	return result, nil
}
