// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package rbactest provides an in-memory [rbac.Repository] for tests.
package rbactest

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/pkg/uuid"
)

// Memory is a mutex-guarded [rbac.Repository].
type Memory struct {
	mu sync.Mutex

	roles       map[string]rbac.Role
	permissions map[string]rbac.Permission
	widgets     map[string]rbac.Widget

	rolePermissions map[string][]string
	roleWidgets     map[string][]string
	userRoles       map[string][]string

	permissionQueries int
	failure           error
}

var _ rbac.Repository = (*Memory)(nil)

// NewMemory returns an empty repository.
func NewMemory() *Memory {
	return &Memory{
		roles:           make(map[string]rbac.Role),
		permissions:     make(map[string]rbac.Permission),
		widgets:         make(map[string]rbac.Widget),
		rolePermissions: make(map[string][]string),
		roleWidgets:     make(map[string][]string),
		userRoles:       make(map[string][]string),
	}
}

// # Test Controls

// FailWith makes every subsequent call return err. Pass nil to recover.
func (memory *Memory) FailWith(err error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	memory.failure = err
}

// PermissionQueries counts calls to ListPermissionNames.
func (memory *Memory) PermissionQueries() int {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	return memory.permissionQueries
}

// RoleByName returns a stored role, or the zero Role.
func (memory *Memory) RoleByName(name string) rbac.Role {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	return memory.roleByNameLocked(name)
}

func (memory *Memory) roleByNameLocked(name string) rbac.Role {
	for _, role := range memory.roles {
		if role.Name == name {
			return role
		}
	}
	return rbac.Role{}
}

// # Grant Reads

func (memory *Memory) ListUserRoles(_ context.Context, userID string) ([]rbac.Role, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}

	roles := []rbac.Role{}
	for _, roleID := range memory.userRoles[userID] {
		roles = append(roles, memory.roles[roleID])
	}
	sortRoles(roles)
	return roles, nil
}

func (memory *Memory) ListUserRoleIDs(_ context.Context, userID string) ([]string, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}
	return slices.Clone(memory.userRoles[userID]), nil
}

func (memory *Memory) ListPermissionNames(_ context.Context, roleIDs []string) ([]string, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	memory.permissionQueries++
	if memory.failure != nil {
		return nil, memory.failure
	}

	names := []string{}
	for _, roleID := range roleIDs {
		granted := []string{}
		for _, permissionID := range memory.rolePermissions[roleID] {
			granted = append(granted, memory.permissions[permissionID].Name)
		}
		sort.Strings(granted)
		names = append(names, granted...)
	}
	return names, nil
}

// # Roles

func (memory *Memory) ListRoles(_ context.Context) ([]rbac.RoleDetail, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}

	details := []rbac.RoleDetail{}
	for _, role := range memory.roles {
		names := []string{}
		for _, permissionID := range memory.rolePermissions[role.ID] {
			names = append(names, memory.permissions[permissionID].Name)
		}
		sort.Strings(names)
		details = append(details, rbac.RoleDetail{Role: role, Permissions: names})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Name < details[j].Name })
	return details, nil
}

func (memory *Memory) FindRoleByID(_ context.Context, id string) (*rbac.Role, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}

	role, ok := memory.roles[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return &role, nil
}

func (memory *Memory) FindRolesByNames(_ context.Context, names []string) ([]rbac.Role, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}

	roles := []rbac.Role{}
	for _, role := range memory.roles {
		if slices.Contains(names, role.Name) {
			roles = append(roles, role)
		}
	}
	sortRoles(roles)
	return roles, nil
}

func (memory *Memory) FindRolesByIDs(_ context.Context, ids []string) ([]rbac.Role, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}

	roles := []rbac.Role{}
	for _, id := range ids {
		if role, ok := memory.roles[id]; ok {
			roles = append(roles, role)
		}
	}
	sortRoles(roles)
	return roles, nil
}

func (memory *Memory) CreateRole(_ context.Context, role *rbac.Role, permissionIDs []string) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}

	if memory.roleByNameLocked(role.Name).ID != "" {
		return apperr.Conflict("Resource already exists")
	}
	memory.roles[role.ID] = *role
	memory.rolePermissions[role.ID] = slices.Clone(permissionIDs)
	return nil
}

func (memory *Memory) UpdateRole(_ context.Context, role *rbac.Role, permissionIDs []string) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}

	if _, ok := memory.roles[role.ID]; !ok {
		return dberr.ErrNotFound
	}
	memory.roles[role.ID] = *role
	if permissionIDs != nil {
		memory.rolePermissions[role.ID] = slices.Clone(permissionIDs)
	}
	return nil
}

func (memory *Memory) DeleteRole(_ context.Context, id string) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}

	if _, ok := memory.roles[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(memory.roles, id)
	delete(memory.rolePermissions, id)
	delete(memory.roleWidgets, id)
	for userID, roleIDs := range memory.userRoles {
		memory.userRoles[userID] = slices.DeleteFunc(roleIDs, func(roleID string) bool { return roleID == id })
	}
	return nil
}

// # Permissions

func (memory *Memory) ListPermissions(_ context.Context) ([]rbac.Permission, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}

	permissions := []rbac.Permission{}
	for _, permission := range memory.permissions {
		permissions = append(permissions, permission)
	}
	sort.Slice(permissions, func(i, j int) bool { return permissions[i].Name < permissions[j].Name })
	return permissions, nil
}

func (memory *Memory) FindPermissionsByNames(_ context.Context, names []string) ([]rbac.Permission, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}

	permissions := []rbac.Permission{}
	for _, permission := range memory.permissions {
		if slices.Contains(names, permission.Name) {
			permissions = append(permissions, permission)
		}
	}
	sort.Slice(permissions, func(i, j int) bool { return permissions[i].Name < permissions[j].Name })
	return permissions, nil
}

func (memory *Memory) ReplaceRolePermissions(_ context.Context, roleID string, permissionIDs []string) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}
	memory.rolePermissions[roleID] = slices.Clone(permissionIDs)
	return nil
}

func (memory *Memory) GrantRolePermissions(_ context.Context, roleID string, permissionIDs []string) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}
	memory.rolePermissions[roleID] = union(memory.rolePermissions[roleID], permissionIDs)
	return nil
}

// # User Grants

func (memory *Memory) AssignRoles(_ context.Context, userID string, roleIDs []string, _ string) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}
	memory.userRoles[userID] = union(memory.userRoles[userID], roleIDs)
	return nil
}

func (memory *Memory) RemoveUserRole(_ context.Context, userID, roleID string) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}
	memory.userRoles[userID] = slices.DeleteFunc(memory.userRoles[userID], func(id string) bool { return id == roleID })
	return nil
}

func (memory *Memory) ReplaceUserRoles(_ context.Context, userID string, roleIDs []string, _ string) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}
	memory.userRoles[userID] = union(nil, roleIDs)
	return nil
}

// # Widgets

func (memory *Memory) ListWidgets(_ context.Context) ([]rbac.Widget, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}

	widgets := []rbac.Widget{}
	for _, widget := range memory.widgets {
		widgets = append(widgets, widget)
	}
	sortWidgets(widgets)
	return widgets, nil
}

func (memory *Memory) FindWidgetsByKeys(_ context.Context, keys []string) ([]rbac.Widget, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}

	widgets := []rbac.Widget{}
	for _, widget := range memory.widgets {
		if slices.Contains(keys, widget.Key) {
			widgets = append(widgets, widget)
		}
	}
	sortWidgets(widgets)
	return widgets, nil
}

// ListVisibleWidgets keeps duplicates, one per granting role, as a join would.
func (memory *Memory) ListVisibleWidgets(_ context.Context, roleIDs []string) ([]rbac.Widget, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return nil, memory.failure
	}

	widgets := []rbac.Widget{}
	for _, widget := range memory.widgets {
		if widget.DefaultVisible {
			widgets = append(widgets, widget)
		}
	}
	for _, roleID := range roleIDs {
		for _, widgetID := range memory.roleWidgets[roleID] {
			widgets = append(widgets, memory.widgets[widgetID])
		}
	}
	sortWidgets(widgets)
	return widgets, nil
}

func (memory *Memory) ReplaceRoleWidgets(_ context.Context, roleID string, widgetIDs []string) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}
	memory.roleWidgets[roleID] = slices.Clone(widgetIDs)
	return nil
}

func (memory *Memory) GrantRoleWidgets(_ context.Context, roleID string, widgetIDs []string) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}
	memory.roleWidgets[roleID] = union(memory.roleWidgets[roleID], widgetIDs)
	return nil
}

// # Seeding

func (memory *Memory) UpsertRole(_ context.Context, role *rbac.Role) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}

	if existing := memory.roleByNameLocked(role.Name); existing.ID != "" {
		role.ID = existing.ID
	} else {
		role.ID = uuid.New()
	}
	memory.roles[role.ID] = *role
	return nil
}

func (memory *Memory) UpsertPermission(_ context.Context, permission *rbac.Permission) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}

	permission.ID = uuid.New()
	for id, existing := range memory.permissions {
		if existing.Name == permission.Name {
			permission.ID = id
		}
	}
	memory.permissions[permission.ID] = *permission
	return nil
}

func (memory *Memory) UpsertWidget(_ context.Context, widget *rbac.Widget) error {
	memory.mu.Lock()
	defer memory.mu.Unlock()
	if memory.failure != nil {
		return memory.failure
	}

	widget.ID = uuid.New()
	for id, existing := range memory.widgets {
		if existing.Key == widget.Key {
			widget.ID = id
		}
	}
	memory.widgets[widget.ID] = *widget
	return nil
}

// # Helpers

func union(existing, added []string) []string {
	result := slices.Clone(existing)
	for _, id := range added {
		if !slices.Contains(result, id) {
			result = append(result, id)
		}
	}
	if result == nil {
		return []string{}
	}
	return result
}

func sortRoles(roles []rbac.Role) {
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
}

func sortWidgets(widgets []rbac.Widget) {
	sort.SliceStable(widgets, func(i, j int) bool { return widgets[i].Key < widgets[j].Key })
}
