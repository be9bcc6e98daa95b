// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// RBACPermissionTable represents the 'rbac.permission' table
type RBACPermissionTable struct {
	Table       string
	ID          string
	Name        string
	Module      string
	Action      string
	Description string
}

// RBACPermission is the schema definition for rbac.permission
var RBACPermission = RBACPermissionTable{
	Table:       "rbac.permission",
	ID:          "id",
	Name:        "name",
	Module:      "module",
	Action:      "action",
	Description: "description",
}

func (t RBACPermissionTable) Columns() []string {
	return []string{t.ID, t.Name, t.Module, t.Action, t.Description}
}

// RBACRolePermissionTable represents the 'rbac.rolepermission' join table
type RBACRolePermissionTable struct {
	Table        string
	RoleID       string
	PermissionID string
}

// RBACRolePermission is the schema definition for rbac.rolepermission
var RBACRolePermission = RBACRolePermissionTable{
	Table:        "rbac.rolepermission",
	RoleID:       "roleid",
	PermissionID: "permissionid",
}
