// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// RBACUserRoleTable represents the 'rbac.userrole' table
type RBACUserRoleTable struct {
	Table      string
	UserID     string
	RoleID     string
	AssignedBy string
	CreatedAt  string
}

// RBACUserRole is the schema definition for rbac.userrole
var RBACUserRole = RBACUserRoleTable{
	Table:      "rbac.userrole",
	UserID:     "userid",
	RoleID:     "roleid",
	AssignedBy: "assignedby",
	CreatedAt:  "createdat",
}
