// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// RBACRoleTable represents the 'rbac.role' table
type RBACRoleTable struct {
	Table       string
	ID          string
	Name        string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

// RBACRole is the schema definition for rbac.role
var RBACRole = RBACRoleTable{
	Table:       "rbac.role",
	ID:          "id",
	Name:        "name",
	Description: "description",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t RBACRoleTable) Columns() []string { return []string{t.ID, t.Name, t.Description} }
