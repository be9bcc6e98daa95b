// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// RBACWidgetTable represents the 'rbac.widget' table
type RBACWidgetTable struct {
	Table          string
	ID             string
	Key            string
	Title          string
	Type           string
	DataSource     string
	DefaultVisible string
}

// RBACWidget is the schema definition for rbac.widget
var RBACWidget = RBACWidgetTable{
	Table:          "rbac.widget",
	ID:             "id",
	Key:            "widgetkey",
	Title:          "title",
	Type:           "widgettype",
	DataSource:     "datasource",
	DefaultVisible: "defaultvisible",
}

func (t RBACWidgetTable) Columns() []string {
	return []string{t.ID, t.Key, t.Title, t.Type, t.DataSource, t.DefaultVisible}
}

// RBACRoleWidgetTable represents the 'rbac.rolewidget' join table
type RBACRoleWidgetTable struct {
	Table    string
	RoleID   string
	WidgetID string
	Visible  string
}

// RBACRoleWidget is the schema definition for rbac.rolewidget
var RBACRoleWidget = RBACRoleWidgetTable{
	Table:    "rbac.rolewidget",
	RoleID:   "roleid",
	WidgetID: "widgetid",
	Visible:  "visible",
}
