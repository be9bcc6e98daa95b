// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac

// # Permission Names

const (
	PermProductCreate = "product.create"
	PermProductRead   = "product.read"
	PermProductUpdate = "product.update"
	PermProductDelete = "product.delete"

	PermCategoryCreate = "category.create"
	PermCategoryRead   = "category.read"
	PermCategoryUpdate = "category.update"
	PermCategoryDelete = "category.delete"

	PermCustomerCreate = "customer.create"
	PermCustomerRead   = "customer.read"
	PermCustomerUpdate = "customer.update"
	PermCustomerDelete = "customer.delete"

	PermManageRoles = "rbac.manage.roles"
	PermManageUsers = "rbac.manage.users"

	PermDashboardProducts   = "dashboard.view.products"
	PermDashboardCategories = "dashboard.view.categories"
)

// # Role Names

const (
	RoleSuperAdmin    = "Super Admin"
	RoleProductAdmin  = "Product Admin"
	RoleCategoryAdmin = "Category Admin"
)

// RoleSeed describes a role of the default catalog and what it grants.
type RoleSeed struct {
	Name        string
	Description string
	// AllPermissions grants every permission of the catalog.
	AllPermissions bool
	Permissions    []string
	Widgets        []string
}

// Catalog is a closed set of roles, permissions and widgets loaded by the
// seed tool.
type Catalog struct {
	Permissions []Permission
	Widgets     []Widget
	Roles       []RoleSeed
}

// DefaultCatalog returns the back-office catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Permissions: []Permission{
			{Name: PermProductCreate, Module: "product", Action: "create", Description: "Create products"},
			{Name: PermProductRead, Module: "product", Action: "read", Description: "View products"},
			{Name: PermProductUpdate, Module: "product", Action: "update", Description: "Update products"},
			{Name: PermProductDelete, Module: "product", Action: "delete", Description: "Delete products"},
			{Name: PermCategoryCreate, Module: "category", Action: "create", Description: "Create categories"},
			{Name: PermCategoryRead, Module: "category", Action: "read", Description: "View categories"},
			{Name: PermCategoryUpdate, Module: "category", Action: "update", Description: "Update categories"},
			{Name: PermCategoryDelete, Module: "category", Action: "delete", Description: "Delete categories"},
			{Name: PermCustomerCreate, Module: "customer", Action: "create", Description: "Create customer records"},
			{Name: PermCustomerRead, Module: "customer", Action: "read", Description: "View customers and their purchase history"},
			{Name: PermCustomerUpdate, Module: "customer", Action: "update", Description: "Update customer records"},
			{Name: PermCustomerDelete, Module: "customer", Action: "delete", Description: "Delete customer records"},
			{Name: PermManageRoles, Module: "rbac", Action: "manage.roles", Description: "Manage roles and permissions"},
			{Name: PermManageUsers, Module: "rbac", Action: "manage.users", Description: "Manage users and their roles"},
			{Name: PermDashboardProducts, Module: "dashboard", Action: "view.products", Description: "View product dashboard widgets"},
			{Name: PermDashboardCategories, Module: "dashboard", Action: "view.categories", Description: "View category dashboard widgets"},
		},
		Widgets: []Widget{
			{Key: "widget_products_top", Title: "Top Selling Products", Type: "chart", DataSource: "/api/v1/products/top"},
			{Key: "widget_products_low_stock", Title: "Low Stock Alerts", Type: "table", DataSource: "/api/v1/products/low-stock"},
			{Key: "widget_categories_summary", Title: "Category Summary", Type: "chart", DataSource: "/api/v1/categories/summary"},
		},
		Roles: []RoleSeed{
			{
				Name:           RoleSuperAdmin,
				Description:    "Full access to all modules",
				AllPermissions: true,
				Widgets:        []string{"widget_products_top", "widget_products_low_stock", "widget_categories_summary"},
			},
			{
				Name:        RoleProductAdmin,
				Description: "Manage products and related widgets",
				Permissions: []string{PermProductCreate, PermProductRead, PermProductUpdate, PermProductDelete, PermDashboardProducts},
				Widgets:     []string{"widget_products_top", "widget_products_low_stock"},
			},
			{
				Name:        RoleCategoryAdmin,
				Description: "Manage categories and related widgets",
				Permissions: []string{PermCategoryCreate, PermCategoryRead, PermCategoryUpdate, PermCategoryDelete, PermDashboardCategories},
				Widgets:     []string{"widget_categories_summary"},
			},
		},
	}
}
