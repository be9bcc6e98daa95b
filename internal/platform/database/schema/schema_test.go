// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cpos/internal/platform/database/schema"
)

var createTable = regexp.MustCompile(`(?s)CREATE TABLE (\S+) \((.*?)\n\);`)

// migratedTables maps each table created by the up migrations to the
// column names it declares.
func migratedTables(t *testing.T) map[string][]string {
	t.Helper()

	files, err := filepath.Glob(filepath.Join("..", "..", "..", "..", "data", "migrations", "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	tables := map[string][]string{}
	for _, file := range files {
		body, err := os.ReadFile(file)
		require.NoError(t, err)

		for _, match := range createTable.FindAllStringSubmatch(string(body), -1) {
			var columns []string
			for _, line := range strings.Split(match[2], "\n") {
				fields := strings.Fields(line)
				if len(fields) == 0 || fields[0] == "CONSTRAINT" || fields[0] == "PRIMARY" {
					continue
				}
				columns = append(columns, fields[0])
			}
			tables[match[1]] = columns
		}
	}
	return tables
}

/*
TestSchema_MatchesMigrations verifies every table and column name the
repositories build queries from exists in the migrations.
*/
func TestSchema_MatchesMigrations(t *testing.T) {
	tables := migratedTables(t)

	tests := []struct {
		table   string
		columns []string
	}{
		{schema.UserAccount.Table, schema.UserAccount.Columns()},
		{schema.UserSession.Table, schema.UserSession.Columns()},
		{schema.RBACRole.Table, []string{
			schema.RBACRole.ID, schema.RBACRole.Name, schema.RBACRole.Description,
			schema.RBACRole.CreatedAt, schema.RBACRole.UpdatedAt,
		}},
		{schema.RBACPermission.Table, schema.RBACPermission.Columns()},
		{schema.RBACUserRole.Table, []string{
			schema.RBACUserRole.UserID, schema.RBACUserRole.RoleID,
			schema.RBACUserRole.AssignedBy, schema.RBACUserRole.CreatedAt,
		}},
		{schema.RBACRolePermission.Table, []string{
			schema.RBACRolePermission.RoleID, schema.RBACRolePermission.PermissionID,
		}},
		{schema.RBACWidget.Table, schema.RBACWidget.Columns()},
		{schema.RBACRoleWidget.Table, []string{
			schema.RBACRoleWidget.RoleID, schema.RBACRoleWidget.WidgetID, schema.RBACRoleWidget.Visible,
		}},
		{schema.CatalogCategory.Table, schema.CatalogCategory.Columns()},
		{schema.CatalogProduct.Table, schema.CatalogProduct.Columns()},
		{schema.CatalogCustomer.Table, schema.CatalogCustomer.Columns()},
		{schema.CatalogSale.Table, []string{
			schema.CatalogSale.ID, schema.CatalogSale.CustomerID, schema.CatalogSale.Total, schema.CatalogSale.CreatedAt,
		}},
		{schema.CatalogSaleItem.Table, []string{
			schema.CatalogSaleItem.ID, schema.CatalogSaleItem.SaleID, schema.CatalogSaleItem.ProductID,
			schema.CatalogSaleItem.Quantity, schema.CatalogSaleItem.UnitPrice,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			columns, ok := tables[tt.table]
			require.True(t, ok, "no migration creates %s", tt.table)
			for _, column := range tt.columns {
				assert.Contains(t, columns, column)
			}
		})
	}
}
