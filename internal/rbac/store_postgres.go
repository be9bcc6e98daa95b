// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/cpos/internal/platform/database/schema"
	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/platform/postgres"
	"github.com/taibuivan/cpos/pkg/uuid"
)

// PostgresRepository implements [Repository] on the rbac schema.
//
// Grant replacements run inside a single transaction so readers never
// observe a role with a partially rewritten grant set.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Row Scanners

func scanRole(row pgx.CollectableRow) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Description)
	return role, err
}

func scanPermission(row pgx.CollectableRow) (Permission, error) {
	var permission Permission
	err := row.Scan(&permission.ID, &permission.Name, &permission.Module, &permission.Action, &permission.Description)
	return permission, err
}

func scanWidget(row pgx.CollectableRow) (Widget, error) {
	var widget Widget
	err := row.Scan(&widget.ID, &widget.Key, &widget.Title, &widget.Type, &widget.DataSource, &widget.DefaultVisible)
	return widget, err
}

// qualify prefixes each column with a table alias: "r", [id name] -> "r.id, r.name".
func qualify(alias string, columns []string) string {
	qualified := make([]string, len(columns))
	for i, column := range columns {
		qualified[i] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}

func collect[T any](rows pgx.Rows, queryErr error, action string, scan pgx.RowToFunc[T]) ([]T, error) {
	if queryErr != nil {
		return nil, dberr.Wrap(queryErr, action)
	}
	items, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return items, nil
}

// # Grant Reads

// ListUserRoles joins userrole → role for one user.
func (repository *PostgresRepository) ListUserRoles(context context.Context, userID string) ([]Role, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s ur
		JOIN %s r ON r.%s = ur.%s
		WHERE ur.%s = $1
		ORDER BY r.%s`,
		qualify("r", schema.RBACRole.Columns()),
		schema.RBACUserRole.Table,
		schema.RBACRole.Table, schema.RBACRole.ID, schema.RBACUserRole.RoleID,
		schema.RBACUserRole.UserID,
		schema.RBACRole.Name,
	)

	rows, err := repository.pool.Query(context, query, userID)
	return collect(rows, err, "list user roles", scanRole)
}

// ListUserRoleIDs returns the role ids held by one user.
func (repository *PostgresRepository) ListUserRoleIDs(context context.Context, userID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.RBACUserRole.RoleID, schema.RBACUserRole.Table, schema.RBACUserRole.UserID)

	rows, err := repository.pool.Query(context, query, userID)
	return collect(rows, err, "list user role ids", pgx.RowTo[string])
}

// ListPermissionNames joins rolepermission → permission for a set of roles.
func (repository *PostgresRepository) ListPermissionNames(context context.Context, roleIDs []string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT p.%s
		FROM %s rp
		JOIN %s p ON p.%s = rp.%s
		WHERE rp.%s = ANY($1::uuid[])
		ORDER BY p.%s`,
		schema.RBACPermission.Name,
		schema.RBACRolePermission.Table,
		schema.RBACPermission.Table, schema.RBACPermission.ID, schema.RBACRolePermission.PermissionID,
		schema.RBACRolePermission.RoleID,
		schema.RBACPermission.Name,
	)

	rows, err := repository.pool.Query(context, query, roleIDs)
	return collect(rows, err, "list permission names", pgx.RowTo[string])
}

// # Roles

// ListRoles returns every role with its permission names aggregated.
func (repository *PostgresRepository) ListRoles(context context.Context) ([]RoleDetail, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s,
		       COALESCE(array_agg(p.%[2]s ORDER BY p.%[2]s) FILTER (WHERE p.%[2]s IS NOT NULL), '{}') AS permissions
		FROM %[3]s r
		LEFT JOIN %[4]s rp ON rp.%[5]s = r.%[6]s
		LEFT JOIN %[7]s p ON p.%[8]s = rp.%[9]s
		GROUP BY r.%[6]s
		ORDER BY r.%[10]s`,
		qualify("r", schema.RBACRole.Columns()),
		schema.RBACPermission.Name,
		schema.RBACRole.Table,
		schema.RBACRolePermission.Table, schema.RBACRolePermission.RoleID, schema.RBACRole.ID,
		schema.RBACPermission.Table, schema.RBACPermission.ID, schema.RBACRolePermission.PermissionID,
		schema.RBACRole.Name,
	)

	rows, err := repository.pool.Query(context, query)
	return collect(rows, err, "list roles", func(row pgx.CollectableRow) (RoleDetail, error) {
		var detail RoleDetail
		err := row.Scan(&detail.ID, &detail.Name, &detail.Description, &detail.Permissions)
		return detail, err
	})
}

// FindRoleByID returns one role.
func (repository *PostgresRepository) FindRoleByID(context context.Context, id string) (*Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.RBACRole.Columns(), ", "), schema.RBACRole.Table, schema.RBACRole.ID)

	var role Role
	if err := repository.pool.QueryRow(context, query, id).Scan(&role.ID, &role.Name, &role.Description); err != nil {
		return nil, dberr.Wrap(err, "find role")
	}
	return &role, nil
}

// FindRolesByNames returns the roles matching names.
func (repository *PostgresRepository) FindRolesByNames(context context.Context, names []string) ([]Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1::text[]) ORDER BY %s`,
		strings.Join(schema.RBACRole.Columns(), ", "), schema.RBACRole.Table, schema.RBACRole.Name, schema.RBACRole.Name)

	rows, err := repository.pool.Query(context, query, names)
	return collect(rows, err, "find roles by names", scanRole)
}

// FindRolesByIDs returns the roles matching ids.
func (repository *PostgresRepository) FindRolesByIDs(context context.Context, ids []string) ([]Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1::uuid[]) ORDER BY %s`,
		strings.Join(schema.RBACRole.Columns(), ", "), schema.RBACRole.Table, schema.RBACRole.ID, schema.RBACRole.Name)

	rows, err := repository.pool.Query(context, query, ids)
	return collect(rows, err, "find roles by ids", scanRole)
}

// CreateRole inserts the role and its grants in one transaction.
func (repository *PostgresRepository) CreateRole(context context.Context, role *Role, permissionIDs []string) error {
	insertRole := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3)`,
		schema.RBACRole.Table, strings.Join(schema.RBACRole.Columns(), ", "))

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(context, insertRole, role.ID, role.Name, role.Description); err != nil {
			return dberr.Wrap(err, "create role")
		}
		return insertRolePermissions(context, tx, role.ID, permissionIDs)
	})
}

// UpdateRole updates the description and optionally replaces grants.
func (repository *PostgresRepository) UpdateRole(context context.Context, role *Role, permissionIDs []string) error {
	updateRole := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1`,
		schema.RBACRole.Table, schema.RBACRole.Description, schema.RBACRole.UpdatedAt, schema.RBACRole.ID)

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context, updateRole, role.ID, role.Description)
		if err != nil {
			return dberr.Wrap(err, "update role")
		}
		if tag.RowsAffected() == 0 {
			return dberr.ErrNotFound
		}
		if permissionIDs == nil {
			return nil
		}
		return replaceRolePermissions(context, tx, role.ID, permissionIDs)
	})
}

// DeleteRole removes a role. Grants cascade at the database level.
func (repository *PostgresRepository) DeleteRole(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.RBACRole.Table, schema.RBACRole.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete role")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Permissions

// ListPermissions returns the permission catalog.
func (repository *PostgresRepository) ListPermissions(context context.Context) ([]Permission, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`,
		strings.Join(schema.RBACPermission.Columns(), ", "), schema.RBACPermission.Table, schema.RBACPermission.Name)

	rows, err := repository.pool.Query(context, query)
	return collect(rows, err, "list permissions", scanPermission)
}

// FindPermissionsByNames returns the permissions matching names.
func (repository *PostgresRepository) FindPermissionsByNames(context context.Context, names []string) ([]Permission, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1::text[]) ORDER BY %s`,
		strings.Join(schema.RBACPermission.Columns(), ", "),
		schema.RBACPermission.Table,
		schema.RBACPermission.Name,
		schema.RBACPermission.Name,
	)

	rows, err := repository.pool.Query(context, query, names)
	return collect(rows, err, "find permissions by names", scanPermission)
}

// ReplaceRolePermissions deletes every grant of the role, then inserts the new set.
func (repository *PostgresRepository) ReplaceRolePermissions(context context.Context, roleID string, permissionIDs []string) error {
	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		return replaceRolePermissions(context, tx, roleID, permissionIDs)
	})
}

// GrantRolePermissions adds grants, keeping existing ones.
func (repository *PostgresRepository) GrantRolePermissions(context context.Context, roleID string, permissionIDs []string) error {
	return insertRolePermissions(context, repository.pool, roleID, permissionIDs)
}

func replaceRolePermissions(context context.Context, db postgres.DB, roleID string, permissionIDs []string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.RBACRolePermission.Table, schema.RBACRolePermission.RoleID)

	if _, err := db.Exec(context, query, roleID); err != nil {
		return dberr.Wrap(err, "clear role permissions")
	}
	return insertRolePermissions(context, db, roleID, permissionIDs)
}

func insertRolePermissions(context context.Context, db postgres.DB, roleID string, permissionIDs []string) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`,
		schema.RBACRolePermission.Table, schema.RBACRolePermission.RoleID, schema.RBACRolePermission.PermissionID)

	if _, err := db.Exec(context, query, roleID, permissionIDs); err != nil {
		return dberr.Wrap(err, "insert role permissions")
	}
	return nil
}

// # User Grants

// AssignRoles upserts user→role grants.
func (repository *PostgresRepository) AssignRoles(context context.Context, userID string, roleIDs []string, assignedBy string) error {
	return insertUserRoles(context, repository.pool, userID, roleIDs, assignedBy)
}

// RemoveUserRole deletes one grant if present.
func (repository *PostgresRepository) RemoveUserRole(context context.Context, userID, roleID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.RBACUserRole.Table, schema.RBACUserRole.UserID, schema.RBACUserRole.RoleID)

	if _, err := repository.pool.Exec(context, query, userID, roleID); err != nil {
		return dberr.Wrap(err, "remove user role")
	}
	return nil
}

// ReplaceUserRoles deletes every grant of the user, then inserts the new set.
func (repository *PostgresRepository) ReplaceUserRoles(context context.Context, userID string, roleIDs []string, assignedBy string) error {
	clearQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.RBACUserRole.Table, schema.RBACUserRole.UserID)

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(context, clearQuery, userID); err != nil {
			return dberr.Wrap(err, "clear user roles")
		}
		return insertUserRoles(context, tx, userID, roleIDs, assignedBy)
	})
}

func insertUserRoles(context context.Context, db postgres.DB, userID string, roleIDs []string, assignedBy string) error {
	if len(roleIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s)
		SELECT $1, unnest($2::uuid[]), NULLIF($3::text, '')::uuid
		ON CONFLICT (%[2]s, %[3]s) DO NOTHING`,
		schema.RBACUserRole.Table, schema.RBACUserRole.UserID, schema.RBACUserRole.RoleID, schema.RBACUserRole.AssignedBy)

	if _, err := db.Exec(context, query, userID, roleIDs, assignedBy); err != nil {
		return dberr.Wrap(err, "assign user roles")
	}
	return nil
}

// # Widgets

// ListWidgets returns the widget catalog.
func (repository *PostgresRepository) ListWidgets(context context.Context) ([]Widget, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`,
		strings.Join(schema.RBACWidget.Columns(), ", "), schema.RBACWidget.Table, schema.RBACWidget.Key)

	rows, err := repository.pool.Query(context, query)
	return collect(rows, err, "list widgets", scanWidget)
}

// FindWidgetsByKeys returns the widgets matching keys.
func (repository *PostgresRepository) FindWidgetsByKeys(context context.Context, keys []string) ([]Widget, error) {
	query := fmt.Sprintf(`SELECT %[1]s FROM %[2]s WHERE %[3]s = ANY($1::text[]) ORDER BY %[3]s`,
		strings.Join(schema.RBACWidget.Columns(), ", "), schema.RBACWidget.Table, schema.RBACWidget.Key)

	rows, err := repository.pool.Query(context, query, keys)
	return collect(rows, err, "find widgets by keys", scanWidget)
}

// ListVisibleWidgets returns default widgets plus those granted to roleIDs.
func (repository *PostgresRepository) ListVisibleWidgets(context context.Context, roleIDs []string) ([]Widget, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s w
		WHERE w.%s
		   OR EXISTS (
		        SELECT 1 FROM %s rw
		        WHERE rw.%s = w.%s AND rw.%s AND rw.%s = ANY($1::uuid[])
		   )
		ORDER BY w.%s`,
		qualify("w", schema.RBACWidget.Columns()),
		schema.RBACWidget.Table,
		schema.RBACWidget.DefaultVisible,
		schema.RBACRoleWidget.Table,
		schema.RBACRoleWidget.WidgetID, schema.RBACWidget.ID, schema.RBACRoleWidget.Visible, schema.RBACRoleWidget.RoleID,
		schema.RBACWidget.Key,
	)

	rows, err := repository.pool.Query(context, query, roleIDs)
	return collect(rows, err, "list visible widgets", scanWidget)
}

// ReplaceRoleWidgets deletes every widget grant of the role, then inserts the new set.
func (repository *PostgresRepository) ReplaceRoleWidgets(context context.Context, roleID string, widgetIDs []string) error {
	clearQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.RBACRoleWidget.Table, schema.RBACRoleWidget.RoleID)

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(context, clearQuery, roleID); err != nil {
			return dberr.Wrap(err, "clear role widgets")
		}
		return insertRoleWidgets(context, tx, roleID, widgetIDs)
	})
}

// GrantRoleWidgets adds visible widget grants, keeping existing ones.
func (repository *PostgresRepository) GrantRoleWidgets(context context.Context, roleID string, widgetIDs []string) error {
	return insertRoleWidgets(context, repository.pool, roleID, widgetIDs)
}

func insertRoleWidgets(context context.Context, db postgres.DB, roleID string, widgetIDs []string) error {
	if len(widgetIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s)
		SELECT $1, unnest($2::uuid[]), TRUE
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET %[4]s = TRUE`,
		schema.RBACRoleWidget.Table, schema.RBACRoleWidget.RoleID, schema.RBACRoleWidget.WidgetID, schema.RBACRoleWidget.Visible)

	if _, err := db.Exec(context, query, roleID, widgetIDs); err != nil {
		return dberr.Wrap(err, "insert role widgets")
	}
	return nil
}

// # Catalog Seeding

// UpsertRole inserts or updates a role by name.
func (repository *PostgresRepository) UpsertRole(context context.Context, role *Role) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%[3]s) DO UPDATE SET %[4]s = EXCLUDED.%[4]s, %[5]s = now()
		RETURNING %[6]s`,
		schema.RBACRole.Table,
		strings.Join(schema.RBACRole.Columns(), ", "),
		schema.RBACRole.Name,
		schema.RBACRole.Description,
		schema.RBACRole.UpdatedAt,
		schema.RBACRole.ID,
	)

	if err := repository.pool.QueryRow(context, query, uuid.New(), role.Name, role.Description).Scan(&role.ID); err != nil {
		return dberr.Wrap(err, "upsert role")
	}
	return nil
}

// UpsertPermission inserts or updates a permission by name.
func (repository *PostgresRepository) UpsertPermission(context context.Context, permission *Permission) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%[3]s) DO UPDATE
		SET %[4]s = EXCLUDED.%[4]s, %[5]s = EXCLUDED.%[5]s, %[6]s = EXCLUDED.%[6]s
		RETURNING %[7]s`,
		schema.RBACPermission.Table,
		strings.Join(schema.RBACPermission.Columns(), ", "),
		schema.RBACPermission.Name,
		schema.RBACPermission.Module,
		schema.RBACPermission.Action,
		schema.RBACPermission.Description,
		schema.RBACPermission.ID,
	)

	err := repository.pool.QueryRow(context, query,
		uuid.New(), permission.Name, permission.Module, permission.Action, permission.Description,
	).Scan(&permission.ID)
	if err != nil {
		return dberr.Wrap(err, "upsert permission")
	}
	return nil
}

// UpsertWidget inserts or updates a widget by key.
func (repository *PostgresRepository) UpsertWidget(context context.Context, widget *Widget) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (%[3]s) DO UPDATE
		SET %[4]s = EXCLUDED.%[4]s, %[5]s = EXCLUDED.%[5]s,
		    %[6]s = EXCLUDED.%[6]s, %[7]s = EXCLUDED.%[7]s
		RETURNING %[8]s`,
		schema.RBACWidget.Table,
		strings.Join(schema.RBACWidget.Columns(), ", "),
		schema.RBACWidget.Key,
		schema.RBACWidget.Title,
		schema.RBACWidget.Type,
		schema.RBACWidget.DataSource,
		schema.RBACWidget.DefaultVisible,
		schema.RBACWidget.ID,
	)

	err := repository.pool.QueryRow(context, query,
		uuid.New(), widget.Key, widget.Title, widget.Type, widget.DataSource, widget.DefaultVisible,
	).Scan(&widget.ID)
	if err != nil {
		return dberr.Wrap(err, "upsert widget")
	}
	return nil
}
