// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the account listing.

# Schema Table Mapping
  - users.account: Identity rows.
  - rbac.userrole: Role grants per account.
  - rbac.role: Role names.
*/
package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/cpos/internal/platform/database/schema"
	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/users/auth"
	"github.com/taibuivan/cpos/pkg/slice"
)

// PostgresDirectory implements [Directory] using pgx.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewDirectory creates a new Postgres implementation of [Directory].
func NewDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

/*
ListAccounts returns one page of accounts with their role names aggregated in
a single query.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []Account: Page of accounts, newest first
  - int: Total number of accounts
  - error: Database failures
*/
func (repository *PostgresDirectory) ListAccounts(context context.Context, limit, offset int) ([]Account, int, error) {
	accountColumns := strings.Join(slice.Map(schema.UserAccount.Columns(), func(column string) string {
		return "u." + column
	}), ", ")

	query := fmt.Sprintf(`
		SELECT %s,
		       COALESCE(array_agg(r.%s ORDER BY r.%s) FILTER (WHERE r.%s IS NOT NULL), '{}') AS roles,
		       COUNT(*) OVER() AS total
		FROM %s u
		LEFT JOIN %s ur ON ur.%s = u.%s
		LEFT JOIN %s r ON r.%s = ur.%s
		GROUP BY u.%s
		ORDER BY u.%s DESC
		LIMIT $1 OFFSET $2`,
		accountColumns,
		schema.RBACRole.Name, schema.RBACRole.Name, schema.RBACRole.ID,
		schema.UserAccount.Table,
		schema.RBACUserRole.Table, schema.RBACUserRole.UserID, schema.UserAccount.ID,
		schema.RBACRole.Table, schema.RBACRole.ID, schema.RBACUserRole.RoleID,
		schema.UserAccount.ID,
		schema.UserAccount.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list accounts")
	}
	defer rows.Close()

	accounts := []Account{}
	total := 0
	for rows.Next() {
		user := &auth.User{}
		account := Account{User: user}
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FullName,
			&user.IsEnabled, &user.CreatedAt, &user.UpdatedAt,
			&account.Roles, &total,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan account")
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list accounts")
	}

	return accounts, total, nil
}
