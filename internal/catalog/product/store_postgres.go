// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/cpos/internal/platform/database/schema"
	"github.com/taibuivan/cpos/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var productColumns = strings.Join(schema.CatalogProduct.Columns(), ", ")

func scanProduct(row pgx.Row, extra ...any) (*Product, error) {
	p := &Product{}
	targets := append([]any{
		&p.ID, &p.Name, &p.SKU, &p.CategoryID, &p.Price, &p.Stock, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	}, extra...)
	err := row.Scan(targets...)
	return p, err
}

// List returns one page ordered by name, optionally restricted to a category.
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]Product, int, error) {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total FROM %s`, productColumns, schema.CatalogProduct.Table)
	args := []any{}

	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(` WHERE %s = $1`, schema.CatalogProduct.CategoryID)
	}

	query += fmt.Sprintf(` ORDER BY %s ASC, %s ASC LIMIT $%d OFFSET $%d`,
		schema.CatalogProduct.Name, schema.CatalogProduct.ID, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_products")
	}
	defer rows.Close()

	products := []Product{}
	total := 0
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_products")
	}

	return products, total, nil
}

func (repository *PostgresRepository) Get(context context.Context, id string) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		productColumns, schema.CatalogProduct.Table, schema.CatalogProduct.ID,
	)

	p, err := scanProduct(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_product")
	}
	return p, nil
}

func (repository *PostgresRepository) Create(context context.Context, p *Product) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s, %s`,
		schema.CatalogProduct.Table,
		schema.CatalogProduct.ID, schema.CatalogProduct.Name, schema.CatalogProduct.SKU,
		schema.CatalogProduct.CategoryID, schema.CatalogProduct.Price, schema.CatalogProduct.Stock,
		schema.CatalogProduct.CreatedBy, schema.CatalogProduct.CreatedAt, schema.CatalogProduct.UpdatedAt,
		schema.CatalogProduct.CreatedAt, schema.CatalogProduct.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		p.ID, p.Name, p.SKU, p.CategoryID, p.Price, p.Stock, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return dberr.Wrap(err, "create_product")
}

// Update rewrites the mutable columns and reloads the rest of the row.
func (repository *PostgresRepository) Update(context context.Context, p *Product) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s, %s`,
		schema.CatalogProduct.Table,
		schema.CatalogProduct.Name, schema.CatalogProduct.SKU, schema.CatalogProduct.CategoryID,
		schema.CatalogProduct.Price, schema.CatalogProduct.Stock, schema.CatalogProduct.UpdatedAt,
		schema.CatalogProduct.ID,
		schema.CatalogProduct.CreatedBy, schema.CatalogProduct.CreatedAt, schema.CatalogProduct.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		p.ID, p.Name, p.SKU, p.CategoryID, p.Price, p.Stock,
	).Scan(&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return dberr.Wrap(err, "update_product")
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogProduct.Table, schema.CatalogProduct.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_product")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
