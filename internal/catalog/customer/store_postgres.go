// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

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

var customerColumns = strings.Join(schema.CatalogCustomer.Columns(), ", ")

func scanCustomer(row pgx.Row, extra ...any) (*Customer, error) {
	c := &Customer{}
	targets := append([]any{
		&c.ID, &c.ExternalID, &c.FullName, &c.Email, &c.Phone, &c.LoyaltyTier, &c.IsVIP, &c.CreatedAt, &c.UpdatedAt,
	}, extra...)
	err := row.Scan(targets...)
	return c, err
}

// List returns one page, newest customers first.
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]Customer, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total
		FROM %s
		ORDER BY %s DESC, %s DESC
		LIMIT $1 OFFSET $2`,
		customerColumns, schema.CatalogCustomer.Table, schema.CatalogCustomer.CreatedAt, schema.CatalogCustomer.ID,
	)

	rows, err := repository.db.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_customers")
	}
	defer rows.Close()

	customers := []Customer{}
	total := 0
	for rows.Next() {
		c, err := scanCustomer(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_customer")
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_customers")
	}

	return customers, total, nil
}

func (repository *PostgresRepository) Get(context context.Context, id string) (*Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		customerColumns, schema.CatalogCustomer.Table, schema.CatalogCustomer.ID,
	)

	c, err := scanCustomer(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_customer")
	}
	return c, nil
}

func (repository *PostgresRepository) Create(context context.Context, c *Customer) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s, %s`,
		schema.CatalogCustomer.Table,
		schema.CatalogCustomer.ID, schema.CatalogCustomer.ExternalID, schema.CatalogCustomer.FullName,
		schema.CatalogCustomer.Email, schema.CatalogCustomer.Phone, schema.CatalogCustomer.LoyaltyTier,
		schema.CatalogCustomer.IsVIP, schema.CatalogCustomer.CreatedAt, schema.CatalogCustomer.UpdatedAt,
		schema.CatalogCustomer.CreatedAt, schema.CatalogCustomer.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		c.ID, c.ExternalID, c.FullName, c.Email, c.Phone, c.LoyaltyTier, c.IsVIP,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return dberr.Wrap(err, "create_customer")
}

func (repository *PostgresRepository) Update(context context.Context, c *Customer) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s`,
		schema.CatalogCustomer.Table,
		schema.CatalogCustomer.ExternalID, schema.CatalogCustomer.FullName, schema.CatalogCustomer.Email,
		schema.CatalogCustomer.Phone, schema.CatalogCustomer.LoyaltyTier, schema.CatalogCustomer.IsVIP,
		schema.CatalogCustomer.UpdatedAt,
		schema.CatalogCustomer.ID,
		schema.CatalogCustomer.CreatedAt, schema.CatalogCustomer.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		c.ID, c.ExternalID, c.FullName, c.Email, c.Phone, c.LoyaltyTier, c.IsVIP,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return dberr.Wrap(err, "update_customer")
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogCustomer.Table, schema.CatalogCustomer.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_customer")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// History loads every sale of the customer with its items in one round trip.
// Rows arrive grouped by sale, so a change of sale id starts a new entry.
func (repository *PostgresRepository) History(context context.Context, customerID string) ([]Sale, error) {
	sale, item, product := schema.CatalogSale, schema.CatalogSaleItem, schema.CatalogProduct
	query := fmt.Sprintf(`
		SELECT s.%s, s.%s, s.%s, i.%s, i.%s, p.%s, i.%s, i.%s
		FROM %s s
		LEFT JOIN %s i ON i.%s = s.%s
		LEFT JOIN %s p ON p.%s = i.%s
		WHERE s.%s = $1
		ORDER BY s.%s DESC, s.%s, i.%s`,
		sale.ID, sale.Total, sale.CreatedAt, item.ID, item.ProductID, product.Name, item.Quantity, item.UnitPrice,
		sale.Table,
		item.Table, item.SaleID, sale.ID,
		product.Table, product.ID, item.ProductID,
		sale.CustomerID,
		sale.CreatedAt, sale.ID, item.ID,
	)

	rows, err := repository.db.Query(context, query, customerID)
	if err != nil {
		return nil, dberr.Wrap(err, "customer_history")
	}
	defer rows.Close()

	sales := []Sale{}
	for rows.Next() {
		var (
			saleID      string
			total       float64
			createdAt   time.Time
			itemID      *string
			productID   *string
			productName *string
			quantity    *int
			unitPrice   *float64
		)
		if err := rows.Scan(&saleID, &total, &createdAt, &itemID, &productID, &productName, &quantity, &unitPrice); err != nil {
			return nil, dberr.Wrap(err, "scan_sale")
		}

		if len(sales) == 0 || sales[len(sales)-1].ID != saleID {
			sales = append(sales, Sale{
				ID:         saleID,
				CustomerID: customerID,
				Total:      total,
				CreatedAt:  createdAt,
				Items:      []SaleItem{},
			})
		}
		if itemID == nil {
			continue
		}

		current := &sales[len(sales)-1]
		current.Items = append(current.Items, SaleItem{
			ID:          *itemID,
			ProductID:   productID,
			ProductName: productName,
			Quantity:    *quantity,
			UnitPrice:   *unitPrice,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "customer_history")
	}

	return sales, nil
}
