// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CatalogProductTable represents the 'catalog.product' table
type CatalogProductTable struct {
	Table      string
	ID         string
	Name       string
	SKU        string
	CategoryID string
	Price      string
	Stock      string
	CreatedBy  string
	CreatedAt  string
	UpdatedAt  string
}

// CatalogProduct is the schema definition for catalog.product
var CatalogProduct = CatalogProductTable{
	Table:      "catalog.product",
	ID:         "id",
	Name:       "name",
	SKU:        "sku",
	CategoryID: "categoryid",
	Price:      "price",
	Stock:      "stock",
	CreatedBy:  "createdby",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

// Columns returns all standard column names
func (t CatalogProductTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.SKU, t.CategoryID, t.Price, t.Stock, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	}
}
