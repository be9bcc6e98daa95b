// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package product manages the products of the back-office catalog.
package product

import "time"

// Product is a sellable item, optionally filed under a category.
type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SKU        *string   `json:"sku"`
	CategoryID *string   `json:"category_id"`
	Price      float64   `json:"price"`
	Stock      int       `json:"stock"`
	CreatedBy  *string   `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Input carries the writable fields of a product.
type Input struct {
	Name       string  `json:"name"`
	SKU        *string `json:"sku"`
	CategoryID *string `json:"category_id"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
}

// Filter narrows a product listing.
type Filter struct {
	CategoryID string
}

// Global field names for validation
const (
	FieldID         = "productID"
	FieldName       = "name"
	FieldSKU        = "sku"
	FieldCategoryID = "category_id"
	FieldPrice      = "price"
	FieldStock      = "stock"
)

const (
	maxNameLength = 200
	maxSKULength  = 64
)
