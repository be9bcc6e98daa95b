// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package customer manages the customer records of the back office and their
// purchase history.
package customer

import "time"

// Customer is a buyer known to the back office. ExternalID links the record
// to an outside system and is unique when set.
type Customer struct {
	ID          string    `json:"id"`
	ExternalID  *string   `json:"external_id"`
	FullName    string    `json:"full_name"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	LoyaltyTier *string   `json:"loyalty_tier"`
	IsVIP       bool      `json:"is_vip"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input carries the fields of a new customer.
type Input struct {
	ExternalID  *string `json:"external_id"`
	FullName    string  `json:"full_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	LoyaltyTier *string `json:"loyalty_tier"`
	IsVIP       bool    `json:"is_vip"`
}

// Changes is a partial update. Nil fields keep their stored value and a
// blank optional field clears it.
type Changes struct {
	ExternalID  *string `json:"external_id"`
	FullName    *string `json:"full_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	LoyaltyTier *string `json:"loyalty_tier"`
	IsVIP       *bool   `json:"is_vip"`
}

// Sale is one completed purchase with its line items.
type Sale struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	Total      float64    `json:"total"`
	CreatedAt  time.Time  `json:"created_at"`
	Items      []SaleItem `json:"items"`
}

// SaleItem is one product line of a sale. ProductID and ProductName are nil
// once the product has been deleted.
type SaleItem struct {
	ID          string  `json:"id"`
	ProductID   *string `json:"product_id"`
	ProductName *string `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Global field names for validation
const (
	FieldID          = "customerID"
	FieldExternalID  = "external_id"
	FieldFullName    = "full_name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldLoyaltyTier = "loyalty_tier"
)

const (
	maxNameLength       = 200
	maxExternalIDLength = 64
	maxPhoneLength      = 32
	maxTierLength       = 32
)
