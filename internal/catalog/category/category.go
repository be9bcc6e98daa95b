// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package category manages product categories of the back-office catalog.
package category

import "time"

// Category groups products under a unique name and slug.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input carries the writable fields. An empty Slug is derived from Name.
type Input struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Global field names for validation
const (
	FieldID          = "categoryID"
	FieldName        = "name"
	FieldSlug        = "slug"
	FieldDescription = "description"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)
