// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "context"

// Repository persists categories. Lookups of a missing id return
// dberr.ErrNotFound.
type Repository interface {
	List(context context.Context) ([]Category, error)
	Get(context context.Context, id string) (*Category, error)
	Create(context context.Context, category *Category) error
	Update(context context.Context, category *Category) error
	Delete(context context.Context, id string) error
}
