// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import "context"

type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]Product, int, error)
	Get(context context.Context, id string) (*Product, error)
	Create(context context.Context, product *Product) error
	Update(context context.Context, product *Product) error
	Delete(context context.Context, id string) error
}
