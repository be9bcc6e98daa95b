// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package customer

import "context"

// Repository persists customers. Lookups of a missing id return
// dberr.ErrNotFound.
type Repository interface {
	List(context context.Context, limit, offset int) ([]Customer, int, error)
	Get(context context.Context, id string) (*Customer, error)
	Create(context context.Context, customer *Customer) error
	Update(context context.Context, customer *Customer) error
	Delete(context context.Context, id string) error

	// History returns the sales of one customer, newest first.
	History(context context.Context, customerID string) ([]Sale, error)
}
