// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/ctxutil"
	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/platform/validate"
	"github.com/taibuivan/cpos/pkg/pagination"
	"github.com/taibuivan/cpos/pkg/pointer"
	"github.com/taibuivan/cpos/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]Product, int, error) {
	if filter.CategoryID != "" {
		if err := validate.New().UUID(FieldCategoryID, filter.CategoryID).Err(); err != nil {
			return nil, 0, err
		}
	}
	return service.repo.List(context, filter, params.Limit, params.Offset())
}

func (service *Service) Get(context context.Context, id string) (*Product, error) {
	if err := validate.New().UUID(FieldID, id).Err(); err != nil {
		return nil, err
	}

	product, err := service.repo.Get(context, id)
	return product, translate(err)
}

// Create stores a new product attributed to the signed-in principal.
func (service *Service) Create(context context.Context, input Input) (*Product, error) {
	product := &Product{ID: uuid.New()}
	if err := apply(product, input); err != nil {
		return nil, err
	}
	if principal := ctxutil.GetAuthUser(context); principal != nil {
		product.CreatedBy = &principal.ID
	}

	if err := service.repo.Create(context, product); err != nil {
		return nil, translate(err)
	}

	service.logger.Info("product_created", slog.String("product_id", product.ID), slog.String("name", product.Name))
	return product, nil
}

func (service *Service) Update(context context.Context, id string, input Input) (*Product, error) {
	if err := validate.New().UUID(FieldID, id).Err(); err != nil {
		return nil, err
	}

	product := &Product{ID: id}
	if err := apply(product, input); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, product); err != nil {
		return nil, translate(err)
	}

	service.logger.Info("product_updated", slog.String("product_id", id))
	return product, nil
}

func (service *Service) Delete(context context.Context, id string) error {
	if err := validate.New().UUID(FieldID, id).Err(); err != nil {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		return translate(err)
	}

	service.logger.Warn("product_deleted", slog.String("product_id", id))
	return nil
}

func apply(product *Product, input Input) error {
	name := strings.TrimSpace(input.Name)

	validator := validate.New()
	validator.Required(FieldName, name).MaxLen(FieldName, name, maxNameLength)
	validator.NonNegative(FieldPrice, input.Price)
	validator.NonNegative(FieldStock, float64(input.Stock))

	// Blank optional references are stored as NULL.
	sku := trimmedOrNil(input.SKU)
	if sku != nil {
		validator.MaxLen(FieldSKU, *sku, maxSKULength)
	}
	categoryID := trimmedOrNil(input.CategoryID)
	if categoryID != nil {
		validator.UUID(FieldCategoryID, *categoryID)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	product.Name = name
	product.SKU = sku
	product.CategoryID = categoryID
	product.Price = input.Price
	product.Stock = input.Stock
	return nil
}

func trimmedOrNil(value *string) *string {
	trimmed := strings.TrimSpace(pointer.Val(value))
	if trimmed == "" {
		return nil
	}
	return pointer.To(trimmed)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case dberr.IsNotFound(err):
		return apperr.NotFound("Product")
	case apperr.HasCode(err, apperr.CodeConflict):
		return apperr.Conflict("Product SKU already exists")
	case apperr.HasCode(err, apperr.CodeValidation):
		return validate.RequiredError(FieldCategoryID, "Category does not exist")
	default:
		return err
	}
}
