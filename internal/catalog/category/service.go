// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/platform/validate"
	"github.com/taibuivan/cpos/pkg/slug"
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

func (service *Service) List(context context.Context) ([]Category, error) {
	return service.repo.List(context)
}

func (service *Service) Get(context context.Context, id string) (*Category, error) {
	if err := validate.New().UUID(FieldID, id).Err(); err != nil {
		return nil, err
	}

	category, err := service.repo.Get(context, id)
	return category, translate(err)
}

func (service *Service) Create(context context.Context, input Input) (*Category, error) {
	category := &Category{ID: uuid.New()}
	if err := apply(category, input); err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, category); err != nil {
		return nil, translate(err)
	}

	service.logger.Info("category_created", slog.String("category_id", category.ID), slog.String("slug", category.Slug))
	return category, nil
}

func (service *Service) Update(context context.Context, id string, input Input) (*Category, error) {
	if err := validate.New().UUID(FieldID, id).Err(); err != nil {
		return nil, err
	}

	category := &Category{ID: id}
	if err := apply(category, input); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, category); err != nil {
		return nil, translate(err)
	}

	service.logger.Info("category_updated", slog.String("category_id", id))
	return category, nil
}

// Delete removes a category. Its products keep existing without one.
func (service *Service) Delete(context context.Context, id string) error {
	if err := validate.New().UUID(FieldID, id).Err(); err != nil {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		return translate(err)
	}

	service.logger.Warn("category_deleted", slog.String("category_id", id))
	return nil
}

// apply validates input and copies it onto category, deriving the slug.
func apply(category *Category, input Input) error {
	name := strings.TrimSpace(input.Name)
	categorySlug := strings.TrimSpace(input.Slug)
	if categorySlug == "" {
		categorySlug = slug.From(name)
	}

	validator := validate.New()
	validator.Required(FieldName, name).MaxLen(FieldName, name, maxNameLength)
	validator.Required(FieldSlug, categorySlug).
		MaxLen(FieldSlug, categorySlug, slug.MaxLength).
		Slug(FieldSlug, categorySlug)
	validator.MaxLen(FieldDescription, input.Description, maxDescriptionLength)
	if err := validator.Err(); err != nil {
		return err
	}

	category.Name = name
	category.Slug = categorySlug
	category.Description = strings.TrimSpace(input.Description)
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case dberr.IsNotFound(err):
		return apperr.NotFound("Category")
	case apperr.HasCode(err, apperr.CodeConflict):
		return apperr.Conflict("Category name or slug already exists")
	default:
		return err
	}
}
