// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package customer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/cpos/internal/platform/apperr"
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

func (service *Service) List(context context.Context, params pagination.Params) ([]Customer, int, error) {
	return service.repo.List(context, params.Limit, params.Offset())
}

func (service *Service) Get(context context.Context, id string) (*Customer, error) {
	if err := validate.New().UUID(FieldID, id).Err(); err != nil {
		return nil, err
	}

	customer, err := service.repo.Get(context, id)
	return customer, translate(err)
}

func (service *Service) Create(context context.Context, input Input) (*Customer, error) {
	customer := &Customer{ID: uuid.New()}
	if err := apply(customer, input); err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, customer); err != nil {
		return nil, translate(err)
	}

	service.logger.Info("customer_created", slog.String("customer_id", customer.ID))
	return customer, nil
}

/*
Update applies a partial change to a stored customer.

Parameters:
  - context: context.Context
  - id: string (customer UUID)
  - changes: Changes (nil fields are left as stored)

Returns:
  - *Customer: The customer after the change
  - error: Validation, not found or external id conflict
*/
func (service *Service) Update(context context.Context, id string, changes Changes) (*Customer, error) {
	if err := validate.New().UUID(FieldID, id).Err(); err != nil {
		return nil, err
	}

	existing, err := service.repo.Get(context, id)
	if err != nil {
		return nil, translate(err)
	}

	customer := &Customer{ID: id}
	if err := apply(customer, merge(existing, changes)); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, customer); err != nil {
		return nil, translate(err)
	}

	service.logger.Info("customer_updated", slog.String("customer_id", id))
	return customer, nil
}

// Delete removes a customer. Past sales are kept without an owner.
func (service *Service) Delete(context context.Context, id string) error {
	if err := validate.New().UUID(FieldID, id).Err(); err != nil {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		return translate(err)
	}

	service.logger.Warn("customer_deleted", slog.String("customer_id", id))
	return nil
}

// History lists the purchases of an existing customer, newest first.
func (service *Service) History(context context.Context, id string) ([]Sale, error) {
	if err := validate.New().UUID(FieldID, id).Err(); err != nil {
		return nil, err
	}

	if _, err := service.repo.Get(context, id); err != nil {
		return nil, translate(err)
	}

	sales, err := service.repo.History(context, id)
	if err != nil {
		return nil, translate(err)
	}
	return sales, nil
}

// merge overlays changes on the stored record.
func merge(existing *Customer, changes Changes) Input {
	input := Input{
		ExternalID:  existing.ExternalID,
		FullName:    existing.FullName,
		Email:       existing.Email,
		Phone:       existing.Phone,
		LoyaltyTier: existing.LoyaltyTier,
		IsVIP:       existing.IsVIP,
	}

	if changes.ExternalID != nil {
		input.ExternalID = changes.ExternalID
	}
	if changes.FullName != nil {
		input.FullName = *changes.FullName
	}
	if changes.Email != nil {
		input.Email = changes.Email
	}
	if changes.Phone != nil {
		input.Phone = changes.Phone
	}
	if changes.LoyaltyTier != nil {
		input.LoyaltyTier = changes.LoyaltyTier
	}
	if changes.IsVIP != nil {
		input.IsVIP = *changes.IsVIP
	}
	return input
}

func apply(customer *Customer, input Input) error {
	fullName := strings.TrimSpace(input.FullName)

	validator := validate.New()
	validator.Required(FieldFullName, fullName).MaxLen(FieldFullName, fullName, maxNameLength)

	// Blank optional fields are stored as NULL.
	externalID := trimmedOrNil(input.ExternalID)
	if externalID != nil {
		validator.MaxLen(FieldExternalID, *externalID, maxExternalIDLength)
	}
	email := trimmedOrNil(input.Email)
	if email != nil {
		validator.Email(FieldEmail, *email)
	}
	phone := trimmedOrNil(input.Phone)
	if phone != nil {
		validator.MaxLen(FieldPhone, *phone, maxPhoneLength)
	}
	tier := trimmedOrNil(input.LoyaltyTier)
	if tier != nil {
		validator.MaxLen(FieldLoyaltyTier, *tier, maxTierLength)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	customer.ExternalID = externalID
	customer.FullName = fullName
	customer.Email = email
	customer.Phone = phone
	customer.LoyaltyTier = tier
	customer.IsVIP = input.IsVIP
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
		return apperr.NotFound("Customer")
	case apperr.HasCode(err, apperr.CodeConflict):
		return apperr.Conflict("Customer external id already exists")
	default:
		return err
	}
}
