// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate accumulates field errors for service-layer input checks.
//
// Each rule appends to the validator and returns it, so a whole payload is
// checked in one chain ending in Err. Handlers never validate; they decode
// and pass the payload down.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/pkg/uuid"
)

var (
	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

	// slugPattern is the output alphabet of pkg/slug: lowercase ASCII words
	// joined by single hyphens.
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Validator is single-use and not safe for concurrent use.
type Validator struct {
	errs []apperr.FieldError
}

func New() *Validator {
	return &Validator{}
}

// # String Rules

// Required fails on an empty or whitespace-only value.
func (v *Validator) Required(field, value string) *Validator {
	return v.check(strings.TrimSpace(value) == "", field, "This field is required")
}

// MinLen and MaxLen count runes, not bytes.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	return v.check(utf8.RuneCountInString(value) < min, field, fmt.Sprintf("Minimum %d characters", min))
}

func (v *Validator) MaxLen(field, value string, max int) *Validator {
	return v.check(utf8.RuneCountInString(value) > max, field, fmt.Sprintf("Maximum %d characters", max))
}

// Email accepts a bare address only. "Name <a@b.c>" is rejected.
func (v *Validator) Email(field, value string) *Validator {
	parsed, err := mail.ParseAddress(value)
	return v.check(err != nil || parsed.Address != value, field, "Must be a valid email address")
}

// Slug accepts only what slug.From can produce.
func (v *Validator) Slug(field, value string) *Validator {
	return v.check(!slugPattern.MatchString(value), field, "Must contain lowercase letters, digits and single hyphens")
}

// UUID accepts the canonical 36-character form of any version.
func (v *Validator) UUID(field, value string) *Validator {
	return v.check(!uuid.Valid(value), field, "Must be a valid UUID")
}

// # List and Number Rules

func (v *Validator) NotEmpty(field string, values []string) *Validator {
	return v.check(len(values) == 0, field, "At least one value is required")
}

// EachUUID reports at most one error for the whole list.
func (v *Validator) EachUUID(field string, values []string) *Validator {
	for _, value := range values {
		if !uuid.Valid(value) {
			return v.check(true, field, "Must contain only valid UUIDs")
		}
	}
	return v
}

func (v *Validator) NonNegative(field string, value float64) *Validator {
	return v.check(value < 0, field, "Must not be negative")
}

// # Result

// Err returns a VALIDATION_ERROR listing every failed rule, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

func (v *Validator) check(failed bool, field, message string) *Validator {
	if failed {
		v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
	}
	return v
}

// RequiredError builds a single-field validation error outside a chain.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{Field: field, Message: message})
}
