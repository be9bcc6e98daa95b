// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/validate"
)

/*
TestValidator_Rules runs each rule once against a passing and a failing value.
*/
func TestValidator_Rules(t *testing.T) {
	tests := []struct {
		name  string
		rule  func(*validate.Validator) *validate.Validator
		fails bool
	}{
		{"required", func(v *validate.Validator) *validate.Validator { return v.Required("name", "Super Admin") }, false},
		{"required blank", func(v *validate.Validator) *validate.Validator { return v.Required("name", "   ") }, true},
		{"min runes", func(v *validate.Validator) *validate.Validator { return v.MinLen("name", "đá", 2) }, false},
		{"below min", func(v *validate.Validator) *validate.Validator { return v.MinLen("password", "abc", 8) }, true},
		{"max runes", func(v *validate.Validator) *validate.Validator { return v.MaxLen("name", "Cà phê", 6) }, false},
		{"above max", func(v *validate.Validator) *validate.Validator { return v.MaxLen("name", "Espresso", 3) }, true},
		{"email", func(v *validate.Validator) *validate.Validator { return v.Email("email", "admin@cpos.local") }, false},
		{"email missing domain", func(v *validate.Validator) *validate.Validator { return v.Email("email", "admin@") }, true},
		{"email with display name", func(v *validate.Validator) *validate.Validator { return v.Email("email", "Admin <admin@cpos.local>") }, true},
		{"slug", func(v *validate.Validator) *validate.Validator { return v.Slug("slug", "ca-phe-da") }, false},
		{"slug uppercase", func(v *validate.Validator) *validate.Validator { return v.Slug("slug", "Ca-Phe") }, true},
		{"slug double hyphen", func(v *validate.Validator) *validate.Validator { return v.Slug("slug", "ca--phe") }, true},
		{"slug edge hyphen", func(v *validate.Validator) *validate.Validator { return v.Slug("slug", "-drinks") }, true},
		{"uuid", func(v *validate.Validator) *validate.Validator { return v.UUID("id", "0195a2b4-7c1e-7d3a-9f00-1234567890ab") }, false},
		{"uuid malformed", func(v *validate.Validator) *validate.Validator { return v.UUID("id", "role-1") }, true},
		{"not empty", func(v *validate.Validator) *validate.Validator { return v.NotEmpty("roles", []string{"Super Admin"}) }, false},
		{"empty list", func(v *validate.Validator) *validate.Validator { return v.NotEmpty("roles", nil) }, true},
		{"price zero", func(v *validate.Validator) *validate.Validator { return v.NonNegative("price", 0) }, false},
		{"price negative", func(v *validate.Validator) *validate.Validator { return v.NonNegative("price", -0.01) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule(validate.New()).Err()
			if !tt.fails {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}
}

/*
TestValidator_Accumulates verifies one chain reports every failed field.
*/
func TestValidator_Accumulates(t *testing.T) {
	err := validate.New().
		Required("username", "").
		MinLen("password", "a", 8).
		Email("email", "not-an-email").
		Required("full_name", "Cashier").
		Err()

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	require.Len(t, appErr.Details, 3)
	assert.Equal(t, "username", appErr.Details[0].Field)
	assert.Equal(t, "email", appErr.Details[2].Field)
}

/*
TestValidator_EachUUID reports a single error for a list with bad entries.
*/
func TestValidator_EachUUID(t *testing.T) {
	valid := "0195a2b4-7c1e-7d3a-9f00-1234567890ab"
	assert.NoError(t, validate.New().EachUUID("role_ids", []string{valid}).Err())
	assert.NoError(t, validate.New().EachUUID("role_ids", nil).Err())

	appErr := apperr.As(validate.New().EachUUID("role_ids", []string{"x", valid, "y"}).Err())
	require.NotNil(t, appErr)
	assert.Len(t, appErr.Details, 1)
}
