// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request reads path parameters, JSON bodies and the authenticated
caller from incoming requests, turning every failure into an apperr value
handlers can pass straight to respond.Error.
*/
package requestutil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/ctxutil"
	"github.com/taibuivan/cpos/internal/platform/validate"
)

// MaxBodyBytes bounds every decoded JSON body. Admin payloads are small.
const MaxBodyBytes = 1 << 20

/*
DecodeJSON decodes the request body into target.

Parameters:
  - request: *http.Request
  - target: any (pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON for a malformed, empty or oversized body
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, MaxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter. Services validate its format.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
UUIDParam retrieves a named URL parameter and requires it to be a UUID.

Returns:
  - string: The parameter value
  - error: apperr.ValidationError naming the parameter
*/
func UUIDParam(request *http.Request, name string) (string, error) {
	value := chi.URLParam(request, name)
	if err := validate.New().UUID(name, value).Err(); err != nil {
		return "", err
	}
	return value, nil
}

// RequiredUserID returns the id of the authenticated caller, or a 401 when
// the request passed no authentication gate.
func RequiredUserID(request *http.Request) (string, error) {
	principal := ctxutil.GetAuthUser(request.Context())
	if principal == nil {
		return "", apperr.Unauthorized("Authentication required")
	}
	return principal.ID, nil
}
