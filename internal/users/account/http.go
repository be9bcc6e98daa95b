// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cpos/internal/platform/middleware"
	requestutil "github.com/taibuivan/cpos/internal/platform/request"
	"github.com/taibuivan/cpos/internal/platform/respond"
	"github.com/taibuivan/cpos/internal/platform/validate"
	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/internal/users/auth"
	"github.com/taibuivan/cpos/pkg/pagination"
)

// Handler implements the HTTP layer for user administration.
type Handler struct {
	accountService *Service
	gate           *middleware.Gate
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, gate *middleware.Gate) *Handler {
	return &Handler{accountService: service, gate: gate}
}

// RegisterRoutes mounts the administration endpoints. Every route requires
// the rbac.manage.users permission.
//
// # Endpoints
//   - GET   /                  : Paginated account list.
//   - POST  /                  : Provisions an account.
//   - GET   /{userID}          : Account with effective context.
//   - PATCH /{userID}/roles    : Replaces the role set.
//   - PATCH /{userID}/status   : Enables or disables the account.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(handler.gate.Authenticate)
	router.Use(handler.gate.RequirePermission(rbac.PermManageUsers))

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{userID}", handler.get)
	router.Patch("/{userID}/roles", handler.replaceRoles)
	router.Patch("/{userID}/status", handler.setStatus)
}

// # Request Payloads

type createRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

type rolesRequest struct {
	RoleIDs []string `json:"role_ids"`
}

type statusRequest struct {
	IsEnabled *bool `json:"is_enabled"`
}

/*
GET /api/v1/users.

Request:
  - page, limit: query (see pkg/pagination)

Response:
  - 200: []Account with pagination meta
  - 401/403: Gate rejections
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	accounts, total, err := handler.accountService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accounts, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/users.

Request:
  - body: createRequest

Response:
  - 201: Detail: The provisioned account
  - 400: Validation failure or unknown role
  - 409: Username or email already exists
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.accountService.Create(request.Context(), auth.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
		Roles:    input.Roles,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, detail)
}

/*
GET /api/v1/users/{userID}.

Response:
  - 200: Detail
  - 400: Malformed id
  - 404: Account not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	detail, err := handler.accountService.Get(request.Context(), requestutil.Param(request, FieldUserID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

/*
PATCH /api/v1/users/{userID}/roles.

Request:
  - body: rolesRequest (role_ids, may be empty to strip every role)

Response:
  - 200: Detail with the new effective context
  - 400: Malformed or unknown role id
  - 404: Account not found
*/
func (handler *Handler) replaceRoles(writer http.ResponseWriter, request *http.Request) {
	var input rolesRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.RoleIDs == nil {
		respond.Error(writer, request, validate.RequiredError(FieldRoleIDs, "This field is required"))
		return
	}

	detail, err := handler.accountService.ReplaceRoles(request.Context(), requestutil.Param(request, FieldUserID), input.RoleIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

/*
PATCH /api/v1/users/{userID}/status.

Request:
  - body: statusRequest (is_enabled)

Response:
  - 200: The updated account
  - 400: Missing flag or malformed id
  - 404: Account not found
*/
func (handler *Handler) setStatus(writer http.ResponseWriter, request *http.Request) {
	var input statusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.IsEnabled == nil {
		respond.Error(writer, request, validate.RequiredError(FieldEnabled, "This field is required"))
		return
	}

	user, err := handler.accountService.SetStatus(request.Context(), requestutil.Param(request, FieldUserID), *input.IsEnabled)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
