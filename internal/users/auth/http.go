// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/constants"
	"github.com/taibuivan/cpos/internal/platform/ctxutil"
	"github.com/taibuivan/cpos/internal/platform/middleware"
	requestutil "github.com/taibuivan/cpos/internal/platform/request"
	"github.com/taibuivan/cpos/internal/platform/respond"
	"github.com/taibuivan/cpos/internal/platform/sec"
	"github.com/taibuivan/cpos/internal/platform/validate"
	"github.com/taibuivan/cpos/internal/rbac"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// Every endpoint here is anonymous: callers present credentials or a
// refresh token in the body, never an access token.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// RegisterRoutes mounts the authentication endpoints.
//
// # Endpoints
//   - POST /login    : Credentials for a token pair.
//   - POST /register : Creates an account with roles.
//   - POST /refresh  : Rotates a refresh token.
//   - POST /logout   : Revokes a refresh token's session.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/login", handler.login)
	router.Post("/register", handler.register)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)
}

// # Request Payloads

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type registerRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// # Response Payloads

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type loginResponse struct {
	tokenResponse
	User        *User       `json:"user"`
	Roles       []rbac.Role `json:"roles"`
	Permissions []string    `json:"permissions"`
}

type registerResponse struct {
	User        *User       `json:"user"`
	Roles       []rbac.Role `json:"roles"`
	Permissions []string    `json:"permissions"`
}

func newTokenResponse(pair TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    constants.TokenTypeBearer,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

/*
Login authenticates an operator and opens a session.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (identifier, password)

Response:
  - 200: Token pair, user, roles and permissions
  - 400: Validation failure
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := validate.New()
	validator.Required(FieldIdentifier, input.Identifier).MinLen(FieldIdentifier, input.Identifier, minIdentifierLength)
	validator.Required(FieldPassword, input.Password).MinLen(FieldPassword, input.Password, minPasswordLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Identifier: input.Identifier,
		Password:   input.Password,
		Client: ClientMeta{
			IPAddress: middleware.RealIP(request),
			UserAgent: request.UserAgent(),
		},
	})
	if err != nil {
		respond.Error(writer, request, toAppError(request.Context(), err))
		return
	}

	respond.OK(writer, loginResponse{
		tokenResponse: newTokenResponse(result.TokenPair),
		User:          result.User,
		Roles:         result.Context.Roles,
		Permissions:   result.Context.Permissions,
	})
}

/*
Register creates an operator account holding the named roles.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (username, email, password, full_name, roles)

Response:
  - 201: User with resolved roles and permissions
  - 400: Validation failure or unknown role
  - 409: Username or email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
		Roles:    input.Roles,
	})
	if err != nil {
		respond.Error(writer, request, toAppError(request.Context(), err))
		return
	}

	respond.Created(writer, registerResponse{
		User:        result.User,
		Roles:       result.Context.Roles,
		Permissions: result.Context.Permissions,
	})
}

/*
Refresh rotates a refresh token.

POST /api/v1/auth/refresh

Request:
  - Body: refreshRequest (refresh_token)

Response:
  - 200: New token pair
  - 401: Invalid token or session
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := validate.New().MinLen(FieldRefreshToken, input.RefreshToken, minRefreshTokenLength).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, toAppError(request.Context(), err))
		return
	}

	respond.OK(writer, newTokenResponse(*pair))
}

/*
Logout revokes the session behind a refresh token.

POST /api/v1/auth/logout

Request:
  - Body: refreshRequest (refresh_token)

Response:
  - 200: Confirmation
  - 401: Token structure or signature invalid
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := validate.New().Required(FieldRefreshToken, input.RefreshToken).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), input.RefreshToken); err != nil {
		respond.Error(writer, request, toAppError(request.Context(), err))
		return
	}

	respond.Message(writer, "Logged out")
}

// # Error Boundary

// rejectionMessage is the only message a client sees for any credential,
// token or session failure.
const rejectionMessage = "Invalid credentials or session"

/*
toAppError collapses the internal failure reasons of this package into client
errors. The precise reason is logged, never returned.

Parameters:
  - ctx: context.Context (carries the request logger)
  - err: error

Returns:
  - error: An [apperr.AppError] or err unchanged
*/
func toAppError(ctx context.Context, err error) error {
	var reason string
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		reason = "invalid_credentials"
	case errors.Is(err, sec.ErrInvalidToken):
		reason = "invalid_token"
	case errors.Is(err, ErrSessionNotFound):
		reason = "session_not_found"
	case errors.Is(err, ErrSessionExpired):
		reason = "session_expired"
	case errors.Is(err, ErrSessionMismatch):
		reason = "session_mismatch"
	case errors.Is(err, ErrInvalidRoles):
		return validate.RequiredError(FieldRoles, "One or more roles are invalid")
	default:
		return err
	}

	ctxutil.GetLogger(ctx).Warn("auth_rejected", slog.String("reason", reason))
	return apperr.Unauthorized(rejectionMessage)
}
