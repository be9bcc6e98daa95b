// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cpos/internal/platform/middleware"
	requestutil "github.com/taibuivan/cpos/internal/platform/request"
	"github.com/taibuivan/cpos/internal/platform/respond"
)

// Handler exposes RBAC administration and the dashboard widget feed.
type Handler struct {
	service *Service
	gate    *middleware.Gate
}

func NewHandler(service *Service, gate *middleware.Gate) *Handler {
	return &Handler{service: service, gate: gate}
}

// # Request Payloads

type permissionsRequest struct {
	Permissions []string `json:"permissions"`
}

type widgetsRequest struct {
	Widgets []string `json:"widgets"`
}

// RegisterRoutes mounts the administration endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public catalog reads
	router.Get("/roles", handler.listRoles)
	router.Get("/permissions", handler.listPermissions)
	router.Get("/widgets", handler.listWidgets)

	// Role managers only
	router.Group(func(admin chi.Router) {
		admin.Use(handler.gate.Authenticate)
		admin.Use(handler.gate.RequirePermission(PermManageRoles))

		admin.Post("/roles", handler.createRole)
		admin.Patch("/roles/{roleID}", handler.updateRole)
		admin.Delete("/roles/{roleID}", handler.deleteRole)
		admin.Patch("/roles/{roleID}/permissions", handler.replaceRolePermissions)
		admin.Patch("/roles/{roleID}/widgets", handler.replaceRoleWidgets)

		admin.Post("/user-roles", handler.assignRole)
		admin.Delete("/user-roles", handler.removeRole)
	})
}

// RegisterDashboardRoutes mounts the widget feed for any signed-in user.
func (handler *Handler) RegisterDashboardRoutes(router chi.Router) {
	router.With(handler.gate.Authenticate).Get("/widgets", handler.myWidgets)
}

// # Catalog

func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	roles, err := handler.service.ListRoles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, roles)
}

func (handler *Handler) listPermissions(writer http.ResponseWriter, request *http.Request) {
	permissions, err := handler.service.ListPermissions(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, permissions)
}

func (handler *Handler) listWidgets(writer http.ResponseWriter, request *http.Request) {
	widgets, err := handler.service.ListWidgets(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, widgets)
}

// # Roles

func (handler *Handler) createRole(writer http.ResponseWriter, request *http.Request) {
	var input CreateRoleInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.service.CreateRole(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, role)
}

func (handler *Handler) updateRole(writer http.ResponseWriter, request *http.Request) {
	roleID, err := requestutil.UUIDParam(request, "roleID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateRoleInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.service.UpdateRole(request.Context(), roleID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, role)
}

func (handler *Handler) deleteRole(writer http.ResponseWriter, request *http.Request) {
	roleID, err := requestutil.UUIDParam(request, "roleID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteRole(request.Context(), roleID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) replaceRolePermissions(writer http.ResponseWriter, request *http.Request) {
	roleID, err := requestutil.UUIDParam(request, "roleID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input permissionsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ReplaceRolePermissions(request.Context(), roleID, input.Permissions); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Role permissions updated")
}

func (handler *Handler) replaceRoleWidgets(writer http.ResponseWriter, request *http.Request) {
	roleID, err := requestutil.UUIDParam(request, "roleID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input widgetsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ReplaceRoleWidgets(request.Context(), roleID, input.Widgets); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Role widgets updated")
}

// # User Grants

func (handler *Handler) assignRole(writer http.ResponseWriter, request *http.Request) {
	var input UserRoleInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AssignRole(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) removeRole(writer http.ResponseWriter, request *http.Request) {
	var input UserRoleInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveRole(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Dashboard

func (handler *Handler) myWidgets(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	widgets, err := handler.service.WidgetsForUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, widgets)
}
