// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cpos/internal/platform/middleware"
	requestutil "github.com/taibuivan/cpos/internal/platform/request"
	"github.com/taibuivan/cpos/internal/platform/respond"
	"github.com/taibuivan/cpos/internal/rbac"
)

type Handler struct {
	service *Service
	gate    *middleware.Gate
}

func NewHandler(service *Service, gate *middleware.Gate) *Handler {
	return &Handler{service: service, gate: gate}
}

// RegisterRoutes mounts category CRUD, each route behind its own permission.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(handler.gate.Authenticate)

	router.With(handler.gate.RequirePermission(rbac.PermCategoryRead)).Get("/", handler.list)
	router.With(handler.gate.RequirePermission(rbac.PermCategoryRead)).Get("/{categoryID}", handler.get)
	router.With(handler.gate.RequirePermission(rbac.PermCategoryCreate)).Post("/", handler.create)
	router.With(handler.gate.RequirePermission(rbac.PermCategoryUpdate)).Patch("/{categoryID}", handler.update)
	router.With(handler.gate.RequirePermission(rbac.PermCategoryDelete)).Delete("/{categoryID}", handler.delete)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, categories)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	category, err := handler.service.Get(request.Context(), requestutil.Param(request, FieldID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, category)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.Update(request.Context(), requestutil.Param(request, FieldID), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, FieldID)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
