// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/cpos/internal/platform/middleware"
	requestutil "github.com/taibuivan/cpos/internal/platform/request"
	"github.com/taibuivan/cpos/internal/platform/respond"
	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/pkg/pagination"
)

type Handler struct {
	service *Service
	gate    *middleware.Gate
}

func NewHandler(service *Service, gate *middleware.Gate) *Handler {
	return &Handler{service: service, gate: gate}
}

// RegisterRoutes mounts product CRUD, each route behind its own permission.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(handler.gate.Authenticate)

	router.With(handler.gate.RequirePermission(rbac.PermProductRead)).Get("/", handler.list)
	router.With(handler.gate.RequirePermission(rbac.PermProductRead)).Get("/{productID}", handler.get)
	router.With(handler.gate.RequirePermission(rbac.PermProductCreate)).Post("/", handler.create)
	router.With(handler.gate.RequirePermission(rbac.PermProductUpdate)).Patch("/{productID}", handler.update)
	router.With(handler.gate.RequirePermission(rbac.PermProductDelete)).Delete("/{productID}", handler.delete)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := Filter{CategoryID: request.URL.Query().Get("category_id")}

	products, total, err := handler.service.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, products, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	product, err := handler.service.Get(request.Context(), requestutil.Param(request, FieldID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, product)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, product)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := handler.service.Update(request.Context(), requestutil.Param(request, FieldID), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, product)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, FieldID)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
