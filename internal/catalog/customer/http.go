// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package customer

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

// RegisterRoutes mounts customer records, each route behind its own permission.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(handler.gate.Authenticate)

	router.With(handler.gate.RequirePermission(rbac.PermCustomerRead)).Get("/", handler.list)
	router.With(handler.gate.RequirePermission(rbac.PermCustomerRead)).Get("/{customerID}", handler.get)
	router.With(handler.gate.RequirePermission(rbac.PermCustomerRead)).Get("/{customerID}/history", handler.history)
	router.With(handler.gate.RequirePermission(rbac.PermCustomerCreate)).Post("/", handler.create)
	router.With(handler.gate.RequirePermission(rbac.PermCustomerUpdate)).Patch("/{customerID}", handler.update)
	router.With(handler.gate.RequirePermission(rbac.PermCustomerDelete)).Delete("/{customerID}", handler.delete)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	customers, total, err := handler.service.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, customers, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	customer, err := handler.service.Get(request.Context(), requestutil.Param(request, FieldID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, customer)
}

func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	sales, err := handler.service.History(request.Context(), requestutil.Param(request, FieldID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sales)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	customer, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, customer)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var changes Changes
	if err := requestutil.DecodeJSON(request, &changes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	customer, err := handler.service.Update(request.Context(), requestutil.Param(request, FieldID), changes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, customer)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, FieldID)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
