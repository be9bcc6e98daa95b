// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rbac_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cpos/internal/platform/middleware"
	"github.com/taibuivan/cpos/internal/platform/sec"
	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/internal/rbac/rbactest"
)

type httpFixture struct {
	router http.Handler
	memory *rbactest.Memory
	issuer *sec.TokenIssuer
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()

	memory, service := seeded(t)
	issuer, err := sec.NewTokenIssuer(sec.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "cpos-test",
	})
	require.NoError(t, err)

	handler := rbac.NewHandler(service, middleware.NewGate(issuer, nil))
	router := chi.NewRouter()
	router.Route("/rbac", handler.RegisterRoutes)
	router.Route("/dashboard", handler.RegisterDashboardRoutes)

	return &httpFixture{router: router, memory: memory, issuer: issuer}
}

// tokenFor issues an access token for a user holding roleName in storage.
func (fixture *httpFixture) tokenFor(t *testing.T, roleName string) string {
	t.Helper()

	userID := grant(t, fixture.memory, roleName)
	effective, err := rbac.NewResolver(fixture.memory).ResolveContext(t.Context(), userID)
	require.NoError(t, err)

	token, err := fixture.issuer.IssueAccess(sec.Grant{
		Subject:     userID,
		Roles:       effective.RoleNames(),
		Permissions: effective.Permissions,
	})
	require.NoError(t, err)
	return token
}

func (fixture *httpFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	fixture.router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_PublicReads verifies the catalog is readable without a token.
*/
func TestHandler_PublicReads(t *testing.T) {
	fixture := newHTTPFixture(t)

	recorder := fixture.do(http.MethodGet, "/rbac/roles", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data []rbac.RoleDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 3)

	assert.Equal(t, http.StatusOK, fixture.do(http.MethodGet, "/rbac/permissions", "", "").Code)
	assert.Equal(t, http.StatusOK, fixture.do(http.MethodGet, "/rbac/widgets", "", "").Code)
}

/*
TestHandler_CreateRoleGate verifies the manage-roles permission guards mutations.
*/
func TestHandler_CreateRoleGate(t *testing.T) {
	fixture := newHTTPFixture(t)
	body := `{"name":"Warehouse","permissions":["product.read"]}`

	assert.Equal(t, http.StatusUnauthorized, fixture.do(http.MethodPost, "/rbac/roles", "", body).Code)

	productAdmin := fixture.tokenFor(t, rbac.RoleProductAdmin)
	assert.Equal(t, http.StatusForbidden, fixture.do(http.MethodPost, "/rbac/roles", productAdmin, body).Code)

	superAdmin := fixture.tokenFor(t, rbac.RoleSuperAdmin)
	assert.Equal(t, http.StatusCreated, fixture.do(http.MethodPost, "/rbac/roles", superAdmin, body).Code)
	assert.Equal(t, http.StatusConflict, fixture.do(http.MethodPost, "/rbac/roles", superAdmin, body).Code)
}

/*
TestHandler_ReplaceRolePermissions covers path validation and unknown names.
*/
func TestHandler_ReplaceRolePermissions(t *testing.T) {
	fixture := newHTTPFixture(t)
	superAdmin := fixture.tokenFor(t, rbac.RoleSuperAdmin)
	roleID := fixture.memory.RoleByName(rbac.RoleCategoryAdmin).ID

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed id", "/rbac/roles/abc/permissions", `{"permissions":[]}`, http.StatusBadRequest},
		{"invalid json", "/rbac/roles/" + roleID + "/permissions", `{`, http.StatusBadRequest},
		{"unknown permission", "/rbac/roles/" + roleID + "/permissions", `{"permissions":["x.y"]}`, http.StatusBadRequest},
		{"replaced", "/rbac/roles/" + roleID + "/permissions", `{"permissions":["category.read"]}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixture.do(http.MethodPatch, tt.path, superAdmin, tt.body).Code)
		})
	}
}

/*
TestHandler_DashboardWidgets verifies the feed follows the caller's roles.
*/
func TestHandler_DashboardWidgets(t *testing.T) {
	fixture := newHTTPFixture(t)

	assert.Equal(t, http.StatusUnauthorized, fixture.do(http.MethodGet, "/dashboard/widgets", "", "").Code)

	recorder := fixture.do(http.MethodGet, "/dashboard/widgets", fixture.tokenFor(t, rbac.RoleProductAdmin), "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data []rbac.Widget `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"widget_products_low_stock", "widget_products_top"}, widgetKeys(envelope.Data))
}
