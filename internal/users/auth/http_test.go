// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/internal/users/auth"
)

func (f *fixture) router() http.Handler {
	router := chi.NewRouter()
	router.Route("/auth", auth.NewHandler(f.service).RegisterRoutes)
	return router
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("User-Agent", "cpos-test")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

/*
TestHandler_Login verifies the token response shape and the uniform rejection.
*/
func TestHandler_Login(t *testing.T) {
	f := newFixture(t)
	f.register(t, "superadmin", "admin@cpos.local", rbac.RoleSuperAdmin)
	router := f.router()

	recorder := post(router, "/auth/login", `{"identifier":"admin@cpos.local","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data struct {
			AccessToken  string      `json:"access_token"`
			RefreshToken string      `json:"refresh_token"`
			TokenType    string      `json:"token_type"`
			ExpiresIn    int64       `json:"expires_in"`
			User         auth.User   `json:"user"`
			Roles        []rbac.Role `json:"roles"`
			Permissions  []string    `json:"permissions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Equal(t, int64(900), envelope.Data.ExpiresIn)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.Equal(t, "superadmin", envelope.Data.User.Username)
	assert.Contains(t, envelope.Data.Permissions, rbac.PermManageRoles)
	assert.NotContains(t, recorder.Body.String(), "password", "hash never serialized")

	unknown := post(router, "/auth/login", `{"identifier":"ghost@cpos.local","password":"Passw0rd!"}`)
	wrong := post(router, "/auth/login", `{"identifier":"superadmin","password":"Passw0rd?"}`)
	for _, rejected := range []*httptest.ResponseRecorder{unknown, wrong} {
		require.Equal(t, http.StatusUnauthorized, rejected.Code)

		var body errorBody
		require.NoError(t, json.Unmarshal(rejected.Body.Bytes(), &body))
		assert.Equal(t, "Invalid credentials or session", body.Error)
	}
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

/*
TestHandler_InputValidation covers malformed bodies on every endpoint.
*/
func TestHandler_InputValidation(t *testing.T) {
	router := newFixture(t).router()

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"login invalid json", "/auth/login", `{`, http.StatusBadRequest},
		{"login short identifier", "/auth/login", `{"identifier":"ab","password":"Passw0rd!"}`, http.StatusBadRequest},
		{"login short password", "/auth/login", `{"identifier":"superadmin","password":"short"}`, http.StatusBadRequest},
		{"refresh short token", "/auth/refresh", `{"refresh_token":"short"}`, http.StatusBadRequest},
		{"refresh garbage token", "/auth/refresh", `{"refresh_token":"garbage-garbage-garbage-garbage"}`, http.StatusUnauthorized},
		{"logout missing token", "/auth/logout", `{}`, http.StatusBadRequest},
		{"logout garbage token", "/auth/logout", `{"refresh_token":"garbage"}`, http.StatusUnauthorized},
		{"register unknown role", "/auth/register", `{"username":"ghost","email":"ghost@cpos.local","password":"Passw0rd!","full_name":"Ghost","roles":["Warehouse Admin"]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, post(router, tt.path, tt.body).Code)
		})
	}
}

/*
TestHandler_SessionLifecycle walks register, login, refresh and logout.
*/
func TestHandler_SessionLifecycle(t *testing.T) {
	f := newFixture(t)
	router := f.router()

	registered := post(router, "/auth/register",
		`{"username":"productadmin","email":"Product@CPOS.local","password":"Passw0rd!","full_name":"Product Admin","roles":["Product Admin"]}`)
	require.Equal(t, http.StatusCreated, registered.Code)
	assert.Contains(t, registered.Body.String(), `"email":"product@cpos.local"`)
	assert.Equal(t, http.StatusConflict, post(router, "/auth/register",
		`{"username":"productadmin","email":"other@cpos.local","password":"Passw0rd!","full_name":"Other","roles":["Product Admin"]}`).Code)

	login := post(router, "/auth/login", `{"identifier":"productadmin","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, login.Code)

	var envelope struct {
		Data struct {
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &envelope))
	token := envelope.Data.RefreshToken

	refreshed := post(router, "/auth/refresh", `{"refresh_token":"`+token+`"}`)
	require.Equal(t, http.StatusOK, refreshed.Code)
	require.NoError(t, json.Unmarshal(refreshed.Body.Bytes(), &envelope))
	rotated := envelope.Data.RefreshToken

	assert.Equal(t, http.StatusUnauthorized, post(router, "/auth/refresh", `{"refresh_token":"`+token+`"}`).Code)

	loggedOut := post(router, "/auth/logout", `{"refresh_token":"`+rotated+`"}`)
	require.Equal(t, http.StatusOK, loggedOut.Code)
	assert.Contains(t, loggedOut.Body.String(), "Logged out")
	assert.Equal(t, 0, f.sessions.Count())

	assert.Equal(t, http.StatusUnauthorized, post(router, "/auth/refresh", `{"refresh_token":"`+rotated+`"}`).Code)
}
