// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/audit"
	"github.com/taibuivan/cpos/internal/platform/middleware"
	"github.com/taibuivan/cpos/internal/platform/sec"
	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/internal/rbac/rbactest"
	"github.com/taibuivan/cpos/internal/users/auth"
	"github.com/taibuivan/cpos/internal/users/auth/authtest"
)

const demoPassword = "Passw0rd!"

type authEvent struct{ operation, outcome string }

type eventLog struct{ events []authEvent }

func (log *eventLog) ObserveAuth(operation, outcome string) {
	log.events = append(log.events, authEvent{operation, outcome})
}

// countingHasher records how many bcrypt comparisons a call performed.
type countingHasher struct {
	*sec.PasswordHasher
	comparisons int
}

func (hasher *countingHasher) Verify(plain, digest string) bool {
	hasher.comparisons++
	return hasher.PasswordHasher.Verify(plain, digest)
}

func (hasher *countingHasher) VerifyAbsent(plain string) bool {
	hasher.comparisons++
	return hasher.PasswordHasher.VerifyAbsent(plain)
}

type fixture struct {
	hasher   *countingHasher
	users    *authtest.Users
	sessions *authtest.Sessions
	grants   *rbactest.Memory
	rbac     *rbac.Service
	issuer   *sec.TokenIssuer
	clock    *clock
	events   *eventLog
	service  *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := newClock()

	grants := rbactest.NewMemory()
	resolver := rbac.NewResolver(grants)
	rbacService := rbac.NewService(grants, resolver, audit.New(logger), logger)
	require.NoError(t, rbacService.SeedCatalog(context.Background(), rbac.DefaultCatalog()))

	issuer, err := sec.NewTokenIssuer(sec.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "cpos-test",
	}, sec.WithClock(c.Now))
	require.NoError(t, err)

	users := authtest.NewUsers()
	sessions := authtest.NewSessions()
	events := &eventLog{}
	hasher := &countingHasher{PasswordHasher: sec.NewPasswordHasher(bcrypt.MinCost)}
	service := auth.NewService(
		users,
		auth.NewLedger(sessions, auth.WithLedgerClock(c.Now)),
		resolver,
		grants,
		issuer,
		hasher,
		events,
		logger,
	)

	return &fixture{
		hasher:   hasher,
		users:    users,
		sessions: sessions,
		grants:   grants,
		rbac:     rbacService,
		issuer:   issuer,
		clock:    c,
		events:   events,
		service:  service,
	}
}

func (f *fixture) register(t *testing.T, username, email string, roles ...string) *auth.User {
	t.Helper()

	result, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: demoPassword,
		FullName: "Demo " + username,
		Roles:    roles,
	})
	require.NoError(t, err)
	return result.User
}

func (f *fixture) login(t *testing.T, identifier string) *auth.LoginResult {
	t.Helper()

	result, err := f.service.Login(context.Background(), auth.LoginInput{Identifier: identifier, Password: demoPassword})
	require.NoError(t, err)
	return result
}

/*
TestService_LoginSuperAdmin signs in a seeded Super Admin by email.
*/
func TestService_LoginSuperAdmin(t *testing.T) {
	f := newFixture(t)
	f.register(t, "superadmin", "Admin@CPOS.local", rbac.RoleSuperAdmin)

	result := f.login(t, "admin@cpos.local")

	require.Len(t, result.Context.Roles, 1)
	assert.Equal(t, rbac.RoleSuperAdmin, result.Context.Roles[0].Name)
	assert.Contains(t, result.Context.Permissions, rbac.PermManageRoles)
	assert.Equal(t, "admin@cpos.local", result.User.Email)
	assert.Equal(t, 1, f.sessions.Count())

	claims, err := f.issuer.VerifyAccess(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.Subject)
	assert.Equal(t, []string{rbac.RoleSuperAdmin}, claims.Roles)
	assert.Equal(t, result.Context.Permissions, claims.Permissions)

	refresh, err := f.issuer.VerifyRefresh(result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, f.sessions.IDs(), []string{refresh.SessionID})
}

/*
TestService_LoginByUsername verifies the identifier may be the username.
*/
func TestService_LoginByUsername(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "productadmin", "product@cpos.local", rbac.RoleProductAdmin)

	result := f.login(t, "productadmin")
	assert.Equal(t, user.ID, result.User.ID)
}

/*
TestService_LoginFailures verifies every failure looks the same and costs
exactly one password comparison, whether or not the account exists.
*/
func TestService_LoginFailures(t *testing.T) {
	f := newFixture(t)
	disabled := f.register(t, "disabled", "disabled@cpos.local", rbac.RoleCategoryAdmin)
	f.register(t, "active", "active@cpos.local", rbac.RoleCategoryAdmin)
	require.NoError(t, f.users.SetEnabled(context.Background(), disabled.ID, false))

	tests := []struct {
		name       string
		identifier string
		password   string
	}{
		{"unknown identifier", "ghost@cpos.local", demoPassword},
		{"wrong password", "active", "Passw0rd?"},
		{"disabled account", "disabled", demoPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.hasher.comparisons = 0
			_, err := f.service.Login(context.Background(), auth.LoginInput{Identifier: tt.identifier, Password: tt.password})
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
			assert.Equal(t, 1, f.hasher.comparisons)
		})
	}
	assert.Equal(t, 0, f.sessions.Count())
}

/*
TestService_ProductAdminCannotDelete signs in a Product Admin limited to
read/update and checks the gate rejects product deletion.
*/
func TestService_ProductAdminCannotDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role := f.grants.RoleByName(rbac.RoleProductAdmin)
	require.NoError(t, f.rbac.ReplaceRolePermissions(ctx, role.ID, []string{rbac.PermProductRead, rbac.PermProductUpdate}))
	f.register(t, "productadmin", "product@cpos.local", rbac.RoleProductAdmin)

	result := f.login(t, "productadmin")
	assert.Equal(t, []string{rbac.PermProductRead, rbac.PermProductUpdate}, result.Context.Permissions)

	gate := middleware.NewGate(f.issuer, nil)
	router := chi.NewRouter()
	router.With(gate.Authenticate, gate.RequirePermission(rbac.PermProductDelete)).
		Delete("/products/{id}", func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusNoContent) })

	request := httptest.NewRequest(http.MethodDelete, "/products/1", nil)
	request.Header.Set("Authorization", "Bearer "+result.AccessToken)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

/*
TestService_RefreshReflectsRoleChanges verifies refresh re-resolves grants
and rotates the session.
*/
func TestService_RefreshReflectsRoleChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "categoryadmin", "category@cpos.local", rbac.RoleCategoryAdmin)
	login := f.login(t, "categoryadmin")

	productAdmin := f.grants.RoleByName(rbac.RoleProductAdmin)
	require.NoError(t, f.grants.AssignRoles(ctx, user.ID, []string{productAdmin.ID}, ""))

	f.clock.Advance(time.Minute)
	pair, err := f.service.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)

	claims, err := f.issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)

	fresh, err := rbac.NewResolver(f.grants).ResolveContext(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.Permissions, claims.Permissions)
	assert.Contains(t, claims.Permissions, rbac.PermProductRead)
	assert.ElementsMatch(t, []string{rbac.RoleCategoryAdmin, rbac.RoleProductAdmin}, claims.Roles)

	refreshClaims, err := f.issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, f.sessions.IDs(), []string{refreshClaims.SessionID}, "same session, rotated in place")

	_, err = f.service.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrSessionMismatch, "rotated token is single use")

	_, err = f.service.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

/*
TestService_RefreshAfterLogout verifies a revoked session cannot refresh.
*/
func TestService_RefreshAfterLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "superadmin", "admin@cpos.local", rbac.RoleSuperAdmin)
	login := f.login(t, "superadmin")

	require.NoError(t, f.service.Logout(ctx, login.RefreshToken))
	require.NoError(t, f.service.Logout(ctx, login.RefreshToken), "logout is idempotent")

	_, err := f.service.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

/*
TestService_LogoutExpiredToken verifies cleanup works after token expiry.
*/
func TestService_LogoutExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "superadmin", "admin@cpos.local", rbac.RoleSuperAdmin)
	login := f.login(t, "superadmin")

	f.clock.Advance(8 * 24 * time.Hour)

	_, err := f.service.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	require.NoError(t, f.service.Logout(ctx, login.RefreshToken))
	assert.Equal(t, 0, f.sessions.Count())

	assert.ErrorIs(t, f.service.Logout(ctx, "not-a-token"), sec.ErrInvalidToken)
	assert.ErrorIs(t, f.service.Logout(ctx, login.AccessToken), sec.ErrInvalidToken, "access token is not a refresh token")
}

/*
TestService_Register covers conflicts, role validation and input checks.
*/
func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves context without opening a session", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.service.Register(ctx, auth.RegisterInput{
			Username: "both",
			Email:    "both@cpos.local",
			Password: demoPassword,
			FullName: "Both Admin",
			Roles:    []string{rbac.RoleProductAdmin, rbac.RoleCategoryAdmin, rbac.RoleProductAdmin},
		})
		require.NoError(t, err)

		assert.True(t, result.User.IsEnabled)
		assert.NotEqual(t, demoPassword, result.User.PasswordHash)
		assert.Len(t, result.Context.Roles, 2)
		assert.Len(t, result.Context.Permissions, 10)
		assert.Equal(t, 0, f.sessions.Count())
	})

	t.Run("conflict on username or email", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "taken", "taken@cpos.local", rbac.RoleProductAdmin)

		for _, input := range []auth.RegisterInput{
			{Username: "taken", Email: "fresh@cpos.local"},
			{Username: "fresh", Email: "TAKEN@cpos.local"},
		} {
			input.Password, input.FullName, input.Roles = demoPassword, "Someone", []string{rbac.RoleProductAdmin}
			_, err := f.service.Register(ctx, input)
			assert.True(t, apperr.HasCode(err, apperr.CodeConflict), input.Username)
		}
	})

	t.Run("unknown role creates nothing", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Register(ctx, auth.RegisterInput{
			Username: "ghost",
			Email:    "ghost@cpos.local",
			Password: demoPassword,
			FullName: "Ghost",
			Roles:    []string{rbac.RoleProductAdmin, "Warehouse Admin"},
		})
		assert.ErrorIs(t, err, auth.ErrInvalidRoles)

		_, err = f.users.FindByLogin(ctx, "ghost")
		assert.Error(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Register(ctx, auth.RegisterInput{
			Username: "ab",
			Email:    "not-an-email",
			Password: "short",
			Roles:    []string{},
		})
		require.True(t, apperr.HasCode(err, apperr.CodeValidation))
		assert.Len(t, apperr.As(err).Details, 5)
	})
}

/*
TestService_RecordsOutcomes verifies each operation reports its outcome.
*/
func TestService_RecordsOutcomes(t *testing.T) {
	f := newFixture(t)
	f.register(t, "superadmin", "admin@cpos.local", rbac.RoleSuperAdmin)
	f.login(t, "superadmin")
	_, _ = f.service.Login(context.Background(), auth.LoginInput{Identifier: "superadmin", Password: "wrong-password"})

	assert.Equal(t, []authEvent{
		{"register", "success"},
		{"login", "success"},
		{"login", "failure"},
	}, f.events.events)
}
