// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/audit"
	"github.com/taibuivan/cpos/internal/platform/sec"
	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/internal/rbac/rbactest"
	"github.com/taibuivan/cpos/internal/users/account"
	"github.com/taibuivan/cpos/internal/users/auth"
	"github.com/taibuivan/cpos/internal/users/auth/authtest"
	"github.com/taibuivan/cpos/pkg/pagination"
	"github.com/taibuivan/cpos/pkg/slice"
	"github.com/taibuivan/cpos/pkg/uuid"
)

const demoPassword = "Passw0rd!"

// directory joins the in-memory accounts with their role names.
type directory struct {
	users  *authtest.Users
	grants *rbactest.Memory
}

func (d directory) ListAccounts(ctx context.Context, limit, offset int) ([]account.Account, int, error) {
	users, total, err := d.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	accounts := []account.Account{}
	for _, user := range users {
		roles, err := d.grants.ListUserRoles(ctx, user.ID)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, account.Account{
			User:  user,
			Roles: slice.Map(roles, func(role rbac.Role) string { return role.Name }),
		})
	}
	return accounts, total, nil
}

type fixture struct {
	users    *authtest.Users
	sessions *authtest.Sessions
	grants   *rbactest.Memory
	issuer   *sec.TokenIssuer
	auth     *auth.Service
	service  *account.Service
	audit    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditLog := &bytes.Buffer{}
	auditor := audit.New(slog.New(slog.NewJSONHandler(auditLog, nil)))

	grants := rbactest.NewMemory()
	resolver := rbac.NewResolver(grants)
	rbacService := rbac.NewService(grants, resolver, auditor, discard)
	require.NoError(t, rbacService.SeedCatalog(context.Background(), rbac.DefaultCatalog()))

	issuer, err := sec.NewTokenIssuer(sec.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "cpos-test",
	})
	require.NoError(t, err)

	users := authtest.NewUsers()
	sessions := authtest.NewSessions()
	ledger := auth.NewLedger(sessions)
	authService := auth.NewService(users, ledger, resolver, grants, issuer, sec.NewPasswordHasher(bcrypt.MinCost), nil, discard)

	service := account.NewService(
		directory{users: users, grants: grants},
		users,
		authService,
		resolver,
		rbacService,
		ledger,
		auditor,
		discard,
	)

	return &fixture{
		users:    users,
		sessions: sessions,
		grants:   grants,
		issuer:   issuer,
		auth:     authService,
		service:  service,
		audit:    auditLog,
	}
}

func (f *fixture) provision(t *testing.T, username string, roles ...string) *account.Detail {
	t.Helper()

	detail, err := f.service.Create(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    username + "@cpos.local",
		Password: demoPassword,
		FullName: "Demo " + username,
		Roles:    roles,
	})
	require.NoError(t, err)
	return detail
}

func (f *fixture) login(t *testing.T, username string) *auth.LoginResult {
	t.Helper()

	result, err := f.auth.Login(context.Background(), auth.LoginInput{Identifier: username, Password: demoPassword})
	require.NoError(t, err)
	return result
}

/*
TestService_Create verifies provisioning and its audit trail.
*/
func TestService_Create(t *testing.T) {
	f := newFixture(t)

	detail := f.provision(t, "productadmin", rbac.RoleProductAdmin)
	assert.True(t, detail.User.IsEnabled)
	assert.Contains(t, detail.Permissions, rbac.PermProductDelete)
	assert.Contains(t, f.audit.String(), `"action":"user.created"`)

	_, err := f.service.Create(context.Background(), auth.RegisterInput{
		Username: "ghost",
		Email:    "ghost@cpos.local",
		Password: demoPassword,
		FullName: "Ghost",
		Roles:    []string{"Warehouse Admin"},
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestService_List verifies paging and role names.
*/
func TestService_List(t *testing.T) {
	f := newFixture(t)
	f.provision(t, "first", rbac.RoleCategoryAdmin)
	f.provision(t, "second", rbac.RoleProductAdmin, rbac.RoleCategoryAdmin)
	f.provision(t, "third", rbac.RoleSuperAdmin)

	page, total, err := f.service.List(context.Background(), pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "third", page[0].Username)
	assert.Equal(t, []string{rbac.RoleSuperAdmin}, page[0].Roles)
	assert.ElementsMatch(t, []string{rbac.RoleProductAdmin, rbac.RoleCategoryAdmin}, page[1].Roles)

	page, _, err = f.service.List(context.Background(), pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "first", page[0].Username)
}

/*
TestService_Get covers lookup failures and the resolved context.
*/
func TestService_Get(t *testing.T) {
	f := newFixture(t)
	created := f.provision(t, "categoryadmin", rbac.RoleCategoryAdmin)

	detail, err := f.service.Get(context.Background(), created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Permissions, detail.Permissions)

	_, err = f.service.Get(context.Background(), "not-a-uuid")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.Get(context.Background(), uuid.New())
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestService_ReplaceRoles verifies a full replacement is visible at the next refresh.
*/
func TestService_ReplaceRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.provision(t, "categoryadmin", rbac.RoleCategoryAdmin)
	login := f.login(t, "categoryadmin")

	productAdmin := f.grants.RoleByName(rbac.RoleProductAdmin)
	detail, err := f.service.ReplaceRoles(ctx, created.User.ID, []string{productAdmin.ID})
	require.NoError(t, err)
	assert.NotContains(t, detail.Permissions, rbac.PermCategoryRead)
	assert.Contains(t, detail.Permissions, rbac.PermProductRead)

	pair, err := f.auth.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	claims, err := f.issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{rbac.RoleProductAdmin}, claims.Roles)

	_, err = f.service.ReplaceRoles(ctx, uuid.New(), []string{productAdmin.ID})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = f.service.ReplaceRoles(ctx, created.User.ID, []string{uuid.New()})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	detail, err = f.service.ReplaceRoles(ctx, created.User.ID, []string{})
	require.NoError(t, err)
	assert.Empty(t, detail.Roles)
	assert.Empty(t, detail.Permissions)
}

/*
TestService_SetStatus verifies disabling revokes sessions and blocks login.
*/
func TestService_SetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.provision(t, "productadmin", rbac.RoleProductAdmin)
	login := f.login(t, "productadmin")
	f.login(t, "productadmin")
	require.Equal(t, 2, f.sessions.Count())

	user, err := f.service.SetStatus(ctx, created.User.ID, false)
	require.NoError(t, err)
	assert.False(t, user.IsEnabled)
	assert.Equal(t, 0, f.sessions.Count())
	assert.Contains(t, f.audit.String(), `"action":"user.status.changed"`)

	_, err = f.auth.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	_, err = f.auth.Login(ctx, auth.LoginInput{Identifier: "productadmin", Password: demoPassword})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.service.SetStatus(ctx, created.User.ID, true)
	require.NoError(t, err)
	f.login(t, "productadmin")

	_, err = f.service.SetStatus(ctx, uuid.New(), false)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
