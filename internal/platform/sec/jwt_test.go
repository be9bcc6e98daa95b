// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cpos/internal/platform/sec"
)

type fakeClock struct{ current time.Time }

func (clock *fakeClock) Now() time.Time { return clock.current }
func (clock *fakeClock) Advance(d time.Duration) { clock.current = clock.current.Add(d) }

func newIssuer(t *testing.T) (*sec.TokenIssuer, *fakeClock) {
	t.Helper()
	clock := &fakeClock{current: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	issuer, err := sec.NewTokenIssuer(sec.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "cpos-test",
	}, sec.WithClock(clock.Now))
	require.NoError(t, err)
	return issuer, clock
}

var superAdmin = sec.Grant{
	Subject:     "user-1",
	Roles:       []string{"Super Admin"},
	Permissions: []string{"rbac.manage.roles", "product.read"},
}

/*
TestAccessToken_RoundTrip verifies that claims survive signing and verification.
*/
func TestAccessToken_RoundTrip(t *testing.T) {
	issuer, _ := newIssuer(t)

	token, err := issuer.IssueAccess(superAdmin)
	require.NoError(t, err)

	claims, err := issuer.VerifyAccess(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, superAdmin.Roles, claims.Roles)
	assert.Equal(t, superAdmin.Permissions, claims.Permissions)
	assert.NotEmpty(t, claims.ID)

	principal := claims.Principal()
	assert.Equal(t, "user-1", principal.ID)
	assert.True(t, principal.HasPermission("rbac.manage.roles"))
}

/*
TestRefreshToken_RoundTrip verifies the session binding is preserved.
*/
func TestRefreshToken_RoundTrip(t *testing.T) {
	issuer, _ := newIssuer(t)

	token, err := issuer.IssueRefresh(superAdmin, "session-1")
	require.NoError(t, err)

	claims, err := issuer.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "user-1", claims.Subject)
}

/*
TestTokens_AreNotInterchangeable verifies each kind only verifies with its own secret.
*/
func TestTokens_AreNotInterchangeable(t *testing.T) {
	issuer, _ := newIssuer(t)

	access, err := issuer.IssueAccess(superAdmin)
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh(superAdmin, "session-1")
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokens_Expiry verifies expired tokens are rejected and that logout parsing
still accepts an expired refresh token.
*/
func TestTokens_Expiry(t *testing.T) {
	issuer, clock := newIssuer(t)

	access, err := issuer.IssueAccess(superAdmin)
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh(superAdmin, "session-1")
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)
	_, err = issuer.VerifyAccess(access)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	clock.Advance(8 * 24 * time.Hour)
	_, err = issuer.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	claims, err := issuer.ParseRefreshIgnoringExpiry(refresh)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
}

/*
TestTokens_Rejected covers malformed, tampered and foreign tokens.
*/
func TestTokens_Rejected(t *testing.T) {
	issuer, _ := newIssuer(t)
	other, err := sec.NewTokenIssuer(sec.TokenConfig{
		AccessSecret:  "someone-else",
		RefreshSecret: "someone-else-refresh",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "cpos-test",
	})
	require.NoError(t, err)

	valid, err := issuer.IssueAccess(superAdmin)
	require.NoError(t, err)
	foreign, err := other.IssueAccess(superAdmin)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":    "",
		"garbage":  "not-a-token",
		"tampered": tampered,
		"foreign":  foreign,
		"alg none": unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.VerifyAccess(token)
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
		})
	}
}

/*
TestTokens_UniquePerIssue verifies two tokens issued in the same instant differ.
*/
func TestTokens_UniquePerIssue(t *testing.T) {
	issuer, _ := newIssuer(t)

	first, err := issuer.IssueRefresh(superAdmin, "session-1")
	require.NoError(t, err)
	second, err := issuer.IssueRefresh(superAdmin, "session-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewTokenIssuer_RejectsSharedSecret(t *testing.T) {
	_, err := sec.NewTokenIssuer(sec.TokenConfig{
		AccessSecret:  "same",
		RefreshSecret: "same",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	assert.Error(t, err)
}
