// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements back-office sign-in and refresh-token sessions.

It defines the account and session entities, the session [Ledger], and the
[Service] that orchestrates login, refresh, logout and registration on top of
the password hasher, the RBAC resolver and the token issuer.

# Architecture

  - Service: Login / Refresh / Logout / Register.
  - Ledger: Session lifecycle rules over a [SessionRepository].
  - Repositories: PostgreSQL for accounts; PostgreSQL or Redis for sessions.
*/
package auth

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// # Domain Entities

// User is a back-office operator account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialized.
	FullName     string    `json:"full_name"`
	IsEnabled    bool      `json:"is_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is one outstanding refresh-token lease. Its ID is the sessionId
// claim of the refresh token; TokenHash is the digest of that token.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientMeta describes the client that opened a session.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// NormalizeEmail trims and case-folds an email address. Emails are stored
// and compared in this form only.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// # Failure Reasons

// Internal reasons for rejecting a sign-in or a session. They are collapsed
// into a single client-facing error by the HTTP layer.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrSessionNotFound    = errors.New("auth: session not found")
	ErrSessionExpired     = errors.New("auth: session expired")
	ErrSessionMismatch    = errors.New("auth: session mismatch")
	ErrInvalidRoles       = errors.New("auth: one or more roles do not exist")
)

// # Field Identifiers

const (
	FieldIdentifier   = "identifier"
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldFullName     = "full_name"
	FieldRoles        = "roles"
	FieldRefreshToken = "refresh_token"
)

// # Input Constraints

const (
	minIdentifierLength   = 3
	minUsernameLength     = 3
	maxUsernameLength     = 50
	minPasswordLength     = 8
	maxPasswordLength     = 72 // bcrypt input limit
	maxFullNameLength     = 100
	minRefreshTokenLength = 20
)
