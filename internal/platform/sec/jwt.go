// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing) from
// the domain logic. It is injected into the application layer through small
// consumer-side interfaces such as [middleware.TokenVerifier].
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for every token that fails verification:
// bad signature, wrong secret, malformed payload, wrong issuer or expired.
var ErrInvalidToken = errors.New("sec: invalid token")

// Grant is the identity snapshot embedded into issued tokens.
type Grant struct {
	Subject     string
	Roles       []string
	Permissions []string
}

// AccessClaims represents the payload embedded inside a JWT access token.
//
// Roles and permissions are embedded so the authorization gate can decide
// without a storage round-trip. They are a snapshot taken at issuance.
type AccessClaims struct {
	jwt.RegisteredClaims

	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// RefreshClaims is the payload of a refresh token. It binds the token to a
// server-side session row through SessionID.
type RefreshClaims struct {
	jwt.RegisteredClaims

	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	SessionID   string   `json:"sessionId"`
}

// Principal reconstructs the caller identity carried by an access token.
func (claims *AccessClaims) Principal() *Principal {
	return &Principal{
		ID:          claims.Subject,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
	}
}

// TokenConfig carries the signing material and lifetimes for a [TokenIssuer].
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenIssuer signs and verifies HS256 access and refresh tokens.
// The two token kinds use independent secrets so one can never stand in
// for the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// IssuerOption customizes a [TokenIssuer].
type IssuerOption func(*TokenIssuer)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) IssuerOption {
	return func(issuer *TokenIssuer) {
		issuer.now = now
	}
}

// NewTokenIssuer creates a new TokenIssuer.
func NewTokenIssuer(cfg TokenConfig, opts ...IssuerOption) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("sec: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("sec: token lifetimes must be positive")
	}

	issuer := &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer, nil
}

// AccessTTL returns the configured access-token lifetime.
func (issuer *TokenIssuer) AccessTTL() time.Duration { return issuer.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (issuer *TokenIssuer) RefreshTTL() time.Duration { return issuer.refreshTTL }

// # Issuance

// IssueAccess signs a short-lived access token for grant.
func (issuer *TokenIssuer) IssueAccess(grant Grant) (string, error) {
	registered, err := issuer.registered(grant.Subject, issuer.accessTTL)
	if err != nil {
		return "", err
	}

	claims := AccessClaims{
		RegisteredClaims: registered,
		Roles:            nonNil(grant.Roles),
		Permissions:      nonNil(grant.Permissions),
	}
	return issuer.sign(claims, issuer.accessSecret)
}

// IssueRefresh signs a long-lived refresh token bound to sessionID.
func (issuer *TokenIssuer) IssueRefresh(grant Grant, sessionID string) (string, error) {
	registered, err := issuer.registered(grant.Subject, issuer.refreshTTL)
	if err != nil {
		return "", err
	}

	claims := RefreshClaims{
		RegisteredClaims: registered,
		Roles:            nonNil(grant.Roles),
		Permissions:      nonNil(grant.Permissions),
		SessionID:        sessionID,
	}
	return issuer.sign(claims, issuer.refreshSecret)
}

func (issuer *TokenIssuer) registered(subject string, ttl time.Duration) (jwt.RegisteredClaims, error) {
	if subject == "" {
		return jwt.RegisteredClaims{}, errors.New("sec: token subject is required")
	}

	// A unique jti keeps two tokens minted within the same second distinct.
	tokenID, err := uuid.NewV7()
	if err != nil {
		return jwt.RegisteredClaims{}, fmt.Errorf("sec: failed to generate token id: %w", err)
	}

	currentTime := issuer.now()
	return jwt.RegisteredClaims{
		ID:        tokenID.String(),
		Subject:   subject,
		Issuer:    issuer.issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(ttl)),
	}, nil
}

func (issuer *TokenIssuer) sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

// # Verification

// VerifyAccess checks the signature, issuer and expiry of an access token.
func (issuer *TokenIssuer) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := issuer.parse(tokenString, claims, issuer.accessSecret, true); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh checks the signature, issuer and expiry of a refresh token.
func (issuer *TokenIssuer) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := issuer.parse(tokenString, claims, issuer.refreshSecret, true); err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	return claims, nil
}

// ParseRefreshIgnoringExpiry verifies a refresh token's signature and issuer
// but accepts it after expiry. Logout uses it so that a stale token can still
// remove its session row.
func (issuer *TokenIssuer) ParseRefreshIgnoringExpiry(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := issuer.parse(tokenString, claims, issuer.refreshSecret, false); err != nil {
		return nil, err
	}
	if claims.Issuer != issuer.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	return claims, nil
}

func (issuer *TokenIssuer) parse(tokenString string, claims jwt.Claims, secret []byte, validateClaims bool) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(issuer.now),
	}
	if validateClaims {
		options = append(options, jwt.WithIssuer(issuer.issuer), jwt.WithExpirationRequired())
	} else {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, options...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
