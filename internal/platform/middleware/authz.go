// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/constants"
	"github.com/taibuivan/cpos/internal/platform/ctxutil"
	"github.com/taibuivan/cpos/internal/platform/respond"
	"github.com/taibuivan/cpos/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// Defining it here decouples the gate from the token issuer, so tests can
// inject a stub.
type TokenVerifier interface {
	VerifyAccess(tokenString string) (*sec.AccessClaims, error)
}

// DecisionRecorder receives every gate decision (metrics).
type DecisionRecorder interface {
	ObserveDecision(check, outcome string)
}

// Gate decision labels.
const (
	checkAuthenticate = "authenticate"
	checkRole         = "role"
	checkPermission   = "permission"

	outcomeAllowed = "allowed"
	outcomeDenied  = "denied"
)

// Gate is the authorization gate placed in front of protected routes.
//
// Decisions use only the claims embedded in the access token, so a grant
// change takes effect for a user at their next refresh.
type Gate struct {
	verifier TokenVerifier
	recorder DecisionRecorder
}

// NewGate creates a gate. recorder may be nil.
func NewGate(verifier TokenVerifier, recorder DecisionRecorder) *Gate {
	return &Gate{verifier: verifier, recorder: recorder}
}

// Authenticate requires a valid access token on the request.
//
// # Flow
//  1. Require an 'Authorization: Bearer <token>' header.
//  2. Verify the token via [TokenVerifier].
//  3. Inject the [*sec.Principal] into the request context for downstream use.
//
// Any failure ends the request with 401.
func (gate *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		// ── 1. Header Extraction ──────────────────────────────────────────
		tokenString, ok := bearerToken(request)
		if !ok {
			gate.observe(checkAuthenticate, outcomeDenied)
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		// ── 2. Token Verification ─────────────────────────────────────────
		claims, err := gate.verifier.VerifyAccess(tokenString)
		if err != nil {
			gate.observe(checkAuthenticate, outcomeDenied)
			ctxutil.GetLogger(ctx).DebugContext(ctx, "access_token_rejected", slog.String("reason", err.Error()))
			respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
			return
		}

		// ── 3. Context Injection ──────────────────────────────────────────
		gate.observe(checkAuthenticate, outcomeAllowed)
		principal := claims.Principal()
		ctx = ctxutil.WithAuthUser(ctx, principal)
		ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("user_id", principal.ID)))
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RequireAnyRole admits principals holding at least one of the allowed roles.
//
// Must be registered in the router AFTER [Gate.Authenticate].
func (gate *Gate) RequireAnyRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetAuthUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if principal == nil {
				gate.observe(checkRole, outcomeDenied)
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !principal.HasAnyRole(allowed...) {
				gate.observe(checkRole, outcomeDenied)
				respond.Error(writer, request, apperr.Forbidden("Insufficient role"))
				return
			}

			gate.observe(checkRole, outcomeAllowed)
			next.ServeHTTP(writer, request)
		})
	}
}

// RequirePermission admits principals whose permission set contains name.
//
// Must be registered in the router AFTER [Gate.Authenticate].
func (gate *Gate) RequirePermission(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetAuthUser(request.Context())

			if principal == nil {
				gate.observe(checkPermission, outcomeDenied)
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !principal.HasPermission(name) {
				gate.observe(checkPermission, outcomeDenied)
				respond.Error(writer, request, apperr.Forbidden("Missing permission: "+name))
				return
			}

			gate.observe(checkPermission, outcomeAllowed)
			next.ServeHTTP(writer, request)
		})
	}
}

func (gate *Gate) observe(check, outcome string) {
	if gate.recorder != nil {
		gate.recorder.ObserveDecision(check, outcome)
	}
}

// bearerToken extracts the token from 'Authorization: Bearer <token>'.
func bearerToken(request *http.Request) (string, bool) {
	header := request.Header.Get(constants.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
