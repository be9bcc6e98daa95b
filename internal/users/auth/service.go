// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/cpos/internal/platform/apperr"
	"github.com/taibuivan/cpos/internal/platform/ctxutil"
	"github.com/taibuivan/cpos/internal/platform/dberr"
	"github.com/taibuivan/cpos/internal/platform/metrics"
	"github.com/taibuivan/cpos/internal/platform/sec"
	"github.com/taibuivan/cpos/internal/platform/validate"
	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/pkg/slice"
	"github.com/taibuivan/cpos/pkg/uuid"
)

// # Contracts

// ContextResolver computes the effective roles and permissions of a user.
type ContextResolver interface {
	ResolveContext(ctx context.Context, userID string) (rbac.EffectiveContext, error)
}

// RoleDirectory looks up roles by name and grants them.
type RoleDirectory interface {
	FindRolesByNames(ctx context.Context, names []string) ([]rbac.Role, error)
	AssignRoles(ctx context.Context, userID string, roleIDs []string, assignedBy string) error
}

// TokenIssuer mints and verifies the access/refresh token pair.
type TokenIssuer interface {
	IssueAccess(grant sec.Grant) (string, error)
	IssueRefresh(grant sec.Grant, sessionID string) (string, error)
	VerifyRefresh(tokenString string) (*sec.RefreshClaims, error)
	ParseRefreshIgnoringExpiry(tokenString string) (*sec.RefreshClaims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// PasswordHasher digests and checks passwords. VerifyAbsent performs a
// comparison of equal cost for identifiers that match no account.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
	VerifyAbsent(plain string) bool
}

// EventRecorder counts authentication outcomes.
type EventRecorder interface {
	ObserveAuth(operation, outcome string)
}

// Service implements the back-office authentication flow.
//
// # Review Process
//
// This service is critical for security. Any changes to credential checks,
// session rotation or error collapsing must be reviewed by the security team.
type Service struct {
	users    UserRepository
	ledger   *Ledger
	resolver ContextResolver
	roles    RoleDirectory
	tokens   TokenIssuer
	hasher   PasswordHasher
	events   EventRecorder
	logger   *slog.Logger
}

// NewService constructs the authentication [Service]. events may be nil.
func NewService(
	users UserRepository,
	ledger *Ledger,
	resolver ContextResolver,
	roles RoleDirectory,
	tokens TokenIssuer,
	hasher PasswordHasher,
	events EventRecorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		ledger:   ledger,
		resolver: resolver,
		roles:    roles,
		tokens:   tokens,
		hasher:   hasher,
		events:   events,
		logger:   logger,
	}
}

// # Results

// TokenPair is a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	TokenPair
	User    *User
	Context rbac.EffectiveContext
}

// RegisterResult is returned by a successful Register. No tokens are issued.
type RegisterResult struct {
	User    *User
	Context rbac.EffectiveContext
}

// # Login

// LoginInput holds credentials for an authentication attempt.
type LoginInput struct {
	Identifier string // Username or email
	Password   string
	Client     ClientMeta
}

/*
Login verifies credentials and opens a new session.

Description: An unknown identifier, a disabled account and a wrong password
all fail with the same ErrInvalidCredentials.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Token pair, account and effective context
  - error: ErrInvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (result *LoginResult, err error) {
	defer func() { service.observe("login", err) }()

	user, err := service.users.FindByLogin(context, strings.TrimSpace(input.Identifier))
	if err != nil {
		if dberr.IsNotFound(err) {
			service.hasher.VerifyAbsent(input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// The digest is checked before the enabled flag so every rejection costs
	// one bcrypt comparison.
	if !service.hasher.Verify(input.Password, user.PasswordHash) || !user.IsEnabled {
		return nil, ErrInvalidCredentials
	}

	effective, err := service.resolver.ResolveContext(context, user.ID)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New()
	pair, err := service.issuePair(user.ID, effective, sessionID)
	if err != nil {
		return nil, err
	}

	if err := service.ledger.Create(context, sessionID, user.ID, pair.RefreshToken, input.Client, service.tokens.RefreshTTL()); err != nil {
		return nil, err
	}

	service.logger.Info("login_succeeded",
		slog.String("user_id", user.ID),
		slog.String("session_id", sessionID),
	)
	return &LoginResult{TokenPair: *pair, User: user, Context: effective}, nil
}

// # Refresh

/*
Refresh exchanges a refresh token for a new pair and rotates its session.

Description: The effective context is resolved again from storage, so role
changes made since login are reflected in the new tokens.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: New access and refresh tokens
  - error: sec.ErrInvalidToken, ErrSessionNotFound, ErrSessionExpired,
    ErrSessionMismatch or internal failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (pair *TokenPair, err error) {
	defer func() { service.observe("refresh", err) }()

	claims, err := service.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := service.ledger.Validate(context, claims.SessionID, claims.Subject, refreshToken); err != nil {
		return nil, err
	}

	effective, err := service.resolver.ResolveContext(context, claims.Subject)
	if err != nil {
		return nil, err
	}

	pair, err = service.issuePair(claims.Subject, effective, claims.SessionID)
	if err != nil {
		return nil, err
	}

	if err := service.ledger.Rotate(context, claims.SessionID, pair.RefreshToken, service.tokens.RefreshTTL()); err != nil {
		return nil, err
	}

	service.logger.Info("session_rotated",
		slog.String("user_id", claims.Subject),
		slog.String("session_id", claims.SessionID),
	)
	return pair, nil
}

// # Logout

// Logout revokes the session named by refreshToken. The token must carry a
// valid signature but may be expired. Logging out twice succeeds.
func (service *Service) Logout(context context.Context, refreshToken string) (err error) {
	defer func() { service.observe("logout", err) }()

	claims, err := service.tokens.ParseRefreshIgnoringExpiry(refreshToken)
	if err != nil {
		return err
	}

	if err := service.ledger.Revoke(context, claims.SessionID, claims.Subject); err != nil {
		return err
	}

	service.logger.Info("session_revoked",
		slog.String("user_id", claims.Subject),
		slog.String("session_id", claims.SessionID),
	)
	return nil
}

// # Registration

// RegisterInput is the payload for enrolling a new operator.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Roles    []string
}

/*
Register validates and creates an account holding the named roles.

Description: Every role name must exist or nothing is created. The account is
enabled but no session is opened.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegisterResult: Created account and its effective context
  - error: Validation, Conflict, ErrInvalidRoles or storage failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (result *RegisterResult, err error) {
	defer func() { service.observe("register", err) }()

	input.Username = strings.TrimSpace(input.Username)
	input.Email = NormalizeEmail(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	input.Roles = slice.Unique(input.Roles)

	validator := validate.New()
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, minUsernameLength).
		MaxLen(FieldUsername, input.Username, maxUsernameLength)
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	validator.MinLen(FieldPassword, input.Password, minPasswordLength).
		MaxLen(FieldPassword, input.Password, maxPasswordLength)
	validator.Required(FieldFullName, input.FullName).MaxLen(FieldFullName, input.FullName, maxFullNameLength)
	validator.NotEmpty(FieldRoles, input.Roles)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	taken, err := service.users.ExistsByUsernameOrEmail(context, input.Username, input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("Username or email already exists")
	}

	roles, err := service.roles.FindRolesByNames(context, input.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) != len(input.Roles) {
		return nil, ErrInvalidRoles
	}

	hash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		IsEnabled:    true,
	}
	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	roleIDs := slice.Map(roles, func(role rbac.Role) string { return role.ID })
	if err := service.roles.AssignRoles(context, user.ID, roleIDs, actorID(context)); err != nil {
		return nil, err
	}

	effective, err := service.resolver.ResolveContext(context, user.ID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_registered",
		slog.String("user_id", user.ID),
		slog.Any("roles", effective.RoleNames()),
	)
	return &RegisterResult{User: user, Context: effective}, nil
}

// # Helpers

func (service *Service) issuePair(userID string, effective rbac.EffectiveContext, sessionID string) (*TokenPair, error) {
	grant := sec.Grant{
		Subject:     userID,
		Roles:       effective.RoleNames(),
		Permissions: effective.Permissions,
	}

	accessToken, err := service.tokens.IssueAccess(grant)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokens.IssueRefresh(grant, sessionID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    service.tokens.AccessTTL(),
	}, nil
}

func (service *Service) observe(operation string, err error) {
	if service.events == nil {
		return
	}
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	service.events.ObserveAuth(operation, outcome)
}

// actorID returns the signed-in principal granting roles, or "" for self-service.
func actorID(ctx context.Context) string {
	if principal := ctxutil.GetAuthUser(ctx); principal != nil {
		return principal.ID
	}
	return ""
}
