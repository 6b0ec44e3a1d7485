package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/query-service/internal/auth"
	"github.com/helpdesk-kit/query-service/internal/config"
	"github.com/helpdesk-kit/query-service/internal/domain"
	"github.com/helpdesk-kit/query-service/internal/repository"
	apperrors "github.com/helpdesk-kit/query-service/pkg/errorutil"
)

// AuthService coordinates registration, login and the session ledger.
// It is stateless; the caller identity lives entirely in the issued
// token and the per-request principal.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	tokenMgr   *auth.TokenManager
	revoker    auth.Revoker
	bcryptCost int
	now        func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Revoker     auth.Revoker
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		revoker:    deps.Revoker,
		bcryptCost: cfg.Auth.BcryptCost,
		now:        time.Now,
	}
}

// Register creates a new account with the normalized upper-case
// username. The username is unique across all roles.
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	normalized := domain.NormalizeUsername(username)

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Username:       normalized,
		HashedPassword: hash,
		Role:           role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Authenticate validates username, password and role together; the
// role is part of the lookup key, so an account registered as Support
// cannot log in selecting Admin. On success a session ledger record is
// opened and a bearer token issued.
func (s *AuthService) Authenticate(ctx context.Context, username, password string, role domain.Role) (*domain.User, string, time.Time, error) {
	normalized := domain.NormalizeUsername(username)

	user, err := s.users.GetByUsernameAndRole(ctx, normalized, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.HashedPassword, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	if _, err := s.sessions.Open(ctx, user.Username, s.now()); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user.Username, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, expiresAt, nil
}

// Logout closes the newest open session ledger record for username and
// revokes the presented token. A missing open record is a no-op, not
// an error.
func (s *AuthService) Logout(ctx context.Context, username, tokenID string, tokenExpiresAt time.Time) error {
	normalized := domain.NormalizeUsername(username)

	if _, err := s.sessions.CloseLatestOpen(ctx, normalized, s.now()); err != nil {
		return apperrors.MapError(err)
	}

	if s.revoker != nil && tokenID != "" {
		if err := s.revoker.Revoke(ctx, tokenID, time.Until(tokenExpiresAt)); err != nil {
			return apperrors.MapError(err)
		}
	}
	return nil
}

// ResetPassword unconditionally overwrites the stored hash. There is
// no old-password verification; that gap is inherited from the system
// this replaces and is kept on purpose.
func (s *AuthService) ResetPassword(ctx context.Context, username, newPassword string) error {
	normalized := domain.NormalizeUsername(username)

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	if err := s.users.UpdatePassword(ctx, normalized, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"username": normalized})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
