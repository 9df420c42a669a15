package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/device-cost-service/internal/auth"
	"github.com/spec-kit/device-cost-service/internal/config"
	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/repository"
	apperrors "github.com/spec-kit/device-cost-service/pkg/util/errorutil"
)

// errInvalidCredentials covers both unknown names and wrong passwords.
var errInvalidCredentials = apperrors.NewUnauthorized("invalid credentials")

// AuthService coordinates registration, login and logout.
type AuthService struct {
	users      repository.UserRepository
	sessions   *auth.SessionStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Sessions *auth.SessionStore
	Logger   *zap.Logger
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  *domain.User
	Token auth.IssuedToken
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	details := map[string]any{}
	if err := auth.ValidateName(name); err != nil {
		details["name"] = err.Error()
	}
	if err := auth.ValidatePassword(password); err != nil {
		details["password"] = err.Error()
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: hash,
		LastLoginAt:  &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return nil, apperrors.NewConflict("name already registered", map[string]any{"name": name})
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.openSession(ctx, user)
}

// Login verifies credentials and records the login time.
func (s *AuthService) Login(ctx context.Context, name, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, apperrors.NewValidationError("name and password required", nil)
	}

	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, errInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return s.openSession(ctx, user)
}

// Logout ends the session and records the logout time.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	s.sessions.Revoke(ctx, principal.Session.TokenID)
	err := s.users.TouchLogout(ctx, principal.User.ID, s.now().UTC())
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	issued, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.sessions.Save(ctx, domain.Session{
		TokenID:   issued.TokenID,
		UserID:    user.ID,
		IssuedAt:  issued.IssuedAt,
		ExpiresAt: issued.ExpiresAt,
	})
	return &AuthResult{User: user, Token: issued}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
