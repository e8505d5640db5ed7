package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/repositories"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

type authService struct {
	repo        repositories.Repository
	identity    IdentityService
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	logger      *slog.Logger
	validator   *validator.Validator
}

func NewAuthService(repo repositories.Repository, identity IdentityService, tokens *auth.TokenManager, revocations auth.RevocationStore, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:        repo,
		identity:    identity,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger,
		validator:   validator,
	}
}

// Login verifies the credential and issues a token pair. Unknown emails and
// wrong passwords fail the same way.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*auth.TokenPair, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	user, err := s.repo.User().GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Warn("Login failed", "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn("Login failed", "reason", "bad password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return pair, nil
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	return s.identity.Register(ctx, req)
}

// Refresh exchanges a valid refresh token for a new pair and revokes the old one
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		return nil, NewTokenError(err)
	}

	user, err := s.verifyClaims(ctx, claims)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt != nil {
		if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}
	return s.tokens.Issue(user)
}

// Logout revokes each token that still verifies. Invalid or expired tokens
// are ignored since they can no longer be used.
func (s *authService) Logout(ctx context.Context, tokens ...string) error {
	for _, token := range tokens {
		if token == "" {
			continue
		}

		claims, err := s.tokens.Parse(token, auth.AccessToken)
		if errors.Is(err, auth.ErrTokenWrongType) {
			claims, err = s.tokens.Parse(token, auth.RefreshToken)
		}
		if err != nil {
			continue
		}

		if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return fmt.Errorf("failed to revoke token: %w", err)
		}
		s.logger.Info("Token revoked", "subject", claims.Subject, "type", claims.Type)
	}
	return nil
}

// Authenticate turns an access token into the caller's principal
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*auth.Principal, error) {
	if accessToken == "" {
		return nil, newServiceError(KindUnauthorized, "Authentication required.", auth.ErrNotAuthenticated)
	}

	claims, err := s.tokens.Parse(accessToken, auth.AccessToken)
	if err != nil {
		return nil, NewTokenError(err)
	}

	user, err := s.verifyClaims(ctx, claims)
	if err != nil {
		return nil, err
	}

	principal, err := auth.NewPrincipal(claims)
	if err != nil {
		return nil, NewTokenError(err)
	}
	principal.Role = user.Role
	principal.Email = user.Email
	return principal, nil
}

// verifyClaims rejects revoked tokens and tokens of deleted users
func (s *authService) verifyClaims(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, NewTokenError(err)
	}
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}
	return user, nil
}

func (s *authService) Me(ctx context.Context, caller *auth.Principal) (*models.User, error) {
	if err := authorize(caller, models.RoleAdmin, models.RoleTeacher, models.RoleStudent); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, mapRepositoryError(err, ErrUserNotFound, "get current user")
	}
	return user, nil
}
