package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "auth:revoked:"

// SessionStore records revoked token ids in redis until their natural expiry
type SessionStore struct {
	helper *CacheHelper
	logger *slog.Logger
	now    func() time.Time
}

func NewSessionStore(client *redis.Client, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		helper: NewCacheHelper(client, revokedTokenPrefix),
		logger: logger,
		now:    time.Now,
	}
}

// Revoke marks tokenID revoked. Already expired tokens are not stored.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if !s.helper.Available() {
		s.logger.WarnContext(ctx, "Token revocation skipped, cache not available", "token_id", tokenID)
		return nil
	}

	if err := s.helper.SetString(ctx, tokenID, "1", ttl); err != nil {
		s.logger.ErrorContext(ctx, "Failed to revoke token", "error", err, "token_id", tokenID)
		return err
	}
	return nil
}

func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	revoked, err := s.helper.Exists(ctx, tokenID)
	if errors.Is(err, ErrCacheNotAvailable) {
		return false, nil
	}
	return revoked, err
}

func (s *SessionStore) HealthCheck(ctx context.Context) error {
	return s.helper.HealthCheck(ctx)
}
