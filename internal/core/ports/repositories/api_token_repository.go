package repositories

import (
	"context"
	"time"

	"github.com/finsight-app/finsight_backend/internal/core/domain"
)

// APITokenRepository defines persistence operations for API tokens.
type APITokenRepository interface {
	// SaveAPIToken persists a newly created token.
	SaveAPIToken(ctx context.Context, token domain.APIToken) error

	// FindAPITokenByHash looks a token up by its stored hash.
	FindAPITokenByHash(ctx context.Context, tokenHash string) (*domain.APIToken, error)

	// ListAPITokensByUserID returns all tokens owned by the user.
	ListAPITokensByUserID(ctx context.Context, userID string) ([]domain.APIToken, error)

	// UpdateLastUsed stamps the token's last-used time.
	UpdateLastUsed(ctx context.Context, tokenID string, usedAt time.Time) error

	// DeleteAPIToken removes a token owned by userID.
	DeleteAPIToken(ctx context.Context, userID, tokenID string) error

	// DeleteAPITokensByUserID removes all tokens owned by the user.
	DeleteAPITokensByUserID(ctx context.Context, userID string) error

	// DeleteExpiredAPITokens removes tokens that expired before the given
	// time and returns how many were removed.
	DeleteExpiredAPITokens(ctx context.Context, before time.Time) (int64, error)
}
