package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/core/domain"
	portsrepo "github.com/finsight-app/finsight_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAPITokenRepository struct {
	db *pgxpool.Pool
}

func newPgxAPITokenRepository(db *pgxpool.Pool) portsrepo.APITokenRepository {
	return &PgxAPITokenRepository{db: db}
}

// Ensure PgxAPITokenRepository implements portsrepo.APITokenRepository
var _ portsrepo.APITokenRepository = (*PgxAPITokenRepository)(nil)

const apiTokenColumns = `id, user_id, name, token_hash, last_used_at, expires_at, created_at, updated_at`

func scanAPIToken(row pgx.Row) (*domain.APIToken, error) {
	var token domain.APIToken
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Name,
		&token.TokenHash,
		&token.LastUsedAt,
		&token.ExpiresAt,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *PgxAPITokenRepository) SaveAPIToken(ctx context.Context, token domain.APIToken) error {
	query := `
        INSERT INTO api_tokens (id, user_id, name, token_hash, expires_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7);
    `
	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Name,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
		token.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save API token: %w", err)
	}
	return nil
}

func (r *PgxAPITokenRepository) FindAPITokenByHash(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	query := `
		SELECT ` + apiTokenColumns + `
		FROM api_tokens
		WHERE token_hash = $1 AND deleted_at IS NULL;
	`
	token, err := scanAPIToken(r.db.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find API token by hash: %w", err)
	}
	return token, nil
}

func (r *PgxAPITokenRepository) ListAPITokensByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	query := `
        SELECT ` + apiTokenColumns + `
        FROM api_tokens
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC;
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query API tokens: %w", err)
	}
	defer rows.Close()

	tokens := []domain.APIToken{}
	for rows.Next() {
		token, err := scanAPIToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API token row: %w", err)
		}
		tokens = append(tokens, *token)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating API token rows: %w", rows.Err())
	}
	return tokens, nil
}

func (r *PgxAPITokenRepository) UpdateLastUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	query := `
        UPDATE api_tokens
        SET last_used_at = $1, updated_at = $1
        WHERE id = $2 AND deleted_at IS NULL;
    `
	if _, err := r.db.Exec(ctx, query, usedAt, tokenID); err != nil {
		return fmt.Errorf("failed to update API token last used: %w", err)
	}
	return nil
}

func (r *PgxAPITokenRepository) DeleteAPIToken(ctx context.Context, userID, tokenID string) error {
	query := `
        UPDATE api_tokens
        SET deleted_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL;
    `
	cmdTag, err := r.db.Exec(ctx, query, tokenID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete API token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("API token not found: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxAPITokenRepository) DeleteAPITokensByUserID(ctx context.Context, userID string) error {
	query := `
        UPDATE api_tokens
        SET deleted_at = NOW(), updated_at = NOW()
        WHERE user_id = $1 AND deleted_at IS NULL;
    `
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete API tokens for user: %w", err)
	}
	return nil
}

func (r *PgxAPITokenRepository) DeleteExpiredAPITokens(ctx context.Context, before time.Time) (int64, error) {
	query := `
        UPDATE api_tokens
        SET deleted_at = NOW(), updated_at = NOW()
        WHERE expires_at IS NOT NULL AND expires_at < $1 AND deleted_at IS NULL;
    `
	cmdTag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired API tokens: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
