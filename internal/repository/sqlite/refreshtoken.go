package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
	"github.com/nkiryanov/gopherauth/internal/models"
)

type RefreshTokenRepo struct {
	DB *sql.DB
}

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, created_at) VALUES (?, ?, ?, ?)`,
		token.ID, token.UserID, token.TokenHash, toUnix(token.CreatedAt),
	)
	if err != nil {
		return models.RefreshToken{}, fmt.Errorf("db error: %w", err)
	}

	token.CreatedAt = fromUnix(toUnix(token.CreatedAt))
	return token, nil
}

func (r *RefreshTokenRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RefreshToken, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, token_hash, created_at FROM refresh_tokens WHERE user_id = ? ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	tokens := make([]models.RefreshToken, 0)
	for rows.Next() {
		var (
			t         models.RefreshToken
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenHash, &createdAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		t.CreatedAt = fromUnix(createdAt)
		tokens = append(tokens, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tokens, nil
}

func (r *RefreshTokenRepo) Delete(ctx context.Context, tokenID uuid.UUID) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = ?`, tokenID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := result.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case affected == 0:
		return fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return nil
	}
}

func (r *RefreshTokenRepo) DeleteCreatedBefore(ctx context.Context, userID uuid.UUID, before time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = ? AND created_at < ?`,
		userID, toUnix(before),
	)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return result.RowsAffected()
}
