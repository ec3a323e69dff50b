package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
	"github.com/nkiryanov/gopherauth/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const saveToken = `-- name: Save Refresh Token
INSERT INTO refresh_tokens (id, user_id, token_hash, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, token_hash, created_at`

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, saveToken, token.ID, token.UserID, token.TokenHash, token.CreatedAt)
	saved, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

const listUserTokens = `-- name: List user tokens
SELECT id, user_id, token_hash, created_at
FROM refresh_tokens
WHERE user_id = $1
ORDER BY created_at
`

func (r *RefreshTokenRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, listUserTokens, userID)
	tokens, err := pgx.CollectRows(rows, rowToRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tokens, nil
}

const deleteToken = `-- name: Delete token
DELETE FROM refresh_tokens
WHERE id = $1
`

func (r *RefreshTokenRepo) Delete(ctx context.Context, tokenID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteToken, tokenID)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return nil
	}
}

const deleteCreatedBefore = `-- name: Delete user tokens created before
DELETE FROM refresh_tokens
WHERE user_id = $1 AND created_at < $2
`

func (r *RefreshTokenRepo) DeleteCreatedBefore(ctx context.Context, userID uuid.UUID, before time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteCreatedBefore, userID, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt)
	return t, err
}
