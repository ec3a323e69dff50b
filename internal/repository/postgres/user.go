package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
	"github.com/nkiryanov/gopherauth/internal/models"
	"github.com/nkiryanov/gopherauth/internal/repository"
)

// Unique constraints names are defined in migrations
var uniqueConstraintFields = map[string]string{
	"users_email_key":    "email",
	"users_username_key": "username",
}

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, username, email, first_name, last_name, middle_name, password_hash`

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, email, first_name, last_name, middle_name, password_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser,
		uuid.New(), arg.Username, arg.Email, arg.FirstName, arg.LastName, arg.MiddleName, arg.PasswordHash,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, conflictFromPgError(pgErr)
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByUsername = `-- name: GetUserByUsername
SELECT ` + userColumns + ` FROM users
WHERE username = $1
`

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByUsername, username)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users
WHERE id = $1
`

func (r *UserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteUser, id)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrUserNotFound
	default:
		return nil
	}
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.MiddleName, &u.PasswordHash)
	return u, err
}

func conflictFromPgError(pgErr *pgconn.PgError) *apperrors.ConflictError {
	conflict := &apperrors.ConflictError{}
	if field, ok := uniqueConstraintFields[pgErr.ConstraintName]; ok {
		conflict.Fields = append(conflict.Fields, field)
		return conflict
	}

	// Fallback for constraints created outside of migrations
	for _, field := range []string{"email", "username"} {
		if strings.Contains(pgErr.ConstraintName, field) {
			conflict.Fields = append(conflict.Fields, field)
		}
	}
	return conflict
}
