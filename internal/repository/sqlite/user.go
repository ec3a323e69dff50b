package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
	"github.com/nkiryanov/gopherauth/internal/models"
	"github.com/nkiryanov/gopherauth/internal/repository"
)

type UserRepo struct {
	DB *sql.DB
}

const userColumns = `id, created_at, username, email, first_name, last_name, middle_name, password_hash`

const createUser = `
INSERT INTO users (id, created_at, username, email, first_name, last_name, middle_name, password_hash)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, createUser,
		uuid.New(), toUnix(time.Now()), arg.Username, arg.Email, arg.FirstName, arg.LastName, arg.MiddleName, arg.PasswordHash,
	)
	user, err := scanUser(row)

	if err != nil {
		var sqliteErr *sqlitedrv.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return user, conflictFromMessage(sqliteErr.Error())
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return collectUser(row)
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return collectUser(row)
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return collectUser(row)
}

func (r *UserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := result.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case affected == 0:
		return apperrors.ErrUserNotFound
	default:
		return nil
	}
}

func collectUser(row *sql.Row) (models.User, error) {
	user, err := scanUser(row)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, sql.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func scanUser(row *sql.Row) (models.User, error) {
	var (
		u         models.User
		createdAt int64
	)
	err := row.Scan(&u.ID, &createdAt, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.MiddleName, &u.PasswordHash)
	u.CreatedAt = fromUnix(createdAt)
	return u, err
}

// SQLite reports unique violations as "UNIQUE constraint failed: users.email"
func conflictFromMessage(msg string) *apperrors.ConflictError {
	conflict := &apperrors.ConflictError{}
	for _, field := range []string{"email", "username"} {
		if strings.Contains(msg, "users."+field) {
			conflict.Fields = append(conflict.Fields, field)
		}
	}
	return conflict
}
