package sqlite_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
	"github.com/nkiryanov/gopherauth/internal/models"
	"github.com/nkiryanov/gopherauth/internal/repository"
	"github.com/nkiryanov/gopherauth/internal/testutil"
)

func newUserParams(username string, email string) repository.CreateUserParams {
	return repository.CreateUserParams{
		Username:     username,
		Email:        email,
		FirstName:    "alex",
		LastName:     "gracilla",
		PasswordHash: "hashedpassword123",
	}
}

func Test_UserRepo(t *testing.T) {
	t.Parallel()

	t.Run("create and get user ok", func(t *testing.T) {
		r := testutil.NewSQLiteStorage(t).User()
		middle := "mid"
		params := newUserParams("testuser", "test@user.com")
		params.MiddleName = &middle

		created, err := r.CreateUser(t.Context(), params)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, "testuser", created.Username)
		assert.Equal(t, "test@user.com", created.Email)
		require.NotNil(t, created.MiddleName)
		assert.Equal(t, "mid", *created.MiddleName)
		assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Second, "CreatedAt should be recent")

		byID, err := r.GetUserByID(t.Context(), created.ID)
		require.NoError(t, err)
		byUsername, err := r.GetUserByUsername(t.Context(), "testuser")
		require.NoError(t, err)
		byEmail, err := r.GetUserByEmail(t.Context(), "test@user.com")
		require.NoError(t, err)

		assert.Equal(t, created, byID)
		assert.Equal(t, created, byUsername)
		assert.Equal(t, created, byEmail)
	})

	t.Run("create user without middle name", func(t *testing.T) {
		r := testutil.NewSQLiteStorage(t).User()

		created, err := r.CreateUser(t.Context(), newUserParams("testuser", "test@user.com"))
		require.NoError(t, err)
		assert.Nil(t, created.MiddleName)
	})

	t.Run("create user conflict", func(t *testing.T) {
		tests := []struct {
			name   string
			params repository.CreateUserParams
			field  string
		}{
			{"same email", newUserParams("other", "test@user.com"), "email"},
			{"same username", newUserParams("testuser", "other@user.com"), "username"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := testutil.NewSQLiteStorage(t).User()
				_, err := r.CreateUser(t.Context(), newUserParams("testuser", "test@user.com"))
				require.NoError(t, err)

				_, err = r.CreateUser(t.Context(), tt.params)

				var conflict *apperrors.ConflictError
				require.ErrorAs(t, err, &conflict, "unique violation should be reported as conflict")
				assert.Equal(t, []string{tt.field}, conflict.Fields)
			})
		}
	})

	t.Run("get user not found", func(t *testing.T) {
		r := testutil.NewSQLiteStorage(t).User()

		_, err := r.GetUserByID(t.Context(), uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

		_, err = r.GetUserByUsername(t.Context(), "nonexistentuser")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

		_, err = r.GetUserByEmail(t.Context(), "nonexistent@user.com")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("delete user", func(t *testing.T) {
		r := testutil.NewSQLiteStorage(t).User()
		created, err := r.CreateUser(t.Context(), newUserParams("testuser", "test@user.com"))
		require.NoError(t, err)

		err = r.DeleteUser(t.Context(), created.ID)
		require.NoError(t, err)

		err = r.DeleteUser(t.Context(), created.ID)
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (repository.Storage, uuid.UUID) {
		storage := testutil.NewSQLiteStorage(t)
		user, err := storage.User().CreateUser(t.Context(), newUserParams("testuser", "test@user.com"))
		require.NoError(t, err)
		return storage, user.ID
	}

	newToken := func(userID uuid.UUID, createdAt time.Time) models.RefreshToken {
		return models.RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			TokenHash: "hashed-token",
			CreatedAt: createdAt,
		}
	}

	t.Run("save and list ok", func(t *testing.T) {
		storage, userID := setup(t)
		now := time.Now()

		later, err := storage.Refresh().Save(t.Context(), newToken(userID, now))
		require.NoError(t, err)
		earlier, err := storage.Refresh().Save(t.Context(), newToken(userID, now.Add(-time.Hour)))
		require.NoError(t, err)

		tokens, err := storage.Refresh().ListByUser(t.Context(), userID)

		require.NoError(t, err)
		require.Equal(t, []models.RefreshToken{earlier, later}, tokens)
		require.WithinDuration(t, now, later.CreatedAt, time.Microsecond)
	})

	t.Run("list unknown user empty", func(t *testing.T) {
		storage, _ := setup(t)

		tokens, err := storage.Refresh().ListByUser(t.Context(), uuid.New())

		require.NoError(t, err)
		require.Empty(t, tokens)
	})

	t.Run("save token of unknown user fail", func(t *testing.T) {
		storage, _ := setup(t)

		_, err := storage.Refresh().Save(t.Context(), newToken(uuid.New(), time.Now()))

		require.Error(t, err, "foreign keys must be enforced")
	})

	t.Run("delete token", func(t *testing.T) {
		storage, userID := setup(t)
		token, err := storage.Refresh().Save(t.Context(), newToken(userID, time.Now()))
		require.NoError(t, err)

		err = storage.Refresh().Delete(t.Context(), token.ID)
		require.NoError(t, err)

		err = storage.Refresh().Delete(t.Context(), token.ID)
		require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
	})

	t.Run("delete created before", func(t *testing.T) {
		storage, userID := setup(t)
		now := time.Now()
		_, err := storage.Refresh().Save(t.Context(), newToken(userID, now.Add(-48*time.Hour)))
		require.NoError(t, err)
		kept, err := storage.Refresh().Save(t.Context(), newToken(userID, now))
		require.NoError(t, err)

		deleted, err := storage.Refresh().DeleteCreatedBefore(t.Context(), userID, now.Add(-24*time.Hour))

		require.NoError(t, err)
		require.EqualValues(t, 1, deleted)
		tokens, err := storage.Refresh().ListByUser(t.Context(), userID)
		require.NoError(t, err)
		require.Equal(t, []models.RefreshToken{kept}, tokens)
	})

	t.Run("tokens deleted with user", func(t *testing.T) {
		storage, userID := setup(t)
		_, err := storage.Refresh().Save(t.Context(), newToken(userID, time.Now()))
		require.NoError(t, err)

		err = storage.User().DeleteUser(t.Context(), userID)
		require.NoError(t, err)

		tokens, err := storage.Refresh().ListByUser(t.Context(), userID)
		require.NoError(t, err)
		require.Empty(t, tokens)
	})
}

func Test_Storage_Ping(t *testing.T) {
	storage := testutil.NewSQLiteStorage(t)

	require.NoError(t, storage.Ping(t.Context()))

	require.NoError(t, storage.Close())
	require.Error(t, storage.Ping(t.Context()), "closed storage is not reachable")
}
