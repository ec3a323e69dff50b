package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
	"github.com/nkiryanov/gopherauth/internal/service/hasher"
	"github.com/nkiryanov/gopherauth/internal/testutil"
)

func newParams() CreateParams {
	return CreateParams{
		Username:  "testUser",
		Email:     "Test@User.com",
		FirstName: "Alex",
		LastName:  "Gracilla",
		Password:  "somePassword",
	}
}

func TestUser(t *testing.T) {
	t.Parallel()

	newService := func(t *testing.T) *UserService {
		storage := testutil.NewSQLiteStorage(t)
		return NewService(hasher.Bcrypt{Cost: bcrypt.MinCost}, storage.User())
	}

	t.Run("default hasher", func(t *testing.T) {
		s := NewService(nil, nil)

		require.Equal(t, hasher.Default, s.hasher, "default hasher should be set")
	})

	t.Run("CreateUser", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			s := newService(t)
			middle := "Van"
			params := newParams()
			params.MiddleName = &middle

			user, err := s.CreateUser(t.Context(), params)

			require.NoError(t, err, "creating new user should be ok")
			require.NotEqual(t, uuid.Nil, user.ID, "user ID should not be empty")
			require.Equal(t, "testUser", user.Username, "username kept as is")
			require.Equal(t, "test@user.com", user.Email, "email should be lowercased")
			require.Equal(t, "alex", user.FirstName, "first name should be lowercased")
			require.Equal(t, "gracilla", user.LastName, "last name should be lowercased")
			require.NotNil(t, user.MiddleName)
			require.Equal(t, "van", *user.MiddleName, "middle name should be lowercased")
			require.NotZero(t, user.CreatedAt, "created at should be set")
		})

		t.Run("password hashed", func(t *testing.T) {
			s := newService(t)

			user, err := s.CreateUser(t.Context(), newParams())

			require.NoError(t, err)
			require.NotEqual(t, "somePassword", user.PasswordHash, "password should be hashed")
			require.Len(t, user.PasswordHash, 60, "bcrypt hash expected")
			require.NoError(t, s.hasher.Compare(user.PasswordHash, "somePassword"))
		})

		t.Run("empty password fail", func(t *testing.T) {
			s := newService(t)
			params := newParams()
			params.Password = ""

			_, err := s.CreateUser(t.Context(), params)

			require.Error(t, err, "creating user with empty password should fail")
		})

		t.Run("duplicate email in other case fail", func(t *testing.T) {
			s := newService(t)
			_, err := s.CreateUser(t.Context(), newParams())
			require.NoError(t, err, "first user creation should succeed")

			params := newParams()
			params.Username = "other"
			params.Email = "TEST@USER.COM"
			_, err = s.CreateUser(t.Context(), params)

			var conflict *apperrors.ConflictError
			require.ErrorAs(t, err, &conflict)
			require.True(t, conflict.Has("email"))
		})

		t.Run("duplicate username fail", func(t *testing.T) {
			s := newService(t)
			_, err := s.CreateUser(t.Context(), newParams())
			require.NoError(t, err, "first user creation should succeed")

			params := newParams()
			params.Email = "other@user.com"
			_, err = s.CreateUser(t.Context(), params)

			var conflict *apperrors.ConflictError
			require.ErrorAs(t, err, &conflict)
			require.True(t, conflict.Has("username"))
		})
	})

	t.Run("CheckCredentials", func(t *testing.T) {
		t.Run("by email ok", func(t *testing.T) {
			s := newService(t)
			created, err := s.CreateUser(t.Context(), newParams())
			require.NoError(t, err)

			user, err := s.CheckCredentials(t.Context(), Credentials{Email: "TEST@user.com", Password: "somePassword"})

			require.NoError(t, err, "email is case insensitive")
			require.Equal(t, created.ID, user.ID)
		})

		t.Run("by username ok", func(t *testing.T) {
			s := newService(t)
			created, err := s.CreateUser(t.Context(), newParams())
			require.NoError(t, err)

			user, err := s.CheckCredentials(t.Context(), Credentials{Username: "testUser", Password: "somePassword"})

			require.NoError(t, err)
			require.Equal(t, created.ID, user.ID)
		})

		tests := []struct {
			name  string
			creds Credentials
		}{
			{"wrong password", Credentials{Email: "test@user.com", Password: "wrongPassword"}},
			{"unknown email", Credentials{Email: "other@user.com", Password: "somePassword"}},
			{"unknown username", Credentials{Username: "other", Password: "somePassword"}},
			{"username case differs", Credentials{Username: "testuser", Password: "somePassword"}},
			{"no identifier", Credentials{Password: "somePassword"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := newService(t)
				_, err := s.CreateUser(t.Context(), newParams())
				require.NoError(t, err)

				_, err = s.CheckCredentials(t.Context(), tt.creds)

				require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
			})
		}
	})

	t.Run("GetUserByID", func(t *testing.T) {
		t.Run("existed ok", func(t *testing.T) {
			s := newService(t)
			created, err := s.CreateUser(t.Context(), newParams())
			require.NoError(t, err)

			user, err := s.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err, "getting existing user by ID should succeed")
			require.Equal(t, created, user)
		})

		t.Run("not existed fail", func(t *testing.T) {
			s := newService(t)

			_, err := s.GetUserByID(t.Context(), uuid.New())

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
