package apperrors

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// Unique constraint violated on user creation
// Fields holds names of colliding fields ("email", "username") if the store could detect them
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	if len(e.Fields) == 0 {
		return "unique constraint failed"
	}
	return fmt.Sprintf("unique constraint failed on: %s", strings.Join(e.Fields, ", "))
}

func (e *ConflictError) Has(field string) bool {
	return slices.Contains(e.Fields, field)
}

// Request data is well formed JSON but can't be accepted
// Fields maps field name to user friendly message
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}
