package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Username     string
	Email        string
	FirstName    string
	LastName     string
	MiddleName   *string // nil if not provided on registration
	PasswordHash string
}
