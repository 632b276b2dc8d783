package users

import (
	"time"

	"github.com/google/uuid"
)

// User is an account identity. PasswordHash is a bcrypt hash and never
// leaves the domain layer.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
