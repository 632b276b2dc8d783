package users

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists user accounts. Uniqueness of username and email is
// the store's responsibility: Create must fail with ErrUsernameTaken or
// ErrEmailTaken even when two registrations race, which means a real
// implementation backs the check with a unique constraint rather than a
// read-then-insert.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
