package events

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists events and their attendee sets.
//
// WithTx runs fn against a transaction-scoped repository. Inside such a
// scope, GetByIDForUpdate must hold a row lock on the event until the
// transaction ends; the registration engine relies on this to make its
// membership/capacity check-then-act atomic.
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	List(ctx context.Context, filters Filters) ([]Event, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Event, error)

	CountAttendees(ctx context.Context, eventID string) (int, error)
	IsAttendee(ctx context.Context, eventID string, userID uuid.UUID) (bool, error)
	AddAttendee(ctx context.Context, eventID string, userID uuid.UUID) error
	RemoveAttendee(ctx context.Context, eventID string, userID uuid.UUID) error

	WithTx(ctx context.Context, fn func(Repository) error) error
}
