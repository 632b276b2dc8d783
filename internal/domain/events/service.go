package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openmeet/server/internal/domain/ids"
	"github.com/openmeet/server/internal/sanitize"
)

// Service is the event lifecycle and registration engine. All temporal
// checks derive the event's status from the clock at call time.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

type CreateParams struct {
	Name        string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time
	MaxCapacity *int
}

// Create validates and stores a new event. The owner is fixed at
// creation and the attendee set starts empty.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Event, error) {
	name := sanitize.Text(params.Name)
	if err := validateEvent(name, params.StartDate, params.EndDate, params.MaxCapacity); err != nil {
		return nil, err
	}
	description := sanitize.Description(params.Description)
	if err := validateOptionalText("description", description, maxDescriptionLength); err != nil {
		return nil, err
	}
	location := sanitize.Text(params.Location)
	if err := validateOptionalText("location", location, maxLocationLength); err != nil {
		return nil, err
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("mint event id: %w", err)
	}

	event := &Event{
		ID:          id,
		Name:        name,
		Description: description,
		Location:    location,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		MaxCapacity: params.MaxCapacity,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Str("event_id", event.ID).Str("owner_id", ownerID.String()).Msg("event created")
	return event, nil
}

// EditParams carries a partial update; nil fields are left untouched.
type EditParams struct {
	Name        *string
	Description *string
	Location    *string
	StartDate   *time.Time
	EndDate     *time.Time
	MaxCapacity *int
}

func (p EditParams) empty() bool {
	return p.Name == nil && p.Description == nil && p.Location == nil &&
		p.StartDate == nil && p.EndDate == nil && p.MaxCapacity == nil
}

// Edit applies a partial update to an event owned by actor. Supplied
// fields are merged onto the stored event and the merged result is
// revalidated, so a lone start_date is still checked against the stored
// end_date. Lowering max_capacity below the current attendee count is
// allowed: existing attendees are grandfathered in. Existence and
// ownership are checked before the payload, so an empty update on an
// unknown event is a not-found, not a validation failure.
func (s *Service) Edit(ctx context.Context, actorID uuid.UUID, eventID string, params EditParams) (*Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if params.empty() {
		return nil, ValidationError{Message: "at least one field is required"}
	}

	if params.Name != nil {
		event.Name = sanitize.Text(*params.Name)
	}
	if params.Description != nil {
		event.Description = sanitize.Description(*params.Description)
	}
	if params.Location != nil {
		event.Location = sanitize.Text(*params.Location)
	}
	if params.StartDate != nil {
		event.StartDate = *params.StartDate
	}
	if params.EndDate != nil {
		event.EndDate = *params.EndDate
	}
	if params.MaxCapacity != nil {
		event.MaxCapacity = params.MaxCapacity
	}

	if err := validateEvent(event.Name, event.StartDate, event.EndDate, event.MaxCapacity); err != nil {
		return nil, err
	}
	if err := validateOptionalText("description", event.Description, maxDescriptionLength); err != nil {
		return nil, err
	}
	if err := validateOptionalText("location", event.Location, maxLocationLength); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.logger.Info().Str("event_id", event.ID).Msg("event updated")
	return event, nil
}

// List returns events matching the filters in insertion order.
func (s *Service) List(ctx context.Context, filters Filters) ([]Event, error) {
	return s.repo.List(ctx, filters)
}

// ListOwnedBy returns every event the user owns.
func (s *Service) ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]Event, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Register adds actor to the event's attendee set. The whole
// check-then-act sequence runs in one transaction with the event row
// locked, so concurrent registrations can never push the attendee count
// past max_capacity. The membership check runs before the capacity
// check: an already-registered user gets ErrAlreadyRegistered even when
// the event is full.
func (s *Service) Register(ctx context.Context, actorID uuid.UUID, eventID string) error {
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		event, err := tx.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event.StatusAt(time.Now()) != StatusUpcoming {
			return ErrEventNotUpcoming
		}

		registered, err := tx.IsAttendee(ctx, eventID, actorID)
		if err != nil {
			return err
		}
		if registered {
			return ErrAlreadyRegistered
		}

		if event.MaxCapacity != nil {
			count, err := tx.CountAttendees(ctx, eventID)
			if err != nil {
				return err
			}
			if count >= *event.MaxCapacity {
				return ErrCapacityReached
			}
		}

		return tx.AddAttendee(ctx, eventID, actorID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("event_id", eventID).Str("user_id", actorID.String()).Msg("attendee registered")
	return nil
}

// Unregister removes actor from the event's attendee set. Unregistering
// a non-member is a successful no-op; removed reports whether a row was
// actually deleted.
func (s *Service) Unregister(ctx context.Context, actorID uuid.UUID, eventID string) (removed bool, err error) {
	err = s.repo.WithTx(ctx, func(tx Repository) error {
		event, err := tx.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event.StatusAt(time.Now()) != StatusUpcoming {
			return ErrEventNotUpcoming
		}

		registered, err := tx.IsAttendee(ctx, eventID, actorID)
		if err != nil {
			return err
		}
		if !registered {
			return nil
		}

		if err := tx.RemoveAttendee(ctx, eventID, actorID); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.logger.Info().Str("event_id", eventID).Str("user_id", actorID.String()).Msg("attendee unregistered")
	}
	return removed, nil
}
