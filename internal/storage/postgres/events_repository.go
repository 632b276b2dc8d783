package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmeet/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *EventRepository) Create(ctx context.Context, event *events.Event) error {
	err := r.queryer().QueryRow(ctx, `
INSERT INTO events (id, name, description, location, start_date, end_date, max_capacity, owner_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at
`,
		event.ID,
		event.Name,
		event.Description,
		event.Location,
		event.StartDate,
		event.EndDate,
		event.MaxCapacity,
		event.OwnerID,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if event.OwnerName == "" {
		row := r.queryer().QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, event.OwnerID)
		if err := row.Scan(&event.OwnerName); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("resolve owner name: %w", err)
		}
	}
	return nil
}

const selectEvent = `
SELECT e.id, e.name, e.description, e.location, e.start_date, e.end_date,
       e.max_capacity, e.owner_id, u.username, e.created_at, e.updated_at,
       COALESCE(array_agg(a.user_id) FILTER (WHERE a.user_id IS NOT NULL), '{}') AS attendees
  FROM events e
  JOIN users u ON u.id = e.owner_id
  LEFT JOIN event_attendees a ON a.event_id = e.id`

const groupEvent = ` GROUP BY e.id, u.username`

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	rows, err := r.queryer().Query(ctx, selectEvent+` WHERE e.id = $1`+groupEvent, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	result, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, events.ErrNotFound
	}
	return &result[0], nil
}

// GetByIDForUpdate locks the event row for the duration of the
// surrounding transaction. Attendees are not loaded here; the
// registration engine reads membership and counts separately under the
// same lock.
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, id string) (*events.Event, error) {
	var event events.Event
	err := r.queryer().QueryRow(ctx, `
SELECT id, name, description, location, start_date, end_date, max_capacity, owner_id, created_at, updated_at
  FROM events
 WHERE id = $1
   FOR UPDATE
`, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Location,
		&event.StartDate,
		&event.EndDate,
		&event.MaxCapacity,
		&event.OwnerID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) Update(ctx context.Context, event *events.Event) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET name = $2, description = $3, location = $4, start_date = $5,
       end_date = $6, max_capacity = $7, updated_at = now()
 WHERE id = $1
`,
		event.ID,
		event.Name,
		event.Description,
		event.Location,
		event.StartDate,
		event.EndDate,
		event.MaxCapacity,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, selectEvent+`
 WHERE ($1 = '' OR
        ($1 = 'upcoming' AND e.start_date > now()) OR
        ($1 = 'ongoing' AND e.start_date <= now() AND e.end_date >= now()) OR
        ($1 = 'past' AND e.end_date < now()))
   AND ($2::date IS NULL OR (e.start_date AT TIME ZONE 'UTC')::date = $2::date)
   AND ($3::date IS NULL OR (e.end_date AT TIME ZONE 'UTC')::date = $3::date)
`+groupEvent+`
 ORDER BY e.created_at ASC, e.id ASC
`, string(filters.Status), filters.StartDate, filters.EndDate)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return scanEvents(rows)
}

func (r *EventRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, selectEvent+` WHERE e.owner_id = $1`+groupEvent+`
 ORDER BY e.created_at ASC, e.id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owned events: %w", err)
	}
	return scanEvents(rows)
}

func (r *EventRepository) CountAttendees(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.queryer().QueryRow(ctx,
		`SELECT count(*) FROM event_attendees WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendees: %w", err)
	}
	return count, nil
}

func (r *EventRepository) IsAttendee(ctx context.Context, eventID string, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attendee: %w", err)
	}
	return exists, nil
}

func (r *EventRepository) AddAttendee(ctx context.Context, eventID string, userID uuid.UUID) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO event_attendees (event_id, user_id) VALUES ($1, $2)
ON CONFLICT (event_id, user_id) DO NOTHING
`, eventID, userID)
	if err != nil {
		return fmt.Errorf("add attendee: %w", err)
	}
	return nil
}

func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID string, userID uuid.UUID) error {
	_, err := r.queryer().Exec(ctx,
		`DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("remove attendee: %w", err)
	}
	return nil
}

// WithTx runs fn against a transaction-scoped repository. Nested calls
// reuse the outer transaction.
func (r *EventRepository) WithTx(ctx context.Context, fn func(events.Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &EventRepository{pool: r.pool, tx: tx}
	if err := fn(wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func scanEvents(rows pgx.Rows) ([]events.Event, error) {
	defer rows.Close()

	var result []events.Event
	for rows.Next() {
		var (
			event       events.Event
			maxCapacity *int32
			attendees   []uuid.UUID
		)
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.Location,
			&event.StartDate,
			&event.EndDate,
			&maxCapacity,
			&event.OwnerID,
			&event.OwnerName,
			&event.CreatedAt,
			&event.UpdatedAt,
			&attendees,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if maxCapacity != nil {
			capacity := int(*maxCapacity)
			event.MaxCapacity = &capacity
		}
		event.Attendees = attendees
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return result, nil
}
