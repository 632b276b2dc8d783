package events

import (
	"time"

	"github.com/google/uuid"
)

// Status is derived from the clock, never stored: every operation
// re-derives it from the current time.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusPast     Status = "past"
)

type Event struct {
	ID          string
	Name        string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time
	MaxCapacity *int // nil means unbounded
	OwnerID     uuid.UUID
	OwnerName   string
	Attendees   []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StatusAt derives the event's lifecycle status relative to now.
func (e *Event) StatusAt(now time.Time) Status {
	switch {
	case e.StartDate.After(now):
		return StatusUpcoming
	case e.EndDate.Before(now):
		return StatusPast
	default:
		return StatusOngoing
	}
}
