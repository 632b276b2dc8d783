package events

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("event not found")
	ErrForbidden         = errors.New("only the event owner may edit it")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrCapacityReached   = errors.New("event has reached its maximum capacity")
	ErrEventNotUpcoming  = errors.New("event registration is only open for upcoming events")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
