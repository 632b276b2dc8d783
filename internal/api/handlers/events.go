package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/openmeet/server/internal/api/middleware"
	"github.com/openmeet/server/internal/api/problem"
	"github.com/openmeet/server/internal/domain/events"
	"github.com/openmeet/server/internal/domain/ids"
	"github.com/openmeet/server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type createEventRequest struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description"`
	Location    string     `json:"location" validate:"max=255"`
	StartDate   *time.Time `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date" validate:"required"`
	MaxCapacity *int       `json:"max_capacity"`
}

type editEventRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	MaxCapacity *int       `json:"max_capacity"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	MaxCapacity *int      `json:"max_capacity"`
	Owner       string    `json:"owner"`
	Attendees   []string  `json:"attendees"`
	Status      string    `json:"status"`
}

// registrationResponse is the structured join/leave outcome. Outcomes
// that are not errors from the caller's point of view still come back
// with status 200 and a stable code to branch on.
type registrationResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

const (
	codeAlreadyRegistered = "already_registered"
	codeCapacityReached   = "capacity_reached"
	codeEventNotUpcoming  = "event_not_upcoming"
	codeNotRegistered     = "not_registered"
)

func toEventResponse(event *events.Event, now time.Time) eventResponse {
	attendees := make([]string, 0, len(event.Attendees))
	for _, id := range event.Attendees {
		attendees = append(attendees, id.String())
	}
	return eventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		Location:    event.Location,
		StartDate:   event.StartDate,
		EndDate:     event.EndDate,
		MaxCapacity: event.MaxCapacity,
		Owner:       event.OwnerName,
		Attendees:   attendees,
		Status:      string(event.StatusAt(now)),
	}
}

func toEventResponses(list []events.Event, now time.Time) []eventResponse {
	out := make([]eventResponse, 0, len(list))
	for i := range list {
		out = append(out, toEventResponse(&list[i], now))
	}
	return out
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	var req createEventRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}

	event, err := h.Service.Create(r.Context(), user.ID, events.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StartDate:   *req.StartDate,
		EndDate:     *req.EndDate,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}

	if event.OwnerName == "" {
		event.OwnerName = user.Username
	}
	metrics.EventsCreated.Inc()
	writeJSON(w, http.StatusCreated, toEventResponse(event, time.Now()))
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid filter", err, h.Env, problem.WithDetail(err.Error()))
		return
	}

	list, err := h.Service.List(r.Context(), filters)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Listing events failed", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponses(list, time.Now()))
}

func (h *EventsHandler) UserEvents(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	list, err := h.Service.ListOwnedBy(r.Context(), user.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Listing events failed", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponses(list, time.Now()))
}

func (h *EventsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var req editEventRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}

	event, err := h.Service.Edit(r.Context(), user.ID, eventID, events.EditParams{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		MaxCapacity: req.MaxCapacity,
	})
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(event, time.Now()))
}

func (h *EventsHandler) Register(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	err := h.Service.Register(r.Context(), user.ID, eventID)
	switch {
	case err == nil:
		metrics.EventRegistrations.WithLabelValues("registered").Inc()
		writeJSON(w, http.StatusOK, registrationResponse{
			Success: true,
			Message: "registered for event",
		})
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Event not found", err, h.Env)
	case errors.Is(err, events.ErrEventNotUpcoming):
		metrics.EventRegistrations.WithLabelValues(codeEventNotUpcoming).Inc()
		writeJSON(w, http.StatusOK, registrationResponse{
			Success: false,
			Code:    codeEventNotUpcoming,
			Message: "event has already started or ended",
		})
	case errors.Is(err, events.ErrAlreadyRegistered):
		metrics.EventRegistrations.WithLabelValues(codeAlreadyRegistered).Inc()
		writeJSON(w, http.StatusOK, registrationResponse{
			Success: false,
			Code:    codeAlreadyRegistered,
			Message: "already registered for this event",
		})
	case errors.Is(err, events.ErrCapacityReached):
		metrics.EventRegistrations.WithLabelValues(codeCapacityReached).Inc()
		writeJSON(w, http.StatusOK, registrationResponse{
			Success: false,
			Code:    codeCapacityReached,
			Message: "event is at full capacity",
		})
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Registration failed", err, h.Env)
	}
}

func (h *EventsHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	removed, err := h.Service.Unregister(r.Context(), user.ID, eventID)
	switch {
	case err == nil && removed:
		metrics.EventRegistrations.WithLabelValues("unregistered").Inc()
		writeJSON(w, http.StatusOK, registrationResponse{
			Success: true,
			Message: "unregistered from event",
		})
	case err == nil:
		writeJSON(w, http.StatusOK, registrationResponse{
			Success: true,
			Code:    codeNotRegistered,
			Message: "not registered for this event",
		})
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Event not found", err, h.Env)
	case errors.Is(err, events.ErrEventNotUpcoming):
		writeJSON(w, http.StatusOK, registrationResponse{
			Success: false,
			Code:    codeEventNotUpcoming,
			Message: "event has already started or ended",
		})
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Unregistration failed", err, h.Env)
	}
}

// eventID validates the {id} path parameter. Syntactically invalid ids
// cannot name an event, so they 404 like unknown ones.
func (h *EventsHandler) eventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := pathParam(r, "id")
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Event not found", err, h.Env)
		return "", false
	}
	return id, true
}

func (h *EventsHandler) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr events.ValidationError
	switch {
	case errors.As(err, &validationErr):
		fields := map[string]any{}
		if validationErr.Field != "" {
			fields[validationErr.Field] = validationErr.Message
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid event", err, h.Env,
			problem.WithDetail(validationErr.Error()), problem.WithErrors(fields))
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Event not found", err, h.Env)
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden,
			"Not the event owner", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal,
			"Event operation failed", err, h.Env)
	}
}
