package events

import (
	"net/url"
	"strings"
	"time"
)

// Filters narrows List results. Status matches the lifecycle state
// derived at query time; StartDate/EndDate match the calendar date of
// the respective field exactly.
type Filters struct {
	Status    Status
	StartDate *time.Time
	EndDate   *time.Time
}

// ParseFilters reads list filters from query parameters. Dates use the
// YYYY-MM-DD form; status is one of upcoming, ongoing, past.
func ParseFilters(values url.Values) (Filters, error) {
	filters := Filters{}

	status := strings.ToLower(strings.TrimSpace(values.Get("status")))
	switch status {
	case "":
	case string(StatusUpcoming), string(StatusOngoing), string(StatusPast):
		filters.Status = Status(status)
	default:
		return Filters{}, FilterError{Field: "status", Message: "must be one of upcoming, ongoing, past"}
	}

	startDate, err := parseDate("start_date", values.Get("start_date"))
	if err != nil {
		return Filters{}, err
	}
	filters.StartDate = startDate

	endDate, err := parseDate("end_date", values.Get("end_date"))
	if err != nil {
		return Filters{}, err
	}
	filters.EndDate = endDate

	return filters, nil
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, FilterError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	parsed = parsed.UTC()
	return &parsed, nil
}
