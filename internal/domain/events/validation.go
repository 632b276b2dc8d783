package events

import "time"

const (
	maxNameLength        = 255
	maxLocationLength    = 255
	maxDescriptionLength = 10000
)

func validateEvent(name string, startDate, endDate time.Time, maxCapacity *int) error {
	if name == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	if len(name) > maxNameLength {
		return ValidationError{Field: "name", Message: "too long"}
	}
	if startDate.IsZero() {
		return ValidationError{Field: "start_date", Message: "is required"}
	}
	if endDate.IsZero() {
		return ValidationError{Field: "end_date", Message: "is required"}
	}
	if !endDate.After(startDate) {
		return ValidationError{Field: "end_date", Message: "must be after start date"}
	}
	if maxCapacity != nil && *maxCapacity < 1 {
		return ValidationError{Field: "max_capacity", Message: "must be a positive integer"}
	}
	return nil
}

func validateOptionalText(field, value string, max int) error {
	if len(value) > max {
		return ValidationError{Field: field, Message: "too long"}
	}
	return nil
}
