// Package validate holds the stateless field checks for the quote funnel.
// Progression gates the quote screen into pricing/availability; Handoff gates
// the submit to the external booking provider. Both return every failing
// field, never just the first.
package validate

import (
	"strings"
	"time"

	"github.com/manhattanmint/mint-bookings/internal/domain"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the failing field keys in order.
func (e Errors) Fields() []string {
	out := make([]string, len(e))
	for i, fe := range e {
		out[i] = fe.Field
	}
	return out
}

func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Progression checks the minimum needed to leave the quote screen: a service
// shape with its counters at or above their minima.
func Progression(b domain.Booking) Errors {
	var errs Errors
	errs = append(errs, checkShape(b.Service)...)
	return errs
}

// Handoff checks everything required to hand the booking to the provider.
func Handoff(b domain.Booking) Errors {
	var errs Errors

	if b.Schedule.Date == "" {
		errs = append(errs, FieldError{"date", "select a date for your cleaning"})
	} else if _, err := time.Parse("2006-01-02", b.Schedule.Date); err != nil {
		errs = append(errs, FieldError{"date", "date must be YYYY-MM-DD"})
	}

	switch {
	case b.Schedule.Start == "" || b.Schedule.End == "":
		errs = append(errs, FieldError{"time", "select your preferred time window"})
	case !domain.IsTimeSlot(b.Schedule.Start) || !domain.IsTimeSlot(b.Schedule.End):
		errs = append(errs, FieldError{"time", "times must fall on the half-hour between 8:00 AM and 8:00 PM"})
	case b.Schedule.End <= b.Schedule.Start:
		errs = append(errs, FieldError{"time", "end time must be after start time"})
	}

	if b.Contact.Email == "" || !strings.Contains(b.Contact.Email, "@") {
		errs = append(errs, FieldError{"email", "enter a valid email address"})
	}
	if digits := b.Contact.PhoneDigits(); len(digits) < 10 {
		errs = append(errs, FieldError{"phone", "enter at least 10 digits"})
	}
	if strings.TrimSpace(b.Contact.First) == "" {
		errs = append(errs, FieldError{"first", "first name is required"})
	}
	if strings.TrimSpace(b.Contact.Last) == "" {
		errs = append(errs, FieldError{"last", "last name is required"})
	}
	if strings.TrimSpace(b.Contact.Address) == "" {
		errs = append(errs, FieldError{"address", "street address is required"})
	}
	if strings.TrimSpace(b.Contact.Zip) == "" {
		errs = append(errs, FieldError{"zip", "ZIP code is required"})
	}

	errs = append(errs, checkShape(b.Service)...)

	if !b.Agreed {
		errs = append(errs, FieldError{"agreement", "accept the terms of service to continue"})
	}

	return errs
}

func checkShape(s domain.ServiceShape) Errors {
	var errs Errors

	switch s.Style {
	case domain.StyleFlat:
		if s.Flat == nil {
			errs = append(errs, FieldError{"service", "tell us about your home"})
			break
		}
		if s.Flat.Bedrooms < domain.MinBedrooms {
			errs = append(errs, FieldError{"bedrooms", "bedrooms cannot be negative"})
		}
		if s.Flat.Bathrooms < domain.MinBathrooms {
			errs = append(errs, FieldError{"bathrooms", "bathrooms cannot be negative"})
		}
	case domain.StyleHourly:
		if s.Hourly == nil {
			errs = append(errs, FieldError{"service", "tell us about your hourly booking"})
			break
		}
		if s.Hourly.Hours < domain.MinHours {
			errs = append(errs, FieldError{"hours", "book at least one hour"})
		}
		if s.Hourly.Cleaners < domain.MinCleaners {
			errs = append(errs, FieldError{"cleaners", "book at least one cleaner"})
		}
	default:
		errs = append(errs, FieldError{"service", "choose a cleaning style"})
	}

	return errs
}
