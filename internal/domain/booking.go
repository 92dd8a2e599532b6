package domain

import (
	"fmt"
	"strings"
)

type CleaningStyle string

const (
	StyleFlat   CleaningStyle = "flat"
	StyleHourly CleaningStyle = "hourly"
)

func ParseCleaningStyle(s string) (CleaningStyle, bool) {
	switch CleaningStyle(s) {
	case StyleFlat, StyleHourly:
		return CleaningStyle(s), true
	default:
		return "", false
	}
}

type CleaningType string

const (
	CleaningStandard  CleaningType = "standard"
	CleaningDeep      CleaningType = "deep"
	CleaningMoveInOut CleaningType = "move_in_out"
)

func ParseCleaningType(s string) (CleaningType, bool) {
	switch CleaningType(s) {
	case CleaningStandard, CleaningDeep, CleaningMoveInOut:
		return CleaningType(s), true
	default:
		return "", false
	}
}

// Label is the customer-facing name used on summaries and provider handoffs.
func (t CleaningType) Label() string {
	switch t {
	case CleaningDeep:
		return "Deep Clean"
	case CleaningMoveInOut:
		return "Move-In/Out"
	default:
		return "Standard Clean"
	}
}

type Recurrence string

const (
	Once     Recurrence = "once"
	Weekly   Recurrence = "weekly"
	Biweekly Recurrence = "biweekly"
	Monthly  Recurrence = "monthly"
)

func ParseRecurrence(s string) (Recurrence, bool) {
	switch Recurrence(s) {
	case Once, Weekly, Biweekly, Monthly:
		return Recurrence(s), true
	default:
		return "", false
	}
}

// DiscountPct returns the recurring-client discount in whole percent.
func (r Recurrence) DiscountPct() int {
	switch r {
	case Weekly:
		return 30
	case Biweekly:
		return 25
	case Monthly:
		return 15
	default:
		return 0
	}
}

type AccessMethod string

const (
	AccessAtHome  AccessMethod = "at_home"
	AccessDoorman AccessMethod = "doorman"
	AccessOther   AccessMethod = "other"
)

func ParseAccessMethod(s string) (AccessMethod, bool) {
	switch AccessMethod(s) {
	case AccessAtHome, AccessDoorman, AccessOther:
		return AccessMethod(s), true
	default:
		return "", false
	}
}

// FlatService is the flat-rate branch of the service shape. Add-ons only
// exist on this branch; hourly bookings do not include extras.
type FlatService struct {
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    int          `json:"bathrooms"`
	CleaningType CleaningType `json:"cleaning_type"`
	AddOns       []AddOnKey   `json:"addons,omitempty"`
}

type HourlyService struct {
	Hours    int `json:"hours"`
	Cleaners int `json:"cleaners"`
}

// ServiceShape is a tagged union over the two pricing styles. Exactly one
// branch is set; Style names which.
type ServiceShape struct {
	Style  CleaningStyle  `json:"style"`
	Flat   *FlatService   `json:"flat,omitempty"`
	Hourly *HourlyService `json:"hourly,omitempty"`
}

func FlatShape(bedrooms, bathrooms int, cleaningType CleaningType, addons ...AddOnKey) ServiceShape {
	return ServiceShape{
		Style: StyleFlat,
		Flat: &FlatService{
			Bedrooms:     bedrooms,
			Bathrooms:    bathrooms,
			CleaningType: cleaningType,
			AddOns:       addons,
		},
	}
}

func HourlyShape(hours, cleaners int) ServiceShape {
	return ServiceShape{
		Style:  StyleHourly,
		Hourly: &HourlyService{Hours: hours, Cleaners: cleaners},
	}
}

// Label renders the human-readable service name used in summaries and the
// provider prefill, e.g. "Deep Clean (3BR, 2BA)" or
// "Hourly Cleaning (3hr, 2 cleaners)".
func (s ServiceShape) Label() string {
	switch s.Style {
	case StyleHourly:
		if s.Hourly == nil {
			return "Hourly Cleaning"
		}
		return fmt.Sprintf("Hourly Cleaning (%dhr, %d %s)", s.Hourly.Hours, s.Hourly.Cleaners, plural(s.Hourly.Cleaners, "cleaner"))
	default:
		if s.Flat == nil {
			return CleaningStandard.Label()
		}
		return fmt.Sprintf("%s (%dBR, %dBA)", s.Flat.CleaningType.Label(), s.Flat.Bedrooms, s.Flat.Bathrooms)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}

type Contact struct {
	First     string `json:"first"`
	Last      string `json:"last"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

func (c Contact) FullName() string {
	return strings.TrimSpace(c.First + " " + c.Last)
}

// PhoneDigits strips everything but digits, the form validation and the
// provider handoff both work on the digit string.
func (c Contact) PhoneDigits() string {
	var b strings.Builder
	for _, r := range c.Phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type Schedule struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Start    string `json:"start"`
	End      string `json:"end"`
	Flexible bool   `json:"flexible"`
}

type Access struct {
	Method       AccessMethod `json:"method"`
	Instructions string       `json:"instructions,omitempty"`
}

// Booking is the aggregate that flows through the funnel: created on the
// quote screen, completed on pricing/availability, consumed by the handoff.
type Booking struct {
	Contact    Contact      `json:"contact"`
	Schedule   Schedule     `json:"schedule"`
	Service    ServiceShape `json:"service"`
	Recurrence Recurrence   `json:"recurrence"`
	Access     Access       `json:"access"`
	Notes      string       `json:"notes,omitempty"`
	Agreed     bool         `json:"agreed"`
}

// Business rules
const (
	MinBedrooms  = 0
	MinBathrooms = 0
	MinHours     = 1
	MinCleaners  = 1

	DayStartHour = 8
	DayEndHour   = 20
	SlotMinutes  = 30

	DefaultCity  = "New York City"
	DefaultState = "NY"
)

// TimeSlots returns the selectable half-hour grid from 08:00 through 20:00
// inclusive, in HH:MM order.
func TimeSlots() []string {
	var out []string
	for h := DayStartHour; h <= DayEndHour; h++ {
		for m := 0; m < 60; m += SlotMinutes {
			if h == DayEndHour && m > 0 {
				break
			}
			out = append(out, fmt.Sprintf("%02d:%02d", h, m))
		}
	}
	return out
}

// IsTimeSlot reports whether s is a valid HH:MM value on the grid.
func IsTimeSlot(s string) bool {
	for _, slot := range TimeSlots() {
		if s == slot {
			return true
		}
	}
	return false
}

// ApplyDefaults fills the fields the funnel assumes when the customer leaves
// them blank.
func (b *Booking) ApplyDefaults() {
	if b.Contact.City == "" {
		b.Contact.City = DefaultCity
	}
	if b.Contact.State == "" {
		b.Contact.State = DefaultState
	}
	if b.Recurrence == "" {
		b.Recurrence = Once
	}
	if b.Access.Method == "" {
		b.Access.Method = AccessAtHome
	}
	if b.Service.Style == StyleFlat && b.Service.Flat != nil && b.Service.Flat.CleaningType == "" {
		b.Service.Flat.CleaningType = CleaningStandard
	}
	slots := TimeSlots()
	if b.Schedule.Start == "" {
		b.Schedule.Start = slots[0]
	}
	if b.Schedule.End == "" {
		b.Schedule.End = slots[len(slots)-1]
	}
}
