// Package flow owns the funnel screens: the quote form, the pricing/
// availability form, and the transitions between them. Controllers get the
// session store, event bus and mailer injected so tests can substitute
// in-memory implementations.
package flow

import (
	"context"
	"strings"
	"time"

	"github.com/manhattanmint/mint-bookings/internal/domain"
	"github.com/manhattanmint/mint-bookings/internal/pricing"
	"github.com/manhattanmint/mint-bookings/internal/session"
	"github.com/manhattanmint/mint-bookings/internal/validate"
	"github.com/manhattanmint/mint-bookings/pkg/events"
	"github.com/manhattanmint/mint-bookings/pkg/logger"
)

// QuoteForm is the screen-Q projection of the booking. Both service-shape
// branches keep their counters so toggling the style back restores the
// previous values.
type QuoteForm struct {
	Zip          string               `json:"zip"`
	Style        domain.CleaningStyle `json:"style"`
	Beds         int                  `json:"beds"`
	Baths        int                  `json:"baths"`
	CleaningType domain.CleaningType  `json:"cleaning_type,omitempty"`
	Hours        int                  `json:"hours"`
	Cleaners     int                  `json:"cleaners"`
	Date         string               `json:"date"`
	Start        string               `json:"start"`
	End          string               `json:"end"`
	Flexible     bool                 `json:"flexible"`

	// Prefill hints from ad deep-links, carried through to the pricing screen.
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// DefaultQuoteForm mirrors the initial state of the quote screen.
func DefaultQuoteForm() QuoteForm {
	slots := domain.TimeSlots()
	return QuoteForm{
		Style:    domain.StyleFlat,
		Beds:     2,
		Baths:    1,
		Hours:    3,
		Cleaners: 2,
		Start:    slots[0],
		End:      slots[len(slots)-1],
		Flexible: true,
	}
}

// Normalize clamps counters at their minima, restores branch defaults for
// zeroed counters, and snaps missing times to the grid edges.
func (f *QuoteForm) Normalize() {
	if f.Style != domain.StyleHourly {
		f.Style = domain.StyleFlat
	}
	if f.Beds < domain.MinBedrooms {
		f.Beds = domain.MinBedrooms
	}
	if f.Baths < domain.MinBathrooms {
		f.Baths = domain.MinBathrooms
	}
	if f.Hours < domain.MinHours {
		f.Hours = domain.MinHours
	}
	if f.Cleaners < domain.MinCleaners {
		f.Cleaners = domain.MinCleaners
	}
	if f.Style == domain.StyleFlat && f.CleaningType == "" {
		f.CleaningType = domain.CleaningStandard
	}

	slots := domain.TimeSlots()
	if !domain.IsTimeSlot(f.Start) {
		f.Start = slots[0]
	}
	if !domain.IsTimeSlot(f.End) {
		f.End = slots[len(slots)-1]
	}
}

// Toggle switches the pricing style. The other branch's counters stay on the
// form, so switching back restores them; zeroed counters pick up the branch
// defaults.
func (f *QuoteForm) Toggle(style domain.CleaningStyle) {
	f.Style = style
	if style == domain.StyleFlat {
		if f.Beds == 0 && f.Baths == 0 {
			f.Beds, f.Baths = 2, 1
		}
	} else {
		if f.Hours == 0 {
			f.Hours = 3
		}
		if f.Cleaners == 0 {
			f.Cleaners = 2
		}
	}
}

// AdjustBedrooms steps the counter, clamping at the minimum.
func (f *QuoteForm) AdjustBedrooms(delta int) {
	f.Beds = clampMin(f.Beds+delta, domain.MinBedrooms)
}

func (f *QuoteForm) AdjustBathrooms(delta int) {
	f.Baths = clampMin(f.Baths+delta, domain.MinBathrooms)
}

func (f *QuoteForm) AdjustHours(delta int) {
	f.Hours = clampMin(f.Hours+delta, domain.MinHours)
}

func (f *QuoteForm) AdjustCleaners(delta int) {
	f.Cleaners = clampMin(f.Cleaners+delta, domain.MinCleaners)
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

// Booking projects the quote form onto the aggregate.
func (f QuoteForm) Booking() domain.Booking {
	first, last := splitName(f.Name)

	var shape domain.ServiceShape
	if f.Style == domain.StyleHourly {
		shape = domain.HourlyShape(f.Hours, f.Cleaners)
	} else {
		shape = domain.FlatShape(f.Beds, f.Baths, f.CleaningType)
	}

	b := domain.Booking{
		Contact: domain.Contact{
			First:   first,
			Last:    last,
			Email:   f.Email,
			Phone:   f.Phone,
			Address: f.Address,
			Zip:     f.Zip,
		},
		Schedule: domain.Schedule{
			Date:     f.Date,
			Start:    f.Start,
			End:      f.End,
			Flexible: f.Flexible,
		},
		Service: shape,
		Notes:   f.Notes,
	}
	b.ApplyDefaults()
	return b
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// QuoteController owns screen Q: normalize input, gate the transition to the
// pricing screen, persist the form for the next screen.
type QuoteController struct {
	store session.Store
	bus   events.Publisher
}

func NewQuoteController(store session.Store, bus events.Publisher) *QuoteController {
	return &QuoteController{store: store, bus: bus}
}

// Submit runs the progression validation and, on success, writes the form to
// the quote slot and returns a price preview. On failure the caller stays on
// the quote screen with field-level errors.
func (c *QuoteController) Submit(ctx context.Context, sessionID string, form QuoteForm) (pricing.Estimate, validate.Errors) {
	form.Normalize()

	booking := form.Booking()
	if errs := validate.Progression(booking); len(errs) > 0 {
		return pricing.Estimate{}, errs
	}

	c.store.Put(ctx, sessionID, session.SlotQuoteForm, form)

	if err := c.bus.Publish(ctx, events.QuoteStarted, events.QuoteStartedEvent{
		SessionID: sessionID,
		Zip:       form.Zip,
		Style:     string(form.Style),
		Date:      form.Date,
		StartedAt: time.Now(),
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish quote started event", "error", err)
	}

	return pricing.Price(booking), nil
}

// Resume returns the stored quote form for a returning visitor, falling back
// to screen defaults. The slot survives the read so a refresh keeps the data.
func (c *QuoteController) Resume(ctx context.Context, sessionID string) QuoteForm {
	var form QuoteForm
	if ok := c.store.Get(ctx, sessionID, session.SlotQuoteForm, &form); !ok {
		return DefaultQuoteForm()
	}
	form.Normalize()
	return form
}
