package flow

import (
	"context"
	"errors"
	"time"

	"github.com/manhattanmint/mint-bookings/internal/domain"
	"github.com/manhattanmint/mint-bookings/internal/handoff"
	"github.com/manhattanmint/mint-bookings/internal/mailer"
	"github.com/manhattanmint/mint-bookings/internal/pricing"
	"github.com/manhattanmint/mint-bookings/internal/session"
	"github.com/manhattanmint/mint-bookings/internal/validate"
	"github.com/manhattanmint/mint-bookings/pkg/events"
	"github.com/manhattanmint/mint-bookings/pkg/logger"
)

// State is the explicit screen-P machine. Submitting is held structurally via
// the store's acquire marker, not a boolean on the request.
//
//	Editing -> ReadyToHandoff -> Submitting -> HandoffDispatched (terminal)
//	               ^                  |
//	               +--(validation)----+
type State string

const (
	StateEditing           State = "editing"
	StateReadyToHandoff    State = "ready_to_handoff"
	StateSubmitting        State = "submitting"
	StateHandoffDispatched State = "handoff_dispatched"
)

// ErrSubmitInFlight is returned while a previous submit for the same session
// has not resolved yet. Double-clicks land here.
var ErrSubmitInFlight = errors.New("submit already in progress")

// PricingForm is the screen-P projection: contact, access, extras,
// recurrence, and the terms agreement.
type PricingForm struct {
	Email      string              `json:"email"`
	Phone      string              `json:"phone"`
	First      string              `json:"first"`
	Last       string              `json:"last"`
	Address    string              `json:"address"`
	Apartment  string              `json:"apartment,omitempty"`
	City       string              `json:"city"`
	State      string              `json:"state"`
	Zip        string              `json:"zip"`
	Entry      domain.AccessMethod `json:"entry"`
	EntryNotes string              `json:"entry_notes,omitempty"`
	AddOns     []domain.AddOnKey   `json:"addons,omitempty"`
	Freq       domain.Recurrence   `json:"freq"`
	Notes      string              `json:"notes,omitempty"`
	Agree      bool                `json:"agree"`
}

// SeedPricingForm pre-fills screen P from what the quote screen collected.
func SeedPricingForm(q QuoteForm) PricingForm {
	first, last := splitName(q.Name)
	return PricingForm{
		Email:   q.Email,
		Phone:   q.Phone,
		First:   first,
		Last:    last,
		Address: q.Address,
		City:    domain.DefaultCity,
		State:   domain.DefaultState,
		Zip:     q.Zip,
		Entry:   domain.AccessAtHome,
		Freq:    domain.Once,
		Notes:   q.Notes,
	}
}

// MergeBooking combines the stored quote with the pricing form into the full
// aggregate. Screen-P fields are authoritative; add-ons only attach to the
// flat branch.
func MergeBooking(q QuoteForm, p PricingForm) domain.Booking {
	b := q.Booking()

	b.Contact = domain.Contact{
		First:     p.First,
		Last:      p.Last,
		Email:     p.Email,
		Phone:     p.Phone,
		Address:   p.Address,
		Apartment: p.Apartment,
		City:      p.City,
		State:     p.State,
		Zip:       p.Zip,
	}
	if b.Contact.Zip == "" {
		b.Contact.Zip = q.Zip
	}

	if b.Service.Style == domain.StyleFlat && b.Service.Flat != nil {
		b.Service.Flat.AddOns = p.AddOns
	}

	if p.Freq != "" {
		b.Recurrence = p.Freq
	}
	b.Access = domain.Access{Method: p.Entry, Instructions: p.EntryNotes}
	if p.Notes != "" {
		b.Notes = p.Notes
	} else if q.Neighborhood != "" {
		b.Notes = q.Neighborhood
	}
	b.Agreed = p.Agree

	b.ApplyDefaults()
	return b
}

type flowState struct {
	State   State            `json:"state"`
	Handoff *handoff.Handoff `json:"handoff,omitempty"`
}

// PricingSeed is what the pricing screen renders from on entry.
type PricingSeed struct {
	Quote    QuoteForm        `json:"quote"`
	Form     PricingForm      `json:"form"`
	Estimate pricing.Estimate `json:"estimate"`
	State    State            `json:"state"`
}

// PricingController owns screen P: the live estimate, the state machine, and
// the handoff trigger.
type PricingController struct {
	store   session.Store
	bus     events.Publisher
	mail    mailer.Service
	builder *handoff.Builder
}

func NewPricingController(store session.Store, bus events.Publisher, mail mailer.Service, builder *handoff.Builder) *PricingController {
	return &PricingController{store: store, bus: bus, mail: mail, builder: builder}
}

// Bootstrap takes the most specific slot available and falls back through
// the quote slot to screen defaults. Taken slots are re-validated by the
// normalize pass; slot data is not trusted.
func (c *PricingController) Bootstrap(ctx context.Context, sessionID string) PricingSeed {
	var form PricingForm
	var quote QuoteForm

	havePricing := c.store.Take(ctx, sessionID, session.SlotPricingForm, &form)
	haveQuote := c.store.Get(ctx, sessionID, session.SlotQuoteForm, &quote)
	if !haveQuote {
		quote = DefaultQuoteForm()
	}
	quote.Normalize()
	if !havePricing {
		form = SeedPricingForm(quote)
	}

	booking := MergeBooking(quote, form)
	st := c.currentState(ctx, sessionID)

	return PricingSeed{
		Quote:    quote,
		Form:     form,
		Estimate: pricing.Price(booking),
		State:    st.State,
	}
}

// Edit applies a field change: the estimate is recomputed synchronously so
// the visible total is never stale, and the form is written through to its
// slot. The state reflects whether the booking could be submitted as-is.
func (c *PricingController) Edit(ctx context.Context, sessionID string, quote QuoteForm, form PricingForm) (pricing.Estimate, State) {
	booking := MergeBooking(quote, form)
	est := pricing.Price(booking)

	st := c.currentState(ctx, sessionID)
	if st.State == StateHandoffDispatched || st.State == StateSubmitting {
		return est, st.State
	}

	next := StateEditing
	if len(validate.Handoff(booking)) == 0 {
		next = StateReadyToHandoff
	}
	c.store.Put(ctx, sessionID, session.SlotPricingForm, form)
	c.store.Put(ctx, sessionID, session.SlotFlowState, flowState{State: next})

	return est, next
}

// Submit drives ReadyToHandoff -> Submitting -> HandoffDispatched. It is
// idempotent: a repeat submit during Submitting gets ErrSubmitInFlight, and a
// repeat after dispatch gets the original handoff back.
func (c *PricingController) Submit(ctx context.Context, sessionID string, quote QuoteForm, form PricingForm) (handoff.Handoff, validate.Errors, error) {
	st := c.currentState(ctx, sessionID)
	if st.State == StateHandoffDispatched && st.Handoff != nil {
		return *st.Handoff, nil, nil
	}

	if !c.store.Acquire(ctx, sessionID, session.SlotFlowState) {
		return handoff.Handoff{}, nil, ErrSubmitInFlight
	}
	defer c.store.Release(ctx, sessionID, session.SlotFlowState)

	c.store.Put(ctx, sessionID, session.SlotFlowState, flowState{State: StateSubmitting})

	booking := MergeBooking(quote, form)
	if errs := validate.Handoff(booking); len(errs) > 0 {
		c.store.Put(ctx, sessionID, session.SlotFlowState, flowState{State: StateEditing})
		return handoff.Handoff{}, errs, nil
	}

	est := pricing.Price(booking)
	h, err := c.builder.Build(booking, est)
	if err != nil {
		c.store.Put(ctx, sessionID, session.SlotFlowState, flowState{State: StateEditing})
		return handoff.Handoff{}, nil, err
	}

	c.store.Put(ctx, sessionID, session.SlotBooking, booking)
	c.store.Put(ctx, sessionID, session.SlotThankYou, h.Summary)
	c.store.Put(ctx, sessionID, session.SlotFlowState, flowState{State: StateHandoffDispatched, Handoff: &h})

	c.publishDispatch(ctx, sessionID, booking, est, h)
	c.notifyLead(ctx, booking, est)

	return h, nil, nil
}

// TakeSummary hands the thank-you screen its summary and clears the slot.
func (c *PricingController) TakeSummary(ctx context.Context, sessionID string, dest *handoff.Summary) bool {
	return c.store.Take(ctx, sessionID, session.SlotThankYou, dest)
}

func (c *PricingController) currentState(ctx context.Context, sessionID string) flowState {
	var st flowState
	if ok := c.store.Get(ctx, sessionID, session.SlotFlowState, &st); !ok || st.State == "" {
		st = flowState{State: StateEditing}
	}
	return st
}

func (c *PricingController) publishDispatch(ctx context.Context, sessionID string, b domain.Booking, est pricing.Estimate, h handoff.Handoff) {
	now := time.Now()

	if err := c.bus.Publish(ctx, events.HandoffDispatched, events.HandoffDispatchedEvent{
		SessionID:    sessionID,
		Provider:     h.Provider,
		Email:        b.Contact.Email,
		Service:      b.Service.Label(),
		Date:         b.Schedule.Date,
		Total:        est.Total,
		DispatchedAt: now,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish handoff dispatched event", "error", err)
	}

	if err := c.bus.Publish(ctx, events.LeadCaptured, events.LeadCapturedEvent{
		SessionID:  sessionID,
		Name:       b.Contact.FullName(),
		Email:      b.Contact.Email,
		Phone:      b.Contact.Phone,
		Zip:        b.Contact.Zip,
		CapturedAt: now,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish lead captured event", "error", err)
	}
}

func (c *PricingController) notifyLead(ctx context.Context, b domain.Booking, est pricing.Estimate) {
	lead := mailer.Lead{
		Name:       b.Contact.FullName(),
		Email:      b.Contact.Email,
		Phone:      b.Contact.Phone,
		Address:    b.Contact.Address,
		Zip:        b.Contact.Zip,
		Service:    b.Service.Label(),
		Date:       b.Schedule.Date,
		TimeWindow: b.Schedule.Start + " - " + b.Schedule.End,
		Frequency:  string(b.Recurrence),
		Total:      est.Total,
		Notes:      b.Notes,
	}
	if err := c.mail.SendLeadNotification(lead); err != nil {
		logger.ErrorContext(ctx, "Failed to send lead notification", "error", err)
	}
}
