// Package session carries the in-flight booking across funnel screens. The
// store is a capability handed to the flow controllers so tests can swap in
// the memory implementation.
package session

import "context"

// Slot names the well-known storage slots. One slot holds one serialized
// projection of the booking.
type Slot string

const (
	SlotQuoteForm   Slot = "quoteFormData"
	SlotPricingForm Slot = "pricingFormData"
	SlotBooking     Slot = "bookingData"
	SlotThankYou    Slot = "thankYouData"
	SlotFlowState   Slot = "flowState"
)

// Store contract:
//
//   - Put never surfaces a failure to the caller; if the backend is down the
//     store degrades to process-local memory and the customer sees nothing.
//   - Take returns the value and removes it in one step. Callers must
//     tolerate a miss and fall back to defaults, and must re-validate what
//     they read: slot data is not trusted.
//   - Acquire is a one-shot marker used to make the handoff submit guard
//     structural; it returns false while a previous acquire is still held.
type Store interface {
	Put(ctx context.Context, sessionID string, slot Slot, value any)
	Take(ctx context.Context, sessionID string, slot Slot, dest any) bool
	Get(ctx context.Context, sessionID string, slot Slot, dest any) bool
	Acquire(ctx context.Context, sessionID string, slot Slot) bool
	Release(ctx context.Context, sessionID string, slot Slot)
}

func key(sessionID string, slot Slot) string {
	return "funnel:" + sessionID + ":" + string(slot)
}
