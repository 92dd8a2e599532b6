package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/manhattanmint/mint-bookings/internal/flow"
	"github.com/manhattanmint/mint-bookings/internal/http/response"
	"github.com/manhattanmint/mint-bookings/internal/pricing"
)

type quoteResponse struct {
	SessionID string           `json:"session_id"`
	Estimate  pricing.Estimate `json:"estimate"`
	Next      string           `json:"next"`
}

// SubmitQuote handles the quote screen's "Get a Price": normalize, run the
// progression checks, stash the form and point the client at the pricing
// screen. Validation failures keep the customer on the quote screen.
func (h *Handlers) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	var form flow.QuoteForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	est, errs := h.quote.Submit(r.Context(), sessionID(r), form)
	if len(errs) > 0 {
		response.WriteValidationErrors(w, errs)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		SessionID: sessionID(r),
		Estimate:  est,
		Next:      "/pricing-availability",
	})
}

// GetQuote returns the stored quote form for a returning visitor, or screen
// defaults.
func (h *Handlers) GetQuote(w http.ResponseWriter, r *http.Request) {
	form := h.quote.Resume(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"form":     form,
		"estimate": pricing.Price(form.Booking()),
	})
}

type estimateRequest struct {
	Quote   flow.QuoteForm    `json:"quote"`
	Pricing *flow.PricingForm `json:"pricing,omitempty"`
}

// Estimate is the stateless price preview: the engine is pure, so the client
// can recompute on every keystroke without touching the session.
func (h *Handlers) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	req.Quote.Normalize()
	booking := req.Quote.Booking()
	if req.Pricing != nil {
		booking = flow.MergeBooking(req.Quote, *req.Pricing)
	}

	writeJSON(w, http.StatusOK, pricing.Price(booking))
}
