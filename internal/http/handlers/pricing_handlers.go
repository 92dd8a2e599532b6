package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/manhattanmint/mint-bookings/internal/flow"
	"github.com/manhattanmint/mint-bookings/internal/http/response"
	"github.com/manhattanmint/mint-bookings/internal/pricing"
	"github.com/manhattanmint/mint-bookings/pkg/logger"
)

// BootstrapPricing seeds the pricing/availability screen from the most
// specific session slot available, falling back to defaults.
func (h *Handlers) BootstrapPricing(w http.ResponseWriter, r *http.Request) {
	seed := h.pricing.Bootstrap(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, seed)
}

type pricingRequest struct {
	Quote flow.QuoteForm   `json:"quote"`
	Form  flow.PricingForm `json:"form"`
}

type editResponse struct {
	Estimate pricing.Estimate `json:"estimate"`
	State    flow.State       `json:"state"`
}

// EditPricing applies a field change and returns the recomputed estimate and
// the machine state, so the UI can light up the submit button.
func (h *Handlers) EditPricing(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	req.Quote.Normalize()
	est, state := h.pricing.Edit(r.Context(), sessionID(r), req.Quote, req.Form)
	writeJSON(w, http.StatusOK, editResponse{Estimate: est, State: state})
}

// SubmitPricing triggers the handoff. Repeat submits while one is in flight
// get a 409; a repeat after dispatch gets the original handoff again.
func (h *Handlers) SubmitPricing(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	req.Quote.Normalize()
	hd, errs, err := h.pricing.Submit(r.Context(), sessionID(r), req.Quote, req.Form)
	if err != nil {
		if errors.Is(err, flow.ErrSubmitInFlight) {
			response.WriteError(w, http.StatusConflict, "A submit is already in progress", response.CodeSubmitInFlight)
			return
		}
		logger.ErrorContext(r.Context(), "Handoff failed", "error", err)
		response.InternalError(w, "Failed to hand off booking")
		return
	}
	if len(errs) > 0 {
		response.WriteValidationErrors(w, errs)
		return
	}

	writeJSON(w, http.StatusOK, hd)
}
