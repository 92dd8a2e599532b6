package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/manhattanmint/mint-bookings/internal/domain"
	"github.com/manhattanmint/mint-bookings/internal/http/response"
	"github.com/manhattanmint/mint-bookings/internal/pricing"
	"github.com/manhattanmint/mint-bookings/internal/providers/jobber"
	"github.com/manhattanmint/mint-bookings/internal/providers/launch27"
	"github.com/manhattanmint/mint-bookings/internal/validate"
	"github.com/manhattanmint/mint-bookings/pkg/logger"
)

// AuthorizeJobber starts the provider OAuth dance with a redirect.
func (h *Handlers) AuthorizeJobber(w http.ResponseWriter, r *http.Request) {
	authorizeURL, err := h.jobber.AuthorizeURL(sessionID(r))
	if err != nil {
		if errors.Is(err, jobber.ErrNotConfigured) {
			response.WriteError(w, http.StatusInternalServerError, "Jobber OAuth credentials not configured", response.CodeNotConfigured)
			return
		}
		logger.ErrorContext(r.Context(), "Failed to build authorize URL", "error", err)
		response.InternalError(w, "Failed to start authorization")
		return
	}
	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// JobberCallback exchanges the authorization code for tokens and sends the
// operator back to the site. Provider failures never reach the funnel.
func (h *Handlers) JobberCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errMsg := q.Get("error"); errMsg != "" {
		response.BadRequest(w, "Jobber auth error: "+errMsg)
		return
	}
	code := q.Get("code")
	if code == "" {
		response.BadRequest(w, "Missing authorization code")
		return
	}
	if _, err := h.jobber.VerifyState(q.Get("state")); err != nil {
		response.BadRequest(w, "Invalid or expired state")
		return
	}

	tokens, err := h.jobber.Exchange(r.Context(), code)
	if err != nil {
		if errors.Is(err, jobber.ErrNotConfigured) {
			response.WriteError(w, http.StatusInternalServerError, "Jobber OAuth credentials not configured", response.CodeNotConfigured)
			return
		}
		logger.ErrorContext(r.Context(), "Token exchange failed", "error", err)
		response.InternalError(w, "Token exchange failed")
		return
	}

	// Tokens are not persisted here; the operator wires them into the
	// provider dashboard.
	logger.InfoContext(r.Context(), "Jobber account connected", "token_type", tokens.TokenType, "expires_in", tokens.ExpiresIn)

	http.Redirect(w, r, h.config.Site.URL+"/booking/connected", http.StatusFound)
}

type createBookingResponse struct {
	Success            bool   `json:"success"`
	BookingID          int64  `json:"booking_id"`
	ConfirmationNumber string `json:"confirmation_number,omitempty"`
	Message            string `json:"message"`
}

// CreateLaunch27Booking is the API-driven integration path: it revalidates
// and reprices the posted booking, then creates it through Launch27.
func (h *Handlers) CreateLaunch27Booking(w http.ResponseWriter, r *http.Request) {
	var booking domain.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	booking.ApplyDefaults()

	if errs := validate.Handoff(booking); len(errs) > 0 {
		response.WriteValidationErrors(w, errs)
		return
	}

	// Price is never trusted from the client; recompute from the inputs.
	est := pricing.Price(booking)

	created, err := h.launch27.CreateBooking(r.Context(), launch27.FromBooking(booking, est))
	if err != nil {
		if errors.Is(err, launch27.ErrNotConfigured) {
			response.WriteError(w, http.StatusInternalServerError, "Launch27 API credentials not configured", response.CodeNotConfigured)
			return
		}
		logger.ErrorContext(r.Context(), "Launch27 booking failed", "error", err)
		response.InternalError(w, "Failed to create booking")
		return
	}

	writeJSON(w, http.StatusCreated, createBookingResponse{
		Success:            true,
		BookingID:          created.ID,
		ConfirmationNumber: created.ConfirmationNumber,
		Message:            "Booking created successfully",
	})
}
