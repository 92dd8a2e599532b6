package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/manhattanmint/mint-bookings/internal/flow"
	"github.com/manhattanmint/mint-bookings/internal/providers/jobber"
	"github.com/manhattanmint/mint-bookings/internal/providers/launch27"
	"github.com/manhattanmint/mint-bookings/pkg/config"
	"github.com/manhattanmint/mint-bookings/pkg/logger"
)

const SessionCookie = "mint_session"

type Handlers struct {
	quote    *flow.QuoteController
	pricing  *flow.PricingController
	launch27 *launch27.Client
	jobber   *jobber.OAuth
	config   *config.Config
}

func New(quote *flow.QuoteController, pricing *flow.PricingController, l27 *launch27.Client, jb *jobber.OAuth, cfg *config.Config) *Handlers {
	return &Handlers{
		quote:    quote,
		pricing:  pricing,
		launch27: l27,
		jobber:   jb,
		config:   cfg,
	}
}

// Session assigns each visitor a funnel session. The ID rides a cookie (or
// the X-Session-ID header for API clients) and keys the slot store.
func (h *Handlers) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			sid = c.Value
		}
		if sid == "" {
			sid = r.Header.Get("X-Session-ID")
		}
		if sid == "" {
			sid = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   int((2 * time.Hour).Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), logger.SessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	if sid, ok := r.Context().Value(logger.SessionIDKey).(string); ok {
		return sid
	}
	return ""
}

// Helper functions for common response patterns
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
