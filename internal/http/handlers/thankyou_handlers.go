package handlers

import (
	"net/http"
	"strconv"

	"github.com/manhattanmint/mint-bookings/internal/handoff"
)

// ThankYou returns the booking summary for the confirmation screen. The slot
// is taken (cleared after read). Deep-linked confirmations may carry the
// summary in the query string instead; that path tolerates anything missing.
func (h *Handlers) ThankYou(w http.ResponseWriter, r *http.Request) {
	var summary handoff.Summary
	if ok := h.pricing.TakeSummary(r.Context(), sessionID(r), &summary); !ok {
		summary = summaryFromQuery(r)
	}
	writeJSON(w, http.StatusOK, summary)
}

func summaryFromQuery(r *http.Request) handoff.Summary {
	q := r.URL.Query()
	total, _ := strconv.Atoi(q.Get("total"))
	return handoff.Summary{
		Name:  q.Get("name"),
		Email: q.Get("email"),
		Phone: q.Get("phone"),
		Date:  q.Get("date"),
		Start: q.Get("start"),
		End:   q.Get("end"),
		Freq:  q.Get("freq"),
		Total: total,
	}
}
