// Package handoff turns a finalized booking into the provider prefill URL and
// the thank-you summary. This is the last step the funnel owns; scheduling
// and payment happen on the provider's side.
package handoff

import (
	"fmt"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/manhattanmint/mint-bookings/internal/domain"
	"github.com/manhattanmint/mint-bookings/internal/pricing"
	"github.com/manhattanmint/mint-bookings/pkg/config"
)

// Prefill is the fixed provider query-string mapping. Unset fields are
// omitted entirely; omitempty keeps empty key= pairs out of the URL.
type Prefill struct {
	Email     string `url:"email,omitempty"`
	Phone     string `url:"phone,omitempty"`
	FirstName string `url:"first_name,omitempty"`
	LastName  string `url:"last_name,omitempty"`
	Address   string `url:"address,omitempty"`
	City      string `url:"city,omitempty"`
	State     string `url:"state,omitempty"`
	Zip       string `url:"zip,omitempty"`
	Date      string `url:"date,omitempty"`
	Time      string `url:"time,omitempty"`
	Service   string `url:"service,omitempty"`
	Notes     string `url:"notes,omitempty"`
}

// Summary is the projection the thank-you screen renders.
type Summary struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Date  string `json:"date,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Freq  string `json:"freq,omitempty"`
	Total int    `json:"total"`
}

// Handoff is what the pricing screen receives back on a successful submit:
// where to send the customer and what to show if the embed fails to load.
type Handoff struct {
	Provider    string  `json:"provider"`
	PrefillURL  string  `json:"prefill_url"`
	ScriptURL   string  `json:"script_url,omitempty"`
	FallbackURL string  `json:"fallback_url"`
	Summary     Summary `json:"summary"`
}

type Builder struct {
	provider  config.Provider
	widgetURL string
	scriptURL string
}

func NewBuilder(provider config.Provider, widgetURL, scriptURL string) *Builder {
	return &Builder{
		provider:  provider,
		widgetURL: widgetURL,
		scriptURL: scriptURL,
	}
}

// PrefillFromBooking maps the booking onto the provider parameter names.
// Time carries the start of the requested window.
func PrefillFromBooking(b domain.Booking) Prefill {
	return Prefill{
		Email:     b.Contact.Email,
		Phone:     b.Contact.Phone,
		FirstName: b.Contact.First,
		LastName:  b.Contact.Last,
		Address:   b.Contact.Address,
		City:      b.Contact.City,
		State:     b.Contact.State,
		Zip:       b.Contact.Zip,
		Date:      b.Schedule.Date,
		Time:      b.Schedule.Start,
		Service:   b.Service.Label(),
		Notes:     b.Notes,
	}
}

// BuildPrefillURL appends the encoded prefill onto the widget base URL. The
// base may already carry a query marker (Launch27 uses "?w_cleaning").
func (bl *Builder) BuildPrefillURL(b domain.Booking) (string, error) {
	vals, err := query.Values(PrefillFromBooking(b))
	if err != nil {
		return "", fmt.Errorf("failed to encode prefill: %w", err)
	}

	qs := vals.Encode()
	if qs == "" {
		return bl.widgetURL, nil
	}
	sep := "?"
	if strings.Contains(bl.widgetURL, "?") {
		sep = "&"
	}
	return bl.widgetURL + sep + qs, nil
}

func (bl *Builder) Build(b domain.Booking, est pricing.Estimate) (Handoff, error) {
	prefillURL, err := bl.BuildPrefillURL(b)
	if err != nil {
		return Handoff{}, err
	}

	return Handoff{
		Provider:    string(bl.provider),
		PrefillURL:  prefillURL,
		ScriptURL:   bl.scriptURL,
		FallbackURL: prefillURL,
		Summary:     SummaryFromBooking(b, est),
	}, nil
}

func SummaryFromBooking(b domain.Booking, est pricing.Estimate) Summary {
	return Summary{
		Name:  b.Contact.FullName(),
		Email: b.Contact.Email,
		Phone: b.Contact.Phone,
		Date:  b.Schedule.Date,
		Start: b.Schedule.Start,
		End:   b.Schedule.End,
		Freq:  string(b.Recurrence),
		Total: est.Total,
	}
}
