// Package launch27 is the server-side booking-creation collaborator. The
// funnel itself never depends on it succeeding; it exists for the API-driven
// integration path next to the embedded widget.
package launch27

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/manhattanmint/mint-bookings/internal/domain"
	"github.com/manhattanmint/mint-bookings/internal/pricing"
)

// ErrNotConfigured is returned when the API credentials are absent. Callers
// translate it to HTTP 500; the customer-facing funnel never sees it.
var ErrNotConfigured = errors.New("launch27 API credentials not configured")

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

type ServiceInfo struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Duration int    `json:"duration,omitempty"` // minutes
}

type Payment struct {
	Method string `json:"method"`
	Amount int    `json:"amount"`
}

type AddOn struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type BookingRequest struct {
	Customer  Customer    `json:"customer"`
	Service   ServiceInfo `json:"service"`
	Date      string      `json:"date"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time,omitempty"`
	Payment   Payment     `json:"payment"`
	Frequency string      `json:"frequency,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	AddOns    []AddOn     `json:"addons,omitempty"`
}

type BookingResponse struct {
	ID                 int64  `json:"id"`
	ConfirmationNumber string `json:"confirmation_number"`
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func New(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != "" && c.baseURL != ""
}

// FromBooking translates the finalized aggregate into Launch27's payload.
// Apartment, entry method and selected extras fold into the notes field the
// way the hosted form expects them.
func FromBooking(b domain.Booking, est pricing.Estimate) BookingRequest {
	req := BookingRequest{
		Customer: Customer{
			FirstName: b.Contact.First,
			LastName:  b.Contact.Last,
			Email:     b.Contact.Email,
			Phone:     b.Contact.Phone,
			Address:   b.Contact.Address,
			City:      b.Contact.City,
			State:     b.Contact.State,
			Zip:       b.Contact.Zip,
		},
		Service: ServiceInfo{
			Name:  b.Service.Label(),
			Price: est.Total,
		},
		Date:      b.Schedule.Date,
		StartTime: b.Schedule.Start,
		EndTime:   b.Schedule.End,
		Payment: Payment{
			Method: "card",
			Amount: est.Total,
		},
		Frequency: string(b.Recurrence),
		Notes:     foldNotes(b),
	}

	if b.Service.Style == domain.StyleHourly && b.Service.Hourly != nil {
		req.Service.Duration = b.Service.Hourly.Hours * 60
	}
	if b.Service.Style == domain.StyleFlat && b.Service.Flat != nil {
		for _, key := range b.Service.Flat.AddOns {
			if a, ok := domain.AddOnByKey(key); ok {
				req.AddOns = append(req.AddOns, AddOn{Name: a.Label, Price: a.Price})
			}
		}
	}

	return req
}

func foldNotes(b domain.Booking) string {
	var parts []string
	if b.Notes != "" {
		parts = append(parts, b.Notes)
	}
	if b.Contact.Apartment != "" {
		parts = append(parts, "Apt: "+b.Contact.Apartment)
	}
	if b.Access.Method != "" {
		parts = append(parts, "Entry: "+string(b.Access.Method))
	}
	if b.Access.Instructions != "" {
		parts = append(parts, "Entry notes: "+b.Access.Instructions)
	}
	if b.Service.Style == domain.StyleFlat && b.Service.Flat != nil && len(b.Service.Flat.AddOns) > 0 {
		var labels []string
		for _, key := range b.Service.Flat.AddOns {
			if a, ok := domain.AddOnByKey(key); ok {
				labels = append(labels, a.Label)
			}
		}
		if len(labels) > 0 {
			parts = append(parts, "Add-ons: "+strings.Join(labels, ", "))
		}
	}
	return strings.Join(parts, " | ")
}

func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResponse, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("launch27 request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("launch27 returned %d: %s", resp.StatusCode, string(body))
	}

	var booking BookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		return nil, fmt.Errorf("failed to decode launch27 response: %w", err)
	}
	return &booking, nil
}
