package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/manhattanmint/mint-bookings/internal/flow"
	"github.com/manhattanmint/mint-bookings/internal/handoff"
	"github.com/manhattanmint/mint-bookings/internal/mailer"
	"github.com/manhattanmint/mint-bookings/internal/providers/jobber"
	"github.com/manhattanmint/mint-bookings/internal/providers/launch27"
	"github.com/manhattanmint/mint-bookings/internal/session"
	"github.com/manhattanmint/mint-bookings/pkg/config"
	"github.com/manhattanmint/mint-bookings/pkg/events"
)

func newTestRouter(t *testing.T) (*chi.Mux, session.Store) {
	t.Helper()

	store := session.NewMemoryStore()
	bus := events.NoopEventBus{}
	mail := mailer.NewDevMailer()
	builder := handoff.NewBuilder(config.ProviderLaunch27, "https://mint.launch27.com/?w_cleaning", "")

	cfg := &config.Config{}
	cfg.Site.URL = "https://manhattanmint.example"
	cfg.Site.ActiveProvider = config.ProviderLaunch27

	h := New(
		flow.NewQuoteController(store, bus),
		flow.NewPricingController(store, bus, mail, builder),
		launch27.New("", ""),
		jobber.NewOAuth("client-id", "client-secret", "https://manhattanmint.example/v1/booking/oauth/callback", "state-secret", 10*time.Minute),
		cfg,
	)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Use(h.Session)

		r.Route("/quote", func(r chi.Router) {
			r.Get("/", h.GetQuote)
			r.Post("/", h.SubmitQuote)
			r.Post("/estimate", h.Estimate)
		})
		r.Route("/pricing-availability", func(r chi.Router) {
			r.Get("/", h.BootstrapPricing)
			r.Patch("/", h.EditPricing)
			r.Post("/", h.SubmitPricing)
		})
		r.Get("/thank-you", h.ThankYou)
		r.Route("/booking", func(r chi.Router) {
			r.Get("/authorize", h.AuthorizeJobber)
			r.Get("/oauth/callback", h.JobberCallback)
		})
		r.Post("/launch27/bookings", h.CreateLaunch27Booking)
	})
	return r, store
}

func doJSON(t *testing.T, r http.Handler, method, path, sid string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.Header.Set("X-Session-ID", sid)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSessionMiddleware_AssignsCookie(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/v1/quote", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie on a fresh visit")
	}
}

func TestSessionMiddleware_HeaderSkipsCookie(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/v1/quote", "sess-abc", nil)
	if len(rec.Result().Cookies()) != 0 {
		t.Error("an explicit session header should not mint a cookie")
	}
}

func TestSubmitQuote(t *testing.T) {
	r, _ := newTestRouter(t)

	form := flow.DefaultQuoteForm()
	form.Zip = "10036"

	rec := doJSON(t, r, http.MethodPost, "/v1/quote", "sess-1", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionID string `json:"session_id"`
		Estimate  struct {
			Total int `json:"total"`
		} `json:"estimate"`
		Next string `json:"next"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != "sess-1" {
		t.Errorf("session_id = %q", resp.SessionID)
	}
	if resp.Estimate.Total != 223 {
		t.Errorf("total = %d", resp.Estimate.Total)
	}
	if resp.Next != "/pricing-availability" {
		t.Errorf("next = %q", resp.Next)
	}
}

func TestSubmitQuote_BadJSON(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/quote", bytes.NewBufferString("{nope"))
	req.Header.Set("X-Session-ID", "sess-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestEstimate_Stateless(t *testing.T) {
	r, store := newTestRouter(t)

	body := map[string]any{"quote": flow.DefaultQuoteForm()}
	rec := doJSON(t, r, http.MethodPost, "/v1/quote/estimate", "sess-1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var est struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &est); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if est.Total != 223 {
		t.Errorf("total = %d", est.Total)
	}

	var stored flow.QuoteForm
	if store.Get(context.Background(), "sess-1", session.SlotQuoteForm, &stored) {
		t.Error("estimate must not write session state")
	}
}

func TestFunnelHappyPath(t *testing.T) {
	r, _ := newTestRouter(t)
	sid := "happy-path"

	quote := flow.DefaultQuoteForm()
	quote.Zip = "10036"
	if rec := doJSON(t, r, http.MethodPost, "/v1/quote", sid, quote); rec.Code != http.StatusOK {
		t.Fatalf("quote submit status = %d", rec.Code)
	}

	rec := doJSON(t, r, http.MethodGet, "/v1/pricing-availability", sid, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("bootstrap status = %d", rec.Code)
	}
	var seed flow.PricingSeed
	if err := json.Unmarshal(rec.Body.Bytes(), &seed); err != nil {
		t.Fatalf("decode seed: %v", err)
	}
	if seed.State != flow.StateEditing {
		t.Errorf("seed state = %q", seed.State)
	}

	seed.Quote.Date = "2026-10-01"
	seed.Quote.Start = "09:00"
	seed.Quote.End = "12:00"
	form := seed.Form
	form.Email = "alex@example.com"
	form.Phone = "2125550142"
	form.First = "Alex"
	form.Last = "Rivera"
	form.Address = "350 W 42nd St"
	form.Zip = "10036"
	form.Agree = true

	body := map[string]any{"quote": seed.Quote, "form": form}
	rec = doJSON(t, r, http.MethodPatch, "/v1/pricing-availability", sid, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d: %s", rec.Code, rec.Body.String())
	}
	var edit struct {
		State flow.State `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &edit); err != nil {
		t.Fatalf("decode edit: %v", err)
	}
	if edit.State != flow.StateReadyToHandoff {
		t.Fatalf("state after complete edit = %q", edit.State)
	}

	rec = doJSON(t, r, http.MethodPost, "/v1/pricing-availability", sid, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
	}
	var hd handoff.Handoff
	if err := json.Unmarshal(rec.Body.Bytes(), &hd); err != nil {
		t.Fatalf("decode handoff: %v", err)
	}
	if hd.Provider != "launch27" || hd.PrefillURL == "" {
		t.Errorf("handoff = %+v", hd)
	}

	rec = doJSON(t, r, http.MethodGet, "/v1/thank-you", sid, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("thank-you status = %d", rec.Code)
	}
	var summary handoff.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Name != "Alex Rivera" || summary.Total != hd.Summary.Total {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSubmitPricing_ValidationErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	body := map[string]any{"quote": flow.DefaultQuoteForm(), "form": flow.PricingForm{}}
	rec := doJSON(t, r, http.MethodPost, "/v1/pricing-availability", "sess-1", body)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Code   string `json:"code"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "VALIDATION_FAILED" {
		t.Errorf("code = %q", resp.Code)
	}
	if len(resp.Fields) < 5 {
		t.Errorf("expected every failing field enumerated, got %v", resp.Fields)
	}
}

func TestSubmitPricing_Conflict(t *testing.T) {
	r, store := newTestRouter(t)
	sid := "conflicted"

	if !store.Acquire(context.Background(), sid, session.SlotFlowState) {
		t.Fatal("setup acquire failed")
	}

	quote := flow.DefaultQuoteForm()
	quote.Date = "2026-10-01"
	quote.Start = "09:00"
	quote.End = "12:00"
	form := flow.PricingForm{
		Email: "alex@example.com", Phone: "2125550142",
		First: "Alex", Last: "Rivera",
		Address: "350 W 42nd St", Zip: "10036", Agree: true,
	}
	body := map[string]any{"quote": quote, "form": form}

	rec := doJSON(t, r, http.MethodPost, "/v1/pricing-availability", sid, body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "SUBMIT_IN_FLIGHT" {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestThankYou_QueryFallback(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/v1/thank-you?name=Alex+Rivera&total=394&freq=biweekly", "no-slots", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var summary handoff.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Name != "Alex Rivera" || summary.Total != 394 || summary.Freq != "biweekly" {
		t.Errorf("summary = %+v", summary)
	}
}

func TestAuthorizeJobber_Redirects(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/v1/booking/authorize", "sess-1", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	loc := rec.Header().Get("Location")
	if loc == "" {
		t.Fatal("missing redirect location")
	}
	u, err := url.Parse(loc)
	if err != nil {
		t.Fatalf("redirect does not parse: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "client-id" || q.Get("response_type") != "code" || q.Get("state") == "" {
		t.Errorf("authorize params = %v", q)
	}
}

func TestJobberCallback_RejectsBadState(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/v1/booking/oauth/callback?code=abc&state=forged", "sess-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/v1/booking/oauth/callback?error=access_denied", "sess-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d for provider error", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/v1/booking/oauth/callback?state=whatever", "sess-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d for missing code", rec.Code)
	}
}

func TestCreateLaunch27Booking_NotConfigured(t *testing.T) {
	r, _ := newTestRouter(t)

	booking := map[string]any{
		"contact": map[string]any{
			"first": "Alex", "last": "Rivera",
			"email": "alex@example.com", "phone": "2125550142",
			"address": "350 W 42nd St", "zip": "10036",
		},
		"schedule": map[string]any{"date": "2026-10-01", "start": "09:00", "end": "12:00"},
		"service": map[string]any{
			"style": "flat",
			"flat":  map[string]any{"bedrooms": 2, "bathrooms": 1, "cleaning_type": "standard"},
		},
		"recurrence": "once",
		"agreed":     true,
	}

	rec := doJSON(t, r, http.MethodPost, "/v1/launch27/bookings", "sess-1", booking)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "PROVIDER_NOT_CONFIGURED" {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestCreateLaunch27Booking_Validates(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/v1/launch27/bookings", "sess-1", map[string]any{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d: %s", rec.Code, rec.Body.String())
	}
}
