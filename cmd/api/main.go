package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/manhattanmint/mint-bookings/internal/flow"
	"github.com/manhattanmint/mint-bookings/internal/handoff"
	"github.com/manhattanmint/mint-bookings/internal/http/handlers"
	"github.com/manhattanmint/mint-bookings/internal/mailer"
	"github.com/manhattanmint/mint-bookings/internal/providers/jobber"
	"github.com/manhattanmint/mint-bookings/internal/providers/launch27"
	"github.com/manhattanmint/mint-bookings/internal/session"
	"github.com/manhattanmint/mint-bookings/pkg/config"
	"github.com/manhattanmint/mint-bookings/pkg/events"
	"github.com/manhattanmint/mint-bookings/pkg/logger"
	mw "github.com/manhattanmint/mint-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Session store: Redis with in-process fallback when unreachable
	var store session.Store
	if opts, err := redis.ParseURL(cfg.Redis.URL); err == nil {
		if cfg.Redis.Password != "" {
			opts.Password = cfg.Redis.Password
		}
		opts.DB = cfg.Redis.DB
		store = session.NewRedisStore(redis.NewClient(opts), cfg.Site.SessionTTL)
	} else {
		logger.Warn("Invalid Redis URL, using in-memory session store", "error", err)
		store = session.NewMemoryStore()
	}

	// Event bus: funnel analytics are best-effort
	var bus events.EventBus
	if natsBus, err := events.NewNATSEventBus(cfg.NATS.URL); err != nil {
		logger.Warn("NATS unavailable, funnel events disabled", "error", err)
		bus = events.NoopEventBus{}
	} else {
		bus = natsBus
		defer bus.Close()
	}

	// Lead notifications
	var mail mailer.Service
	if cfg.Email.DevMode {
		mail = mailer.NewDevMailer()
	} else {
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail, cfg.Email.LeadInbox)
	}

	// Providers
	l27 := launch27.New(cfg.Launch27.APIKey, cfg.Launch27.BaseURL)
	jb := jobber.NewOAuth(cfg.Jobber.ClientID, cfg.Jobber.ClientSecret, cfg.Jobber.RedirectURI, cfg.Jobber.StateSecret, cfg.Jobber.StateTTL)
	builder := handoff.NewBuilder(cfg.Site.ActiveProvider, cfg.Launch27.WidgetURL, cfg.Launch27.ScriptURL)

	// Flow controllers
	quoteCtrl := flow.NewQuoteController(store, bus)
	pricingCtrl := flow.NewPricingController(store, bus, mail, builder)

	// Initialize handlers
	h := handlers.New(quoteCtrl, pricingCtrl, l27, jb, cfg)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("quote-funnel"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(mw.Health)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Site.URL, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Session-ID", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
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

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down quote funnel service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Quote funnel shutdown error", "error", err)
		}
	}()

	logger.Info("Starting quote funnel service", "port", cfg.Server.Port, "provider", string(cfg.Site.ActiveProvider))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Quote funnel service error", "error", err)
		os.Exit(1)
	}
}
