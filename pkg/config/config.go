package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider identifies which external booking system receives the handoff.
// At most one provider is active at a time.
type Provider string

const (
	ProviderLaunch27 Provider = "launch27"
	ProviderJobber   Provider = "jobber"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Site     SiteConfig
	Launch27 Launch27Config
	Jobber   JobberConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type NATSConfig struct {
	URL string
}

type SiteConfig struct {
	URL            string
	ActiveProvider Provider
	SessionTTL     time.Duration
}

type Launch27Config struct {
	APIKey    string
	BaseURL   string
	WidgetURL string
	ScriptURL string
}

type JobberConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	StateSecret  string
	StateTTL     time.Duration
}

type EmailConfig struct {
	MailerSendKey string
	FromName      string
	FromEmail     string
	LeadInbox     string
	DevMode       bool // print emails to logs instead of sending
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Site: SiteConfig{
			URL:            getEnv("SITE_URL", "http://localhost:3000"),
			ActiveProvider: Provider(getEnv("ACTIVE_PROVIDER", string(ProviderLaunch27))),
			SessionTTL:     getDuration("QUOTE_SESSION_TTL", 2*time.Hour),
		},
		Launch27: Launch27Config{
			APIKey:    getEnv("LAUNCH27_API_KEY", ""),
			BaseURL:   getEnv("LAUNCH27_BASE_URL", "https://manhattanmintnyc.launch27.com/api"),
			WidgetURL: getEnv("LAUNCH27_WIDGET_URL", "https://manhattanmintnyc.launch27.com/?w_cleaning"),
			ScriptURL: getEnv("LAUNCH27_SCRIPT_URL", "https://manhattanmintnyc.launch27.com/jsbundle"),
		},
		Jobber: JobberConfig{
			ClientID:     getEnv("JOBBER_CLIENT_ID", ""),
			ClientSecret: getEnv("JOBBER_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("JOBBER_OAUTH_REDIRECT_URI_PROD", ""),
			StateSecret:  getEnv("JOBBER_STATE_SECRET", "dev-only-secret-change-in-prod"),
			StateTTL:     getDuration("JOBBER_STATE_TTL", 15*time.Minute),
		},
		Email: EmailConfig{
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			FromName:      getEnv("EMAIL_FROM_NAME", "Manhattan Mint"),
			FromEmail:     getEnv("EMAIL_FROM", "noreply@manhattanmint.nyc"),
			LeadInbox:     getEnv("LEAD_INBOX", "bookings@manhattanmint.nyc"),
			DevMode:       getBool("EMAIL_DEV_MODE", true),
		},
	}
}

// Validate rejects configurations the funnel cannot run with. The two booking
// providers must not be live simultaneously, so the active one is an explicit
// choice rather than whichever has credentials present.
func (c *Config) Validate() error {
	switch c.Site.ActiveProvider {
	case ProviderLaunch27, ProviderJobber:
	default:
		return fmt.Errorf("unknown ACTIVE_PROVIDER %q", c.Site.ActiveProvider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
