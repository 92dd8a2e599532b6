package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Site.ActiveProvider != ProviderLaunch27 {
		t.Errorf("active provider = %q", cfg.Site.ActiveProvider)
	}
	if cfg.Site.SessionTTL != 2*time.Hour {
		t.Errorf("session TTL = %v", cfg.Site.SessionTTL)
	}
	if !cfg.Email.DevMode {
		t.Error("email should default to dev mode")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ACTIVE_PROVIDER", "jobber")
	t.Setenv("QUOTE_SESSION_TTL", "30m")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Site.ActiveProvider != ProviderJobber {
		t.Errorf("active provider = %q", cfg.Site.ActiveProvider)
	}
	if cfg.Site.SessionTTL != 30*time.Minute {
		t.Errorf("session TTL = %v", cfg.Site.SessionTTL)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Site.ActiveProvider = ProviderLaunch27
	if err := cfg.Validate(); err != nil {
		t.Errorf("launch27 should validate: %v", err)
	}

	cfg.Site.ActiveProvider = "both"
	if err := cfg.Validate(); err == nil {
		t.Error("an unknown provider must not validate")
	}
}
