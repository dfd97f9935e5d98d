package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GinMode != "debug" {
		t.Fatalf("GinMode = %q, want debug", cfg.GinMode)
	}
	if cfg.AuthRateMax != 10 {
		t.Fatalf("AuthRateMax = %d, want 10", cfg.AuthRateMax)
	}
	if cfg.AuthRateWindowSeconds != 60 {
		t.Fatalf("AuthRateWindowSeconds = %d, want 60", cfg.AuthRateWindowSeconds)
	}
	if cfg.CleanupIntervalMinutes != 60 {
		t.Fatalf("CleanupIntervalMinutes = %d, want 60", cfg.CleanupIntervalMinutes)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_RATE_MAX", "5")
	t.Setenv("RESEND_API_KEY", "re_test_key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.AuthRateMax != 5 {
		t.Fatalf("AuthRateMax = %d, want 5", cfg.AuthRateMax)
	}
	if cfg.ResendAPIKey != "re_test_key" {
		t.Fatalf("ResendAPIKey = %q", cfg.ResendAPIKey)
	}
}

func TestValidateRejectsBadRateLimit(t *testing.T) {
	t.Setenv("AUTH_RATE_MAX", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for AUTH_RATE_MAX=0")
	}
}

func TestValidateReleaseModeRequiresURLs(t *testing.T) {
	cfg := &Config{
		GinMode:               "release",
		DatabaseDSN:           "",
		RedisURL:              "redis://127.0.0.1:6379/0",
		LandingURL:            "http://localhost:3001",
		AuthRateMax:           10,
		AuthRateWindowSeconds: 60,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL in release mode")
	}
}
