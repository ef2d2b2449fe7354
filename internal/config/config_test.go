package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.CheckInterval != 30*time.Minute {
		t.Errorf("CheckInterval = %v, want 30m", cfg.CheckInterval)
	}
	if cfg.RegenerateInterval != 12*time.Hour {
		t.Errorf("RegenerateInterval = %v, want 12h", cfg.RegenerateInterval)
	}
	if cfg.RenotifyInterval != 24*time.Hour {
		t.Errorf("RenotifyInterval = %v, want 24h", cfg.RenotifyInterval)
	}
	if !cfg.IsDevelopment() {
		t.Error("default environment should be development")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CHECK_INTERVAL_MINUTES", "5")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.CheckInterval != 5*time.Minute {
		t.Errorf("CheckInterval = %v, want 5m", cfg.CheckInterval)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
}
