package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresSecret(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DUMP_JWT_SECRET is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DUMP_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Fatalf("unexpected default addr %q", cfg.Server.Addr)
	}
	if cfg.JWT.SessionDays != 3 || cfg.JWT.RememberDays != 365 {
		t.Fatalf("unexpected token lifetimes: %d/%d", cfg.JWT.SessionDays, cfg.JWT.RememberDays)
	}
	if cfg.Sweep.Interval != time.Hour {
		t.Fatalf("unexpected sweep interval %v", cfg.Sweep.Interval)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DUMP_JWT_SECRET", "test-secret")
	t.Setenv("DUMP_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("DUMP_SWEEP_INTERVAL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("env override not applied: %q", cfg.Server.Addr)
	}
	if cfg.Sweep.Interval != 15*time.Minute {
		t.Fatalf("env override not applied: %v", cfg.Sweep.Interval)
	}
}
