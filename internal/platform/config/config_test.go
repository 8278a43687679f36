package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"COMMERCE_API_BASE_URL": "http://localhost:9000/api",
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q, want default 8080", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr = %q, want default", cfg.Redis.Addr)
	}
	if cfg.Sessions.TTL != 24*time.Hour {
		t.Fatalf("session ttl = %v, want 24h", cfg.Sessions.TTL)
	}
	if cfg.Idempotency.Header != "Idempotency-Key" {
		t.Fatalf("idempotency header = %q", cfg.Idempotency.Header)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"COMMERCE_API_BASE_URL": "https://api.example.com",
			"PORT":                  "9090",
			"SERVER_READ_TIMEOUT":   "5s",
			"REDIS_ADDR":            "redis:6380",
			"REDIS_DB":              "3",
			"SESSION_TTL":           "1h",
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("read timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("redis db = %d", cfg.Redis.DB)
	}
	if cfg.Sessions.TTL != time.Hour {
		t.Fatalf("session ttl = %v", cfg.Sessions.TTL)
	}
}

func TestLoadMissingBaseURL(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{}))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := validation.Fields()
	if len(fields) == 0 || fields[0] != "COMMERCE_API_BASE_URL" {
		t.Fatalf("unexpected invalid fields %v", fields)
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"COMMERCE_API_BASE_URL": "http://localhost:9000",
			"SERVER_READ_TIMEOUT":   "not-a-duration",
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("read timeout = %v, want default fallback", cfg.Server.ReadTimeout)
	}
}
