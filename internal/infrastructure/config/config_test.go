package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/iho/guildledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REFERENCE_PREFIX", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.ReferencePrefix != "PAY" {
		t.Fatalf("expected default reference prefix PAY, got %q", cfg.ReferencePrefix)
	}

	if cfg.TxMaxRetries != 5 {
		t.Fatalf("expected default tx retries 5, got %d", cfg.TxMaxRetries)
	}

	if !cfg.OutboxEnabled {
		t.Fatalf("expected outbox to be enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("BATCH_CACHE_TTL", "5m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("REFERENCE_PREFIX", "LOOT")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if !cfg.AutoMigrate || cfg.BatchCacheTTL != 5*time.Minute {
		t.Fatalf("expected migrate and cache overrides, got migrate=%v ttl=%s", cfg.AutoMigrate, cfg.BatchCacheTTL)
	}

	if cfg.RateLimitRPS != 2.5 || cfg.ReferencePrefix != "LOOT" {
		t.Fatalf("expected rate and prefix overrides, got rps=%v prefix=%s", cfg.RateLimitRPS, cfg.ReferencePrefix)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
