package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WAVECRATE_APP_ENV", "dev")
	t.Setenv("WAVECRATE_DB_DSN", "postgres://localhost:5432/wavecrate?sslmode=disable")
	t.Setenv("WAVECRATE_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("WAVECRATE_STRIPE_API_KEY", "sk_test_123")
	t.Setenv("WAVECRATE_STRIPE_WEBHOOK_SECRET", "whsec_123")
	t.Setenv("WAVECRATE_GCS_BUCKET_NAME", "wavecrate-audio")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Fatalf("unexpected port %q", cfg.App.Port)
	}
	if !cfg.App.IsDev() || cfg.App.IsProd() {
		t.Fatalf("env flags wrong for dev")
	}
	if cfg.Checkout.IntentRateLimit != 30 || cfg.Checkout.IntentRateWindow != time.Minute {
		t.Fatalf("unexpected checkout limits %+v", cfg.Checkout)
	}
	if cfg.Webhook.IdempotencyTTL != 720*time.Hour {
		t.Fatalf("unexpected idempotency ttl %v", cfg.Webhook.IdempotencyTTL)
	}
	if cfg.GCS.DownloadURLExpiry != 15*time.Minute {
		t.Fatalf("unexpected download expiry %v", cfg.GCS.DownloadURLExpiry)
	}
	if cfg.Stripe.Environment() != "test" {
		t.Fatalf("unexpected stripe env %q", cfg.Stripe.Environment())
	}
}

func TestLoadFailsWithoutRequiredValues(t *testing.T) {
	setRequiredEnv(t)
	// t.Setenv registered the restore; unset to simulate a missing variable.
	os.Unsetenv("WAVECRATE_DB_DSN")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DSN missing")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WAVECRATE_APP_PORT", "9090")
	t.Setenv("WAVECRATE_CHECKOUT_RATE_LIMIT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "9090" {
		t.Fatalf("unexpected port %q", cfg.App.Port)
	}
	if cfg.Checkout.IntentRateLimit != 5 {
		t.Fatalf("unexpected rate limit %d", cfg.Checkout.IntentRateLimit)
	}
}
