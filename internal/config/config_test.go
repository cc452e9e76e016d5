package config

import "testing"

func TestNormalizeConnectionStringMapsDotNetKeys(t *testing.T) {
	got := normalizeConnectionString("Host=db;Port=5432;Database=ledger;Username=app;Password=secret;Timeout=30")
	want := "host=db port=5432 dbname=ledger user=app password=secret connect_timeout=30 sslmode=disable"
	if got != want {
		t.Fatalf("normalized dsn mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestNormalizeConnectionStringKeepsExplicitSSLMode(t *testing.T) {
	got := normalizeConnectionString("Host=db;Database=ledger;sslmode=require")
	want := "host=db dbname=ledger sslmode=require"
	if got != want {
		t.Fatalf("normalized dsn mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CreditRatingThreshold != 50 {
		t.Fatalf("expected default credit rating threshold 50, got %d", cfg.CreditRatingThreshold)
	}
	if cfg.SchedulerConcurrency < 1 {
		t.Fatalf("scheduler concurrency must be at least 1, got %d", cfg.SchedulerConcurrency)
	}
}
